package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/modurecruit/snspick/internal/content"
	"github.com/modurecruit/snspick/internal/processor"
	"github.com/modurecruit/snspick/internal/sheets"
	"github.com/modurecruit/snspick/internal/shield"
	"github.com/modurecruit/snspick/internal/store"
	"github.com/modurecruit/snspick/internal/verify"
)

type verificationRequest struct {
	ApplicantEmail string           `json:"applicantEmail"`
	Name           string           `json:"name"`
	URLs           verify.URLs      `json:"urls"`
	Criteria       *verify.Criteria `json:"criteria"`
}

// handleVerification runs a live influence check for one applicant and
// persists both the applicant and the verification.
func (s *Server) handleVerification(w http.ResponseWriter, r *http.Request) {
	var req verificationRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ApplicantEmail == "" {
		writeError(w, http.StatusBadRequest, "applicantEmail is required")
		return
	}
	if req.URLs.Empty() {
		writeError(w, http.StatusBadRequest, "at least one SNS URL is required")
		return
	}

	ctx := r.Context()
	applicant := &store.Applicant{
		Email:        req.ApplicantEmail,
		Name:         req.Name,
		NaverBlogURL: req.URLs.NaverBlog,
		InstagramURL: req.URLs.Instagram,
		ThreadsURL:   req.URLs.Threads,
	}
	if err := s.store.UpsertApplicant(ctx, applicant); err != nil {
		shield.GetLogger(ctx).Warn("upsert applicant failed", "error", err)
	}

	v, err := s.proc.VerifyOne(ctx, req.ApplicantEmail, req.URLs, req.Criteria)
	if err != nil {
		// Verification itself never fails; err here means persistence
		// failed, and the caller still gets the measurement.
		shield.GetLogger(ctx).Warn("persist verification failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "verification": v})
}

type processRequest struct {
	SheetConfig    sheets.SheetConfig `json:"sheetConfig"`
	ApplicantEmail string             `json:"applicantEmail"`
	UpdateSheet    bool               `json:"updateSheet"`
	Force          bool               `json:"force"`
	Notify         bool               `json:"notify"`
}

// handleProcess runs one batch selection. The Google access token for
// sheet reads and write-back arrives as the Authorization bearer.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decode(w, r, &req) {
		return
	}
	token := bearerToken(r)
	if req.SheetConfig.SheetID != "" {
		if err := req.SheetConfig.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if token == "" {
			writeError(w, http.StatusUnauthorized, "a Google access token is required to read the sheet")
			return
		}
	}

	summary, err := s.proc.ProcessAll(r.Context(), processor.Request{
		Sheet:          req.SheetConfig,
		Token:          token,
		ApplicantEmail: req.ApplicantEmail,
		UpdateSheet:    req.UpdateSheet,
		Force:          req.Force,
		Notify:         req.Notify,
	})
	if err != nil {
		if errors.Is(err, processor.ErrBatchRunning) {
			writeError(w, http.StatusConflict, "a batch is already running")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListSelectionRecords(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	rec, err := s.store.GetSelectionRecord(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no selection record for "+email)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	batches, err := s.store.ListBatches(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, batches)
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	batch, err := s.store.GetBatch(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no batch "+id)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

// handleDraft generates a campaign blog draft with the Gemini API.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	if s.content == nil {
		writeError(w, http.StatusServiceUnavailable, "content generation is not configured")
		return
	}
	var req content.Request
	if !decode(w, r, &req) {
		return
	}
	draft, err := s.content.Generate(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) handlePurgeRecords(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.PurgeSelectionRecords(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": n})
}

// handleAdminBatch triggers a store-only batch run (no sheet import, no
// write-back). Operational escape hatch when the scheduler is off.
func (s *Server) handleAdminBatch(w http.ResponseWriter, r *http.Request) {
	summary, err := s.proc.ProcessAll(r.Context(), processor.Request{})
	if err != nil {
		if errors.Is(err, processor.ErrBatchRunning) {
			writeError(w, http.StatusConflict, "a batch is already running")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
