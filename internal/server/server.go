// Package server exposes the HTTP API: verification, batch selection,
// record queries, content drafting, and the admin surface.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/modurecruit/snspick/internal/content"
	"github.com/modurecruit/snspick/internal/processor"
	"github.com/modurecruit/snspick/internal/store"
)

// Config carries handler dependencies and admin credentials.
type Config struct {
	// AdminUser and AdminPassHash (bcrypt) protect the /admin routes.
	// Empty AdminPassHash disables them.
	AdminUser     string
	AdminPassHash string
}

// Server holds the route handlers.
type Server struct {
	store   *store.Store
	proc    *processor.Processor
	content *content.Generator // nil disables /api/content/draft
	config  Config
	logger  *slog.Logger
}

// New creates a Server. gen may be nil when no Gemini key is configured.
func New(st *store.Store, proc *processor.Processor, gen *content.Generator, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: st, proc: proc, content: gen, config: cfg, logger: logger}
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/verification", s.handleVerification)
		r.Post("/selection/process", s.handleProcess)
		r.Get("/selection/records", s.handleListRecords)
		r.Get("/selection/records/{email}", s.handleGetRecord)
		r.Get("/batches", s.handleListBatches)
		r.Get("/batches/{id}", s.handleGetBatch)
		r.Post("/content/draft", s.handleDraft)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.adminAuth)
		r.Delete("/selection/records", s.handlePurgeRecords)
		r.Post("/batch/run", s.handleAdminBatch)
	})
}

// adminAuth enforces HTTP basic auth against the bcrypt hash from config.
// With no hash configured the whole admin surface answers 404.
func (s *Server) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.AdminPassHash == "" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(s.config.AdminUser)) != 1 ||
			bcrypt.CompareHashAndPassword([]byte(s.config.AdminPassHash), []byte(pass)) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the Authorization bearer token, or "".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// decode unmarshals a JSON request body into v, answering 400 itself on
// failure. Returns false when the caller should stop.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"success": false, "error": msg})
}
