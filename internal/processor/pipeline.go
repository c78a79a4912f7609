package processor

import (
	"context"
	"errors"

	"github.com/modurecruit/snspick/internal/selection"
	"github.com/modurecruit/snspick/internal/sheets"
	"github.com/modurecruit/snspick/internal/store"
	"github.com/modurecruit/snspick/internal/verify"
)

// loadApplicants imports from the sheet when one is configured, falling
// back to the store otherwise. Sheet import upserts into the store so the
// row index is remembered for write-back.
func (p *Processor) loadApplicants(ctx context.Context, req Request, collect func(string, ...any)) ([]*store.Applicant, *sheets.Sheet) {
	if req.Sheet.SheetID == "" {
		applicants, err := p.store.ListApplicants(ctx)
		if err != nil {
			collect("list applicants: %v", err)
		}
		return applicants, nil
	}

	sheet, err := sheets.Load(ctx, p.sheets, req.Token, req.Sheet)
	if err != nil {
		collect("load sheet: %v", err)
		applicants, listErr := p.store.ListApplicants(ctx)
		if listErr != nil {
			collect("list applicants: %v", listErr)
		}
		return applicants, nil
	}

	applicants := sheet.Applicants()
	for _, a := range applicants {
		if err := p.store.UpsertApplicant(ctx, a); err != nil {
			collect("import applicant %s: %v", a.Email, err)
		}
	}
	return applicants, sheet
}

// verification returns the verification to decide on: a cached one when
// fresh enough, otherwise a live scrape persisted for next time.
func (p *Processor) verification(ctx context.Context, applicant *store.Applicant, force bool, collect func(string, ...any)) *verify.Verification {
	if !force {
		rec, err := p.store.LatestVerification(ctx, applicant.Email)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			collect("load verification for %s: %v", applicant.Email, err)
		}
		if verify.Fresh(rec, p.config.CacheTTL, p.now()) {
			v, err := verify.FromRecord(rec)
			if err == nil {
				return v
			}
			collect("decode cached verification for %s: %v", applicant.Email, err)
		}
	}

	urls := verify.URLs{
		NaverBlog: applicant.NaverBlogURL,
		Instagram: applicant.InstagramURL,
		Threads:   applicant.ThreadsURL,
	}
	v := p.verifier.Verify(ctx, applicant.Email, urls)

	rec, err := verify.ToRecord(v)
	if err != nil {
		collect("encode verification for %s: %v", applicant.Email, err)
		return v
	}
	if err := p.store.InsertVerification(ctx, rec); err != nil {
		collect("persist verification for %s: %v", applicant.Email, err)
	}
	return v
}

// processOne runs verify → decide → persist → write-back → notify for one
// applicant. Returns whether the applicant was selected.
func (p *Processor) processOne(ctx context.Context, applicant *store.Applicant, req Request, writer *sheets.Writer, collect func(string, ...any)) bool {
	v := p.verification(ctx, applicant, req.Force, collect)
	result := p.selector.Decide(applicant, v)

	rec, err := selection.ToRecord(result)
	if err != nil {
		collect("encode selection for %s: %v", applicant.Email, err)
		return result.Selected
	}
	// Saved pending; marked completed after write-back and notification
	// had their chance, so a crash mid-applicant is visible in the record.
	if err := p.store.SaveSelectionRecord(ctx, rec); err != nil {
		collect("persist selection for %s: %v", applicant.Email, err)
		return result.Selected
	}

	if writer != nil {
		if err := writer.WriteDecision(ctx, applicant.RowIndex, result.Selected, result.Reason); err != nil {
			collect("sheet write-back for %s: %v", applicant.Email, err)
		} else if err := p.store.MarkSheetSynced(ctx, applicant.Email); err != nil {
			collect("mark sheet synced for %s: %v", applicant.Email, err)
		}
	}

	if req.Notify && p.mailer != nil {
		if err := p.mailer.NotifyDecision(ctx, applicant, result); err != nil {
			collect("notify %s: %v", applicant.Email, err)
		} else if err := p.store.MarkEmailSent(ctx, applicant.Email); err != nil {
			collect("mark email sent for %s: %v", applicant.Email, err)
		}
	}

	if err := p.store.MarkSelectionStatus(ctx, applicant.Email, store.StatusCompleted); err != nil {
		collect("mark selection completed for %s: %v", applicant.Email, err)
	}

	return result.Selected
}

func filterByEmail(applicants []*store.Applicant, email string) []*store.Applicant {
	for _, a := range applicants {
		if a.Email == email {
			return []*store.Applicant{a}
		}
	}
	return nil
}

// VerifyOne runs a live verification for a single applicant and persists
// the result. Used by the verification API endpoint.
func (p *Processor) VerifyOne(ctx context.Context, email string, urls verify.URLs, criteria *verify.Criteria) (*verify.Verification, error) {
	var v *verify.Verification
	if criteria != nil {
		v = p.verifier.VerifyWith(ctx, email, urls, criteria.Merge(p.verifier.Criteria()))
	} else {
		v = p.verifier.Verify(ctx, email, urls)
	}

	rec, err := verify.ToRecord(v)
	if err != nil {
		return v, err
	}
	if err := p.store.InsertVerification(ctx, rec); err != nil {
		return v, err
	}
	return v, nil
}
