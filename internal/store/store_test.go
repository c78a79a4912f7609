package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/modurecruit/snspick/internal/dbopen"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t)
	s := New(db)
	if err := s.Init(); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return s
}

func TestApplicant_UpsertAndGet(t *testing.T) {
	// WHAT: Upsert twice for the same email keeps one row and refreshes
	// the mutable fields.
	// WHY: Sheet imports re-run on every batch; duplicates would multiply
	// applicants.
	s := newTestStore(t)
	ctx := context.Background()

	a := &Applicant{Email: "a@b.c", Name: "홍길동", InstagramURL: "https://www.instagram.com/u", RowIndex: 2}
	if err := s.UpsertApplicant(ctx, a); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	a2 := &Applicant{Email: "a@b.c", Name: "홍길동", InstagramURL: "https://www.instagram.com/new", RowIndex: 3}
	if err := s.UpsertApplicant(ctx, a2); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.GetApplicant(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.InstagramURL != "https://www.instagram.com/new" || got.RowIndex != 3 {
		t.Errorf("upsert did not refresh: %+v", got)
	}

	all, err := s.ListApplicants(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("got %d applicants, want 1", len(all))
	}
}

func TestApplicant_ListOrder(t *testing.T) {
	// WHAT: List follows sheet-row order, unsourced applicants last.
	s := newTestStore(t)
	ctx := context.Background()

	for _, a := range []*Applicant{
		{Email: "api@b.c", RowIndex: 0}, // came in via the API, no sheet row
		{Email: "row5@b.c", RowIndex: 5},
		{Email: "row2@b.c", RowIndex: 2},
	} {
		if err := s.UpsertApplicant(ctx, a); err != nil {
			t.Fatalf("upsert %s: %v", a.Email, err)
		}
	}

	all, err := s.ListApplicants(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"row2@b.c", "row5@b.c", "api@b.c"}
	for i, w := range want {
		if all[i].Email != w {
			t.Errorf("position %d: %s, want %s", i, all[i].Email, w)
		}
	}
}

func TestGetApplicant_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetApplicant(context.Background(), "nobody@b.c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestVerification_LatestWins(t *testing.T) {
	// WHAT: LatestVerification returns the row with the newest
	// verified_at, not the first inserted.
	s := newTestStore(t)
	ctx := context.Background()

	old := &VerificationRecord{ApplicantEmail: "a@b.c", Score: 40, VerifiedAt: 1000}
	fresh := &VerificationRecord{ApplicantEmail: "a@b.c", Score: 90, VerifiedAt: 2000}
	for _, v := range []*VerificationRecord{old, fresh} {
		if err := s.InsertVerification(ctx, v); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := s.LatestVerification(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.Score != 90 || got.VerifiedAt != 2000 {
		t.Errorf("got %+v, want the newer row", got)
	}

	if _, err := s.LatestVerification(ctx, "other@b.c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestVerification_Prune(t *testing.T) {
	// WHAT: Rows older than the cutoff are deleted, newer ones survive.
	s := newTestStore(t)
	ctx := context.Background()

	for i, at := range []int64{1000, 2000, 3000} {
		v := &VerificationRecord{ApplicantEmail: fmt.Sprintf("u%d@b.c", i), VerifiedAt: at}
		if err := s.InsertVerification(ctx, v); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	n, err := s.PruneVerifications(ctx, 2500)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 2 {
		t.Errorf("pruned %d, want 2", n)
	}
	if _, err := s.LatestVerification(ctx, "u2@b.c"); err != nil {
		t.Errorf("newest row should survive: %v", err)
	}
}

func TestSelection_SaveOverwritesPerApplicant(t *testing.T) {
	// WHAT: Saving a second decision for the same applicant replaces the
	// first (one decision per applicant, enforced by the unique index).
	s := newTestStore(t)
	ctx := context.Background()

	first := &SelectionRecord{ApplicantEmail: "a@b.c", Selected: false, Reason: "비선정: 인스타그램 확인 불가"}
	if err := s.SaveSelectionRecord(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := &SelectionRecord{ApplicantEmail: "a@b.c", Selected: true, Reason: "선정: 인스타그램", Status: StatusCompleted}
	if err := s.SaveSelectionRecord(ctx, second); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	got, err := s.GetSelectionRecord(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Selected || got.Status != StatusCompleted {
		t.Errorf("second decision should win: %+v", got)
	}

	all, err := s.ListSelectionRecords(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("got %d records, want 1", len(all))
	}
}

func TestSelection_MarkFlags(t *testing.T) {
	// WHAT: Sheet-sync and email flags update independently; marking an
	// unknown applicant reports ErrNotFound.
	s := newTestStore(t)
	ctx := context.Background()

	rec := &SelectionRecord{ApplicantEmail: "a@b.c", Selected: true}
	if err := s.SaveSelectionRecord(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.MarkSheetSynced(ctx, "a@b.c"); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if err := s.MarkEmailSent(ctx, "a@b.c"); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if err := s.MarkSelectionStatus(ctx, "a@b.c", StatusCompleted); err != nil {
		t.Fatalf("mark status: %v", err)
	}
	got, _ := s.GetSelectionRecord(ctx, "a@b.c")
	if !got.SheetSynced || !got.EmailSent || got.Status != StatusCompleted {
		t.Errorf("flags not set: %+v", got)
	}

	if err := s.MarkSheetSynced(ctx, "ghost@b.c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSelection_Purge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rec := &SelectionRecord{ApplicantEmail: fmt.Sprintf("u%d@b.c", i)}
		if err := s.SaveSelectionRecord(ctx, rec); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	n, err := s.PurgeSelectionRecords(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 3 {
		t.Errorf("purged %d, want 3", n)
	}
	all, _ := s.ListSelectionRecords(ctx)
	if len(all) != 0 {
		t.Errorf("records remain after purge: %d", len(all))
	}
}

func TestBatch_Lifecycle(t *testing.T) {
	// WHAT: A batch starts running and finishes completed when no errors
	// were collected, keeping its counters.
	s := newTestStore(t)
	ctx := context.Background()

	b, err := s.StartBatch(ctx, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if b.Status != StatusRunning {
		t.Errorf("status = %q, want running", b.Status)
	}

	running, err := s.RunningBatch(ctx)
	if err != nil || running.ID != b.ID {
		t.Errorf("running batch = %+v, %v", running, err)
	}

	b.Processed, b.Selected, b.Rejected = 10, 4, 6
	if err := s.FinishBatch(ctx, b, nil); err != nil {
		t.Fatalf("finish: %v", err)
	}

	got, err := s.GetBatch(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusCompleted || got.Selected != 4 || got.FinishedAt == nil {
		t.Errorf("batch = %+v", got)
	}
	if _, err := s.RunningBatch(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("no batch should be running: %v", err)
	}
}

func TestBatch_FinishWithErrorsFails(t *testing.T) {
	// WHAT: Collected errors turn the terminal status into failed and are
	// persisted as a JSON list.
	s := newTestStore(t)
	ctx := context.Background()

	b, err := s.StartBatch(ctx, 2)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.FinishBatch(ctx, b, []string{"sheet write-back for a@b.c: http 403"}); err != nil {
		t.Fatalf("finish: %v", err)
	}

	got, _ := s.GetBatch(ctx, b.ID)
	if got.Status != StatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.ErrorsJSON == "[]" || got.ErrorsJSON == "" {
		t.Errorf("errors not persisted: %q", got.ErrorsJSON)
	}
}

func TestBatch_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		b, err := s.StartBatch(ctx, i)
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		// Spread started_at so the ordering is deterministic.
		if _, err := s.DB.ExecContext(ctx,
			`UPDATE batch_processes SET started_at = ? WHERE id = ?`, int64(1000*(i+1)), b.ID); err != nil {
			t.Fatalf("adjust: %v", err)
		}
		ids = append(ids, b.ID)
	}

	batches, err := s.ListBatches(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if batches[0].ID != ids[2] || batches[1].ID != ids[1] {
		t.Errorf("order wrong: %s, %s", batches[0].ID, batches[1].ID)
	}
}

func TestInit_FailsOrphanedRunningBatch(t *testing.T) {
	// WHAT: A batch left running by a crashed process is marked failed on
	// the next startup, so the single-flight guard cannot wedge.
	s := newTestStore(t)
	ctx := context.Background()

	b, err := s.StartBatch(ctx, 5)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Simulate the next process startup against the same database.
	if err := s.Init(); err != nil {
		t.Fatalf("re-init: %v", err)
	}

	if _, err := s.RunningBatch(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("RunningBatch after re-init = %v, want ErrNotFound", err)
	}
	got, err := s.GetBatch(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusFailed || got.FinishedAt == nil {
		t.Errorf("orphan batch = %+v, want failed with finished_at set", got)
	}
	if !strings.Contains(got.ErrorsJSON, "interrupted") {
		t.Errorf("ErrorsJSON = %q", got.ErrorsJSON)
	}
}
