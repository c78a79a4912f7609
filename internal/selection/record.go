package selection

import (
	"encoding/json"
	"fmt"

	"github.com/modurecruit/snspick/internal/store"
	"github.com/modurecruit/snspick/internal/verify"
)

// ToRecord serializes a decision for persistence. Status starts pending;
// the processor marks it completed once side effects are through.
func ToRecord(r *Result) (*store.SelectionRecord, error) {
	meets, err := json.Marshal(r.MeetsCriteria)
	if err != nil {
		return nil, fmt.Errorf("marshal criteria map: %w", err)
	}
	// nil slices must persist as [] so readers never see JSON null.
	qualifyingList := r.QualifyingPlatforms
	if qualifyingList == nil {
		qualifyingList = []string{}
	}
	qualifying, err := json.Marshal(qualifyingList)
	if err != nil {
		return nil, fmt.Errorf("marshal qualifying platforms: %w", err)
	}
	snapshotList := r.Snapshot
	if snapshotList == nil {
		snapshotList = []verify.SNSProfile{}
	}
	snapshot, err := json.Marshal(snapshotList)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return &store.SelectionRecord{
		ApplicantEmail: r.ApplicantEmail,
		Selected:       r.Selected,
		Reason:         r.Reason,
		MeetsJSON:      string(meets),
		QualifyingJSON: string(qualifying),
		SnapshotJSON:   string(snapshot),
		Status:         store.StatusPending,
	}, nil
}
