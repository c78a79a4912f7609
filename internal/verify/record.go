package verify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/modurecruit/snspick/internal/scrape"
	"github.com/modurecruit/snspick/internal/store"
)

// ToRecord serializes a Verification for persistence.
func ToRecord(v *Verification) (*store.VerificationRecord, error) {
	profiles, err := json.Marshal(v.Profiles)
	if err != nil {
		return nil, fmt.Errorf("marshal profiles: %w", err)
	}
	meets, err := json.Marshal(v.MeetsCriteria)
	if err != nil {
		return nil, fmt.Errorf("marshal criteria map: %w", err)
	}
	return &store.VerificationRecord{
		ApplicantEmail: v.ApplicantEmail,
		ProfilesJSON:   string(profiles),
		MeetsJSON:      string(meets),
		MeetsAll:       v.MeetsAllCriteria,
		Score:          v.Score,
		VerifiedAt:     v.VerifiedAt,
	}, nil
}

// FromRecord rebuilds a Verification from its persisted form.
func FromRecord(rec *store.VerificationRecord) (*Verification, error) {
	v := &Verification{
		ApplicantEmail:   rec.ApplicantEmail,
		MeetsCriteria:    make(map[scrape.Platform]bool),
		MeetsAllCriteria: rec.MeetsAll,
		Score:            rec.Score,
		VerifiedAt:       rec.VerifiedAt,
	}
	if err := json.Unmarshal([]byte(rec.ProfilesJSON), &v.Profiles); err != nil {
		return nil, fmt.Errorf("unmarshal profiles: %w", err)
	}
	if err := json.Unmarshal([]byte(rec.MeetsJSON), &v.MeetsCriteria); err != nil {
		return nil, fmt.Errorf("unmarshal criteria map: %w", err)
	}
	return v, nil
}

// Fresh reports whether a persisted verification is younger than ttl and
// may be reused instead of re-scraping.
func Fresh(rec *store.VerificationRecord, ttl time.Duration, now time.Time) bool {
	if rec == nil || ttl <= 0 {
		return false
	}
	age := now.UnixMilli() - rec.VerifiedAt
	return age >= 0 && age < ttl.Milliseconds()
}
