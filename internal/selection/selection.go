// Package selection turns influence verifications into selection
// decisions.
//
// The rule is OR-across-platforms: an applicant is selected when any
// supplied platform met its threshold. This deliberately favors
// inclusivity over an all-platforms bar.
package selection

import (
	"github.com/modurecruit/snspick/internal/scrape"
	"github.com/modurecruit/snspick/internal/store"
	"github.com/modurecruit/snspick/internal/verify"
)

// Result is a selection decision for one applicant.
type Result struct {
	ApplicantEmail string                   `json:"applicantEmail"`
	Selected       bool                     `json:"selected"`
	Reason         string                   `json:"reason"`
	MeetsCriteria  map[scrape.Platform]bool `json:"meetsCriteria"`
	// QualifyingPlatforms holds display names of platforms whose supplied
	// URL met the threshold, in canonical platform order.
	QualifyingPlatforms []string `json:"qualifyingPlatforms"`
	// Snapshot is a denormalized copy of what was measured.
	Snapshot []verify.SNSProfile `json:"snsData"`
}

// Pair couples an applicant with their verification, which may be nil when
// none is on file.
type Pair struct {
	Applicant    *store.Applicant
	Verification *verify.Verification
}

// Service applies the selection rule.
type Service struct {
	criteria verify.Criteria
}

// New creates a selection Service bound to the criteria the reasons are
// phrased against.
func New(criteria verify.Criteria) *Service {
	return &Service{criteria: criteria}
}

// Decide produces the selection decision for one applicant. A nil
// verification is an automatic rejection, distinct from "verified but
// below threshold".
func (s *Service) Decide(applicant *store.Applicant, v *verify.Verification) *Result {
	r := &Result{
		ApplicantEmail: applicant.Email,
		MeetsCriteria:  make(map[scrape.Platform]bool),
	}

	if v == nil {
		r.Reason = Reason(false, nil, nil, s.criteria)
		return r
	}

	for p, ok := range v.MeetsCriteria {
		r.MeetsCriteria[p] = ok
	}
	for _, p := range scrape.All() {
		if r.MeetsCriteria[p] {
			r.QualifyingPlatforms = append(r.QualifyingPlatforms, p.DisplayName())
		}
	}
	r.Selected = len(r.QualifyingPlatforms) > 0
	r.Snapshot = v.Profiles
	r.Reason = Reason(r.Selected, r.MeetsCriteria, v, s.criteria)
	return r
}

// DecideBatch processes pairs sequentially, preserving input order.
func (s *Service) DecideBatch(pairs []Pair) []*Result {
	out := make([]*Result, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, s.Decide(p.Applicant, p.Verification))
	}
	return out
}
