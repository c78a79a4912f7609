package selection

import (
	"fmt"
	"strings"

	"github.com/modurecruit/snspick/internal/scrape"
	"github.com/modurecruit/snspick/internal/verify"
)

// Sheet write-back decision labels.
const (
	LabelSelected = "선정"
	LabelRejected = "비선정"
)

// Reason builds the human-readable decision explanation. It is the single
// source of the wording and derives everything from the criteria map, the
// verification, and the thresholds, never from stored text, so rewording
// or re-thresholding cannot drift.
//
// Selected: "선정: <qualifying display names>".
// Rejected: "비선정: <per-platform shortfall>" for every supplied platform
// that did not qualify; platforms the applicant never submitted are not
// mentioned.
// No verification at all: "비선정: SNS 검증 결과 없음".
func Reason(selected bool, meets map[scrape.Platform]bool, v *verify.Verification, criteria verify.Criteria) string {
	if v == nil {
		return LabelRejected + ": SNS 검증 결과 없음"
	}

	if selected {
		var names []string
		for _, p := range scrape.All() {
			if meets[p] {
				names = append(names, p.DisplayName())
			}
		}
		return LabelSelected + ": " + strings.Join(names, ", ")
	}

	var parts []string
	for _, p := range scrape.All() {
		ok, supplied := meets[p]
		if !supplied || ok {
			continue
		}
		parts = append(parts, shortfall(p, v.Profile(p), criteria.Threshold(p)))
	}
	if len(parts) == 0 {
		return LabelRejected + ": 제출된 SNS 없음"
	}
	return LabelRejected + ": " + strings.Join(parts, ", ")
}

// shortfall phrases why one platform did not qualify.
func shortfall(p scrape.Platform, profile *verify.SNSProfile, threshold int64) string {
	name := p.DisplayName()
	if profile == nil || !profile.Valid {
		return fmt.Sprintf("%s 확인 불가", name)
	}
	return fmt.Sprintf("%s %s %d명 기준 미달(측정 %d명)",
		name, p.MetricLabel(), threshold, profile.MetricValue)
}
