package scrape

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseCount normalizes a human-formatted count to an integer.
//
// Accepted forms: plain digits, thousand separators ("12,345"), western
// suffixes ("1.2K", "3M", "1B"), and Korean units ("1.5만", "3천", "1억").
// The result must be a positive integer.
func ParseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse count: empty")
	}

	// Trailing unit labels ("명", "followers") survive sloppy captures.
	s = strings.TrimSuffix(s, "명")
	s = strings.TrimSpace(s)

	mult := int64(1)
	switch {
	case hasAnySuffix(&s, "K", "k"):
		mult = 1_000
	case hasAnySuffix(&s, "M", "m"):
		mult = 1_000_000
	case hasAnySuffix(&s, "B", "b"):
		mult = 1_000_000_000
	case hasAnySuffix(&s, "천"):
		mult = 1_000
	case hasAnySuffix(&s, "만"):
		mult = 10_000
	case hasAnySuffix(&s, "억"):
		mult = 100_000_000
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, fmt.Errorf("parse count: no digits")
	}

	if mult == 1 {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse count %q: %w", s, err)
		}
		if v <= 0 {
			return 0, fmt.Errorf("parse count: non-positive %d", v)
		}
		return v, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse count %q: %w", s, err)
	}
	v := int64(math.Round(f * float64(mult)))
	if v <= 0 {
		return 0, fmt.Errorf("parse count: non-positive %d", v)
	}
	return v, nil
}

func hasAnySuffix(s *string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(*s, suf) {
			*s = strings.TrimSuffix(*s, suf)
			return true
		}
	}
	return false
}
