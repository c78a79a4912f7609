package scrape

import "testing"

func TestParseCount(t *testing.T) {
	// WHAT: Count normalization across every format the platforms emit.
	// WHY: Profile pages mix plain digits, western suffixes, and Korean
	// units; a wrong multiplier silently misclassifies applicants.
	cases := []struct {
		in   string
		want int64
	}{
		{"1234", 1234},
		{"12,345", 12345},
		{" 300 ", 300},
		{"1.2K", 1200},
		{"1.2k", 1200},
		{"3M", 3_000_000},
		{"1B", 1_000_000_000},
		{"1.5만", 15000},
		{"3천", 3000},
		{"1억", 100_000_000},
		{"1,234명", 1234},
		{"2.5만명", 25000},
	}
	for _, tc := range cases {
		got, err := ParseCount(tc.in)
		if err != nil {
			t.Errorf("ParseCount(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseCount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseCount_Rejects(t *testing.T) {
	// WHAT: Empty, non-numeric, zero, and negative inputs fail.
	// WHY: A zero or garbage count must surface as "metric not found",
	// never as a valid measurement of 0.
	for _, in := range []string{"", "   ", "abc", "0", "-5", "명", "K"} {
		if v, err := ParseCount(in); err == nil {
			t.Errorf("ParseCount(%q) = %d, want error", in, v)
		}
	}
}
