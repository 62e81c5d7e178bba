package confirm

import "testing"

func TestPolicyConfirms(t *testing.T) {
	p := Policy{MinWinPct: 0.60, MinMatches: 3}

	cases := []struct {
		name string
		r    Result
		want bool
	}{
		{"unknown rejects", Unknown(), false},
		{"strong history confirms", Result{WinPct: 0.75, Matches: 8, Known: true}, true},
		{"at threshold confirms", Result{WinPct: 0.60, Matches: 3, Known: true}, true},
		{"below threshold rejects", Result{WinPct: 0.55, Matches: 10, Known: true}, false},
		{"thin sample rejects", Result{WinPct: 1.00, Matches: 2, Known: true}, false},
		{"high pct but unknown rejects", Result{WinPct: 0.90, Matches: 9}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Confirms(tc.r); got != tc.want {
				t.Errorf("Confirms(%+v) = %v, want %v", tc.r, got, tc.want)
			}
		})
	}
}
