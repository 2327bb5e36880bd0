package model

import "testing"

func TestProjectFunding_IsLowFunded(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		want    bool
	}{
		{"well_below", 0.10, true},
		{"just_below", 0.1499, true},
		{"at_threshold", 0.15, false},
		{"above", 0.20, false},
		{"zero", 0, true},
		{"fully_funded", 1.0, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := &ProjectFunding{PercentFunded: test.percent}
			if got := p.IsLowFunded(); got != test.want {
				t.Fatalf("IsLowFunded() with %v = %v, want %v", test.percent, got, test.want)
			}
		})
	}
}

func TestProjectFunding_PercentDisplay(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0.10, "10%"},
		{0.127, "13%"},
		{0.15, "15%"},
		{1.0, "100%"},
		{0, "0%"},
	}

	for _, test := range tests {
		p := &ProjectFunding{PercentFunded: test.percent}
		if got := p.PercentDisplay(); got != test.want {
			t.Errorf("PercentDisplay() with %v = %q, want %q", test.percent, got, test.want)
		}
	}
}
