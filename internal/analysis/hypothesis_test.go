package analysis

import (
	"math"
	"testing"

	"github.com/talkincode/perfinsight/internal/domain"
)

func anovaRecords(groups map[string][]float64) []domain.Observation {
	var records []domain.Observation
	for team, values := range groups {
		for _, v := range values {
			records = append(records, domain.Observation{
				Team:           team,
				ResponseTimeMs: domain.Metric(v),
			})
		}
	}
	return records
}

func TestOneWayANOVAKnownValues(t *testing.T) {
	// Hand-computed: group means 2, 3, 7; grand mean 4; SSB = 42, SSW = 6;
	// F(2,6) = 21; p = (1 + 2*21/6)^(-3) = 1/512.
	records := anovaRecords(map[string][]float64{
		"alpha":   {1, 2, 3},
		"bravo":   {2, 3, 4},
		"charlie": {6, 7, 8},
	})
	res, err := NewAnalyzer(nil).OneWayANOVA(records, "response_time_ms", "team")
	if err != nil {
		t.Fatalf("anova: %v", err)
	}
	if res.DFBetween != 2 || res.DFWithin != 6 {
		t.Fatalf("df = (%d,%d), want (2,6)", res.DFBetween, res.DFWithin)
	}
	if math.Abs(res.F-21) > 1e-9 {
		t.Fatalf("F = %g, want 21", res.F)
	}
	if math.Abs(res.P-1.0/512.0) > 1e-6 {
		t.Fatalf("p = %g, want %g", res.P, 1.0/512.0)
	}
	if math.Abs(res.EtaSquared-0.875) > 1e-9 {
		t.Fatalf("eta squared = %g, want 0.875", res.EtaSquared)
	}
	if res.Magnitude != domain.MagnitudeLarge {
		t.Fatalf("magnitude = %s, want large", res.Magnitude)
	}
	if len(res.Pairwise) != 3 {
		t.Fatalf("%d pairwise comparisons, want 3", len(res.Pairwise))
	}
	for _, pc := range res.Pairwise {
		if pc.RawP < 0 || pc.RawP > 1 {
			t.Fatalf("%s vs %s: raw p = %g outside [0,1]", pc.GroupA, pc.GroupB, pc.RawP)
		}
		want := pc.RawP * 3
		if want > 1 {
			want = 1
		}
		if math.Abs(pc.AdjustedP-want) > 1e-12 {
			t.Fatalf("%s vs %s: adjusted p = %g, want %g", pc.GroupA, pc.GroupB, pc.AdjustedP, want)
		}
	}
}

func TestOneWayANOVABonferroniCap(t *testing.T) {
	// Identical groups: F = 0, raw pairwise p = 1, adjusted must cap at 1.
	records := anovaRecords(map[string][]float64{
		"alpha": {1, 2, 3},
		"bravo": {1, 2, 3},
	})
	res, err := NewAnalyzer(nil).OneWayANOVA(records, "response_time_ms", "team")
	if err != nil {
		t.Fatalf("anova: %v", err)
	}
	if res.F != 0 {
		t.Fatalf("F = %g, want 0", res.F)
	}
	for _, pc := range res.Pairwise {
		if pc.AdjustedP > 1 {
			t.Fatalf("adjusted p = %g exceeds 1", pc.AdjustedP)
		}
	}
}

func TestOneWayANOVAEtaSquaredRange(t *testing.T) {
	records := anovaRecords(map[string][]float64{
		"alpha": {1.0, 1.2, 0.8, 1.1},
		"bravo": {1.1, 0.9, 1.3, 1.0},
	})
	res, err := NewAnalyzer(nil).OneWayANOVA(records, "response_time_ms", "team")
	if err != nil {
		t.Fatalf("anova: %v", err)
	}
	if res.EtaSquared < 0 || res.EtaSquared > 1 {
		t.Fatalf("eta squared = %g outside [0,1]", res.EtaSquared)
	}
}

func TestOneWayANOVAErrors(t *testing.T) {
	single := anovaRecords(map[string][]float64{"alpha": {1, 2, 3}})
	if _, err := NewAnalyzer(nil).OneWayANOVA(single, "response_time_ms", "team"); err == nil {
		t.Fatal("expected error with a single group")
	}

	tiny := anovaRecords(map[string][]float64{
		"alpha": {1, 2, 3},
		"bravo": {5},
	})
	if _, err := NewAnalyzer(nil).OneWayANOVA(tiny, "response_time_ms", "team"); err == nil {
		t.Fatal("expected error when a group has fewer than 2 observations")
	}
}

func TestClassifyEtaSquared(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, domain.MagnitudeSmall},
		{0.009, domain.MagnitudeSmall},
		{0.01, domain.MagnitudeMedium},
		{0.0599, domain.MagnitudeMedium},
		{0.06, domain.MagnitudeLarge},
		{0.875, domain.MagnitudeLarge},
	}
	for _, tt := range tests {
		if got := ClassifyEtaSquared(tt.value); got != tt.want {
			t.Fatalf("ClassifyEtaSquared(%g) = %s, want %s", tt.value, got, tt.want)
		}
	}
}
