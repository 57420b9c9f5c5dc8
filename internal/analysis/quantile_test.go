package analysis

import (
	"math"
	"testing"

	"github.com/talkincode/perfinsight/internal/domain"
)

func TestQuantileLinearInterpolation(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"quartile", []float64{1, 2, 3, 4}, 0.25, 1.75},
		{"median even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"median odd", []float64{1, 2, 3}, 0.5, 2},
		{"p95 of 1..100", seq(100), 0.95, 95.05},
		{"unsorted input", []float64{4, 1, 3, 2}, 0.25, 1.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Quantile(tt.values, tt.p)
			if err != nil {
				t.Fatalf("quantile: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("quantile(%g) = %g, want %g", tt.p, got, tt.want)
			}
		})
	}
}

func TestQuantileValidation(t *testing.T) {
	if _, err := Quantile([]float64{1, 2}, 0); err == nil {
		t.Fatal("expected error for p=0")
	}
	if _, err := Quantile([]float64{1, 2}, 1); err == nil {
		t.Fatal("expected error for p=1")
	}
	if _, err := Quantile(nil, 0.5); err == nil {
		t.Fatal("expected error for empty input")
	}
	if _, err := Quantile([]float64{math.NaN()}, 0.5); err == nil {
		t.Fatal("expected error when only missing values remain")
	}
}

func TestThresholdStrictlyExceeding(t *testing.T) {
	records := make([]domain.Observation, 1000)
	for i := range records {
		records[i] = domain.Observation{
			Team:           "alpha",
			ResponseTimeMs: domain.Metric(float64(i + 1)),
		}
	}
	threshold, err := NewAnalyzer(nil).Threshold(records, "response_time_ms", 0.95)
	if err != nil {
		t.Fatalf("threshold: %v", err)
	}
	if math.Abs(threshold.Value-950.05) > 1e-9 {
		t.Fatalf("threshold = %g, want 950.05", threshold.Value)
	}
	if len(threshold.Exceeding) != 50 {
		t.Fatalf("%d rows exceed p95, want 50", len(threshold.Exceeding))
	}
	for _, r := range threshold.Exceeding {
		if float64(r.ResponseTimeMs) <= threshold.Value {
			t.Fatalf("row with value %v does not strictly exceed %g", r.ResponseTimeMs, threshold.Value)
		}
	}
}

func TestThresholdUnknownColumn(t *testing.T) {
	records := []domain.Observation{{Team: "alpha", ResponseTimeMs: 1}}
	if _, err := NewAnalyzer(nil).Threshold(records, "nope", 0.95); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}
