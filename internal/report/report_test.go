package report

import (
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/talkincode/perfinsight/internal/domain"
)

func sampleResult() *domain.AnalysisResult {
	ts, _ := time.Parse(domain.TimeLayout, "2025-01-01 00:00:00")
	return &domain.AnalysisResult{
		GeneratedAt: domain.DateTime{Time: ts},
		Rows:        1000,
		Outliers:    50,
		Seed:        42,
		Coverage: &domain.TimeRange{
			From: domain.DateTime{Time: ts},
			To:   domain.DateTime{Time: ts.Add(999 * time.Minute)},
		},
		Summaries: []domain.GroupSummary{
			{
				GroupBy: "team",
				Value:   "response_time_ms",
				Rows: []domain.SummaryRow{
					{Group: "bravo", Count: 2, Mean: 150, Std: 70.71, Median: 150, Min: 100, Max: 200},
					{Group: "alpha", Count: 1, Mean: 20, Std: domain.Metric(math.NaN()), Median: 20, Min: 20, Max: 20},
				},
			},
		},
		Correlation: &domain.CorrelationMatrix{
			Columns: []string{"response_time_ms", "throughput"},
			Values: [][]domain.Metric{
				{1, domain.Metric(0.5)},
				{domain.Metric(0.5), 1},
			},
			CompleteRows: 1000,
		},
		Threshold: &domain.Threshold{
			Column:     "response_time_ms",
			Percentile: 0.95,
			Value:      950.05,
		},
		Anova: &domain.AnovaResult{
			Value:      "response_time_ms",
			GroupBy:    "team",
			F:          21,
			P:          1.0 / 512.0,
			DFBetween:  2,
			DFWithin:   6,
			EtaSquared: 0.875,
			Magnitude:  domain.MagnitudeLarge,
			Pairwise: []domain.PairwiseComparison{
				{GroupA: "alpha", GroupB: "bravo", T: -6.12, RawP: 0.003, AdjustedP: 0.009},
			},
		},
		Warnings: []string{"example warning"},
	}
}

func TestRenderHTML(t *testing.T) {
	r := NewRenderer(t.TempDir())
	path, err := r.RenderHTML(sampleResult())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	html := string(data)
	for _, want := range []string{
		"bravo",
		"response_time_ms by team",
		"eta-squared",
		"large",
		"example warning",
		"alpha vs bravo",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("report missing %q", want)
		}
	}
	// undefined sd renders as n/a, never 0
	if !strings.Contains(html, "n/a") {
		t.Fatal("NaN statistics should render as n/a")
	}
}

func TestWriteJSONNullsUndefined(t *testing.T) {
	r := NewRenderer(t.TempDir())
	path, err := r.WriteJSON(sampleResult())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, `"std": null`) {
		t.Fatalf("undefined sd should encode as null, got:\n%s", body)
	}
	if !strings.Contains(body, `"eta_squared": 0.875`) {
		t.Fatal("results JSON missing eta_squared")
	}
}

func TestRenderWorkbook(t *testing.T) {
	r := NewRenderer(t.TempDir())
	path, err := r.RenderWorkbook(sampleResult())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("workbook file is empty")
	}
}
