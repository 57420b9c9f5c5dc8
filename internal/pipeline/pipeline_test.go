package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/talkincode/perfinsight/config"
	"github.com/talkincode/perfinsight/internal/dataset"
	"github.com/talkincode/perfinsight/internal/domain"
)

func testAppConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.System.Workdir = t.TempDir()
	cfg.Synth.Rows = 200
	return cfg
}

func TestPipelineRun(t *testing.T) {
	cfg := testAppConfig(t)
	p, err := New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rec, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec.Status != domain.RunStatusOK {
		t.Fatalf("status = %s, want ok", rec.Status)
	}
	if rec.Rows != 200 {
		t.Fatalf("rows = %d, want 200", rec.Rows)
	}
	if rec.Outliers != 10 {
		t.Fatalf("outliers = %d, want round(200*0.05)=10", rec.Outliers)
	}

	if _, err := os.Stat(rec.DatasetPath); err != nil {
		t.Fatalf("dataset not persisted: %v", err)
	}
	reportDir := filepath.Join(cfg.System.Workdir, "report")
	for _, name := range []string{"report.html", "summary.xlsx", "results.json"} {
		if _, err := os.Stat(filepath.Join(reportDir, name)); err != nil {
			t.Fatalf("report artifact %s missing: %v", name, err)
		}
	}

	records, err := dataset.Load(rec.DatasetPath)
	if err != nil {
		t.Fatalf("load persisted dataset: %v", err)
	}
	if len(records) != 200 {
		t.Fatalf("persisted %d records, want 200", len(records))
	}
}

func TestPipelineRunFromInputFile(t *testing.T) {
	// First run synthesizes a dataset, second run analyzes it as input.
	cfg := testAppConfig(t)
	p, err := New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rec, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	cfg2 := testAppConfig(t)
	cfg2.Dataset.Input = rec.DatasetPath
	p2, err := New(cfg2, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rec2, err := p2.Run(context.Background())
	if err != nil {
		t.Fatalf("run from input: %v", err)
	}
	if rec2.Rows != rec.Rows {
		t.Fatalf("input run rows = %d, want %d", rec2.Rows, rec.Rows)
	}
	if rec2.Outliers != 0 {
		t.Fatalf("input run should not report injected outliers, got %d", rec2.Outliers)
	}
}

func TestPipelineMissingInputFails(t *testing.T) {
	cfg := testAppConfig(t)
	cfg.Dataset.Input = filepath.Join(cfg.System.Workdir, "nope.csv")
	p, err := New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rec, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for a missing input file")
	}
	if rec.Status != domain.RunStatusFailed {
		t.Fatalf("status = %s, want failed", rec.Status)
	}
	if rec.Message == "" {
		t.Fatal("failed run should carry a message")
	}
}
