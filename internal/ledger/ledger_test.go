package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/talkincode/perfinsight/internal/domain"
)

func TestLedgerAppendList(t *testing.T) {
	led, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer led.Close()

	now := time.Now().Truncate(time.Second)
	for i, id := range []int64{100, 200} {
		rec := &domain.RunRecord{
			ID:        id,
			Seed:      42,
			Rows:      1000 + i,
			Status:    domain.RunStatusOK,
			StartedAt: now,
		}
		if err := led.Append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	runs, err := led.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("listed %d runs, want 2", len(runs))
	}
	if runs[0].ID != 100 || runs[1].ID != 200 {
		t.Fatalf("runs out of key order: %d, %d", runs[0].ID, runs[1].ID)
	}
	if runs[1].Rows != 1001 || runs[1].Status != domain.RunStatusOK {
		t.Fatalf("unexpected run record: %+v", runs[1])
	}
}

func TestLedgerOverwriteSameID(t *testing.T) {
	led, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer led.Close()

	rec := &domain.RunRecord{ID: 7, Status: domain.RunStatusFailed}
	if err := led.Append(rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	rec.Status = domain.RunStatusOK
	if err := led.Append(rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	runs, err := led.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != domain.RunStatusOK {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}
