// Package metrics keeps lightweight run gauges in an embedded time-series
// store under the application workdir.
package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

var (
	mu     sync.RWMutex
	store  tstorage.Storage
	gauges = map[string]int64{}
)

// InitMetrics opens the metrics store under workdir. Until it is called,
// SetGauge only keeps in-memory values.
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
	)
	if err != nil {
		return err
	}
	mu.Lock()
	store = s
	mu.Unlock()
	return nil
}

// SetGauge records the current value of a named gauge.
func SetGauge(name string, value int64) {
	mu.Lock()
	gauges[name] = value
	s := store
	mu.Unlock()
	if s == nil {
		return
	}
	_ = s.InsertRows([]tstorage.Row{
		{
			Metric: name,
			DataPoint: tstorage.DataPoint{
				Timestamp: time.Now().Unix(),
				Value:     float64(value),
			},
		},
	})
}

// GetGauge returns the last value set for a gauge.
func GetGauge(name string) int64 {
	mu.RLock()
	defer mu.RUnlock()
	return gauges[name]
}

// Select returns stored points for a gauge in [start, end].
func Select(name string, start, end int64) ([]*tstorage.DataPoint, error) {
	mu.RLock()
	s := store
	mu.RUnlock()
	if s == nil {
		return nil, nil
	}
	return s.Select(name, nil, start, end)
}

// Close flushes and closes the metrics store.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}
