package analysis

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/talkincode/perfinsight/internal/dataset"
	"github.com/talkincode/perfinsight/internal/domain"
)

// Quantile returns the p-th quantile of the values using linear
// interpolation between order statistics: with h = (n-1)p, the result is
// x[⌊h⌋] + (h-⌊h⌋)(x[⌊h⌋+1] - x[⌊h⌋]). Missing values are excluded.
func Quantile(values []float64, p float64) (float64, error) {
	if p <= 0 || p >= 1 {
		return 0, errors.Errorf("quantile: percentile must be in (0,1), got %g", p)
	}
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return 0, errors.New("quantile: no values")
	}
	sort.Float64s(clean)
	h := float64(len(clean)-1) * p
	lo := int(math.Floor(h))
	q := clean[lo]
	if lo+1 < len(clean) {
		q += (h - math.Floor(h)) * (clean[lo+1] - clean[lo])
	}
	return q, nil
}

// Threshold computes the p-th quantile of a column and returns it together
// with the records whose value strictly exceeds it.
func (a *Analyzer) Threshold(records []domain.Observation, column string, p float64) (*domain.Threshold, error) {
	values, err := dataset.Column(records, column)
	if err != nil {
		return nil, errors.Wrap(err, "threshold")
	}
	q, err := Quantile(values, p)
	if err != nil {
		return nil, errors.Wrap(err, "threshold")
	}
	var exceeding []domain.Observation
	for i := range records {
		if !math.IsNaN(values[i]) && values[i] > q {
			exceeding = append(exceeding, records[i])
		}
	}
	a.logger.Debug("threshold computed",
		zap.String("column", column),
		zap.Float64("percentile", p),
		zap.Float64("value", q),
		zap.Int("exceeding", len(exceeding)))
	return &domain.Threshold{
		Column:     column,
		Percentile: p,
		Value:      q,
		Exceeding:  exceeding,
	}, nil
}
