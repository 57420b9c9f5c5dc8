package analysis

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/talkincode/perfinsight/internal/dataset"
	"github.com/talkincode/perfinsight/internal/domain"
)

// CorrelationMatrix computes the pairwise Pearson matrix over the named
// columns using only complete observations. It fails when fewer than two
// complete rows remain.
func (a *Analyzer) CorrelationMatrix(records []domain.Observation, columns []string) (*domain.CorrelationMatrix, error) {
	if len(columns) < 2 {
		return nil, errors.Errorf("correlation: need at least 2 columns, got %d", len(columns))
	}
	rows, err := dataset.CompleteRows(records, columns)
	if err != nil {
		return nil, errors.Wrap(err, "correlation")
	}
	if len(rows) < 2 {
		return nil, errors.Errorf("correlation: need at least 2 complete observations, got %d", len(rows))
	}

	n, p := len(rows), len(columns)
	flat := make([]float64, 0, n*p)
	for _, row := range rows {
		flat = append(flat, row...)
	}
	x := mat.NewDense(n, p, flat)
	dst := mat.NewSymDense(p, nil)
	stat.CorrelationMatrix(dst, x, nil)

	values := make([][]domain.Metric, p)
	for i := 0; i < p; i++ {
		values[i] = make([]domain.Metric, p)
		for j := 0; j < p; j++ {
			if i == j {
				values[i][j] = 1
				continue
			}
			values[i][j] = domain.Metric(dst.At(i, j))
		}
	}

	a.logger.Debug("correlation matrix computed",
		zap.Int("columns", p),
		zap.Int("complete_rows", n))
	return &domain.CorrelationMatrix{
		Columns:      append([]string(nil), columns...),
		Values:       values,
		CompleteRows: n,
	}, nil
}
