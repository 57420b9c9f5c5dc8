package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/talkincode/perfinsight/internal/dataset"
	"github.com/talkincode/perfinsight/internal/domain"
)

// GroupSummary computes count/mean/sd/median/min/max of a value column per
// distinct group, ordered by mean descending unless ascending is set.
// Missing cells are dropped per group; a single-member group reports its
// standard deviation as NaN.
func (a *Analyzer) GroupSummary(records []domain.Observation, groupBy, value string, ascending bool) (*domain.GroupSummary, error) {
	if len(records) == 0 {
		return nil, errors.New("summary: no records")
	}
	labels, err := dataset.Labels(records, groupBy)
	if err != nil {
		return nil, errors.Wrap(err, "summary")
	}
	values, err := dataset.Column(records, value)
	if err != nil {
		return nil, errors.Wrap(err, "summary")
	}

	groups := map[string][]float64{}
	for i, label := range labels {
		if math.IsNaN(values[i]) {
			continue
		}
		groups[label] = append(groups[label], values[i])
	}

	rows := make([]domain.SummaryRow, 0, len(groups))
	for label, vals := range groups {
		row, err := summarize(label, vals)
		if err != nil {
			return nil, errors.Wrapf(err, "summary: group %q", label)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Mean != rows[j].Mean {
			if ascending {
				return rows[i].Mean < rows[j].Mean
			}
			return rows[i].Mean > rows[j].Mean
		}
		return rows[i].Group < rows[j].Group
	})

	a.logger.Debug("group summary computed",
		zap.String("group_by", groupBy),
		zap.String("value", value),
		zap.Int("groups", len(rows)))
	return &domain.GroupSummary{GroupBy: groupBy, Value: value, Rows: rows}, nil
}

func summarize(label string, vals []float64) (domain.SummaryRow, error) {
	mean, err := stats.Mean(vals)
	if err != nil {
		return domain.SummaryRow{}, err
	}
	median, err := stats.Median(vals)
	if err != nil {
		return domain.SummaryRow{}, err
	}
	minv, err := stats.Min(vals)
	if err != nil {
		return domain.SummaryRow{}, err
	}
	maxv, err := stats.Max(vals)
	if err != nil {
		return domain.SummaryRow{}, err
	}
	// Sample standard deviation is undefined for a single observation and
	// must surface as NaN, never as zero.
	sd := math.NaN()
	if len(vals) > 1 {
		sd, err = stats.StandardDeviationSample(vals)
		if err != nil {
			return domain.SummaryRow{}, err
		}
	}
	return domain.SummaryRow{
		Group:  label,
		Count:  len(vals),
		Mean:   mean,
		Std:    domain.Metric(sd),
		Median: median,
		Min:    minv,
		Max:    maxv,
	}, nil
}
