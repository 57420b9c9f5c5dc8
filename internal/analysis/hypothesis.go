package analysis

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/talkincode/perfinsight/internal/dataset"
	"github.com/talkincode/perfinsight/internal/domain"
)

// OneWayANOVA tests equality of group means of a value column across the
// groups of a categorical column. It reports the F statistic with its
// p-value, Bonferroni-adjusted pairwise Welch t-tests and the eta-squared
// effect size. It fails with fewer than two groups or any group smaller
// than two observations.
func (a *Analyzer) OneWayANOVA(records []domain.Observation, value, groupBy string) (*domain.AnovaResult, error) {
	labels, err := dataset.Labels(records, groupBy)
	if err != nil {
		return nil, errors.Wrap(err, "anova")
	}
	values, err := dataset.Column(records, value)
	if err != nil {
		return nil, errors.Wrap(err, "anova")
	}

	groups := map[string][]float64{}
	total := 0
	grand := 0.0
	for i, label := range labels {
		if math.IsNaN(values[i]) {
			continue
		}
		groups[label] = append(groups[label], values[i])
		grand += values[i]
		total++
	}
	if len(groups) < 2 {
		return nil, errors.Errorf("anova: need at least 2 groups, got %d", len(groups))
	}
	names := make([]string, 0, len(groups))
	for name, vals := range groups {
		if len(vals) < 2 {
			return nil, errors.Errorf("anova: group %q has fewer than 2 observations", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	grand /= float64(total)

	var ssb, ssw float64
	means := map[string]float64{}
	for name, vals := range groups {
		m := mean(vals)
		means[name] = m
		ssb += float64(len(vals)) * (m - grand) * (m - grand)
		for _, v := range vals {
			ssw += (v - m) * (v - m)
		}
	}

	dfb := len(groups) - 1
	dfw := total - len(groups)
	f := (ssb / float64(dfb)) / (ssw / float64(dfw))
	p := distuv.F{D1: float64(dfb), D2: float64(dfw)}.Survival(f)
	eta2 := ssb / (ssb + ssw)

	pairs := len(names) * (len(names) - 1) / 2
	pairwise := make([]domain.PairwiseComparison, 0, pairs)
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			t, raw := welchT(groups[names[i]], groups[names[j]])
			pairwise = append(pairwise, domain.PairwiseComparison{
				GroupA:    names[i],
				GroupB:    names[j],
				T:         t,
				RawP:      raw,
				AdjustedP: bonferroni(raw, pairs),
			})
		}
	}

	a.logger.Debug("anova computed",
		zap.String("value", value),
		zap.String("group_by", groupBy),
		zap.Float64("f", f),
		zap.Float64("p", p),
		zap.Float64("eta_squared", eta2))
	return &domain.AnovaResult{
		Value:      value,
		GroupBy:    groupBy,
		F:          f,
		P:          p,
		DFBetween:  dfb,
		DFWithin:   dfw,
		EtaSquared: eta2,
		Magnitude:  ClassifyEtaSquared(eta2),
		Pairwise:   pairwise,
	}, nil
}

// ClassifyEtaSquared maps an eta-squared value to an effect magnitude:
// below 0.01 is small, below 0.06 is medium, 0.06 and above is large.
func ClassifyEtaSquared(v float64) string {
	switch {
	case v < 0.01:
		return domain.MagnitudeSmall
	case v < 0.06:
		return domain.MagnitudeMedium
	default:
		return domain.MagnitudeLarge
	}
}

// welchT runs a two-sided Welch two-sample t-test and returns the statistic
// and its raw p-value. Welch is used over a pooled-SD test so that groups
// with unequal spread do not bias the comparison.
func welchT(x, y []float64) (float64, float64) {
	mx, my := mean(x), mean(y)
	vx, vy := sampleVariance(x, mx), sampleVariance(y, my)
	nx, ny := float64(len(x)), float64(len(y))

	se := math.Sqrt(vx/nx + vy/ny)
	if se == 0 {
		if mx == my {
			return 0, 1
		}
		return math.Inf(sign(mx - my)), 0
	}
	t := (mx - my) / se

	num := (vx/nx + vy/ny) * (vx/nx + vy/ny)
	den := (vx/nx)*(vx/nx)/(nx-1) + (vy/ny)*(vy/ny)/(ny-1)
	df := num / den

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))
	return t, p
}

// bonferroni multiplies the raw p-value by the number of comparisons,
// capped at 1.
func bonferroni(p float64, comparisons int) float64 {
	adj := p * float64(comparisons)
	if adj > 1 {
		return 1
	}
	return adj
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func sampleVariance(vals []float64, m float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(vals)-1)
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
