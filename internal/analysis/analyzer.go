// Package analysis implements the statistical computations of the pipeline:
// per-group summaries, Pearson correlation over complete observations,
// quantile thresholds and one-way ANOVA with pairwise comparisons.
package analysis

import "go.uber.org/zap"

// Analyzer runs statistical computations over observation records. All
// methods are pure with respect to their inputs and safe to call
// independently.
type Analyzer struct {
	logger *zap.Logger
}

func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.L()
	}
	return &Analyzer{logger: logger}
}
