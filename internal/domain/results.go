package domain

// SummaryRow is one group's descriptive statistics for a value column.
// Std is NaN (null in JSON) when the group has a single member.
type SummaryRow struct {
	Group  string  `json:"group"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    Metric  `json:"std"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// GroupSummary holds per-group statistics of one value column, ordered by
// mean (descending by default).
type GroupSummary struct {
	GroupBy string       `json:"group_by"`
	Value   string       `json:"value"`
	Rows    []SummaryRow `json:"rows"`
}

// CorrelationMatrix is a symmetric Pearson matrix over the named columns,
// computed from complete observations only.
type CorrelationMatrix struct {
	Columns      []string   `json:"columns"`
	Values       [][]Metric `json:"values"`
	CompleteRows int        `json:"complete_rows"`
}

// At returns the correlation between two columns by name.
func (m *CorrelationMatrix) At(a, b string) (float64, bool) {
	ai, bi := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ai = i
		}
		if c == b {
			bi = i
		}
	}
	if ai < 0 || bi < 0 {
		return 0, false
	}
	return float64(m.Values[ai][bi]), true
}

// Threshold is a quantile cut on one column and the rows strictly above it.
type Threshold struct {
	Column     string        `json:"column"`
	Percentile float64       `json:"percentile"`
	Value      float64       `json:"value"`
	Exceeding  []Observation `json:"exceeding"`
}

// PairwiseComparison is one Bonferroni-adjusted two-sample comparison.
type PairwiseComparison struct {
	GroupA    string  `json:"group_a"`
	GroupB    string  `json:"group_b"`
	T         float64 `json:"t"`
	RawP      float64 `json:"raw_p"`
	AdjustedP float64 `json:"adjusted_p"`
}

// Effect size magnitudes for eta-squared.
const (
	MagnitudeSmall  = "small"
	MagnitudeMedium = "medium"
	MagnitudeLarge  = "large"
)

// AnovaResult is a one-way ANOVA of a value column across groups.
type AnovaResult struct {
	Value      string               `json:"value"`
	GroupBy    string               `json:"group_by"`
	F          float64              `json:"f"`
	P          float64              `json:"p"`
	DFBetween  int                  `json:"df_between"`
	DFWithin   int                  `json:"df_within"`
	EtaSquared float64              `json:"eta_squared"`
	Magnitude  string               `json:"magnitude"`
	Pairwise   []PairwiseComparison `json:"pairwise"`
}

// TimeRange is the timestamp coverage of a dataset.
type TimeRange struct {
	From DateTime `json:"from"`
	To   DateTime `json:"to"`
}

// AnalysisResult bundles everything one pipeline run computed.
type AnalysisResult struct {
	GeneratedAt  DateTime           `json:"generated_at"`
	Rows         int                `json:"rows"`
	Outliers     int                `json:"outliers"`
	Seed         uint64             `json:"seed"`
	Coverage     *TimeRange         `json:"coverage,omitempty"`
	Summaries    []GroupSummary     `json:"summaries"`
	Correlation  *CorrelationMatrix `json:"correlation,omitempty"`
	Threshold    *Threshold         `json:"threshold,omitempty"`
	Anova        *AnovaResult       `json:"anova,omitempty"`
	Warnings     []string           `json:"warnings,omitempty"`
	DatasetPath  string             `json:"dataset_path,omitempty"`
}
