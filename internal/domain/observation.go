package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
)

// TimeLayout is the canonical timestamp form used in dataset files.
const TimeLayout = "2006-01-02 15:04:05"

// Dataset column names.
const (
	ColSeq              = "seq"
	ColTimestamp        = "timestamp"
	ColTeam             = "team"
	ColShift            = "shift"
	ColResponseTime     = "response_time_ms"
	ColThroughput       = "throughput"
	ColErrorRate        = "error_rate"
	ColPerformanceScore = "performance_score"
)

// MetricColumns lists the numeric columns of an observation in file order.
var MetricColumns = []string{
	ColResponseTime,
	ColThroughput,
	ColErrorRate,
	ColPerformanceScore,
}

// GroupColumns lists the categorical columns of an observation.
var GroupColumns = []string{ColTeam, ColShift}

// DateTime renders as TimeLayout in CSV and accepts lenient input formats.
type DateTime struct {
	time.Time
}

func (d DateTime) MarshalCSV() (string, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(TimeLayout), nil
}

func (d *DateTime) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(TimeLayout, value); err == nil {
		d.Time = t
		return nil
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return errors.Wrapf(err, "parse timestamp %q", value)
	}
	d.Time = t
	return nil
}

// Metric is a numeric cell. Missing values are carried as NaN, render as an
// empty CSV cell and as null in JSON.
type Metric float64

func (m Metric) IsMissing() bool {
	return math.IsNaN(float64(m))
}

func (m Metric) MarshalCSV() (string, error) {
	if m.IsMissing() {
		return "", nil
	}
	return strconv.FormatFloat(float64(m), 'g', -1, 64), nil
}

func (m *Metric) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "na") || strings.EqualFold(value, "nan") {
		*m = Metric(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return errors.Wrapf(err, "parse numeric cell %q", value)
	}
	*m = Metric(f)
	return nil
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if m.IsMissing() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(m), 'g', -1, 64)), nil
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*m = Metric(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*m = Metric(f)
	return nil
}

// Observation is one synthesized performance record. Rows are generated once
// per run, persisted to CSV and consumed read-only afterwards.
type Observation struct {
	Seq              int      `csv:"seq" json:"seq"`
	Timestamp        DateTime `csv:"timestamp" json:"timestamp"`
	Team             string   `csv:"team" json:"team"`
	Shift            string   `csv:"shift" json:"shift"`
	ResponseTimeMs   Metric   `csv:"response_time_ms" json:"response_time_ms"`
	Throughput       Metric   `csv:"throughput" json:"throughput"`
	ErrorRate        Metric   `csv:"error_rate" json:"error_rate"`
	PerformanceScore Metric   `csv:"performance_score" json:"performance_score"`
}

// MetricValue returns the named numeric column of the observation.
func (o *Observation) MetricValue(column string) (float64, error) {
	switch column {
	case ColResponseTime:
		return float64(o.ResponseTimeMs), nil
	case ColThroughput:
		return float64(o.Throughput), nil
	case ColErrorRate:
		return float64(o.ErrorRate), nil
	case ColPerformanceScore:
		return float64(o.PerformanceScore), nil
	}
	return 0, errors.Errorf("unknown numeric column %q", column)
}

// Label returns the named categorical column of the observation.
func (o *Observation) Label(column string) (string, error) {
	switch column {
	case ColTeam:
		return o.Team, nil
	case ColShift:
		return o.Shift, nil
	}
	return "", errors.Errorf("unknown group column %q", column)
}
