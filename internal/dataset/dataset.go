// Package dataset persists observation records as CSV with a header row and
// provides column access helpers for the analysis packages.
package dataset

import (
	"math"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/talkincode/perfinsight/internal/domain"
)

// Save writes records to a CSV file, creating parent directories.
func Save(path string, records []domain.Observation) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create dataset dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create dataset file %s", path)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&records, f); err != nil {
		return errors.Wrapf(err, "write dataset %s", path)
	}
	return nil
}

// Load reads records from a CSV file.
func Load(path string) ([]domain.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()
	var records []domain.Observation
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, errors.Wrapf(err, "read dataset %s", path)
	}
	return records, nil
}

// ValidateLabels checks that every value of a group column belongs to the
// allowed set.
func ValidateLabels(records []domain.Observation, column string, allowed []string) error {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	for i := range records {
		label, err := records[i].Label(column)
		if err != nil {
			return err
		}
		if _, ok := set[label]; !ok {
			return errors.Errorf("row %d: label %q is not in the %s set %v", i+1, label, column, allowed)
		}
	}
	return nil
}

// Column extracts one numeric column; missing cells come through as NaN.
func Column(records []domain.Observation, column string) ([]float64, error) {
	out := make([]float64, len(records))
	for i := range records {
		v, err := records[i].MetricValue(column)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Labels extracts one categorical column.
func Labels(records []domain.Observation, column string) ([]string, error) {
	out := make([]string, len(records))
	for i := range records {
		label, err := records[i].Label(column)
		if err != nil {
			return nil, err
		}
		out[i] = label
	}
	return out, nil
}

// Frame builds a dataframe over the selected numeric columns.
func Frame(records []domain.Observation, columns []string) (dataframe.DataFrame, error) {
	cols := make([]series.Series, 0, len(columns))
	for _, name := range columns {
		values, err := Column(records, name)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		cols = append(cols, series.New(values, series.Float, name))
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "build dataframe")
	}
	return df, nil
}

// CompleteRows returns the row-major values of the selected columns for rows
// with no missing value among them (complete observations policy).
func CompleteRows(records []domain.Observation, columns []string) ([][]float64, error) {
	df, err := Frame(records, columns)
	if err != nil {
		return nil, err
	}
	rows := make([][]float64, 0, df.Nrow())
	for r := 0; r < df.Nrow(); r++ {
		row := make([]float64, df.Ncol())
		complete := true
		for c := 0; c < df.Ncol(); c++ {
			v := df.Elem(r, c).Float()
			if math.IsNaN(v) {
				complete = false
				break
			}
			row[c] = v
		}
		if complete {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
