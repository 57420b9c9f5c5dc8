package report

import (
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/pkg/errors"

	"github.com/talkincode/perfinsight/internal/domain"
)

// RenderWorkbook writes the summary workbook and returns its path.
func (r *Renderer) RenderWorkbook(res *domain.AnalysisResult) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create report dir %s", r.outputDir)
	}
	f := excelize.NewFile()

	row := 1
	for _, summary := range res.Summaries {
		f.SetCellValue("Sheet1", axis(0, row), summary.Value+" by "+summary.GroupBy)
		row++
		for c, h := range []string{summary.GroupBy, "count", "mean", "sd", "median", "min", "max"} {
			f.SetCellValue("Sheet1", axis(c, row), h)
		}
		row++
		for _, s := range summary.Rows {
			f.SetCellValue("Sheet1", axis(0, row), s.Group)
			f.SetCellValue("Sheet1", axis(1, row), s.Count)
			f.SetCellValue("Sheet1", axis(2, row), s.Mean)
			setCellFloat(f, axis(3, row), float64(s.Std))
			f.SetCellValue("Sheet1", axis(4, row), s.Median)
			f.SetCellValue("Sheet1", axis(5, row), s.Min)
			f.SetCellValue("Sheet1", axis(6, row), s.Max)
			row++
		}
		row++
	}

	if res.Correlation != nil {
		f.NewSheet("Correlation")
		for i, col := range res.Correlation.Columns {
			f.SetCellValue("Correlation", axis(i+1, 1), col)
			f.SetCellValue("Correlation", axis(0, i+2), col)
			for j, v := range res.Correlation.Values[i] {
				f.SetCellValue("Correlation", axis(j+1, i+2), float64(v))
			}
		}
	}

	if res.Anova != nil {
		f.NewSheet("ANOVA")
		for c, h := range []string{"value", "group_by", "F", "p", "eta_squared", "magnitude"} {
			f.SetCellValue("ANOVA", axis(c, 1), h)
		}
		f.SetCellValue("ANOVA", axis(0, 2), res.Anova.Value)
		f.SetCellValue("ANOVA", axis(1, 2), res.Anova.GroupBy)
		f.SetCellValue("ANOVA", axis(2, 2), res.Anova.F)
		f.SetCellValue("ANOVA", axis(3, 2), res.Anova.P)
		f.SetCellValue("ANOVA", axis(4, 2), res.Anova.EtaSquared)
		f.SetCellValue("ANOVA", axis(5, 2), res.Anova.Magnitude)
		for i, pc := range res.Anova.Pairwise {
			f.SetCellValue("ANOVA", axis(0, i+4), pc.GroupA+" vs "+pc.GroupB)
			f.SetCellValue("ANOVA", axis(1, i+4), pc.T)
			f.SetCellValue("ANOVA", axis(2, i+4), pc.RawP)
			f.SetCellValue("ANOVA", axis(3, i+4), pc.AdjustedP)
		}
	}

	path := filepath.Join(r.outputDir, ExcelFilename)
	if err := f.SaveAs(path); err != nil {
		return "", errors.Wrapf(err, "write workbook %s", path)
	}
	return path, nil
}

// setCellFloat writes a float cell, leaving undefined values blank.
func setCellFloat(f *excelize.File, cell string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	f.SetCellValue("Sheet1", cell, v)
}

func axis(col, row int) string {
	return excelize.ToAlphaString(col) + strconv.Itoa(row)
}
