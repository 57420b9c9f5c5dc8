// Package report renders the analysis results into static artifacts: a
// templated HTML report, an Excel workbook and a JSON results file.
package report

import (
	"html/template"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/talkincode/perfinsight/internal/domain"
)

const (
	HTMLFilename  = "report.html"
	ExcelFilename = "summary.xlsx"
	JSONFilename  = "results.json"
)

// Renderer writes report artifacts under a fixed output directory.
type Renderer struct {
	outputDir string
	printer   *message.Printer
}

func NewRenderer(outputDir string) *Renderer {
	return &Renderer{
		outputDir: outputDir,
		printer:   message.NewPrinter(language.English),
	}
}

// RenderHTML writes the HTML report and returns its path.
func (r *Renderer) RenderHTML(res *domain.AnalysisResult) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create report dir %s", r.outputDir)
	}
	path := filepath.Join(r.outputDir, HTMLFilename)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "create report %s", path)
	}
	defer f.Close()

	tpl := template.Must(template.New("report").Funcs(template.FuncMap{
		"fnum": r.fnum,
		"fint": func(v int) string { return r.printer.Sprintf("%d", v) },
		"fpct": func(v float64) string { return r.printer.Sprintf("%.1f%%", v*100) },
	}).Parse(reportTemplate))

	if err := tpl.Execute(f, res); err != nil {
		return "", errors.Wrap(err, "render report")
	}
	return path, nil
}

// fnum formats a float for display; undefined values render as n/a.
func (r *Renderer) fnum(v interface{}) string {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case domain.Metric:
		f = float64(x)
	default:
		return "n/a"
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	return r.printer.Sprintf("%.3f", f)
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Performance Analysis Report</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { border-bottom: 2px solid #444; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #999; padding: 4px 10px; text-align: right; }
th { background: #eee; }
td:first-child, th:first-child { text-align: left; }
.warn { color: #a60; }
</style>
</head>
<body>
<h1>Performance Analysis Report</h1>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}} ·
{{fint .Rows}} rows · {{fint .Outliers}} injected outliers · seed {{.Seed}}</p>

{{range .Warnings}}<p class="warn">Warning: {{.}}</p>{{end}}

{{if .Coverage}}
<h2>Time coverage</h2>
<p>{{.Coverage.From.Format "2006-01-02 15:04:05"}} — {{.Coverage.To.Format "2006-01-02 15:04:05"}}</p>
{{end}}

{{range .Summaries}}
<h2>{{.Value}} by {{.GroupBy}}</h2>
<table>
<tr><th>{{.GroupBy}}</th><th>count</th><th>mean</th><th>sd</th><th>median</th><th>min</th><th>max</th></tr>
{{range .Rows}}
<tr><td>{{.Group}}</td><td>{{fint .Count}}</td><td>{{fnum .Mean}}</td><td>{{fnum .Std}}</td><td>{{fnum .Median}}</td><td>{{fnum .Min}}</td><td>{{fnum .Max}}</td></tr>
{{end}}
</table>
{{end}}

{{if .Correlation}}
<h2>Correlation matrix ({{fint .Correlation.CompleteRows}} complete observations)</h2>
<table>
<tr><th></th>{{range .Correlation.Columns}}<th>{{.}}</th>{{end}}</tr>
{{$m := .Correlation}}
{{range $i, $row := $m.Values}}
<tr><td>{{index $m.Columns $i}}</td>{{range $row}}<td>{{fnum .}}</td>{{end}}</tr>
{{end}}
</table>
{{end}}

{{if .Threshold}}
<h2>Outliers above the {{fpct .Threshold.Percentile}} quantile of {{.Threshold.Column}}</h2>
<p>Threshold {{fnum .Threshold.Value}} · {{fint (len .Threshold.Exceeding)}} rows exceed it</p>
{{end}}

{{if .Anova}}
<h2>One-way ANOVA: {{.Anova.Value}} across {{.Anova.GroupBy}}</h2>
<p>F({{.Anova.DFBetween}}, {{.Anova.DFWithin}}) = {{fnum .Anova.F}},
p = {{fnum .Anova.P}}, eta-squared = {{fnum .Anova.EtaSquared}} ({{.Anova.Magnitude}})</p>
<table>
<tr><th>pair</th><th>t</th><th>raw p</th><th>adjusted p</th></tr>
{{range .Anova.Pairwise}}
<tr><td>{{.GroupA}} vs {{.GroupB}}</td><td>{{fnum .T}}</td><td>{{fnum .RawP}}</td><td>{{fnum .AdjustedP}}</td></tr>
{{end}}
</table>
{{end}}

</body>
</html>
`
