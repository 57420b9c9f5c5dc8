// Package pipeline orchestrates one analysis run: obtain records, persist
// them, compute statistics and render the report artifacts.
package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/bwmarrin/snowflake"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talkincode/perfinsight/config"
	"github.com/talkincode/perfinsight/internal/analysis"
	"github.com/talkincode/perfinsight/internal/dataset"
	"github.com/talkincode/perfinsight/internal/domain"
	"github.com/talkincode/perfinsight/internal/ledger"
	"github.com/talkincode/perfinsight/internal/report"
	"github.com/talkincode/perfinsight/internal/synth"
	"github.com/talkincode/perfinsight/pkg/metrics"
)

// Event topics published during a run.
const (
	TopicDataset = "pipeline.dataset"
	TopicReport  = "pipeline.report"
)

// Pipeline runs the synthesize → persist → analyze → report sequence.
type Pipeline struct {
	cfg    *config.AppConfig
	bus    EventBus.Bus
	ledger *ledger.Ledger
	node   *snowflake.Node
	logger *zap.Logger
}

// New builds a pipeline. The bus and ledger may be nil.
func New(cfg *config.AppConfig, bus EventBus.Bus, led *ledger.Ledger) (*Pipeline, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: snowflake node")
	}
	return &Pipeline{
		cfg:    cfg,
		bus:    bus,
		ledger: led,
		node:   node,
		logger: zap.L(),
	}, nil
}

// Run executes one full pipeline pass and returns its run record. The
// returned record is also appended to the ledger when one is configured.
func (p *Pipeline) Run(ctx context.Context) (*domain.RunRecord, error) {
	rec := &domain.RunRecord{
		ID:        p.node.Generate().Int64(),
		Seed:      p.cfg.Synth.Seed,
		StartedAt: time.Now(),
	}

	result, err := p.execute(ctx, rec)
	rec.FinishedAt = time.Now()
	if err != nil {
		rec.Status = domain.RunStatusFailed
		rec.Message = err.Error()
	} else {
		rec.Status = domain.RunStatusOK
		rec.Rows = result.Rows
		rec.Outliers = result.Outliers
	}

	if p.ledger != nil {
		if lerr := p.ledger.Append(rec); lerr != nil {
			p.logger.Error("ledger append failed", zap.Error(lerr))
		}
	}
	metrics.SetGauge("perfinsight_run_millis", rec.FinishedAt.Sub(rec.StartedAt).Milliseconds())
	return rec, err
}

func (p *Pipeline) execute(ctx context.Context, rec *domain.RunRecord) (*domain.AnalysisResult, error) {
	records, outliers, err := p.obtainRecords()
	if err != nil {
		return nil, err
	}
	rec.DatasetPath = p.datasetPath()
	metrics.SetGauge("perfinsight_rows", int64(len(records)))
	metrics.SetGauge("perfinsight_outliers", int64(outliers))
	if p.bus != nil {
		p.bus.Publish(TopicDataset, len(records), outliers)
	}

	result := &domain.AnalysisResult{
		GeneratedAt: domain.DateTime{Time: time.Now()},
		Rows:        len(records),
		Outliers:    outliers,
		Seed:        p.cfg.Synth.Seed,
		DatasetPath: rec.DatasetPath,
	}
	if coverage, ok := timeCoverage(records); ok {
		result.Coverage = coverage
	} else {
		warning := "timestamp column missing or empty, skipping time coverage"
		result.Warnings = append(result.Warnings, warning)
		p.logger.Warn(warning)
	}

	analyzer := analysis.NewAnalyzer(p.logger)
	acfg := p.cfg.Analysis

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		summaries, err := p.groupSummaries(analyzer, records)
		if err != nil {
			return err
		}
		result.Summaries = summaries
		return nil
	})
	g.Go(func() error {
		corr, err := analyzer.CorrelationMatrix(records, acfg.CorrelationColumns)
		if err != nil {
			return err
		}
		result.Correlation = corr
		return nil
	})
	g.Go(func() error {
		threshold, err := analyzer.Threshold(records, acfg.ValueColumn, acfg.Percentile)
		if err != nil {
			return err
		}
		result.Threshold = threshold
		return nil
	})
	g.Go(func() error {
		anova, err := analyzer.OneWayANOVA(records, acfg.ValueColumn, acfg.GroupBy)
		if err != nil {
			return err
		}
		result.Anova = anova
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reportPath, err := p.render(result)
	if err != nil {
		return nil, err
	}
	rec.ReportPath = reportPath
	if p.bus != nil {
		p.bus.Publish(TopicReport, reportPath)
	}
	return result, nil
}

// obtainRecords loads the configured input CSV or synthesizes a fresh
// dataset and persists it.
func (p *Pipeline) obtainRecords() ([]domain.Observation, int, error) {
	if p.cfg.Dataset.Input != "" {
		records, err := dataset.Load(p.cfg.Dataset.Input)
		if err != nil {
			return nil, 0, err
		}
		if err := dataset.ValidateLabels(records, domain.ColTeam, p.cfg.Synth.Teams); err != nil {
			return nil, 0, err
		}
		if err := dataset.ValidateLabels(records, domain.ColShift, p.cfg.Synth.Shifts); err != nil {
			return nil, 0, err
		}
		return records, 0, nil
	}

	gen := synth.NewGenerator(p.cfg.Synth, p.logger)
	records, outliers, err := gen.Generate()
	if err != nil {
		return nil, 0, err
	}
	if err := dataset.Save(p.datasetPath(), records); err != nil {
		return nil, 0, err
	}
	return records, outliers, nil
}

// groupSummaries fans the per-metric summary computations out over a worker
// pool and collects them in metric column order.
func (p *Pipeline) groupSummaries(analyzer *analysis.Analyzer, records []domain.Observation) ([]domain.GroupSummary, error) {
	workers := p.cfg.Analysis.Workers
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, errors.Wrap(err, "summary pool")
	}
	defer pool.Release()

	out := make([]*domain.GroupSummary, len(domain.MetricColumns))
	errs := make([]error, len(domain.MetricColumns))
	var wg sync.WaitGroup
	for i, column := range domain.MetricColumns {
		i, column := i, column
		wg.Add(1)
		task := func() {
			defer wg.Done()
			out[i], errs[i] = analyzer.GroupSummary(records, p.cfg.Analysis.GroupBy, column, p.cfg.Analysis.SortAscending)
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			return nil, errors.Wrap(err, "summary submit")
		}
	}
	wg.Wait()

	summaries := make([]domain.GroupSummary, 0, len(out))
	for i := range out {
		if errs[i] != nil {
			return nil, errs[i]
		}
		summaries = append(summaries, *out[i])
	}
	return summaries, nil
}

func (p *Pipeline) render(result *domain.AnalysisResult) (string, error) {
	outputDir := p.cfg.Report.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(p.cfg.System.Workdir, "report")
	}
	renderer := report.NewRenderer(outputDir)

	var reportPath string
	if p.cfg.Report.HTML {
		path, err := renderer.RenderHTML(result)
		if err != nil {
			return "", err
		}
		reportPath = path
	}
	if p.cfg.Report.Excel {
		if _, err := renderer.RenderWorkbook(result); err != nil {
			return "", err
		}
	}
	if p.cfg.Report.JSON {
		path, err := renderer.WriteJSON(result)
		if err != nil {
			return "", err
		}
		if reportPath == "" {
			reportPath = path
		}
	}
	return reportPath, nil
}

func (p *Pipeline) datasetPath() string {
	if p.cfg.Dataset.Input != "" {
		return p.cfg.Dataset.Input
	}
	name := p.cfg.Dataset.Filename
	if name == "" {
		name = "observations.csv"
	}
	return filepath.Join(p.cfg.System.Workdir, "data", name)
}

// timeCoverage reports the timestamp range of the dataset; ok is false when
// no row carries a timestamp.
func timeCoverage(records []domain.Observation) (*domain.TimeRange, bool) {
	var from, to time.Time
	for i := range records {
		ts := records[i].Timestamp.Time
		if ts.IsZero() {
			continue
		}
		if from.IsZero() || ts.Before(from) {
			from = ts
		}
		if ts.After(to) {
			to = ts
		}
	}
	if from.IsZero() {
		return nil, false
	}
	return &domain.TimeRange{
		From: domain.DateTime{Time: from},
		To:   domain.DateTime{Time: to},
	}, true
}
