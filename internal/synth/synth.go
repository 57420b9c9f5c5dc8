// Package synth draws the sample operational performance dataset from
// parametric distributions and injects outliers into a fixed fraction of rows.
package synth

import (
	"math"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/talkincode/perfinsight/config"
	"github.com/talkincode/perfinsight/internal/domain"
)

// LogNormalParams parameterize the response-time distribution.
type LogNormalParams struct {
	MeanLog float64 `mapstructure:"meanlog"`
	SdLog   float64 `mapstructure:"sdlog"`
}

// PoissonParams parameterize the throughput distribution.
type PoissonParams struct {
	Lambda float64 `mapstructure:"lambda"`
}

// BetaParams parameterize the error-rate distribution.
type BetaParams struct {
	Alpha float64 `mapstructure:"alpha"`
	Beta  float64 `mapstructure:"beta"`
}

// NormalParams parameterize the performance-score distribution.
type NormalParams struct {
	Mean float64 `mapstructure:"mean"`
	Sd   float64 `mapstructure:"sd"`
}

type params struct {
	responseTime LogNormalParams
	throughput   PoissonParams
	errorRate    BetaParams
	score        NormalParams
}

func defaultParams() params {
	return params{
		responseTime: LogNormalParams{MeanLog: 5.0, SdLog: 0.5},
		throughput:   PoissonParams{Lambda: 120},
		errorRate:    BetaParams{Alpha: 2, Beta: 50},
		score:        NormalParams{Mean: 75, Sd: 10},
	}
}

// Generator produces observation records. One seeded source feeds every
// sampler in a fixed per-row order, so a seed fully determines the dataset.
type Generator struct {
	cfg    config.SynthConfig
	logger *zap.Logger
}

func NewGenerator(cfg config.SynthConfig, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.L()
	}
	return &Generator{cfg: cfg, logger: logger}
}

// Generate returns the synthesized records and the number of outlier rows.
func (g *Generator) Generate() ([]domain.Observation, int, error) {
	cfg := g.cfg
	if cfg.Rows <= 0 {
		return nil, 0, errors.Errorf("synth: rows must be positive, got %d", cfg.Rows)
	}
	if cfg.OutlierFraction < 0 || cfg.OutlierFraction > 1 {
		return nil, 0, errors.Errorf("synth: outlier fraction must be in [0,1], got %g", cfg.OutlierFraction)
	}
	if cfg.OutlierMultiplier.High < cfg.OutlierMultiplier.Low {
		return nil, 0, errors.New("synth: outlier multiplier range is inverted")
	}
	if cfg.ErrorRatePerturb.High < cfg.ErrorRatePerturb.Low {
		return nil, 0, errors.New("synth: error rate perturbation range is inverted")
	}
	if len(cfg.Teams) == 0 || len(cfg.Shifts) == 0 {
		return nil, 0, errors.New("synth: team and shift label sets must not be empty")
	}

	pp, err := g.resolveParams()
	if err != nil {
		return nil, 0, err
	}

	start := time.Time{}
	if cfg.StartTime != "" {
		start, err = time.Parse(domain.TimeLayout, cfg.StartTime)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "synth: parse start_time %q", cfg.StartTime)
		}
	}
	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	src := rand.NewSource(cfg.Seed)
	rng := rand.New(src)
	respDist := distuv.LogNormal{Mu: pp.responseTime.MeanLog, Sigma: pp.responseTime.SdLog, Src: src}
	tputDist := distuv.Poisson{Lambda: pp.throughput.Lambda, Src: src}
	errDist := distuv.Beta{Alpha: pp.errorRate.Alpha, Beta: pp.errorRate.Beta, Src: src}
	scoreDist := distuv.Normal{Mu: pp.score.Mean, Sigma: pp.score.Sd, Src: src}

	records := make([]domain.Observation, cfg.Rows)
	for i := 0; i < cfg.Rows; i++ {
		records[i] = domain.Observation{
			Seq:              i + 1,
			Timestamp:        domain.DateTime{Time: start.Add(time.Duration(i) * interval)},
			Team:             cfg.Teams[rng.Intn(len(cfg.Teams))],
			Shift:            cfg.Shifts[rng.Intn(len(cfg.Shifts))],
			ResponseTimeMs:   domain.Metric(respDist.Rand()),
			Throughput:       domain.Metric(tputDist.Rand()),
			ErrorRate:        domain.Metric(errDist.Rand()),
			PerformanceScore: domain.Metric(scoreDist.Rand()),
		}
	}

	outliers := int(math.Round(float64(cfg.Rows) * cfg.OutlierFraction))
	if outliers > cfg.Rows {
		outliers = cfg.Rows
	}
	for _, idx := range rng.Perm(cfg.Rows)[:outliers] {
		factor := uniform(rng, cfg.OutlierMultiplier)
		bump := uniform(rng, cfg.ErrorRatePerturb)
		records[idx].ResponseTimeMs = domain.Metric(float64(records[idx].ResponseTimeMs) * factor)
		records[idx].ErrorRate = domain.Metric(float64(records[idx].ErrorRate) + bump)
	}

	g.logger.Info("dataset synthesized",
		zap.Int("rows", cfg.Rows),
		zap.Int("outliers", outliers),
		zap.Uint64("seed", cfg.Seed))
	return records, outliers, nil
}

func uniform(rng *rand.Rand, r config.Range) float64 {
	return r.Low + rng.Float64()*(r.High-r.Low)
}

// resolveParams overlays configured distribution parameter maps onto the
// defaults and validates them.
func (g *Generator) resolveParams() (params, error) {
	pp := defaultParams()
	for column, raw := range g.cfg.Distributions {
		var err error
		switch column {
		case domain.ColResponseTime:
			err = decodeParams(raw, &pp.responseTime)
		case domain.ColThroughput:
			err = decodeParams(raw, &pp.throughput)
		case domain.ColErrorRate:
			err = decodeParams(raw, &pp.errorRate)
		case domain.ColPerformanceScore:
			err = decodeParams(raw, &pp.score)
		default:
			err = errors.Errorf("no distribution defined for column %q", column)
		}
		if err != nil {
			return pp, errors.Wrap(err, "synth: distribution config")
		}
	}
	if pp.responseTime.SdLog <= 0 {
		return pp, errors.New("synth: lognormal sdlog must be positive")
	}
	if pp.throughput.Lambda <= 0 {
		return pp, errors.New("synth: poisson lambda must be positive")
	}
	if pp.errorRate.Alpha <= 0 || pp.errorRate.Beta <= 0 {
		return pp, errors.New("synth: beta shape parameters must be positive")
	}
	if pp.score.Sd <= 0 {
		return pp, errors.New("synth: normal sd must be positive")
	}
	return pp, nil
}

func decodeParams(raw map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
