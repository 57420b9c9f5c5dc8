package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type SystemConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// Range is a closed numeric interval used for outlier perturbation.
type Range struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// SynthConfig controls the dataset synthesizer. Distribution parameter maps
// are decoded per metric column by the synth package.
type SynthConfig struct {
	Rows              int                               `yaml:"rows"`
	Seed              uint64                            `yaml:"seed"`
	StartTime         string                            `yaml:"start_time"`
	IntervalSeconds   int                               `yaml:"interval_seconds"`
	Teams             []string                          `yaml:"teams"`
	Shifts            []string                          `yaml:"shifts"`
	OutlierFraction   float64                           `yaml:"outlier_fraction"`
	OutlierMultiplier Range                             `yaml:"outlier_multiplier"`
	ErrorRatePerturb  Range                             `yaml:"error_rate_perturb"`
	Distributions     map[string]map[string]interface{} `yaml:"distributions"`
}

// DatasetConfig controls where records come from and where they land.
// Input, when set, points at an existing CSV to analyze instead of
// synthesizing a fresh dataset.
type DatasetConfig struct {
	Input    string `yaml:"input"`
	Filename string `yaml:"filename"`
}

type AnalysisConfig struct {
	GroupBy            string   `yaml:"group_by"`
	ValueColumn        string   `yaml:"value_column"`
	CorrelationColumns []string `yaml:"correlation_columns"`
	Percentile         float64  `yaml:"percentile"`
	SortAscending      bool     `yaml:"sort_ascending"`
	Workers            int      `yaml:"workers"`
}

type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
	HTML      bool   `yaml:"html"`
	Excel     bool   `yaml:"excel"`
	JSON      bool   `yaml:"json"`
}

type ScheduleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Spec    string `yaml:"spec"`
}

type LedgerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Filename string `yaml:"filename"`
}

type AppConfig struct {
	System   SystemConfig   `yaml:"system"`
	Logger   LoggerConfig   `yaml:"logger"`
	Synth    SynthConfig    `yaml:"synth"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Report   ReportConfig   `yaml:"report"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Ledger   LedgerConfig   `yaml:"ledger"`
}

// DefaultConfig returns a runnable configuration; every field can be
// overridden by the config file and a few by environment variables.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		System: SystemConfig{
			Appid:    "perfinsight",
			Location: "UTC",
			Workdir:  "/var/perfinsight",
		},
		Logger: LoggerConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/perfinsight/perfinsight.log",
		},
		Synth: SynthConfig{
			Rows:              1000,
			Seed:              42,
			StartTime:         "2025-01-01 00:00:00",
			IntervalSeconds:   60,
			Teams:             []string{"alpha", "bravo", "charlie", "delta"},
			Shifts:            []string{"day", "night"},
			OutlierFraction:   0.05,
			OutlierMultiplier: Range{Low: 3, High: 6},
			ErrorRatePerturb:  Range{Low: 0.2, High: 0.5},
		},
		Dataset: DatasetConfig{
			Filename: "observations.csv",
		},
		Analysis: AnalysisConfig{
			GroupBy:            "team",
			ValueColumn:        "response_time_ms",
			CorrelationColumns: []string{"response_time_ms", "throughput", "error_rate", "performance_score"},
			Percentile:         0.95,
			Workers:            4,
		},
		Report: ReportConfig{
			OutputDir: "",
			HTML:      true,
			Excel:     true,
			JSON:      true,
		},
		Schedule: ScheduleConfig{
			Enabled: false,
			Spec:    "@every 1h",
		},
		Ledger: LedgerConfig{
			Enabled:  true,
			Filename: "",
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults and applies
// environment overrides. An empty path keeps the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("PERFINSIGHT_WORKDIR"); v != "" {
		cfg.System.Workdir = v
	}
	if v := os.Getenv("PERFINSIGHT_LOGGER_MODE"); v != "" {
		cfg.Logger.Mode = v
	}
	if v := os.Getenv("PERFINSIGHT_SEED"); v != "" {
		cfg.Synth.Seed = cast.ToUint64(v)
	}
	if v := os.Getenv("PERFINSIGHT_ROWS"); v != "" {
		cfg.Synth.Rows = cast.ToInt(v)
	}
	if v := os.Getenv("PERFINSIGHT_SCHEDULE"); v != "" {
		cfg.Schedule.Enabled = cast.ToBool(v)
	}
}
