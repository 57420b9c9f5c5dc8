package app

import (
	"context"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/talkincode/perfinsight/config"
	"github.com/talkincode/perfinsight/internal/ledger"
	"github.com/talkincode/perfinsight/internal/pipeline"
	"github.com/talkincode/perfinsight/pkg/metrics"
)

type Application struct {
	appConfig *config.AppConfig
	bus       EventBus.Bus
	sched     *cron.Cron
	runLedger *ledger.Ledger
	pipe      *pipeline.Pipeline
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider    = (*Application)(nil)
	_ BusProvider       = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ LedgerProvider    = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Ledger() *ledger.Ledger {
	return a.runLedger
}

func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	// Initialize metrics with workdir convention
	if err := metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	if cfg.Ledger.Enabled {
		path := cfg.Ledger.Filename
		if path == "" {
			path = filepath.Join(cfg.System.Workdir, "runs.db")
		}
		a.runLedger, err = ledger.Open(path)
		if err != nil {
			return err
		}
		zap.S().Infof("Run ledger opened at %s", path)
	}

	a.bus = EventBus.New()
	a.subscribeEvents()

	a.pipe, err = pipeline.New(cfg, a.bus, a.runLedger)
	if err != nil {
		return err
	}

	a.initJob()
	return nil
}

// subscribeEvents wires the pipeline event topics to the log.
func (a *Application) subscribeEvents() {
	_ = a.bus.Subscribe(pipeline.TopicDataset, func(rows, outliers int) {
		zap.L().Info("dataset ready", zap.Int("rows", rows), zap.Int("outliers", outliers))
	})
	_ = a.bus.Subscribe(pipeline.TopicReport, func(path string) {
		zap.L().Info("report rendered", zap.String("path", path))
	})
}

// RunOnce executes a single pipeline pass.
func (a *Application) RunOnce(ctx context.Context) error {
	rec, err := a.pipe.Run(ctx)
	if err != nil {
		return err
	}
	zap.L().Info("run completed",
		zap.Int64("run_id", rec.ID),
		zap.Int("rows", rec.Rows),
		zap.Int("outliers", rec.Outliers),
		zap.String("report", rec.ReportPath))
	return nil
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.runLedger != nil {
		_ = a.runLedger.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
