package app

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"

	"github.com/talkincode/perfinsight/config"
	"github.com/talkincode/perfinsight/internal/ledger"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// BusProvider provides the internal event bus
type BusProvider interface {
	Bus() EventBus.Bus
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// LedgerProvider provides run history access
type LedgerProvider interface {
	Ledger() *ledger.Ledger
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	ConfigProvider
	BusProvider
	SchedulerProvider
	LedgerProvider

	// RunOnce executes a single pipeline pass
	RunOnce(ctx context.Context) error
}
