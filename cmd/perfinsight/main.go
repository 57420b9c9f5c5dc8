package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/talkincode/perfinsight/config"
	"github.com/talkincode/perfinsight/internal/app"
)

var (
	configFile  = flag.String("c", "", "config file path")
	showDefault = flag.Bool("x", false, "print the default config and exit")
)

func main() {
	flag.Parse()

	if *showDefault {
		out, err := yaml.Marshal(config.DefaultConfig())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Print(string(out))
		return
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer application.Release()

	if err := application.RunOnce(context.Background()); err != nil {
		zap.S().Errorf("run failed: %s", err.Error())
		application.Release()
		os.Exit(1)
	}

	// In scheduled mode keep the process alive for the cron re-runs;
	// otherwise this is a batch run that exits 0.
	if cfg.Schedule.Enabled {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		zap.S().Info("shutting down")
	}
}
