package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wyfcoding/netsettlement/internal/netting/application"
	"github.com/wyfcoding/netsettlement/internal/netting/domain"
	"github.com/wyfcoding/netsettlement/internal/netting/interfaces/cli"
	"github.com/wyfcoding/netsettlement/pkg/config"
	"github.com/wyfcoding/netsettlement/pkg/logger"
	"github.com/wyfcoding/netsettlement/pkg/metrics"
	"github.com/wyfcoding/netsettlement/pkg/utils"
)

var (
	configPath  = flag.String("config", config.GetEnv("APP_CONFIG", "configs/netting/config.toml"), "config file path; empty uses defaults and APP_* env only")
	format      = flag.String("format", cli.FormatText, "output format: text or json")
	cycleID     = flag.String("cycle", "", "run only the cycle with this id")
	holdMetrics = flag.Bool("hold-metrics", false, "keep the metrics endpoint up after printing until SIGINT/SIGTERM")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		logger.Fatal(context.Background(), "netting failed", "error", err)
	}
}

func run() error {
	// 1. Config
	load := config.Load
	if *configPath == "" {
		load = config.LoadWithDefaults
	}
	cfg, err := load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Logger
	if err := logger.Init(cfg.Logger); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Metrics
	var collector metrics.Collector = metrics.NopCollector{}
	var srv *http.Server
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		m := metrics.New(cfg.ServiceName)
		if err := m.Register(reg); err != nil {
			return err
		}
		collector = metrics.NewPrometheusCollector(m)

		srv = metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path, reg)
		defer func() {
			if *holdMetrics {
				return
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// 4. Application
	ordering, err := domain.ParseOrdering(cfg.Netting.Ordering)
	if err != nil {
		return err
	}
	ids, err := utils.NewIDGenerator(cfg.Netting.NodeID)
	if err != nil {
		return err
	}
	svc := application.NewNettingService(application.Options{
		Ordering:     ordering,
		Strict:       cfg.Netting.Strict,
		Multilateral: cfg.Netting.Multilateral,
		Participants: cfg.Netting.Participants,
		Concurrency:  cfg.Netting.Concurrency,

		AutoAcceptThreshold: cfg.Netting.AutoAcceptThreshold,
	}, collector, ids)

	// 5. Cycles
	cycles, err := cli.SelectCycle(cfg.Cycles, *cycleID)
	if err != nil {
		return err
	}
	cmds, err := cli.BuildCommands(cycles, cfg.Netting.Scale)
	if err != nil {
		return err
	}
	logger.Info(ctx, "netting service starting",
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
		"cycles", len(cmds),
		"ordering", ordering.String(),
		"multilateral", cfg.Netting.Multilateral,
	)

	results, err := svc.RunCycles(ctx, cmds)
	if err != nil {
		return err
	}

	// 6. Output
	if err := cli.NewPrinter(os.Stdout, cfg.Netting.Currency, cfg.Netting.Scale).Print(*format, results); err != nil {
		return err
	}

	if srv != nil && *holdMetrics {
		logger.Info(ctx, "serving metrics until interrupted", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
		return metrics.ServeUntilDone(ctx, srv, 5*time.Second)
	}
	return nil
}
