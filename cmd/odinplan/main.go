// Command odinplan plans an Odin detector deployment and writes the
// startup scripts and configuration files for it.
//
// Usage:
//
//	odinplan -config build.yaml [-out dir] [-bundle build.tar.lz4] [-metrics-file plan.prom]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/odinplan"
	"github.com/arloliu/odinplan/internal/logging"
	"github.com/arloliu/odinplan/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML build description (required)")
	outDir := flag.String("out", "", "Output directory (overrides output.dir)")
	bundle := flag.String("bundle", "", "Write an lz4-compressed tar of every artifact to this path")
	metricsFile := flag.String("metrics-file", "", "Write planning metrics in textfile format to this path")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "odinplan: -config is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, *outDir, *bundle, *metricsFile, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "odinplan: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, outDir, bundle, metricsFile, logLevel string) error {
	logger, err := logging.NewText(os.Stderr, logLevel)
	if err != nil {
		return err
	}

	cfg, err := odinplan.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if bundle != "" {
		cfg.Output.Bundle = bundle
	}
	if metricsFile != "" {
		cfg.Output.MetricsFile = metricsFile
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheus(reg, "odinplan")

	planner, err := odinplan.NewPlanner(cfg,
		odinplan.WithLogger(logger.With("detector", cfg.Detector)),
		odinplan.WithMetrics(collector),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	plan, planErr := planner.Plan(ctx)
	if planErr == nil {
		_, planErr = planner.Write(ctx, plan)
	}

	if path := planner.Config().Output.MetricsFile; path != "" {
		if err := collector.Err(); err != nil {
			logger.Warn("metrics registration failed", "error", err)
		}
		if err := metrics.WriteTextfile(path, reg); err != nil {
			logger.Warn("writing metrics textfile failed", "path", path, "error", err)
		} else {
			logger.Debug("metrics written", "path", path)
		}
	}

	return planErr
}
