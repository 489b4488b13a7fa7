// jobscoped loads scheduler event logs and serves the replay API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/jobscope/jobscope"
	"github.com/jobscope/jobscope/internal/httpapi"
	"github.com/jobscope/jobscope/internal/ingest"
)

type fileConfig struct {
	Listen             string   `yaml:"listen"`
	EventLogDir        string   `yaml:"eventLogDir"`
	EventLogs          []string `yaml:"eventLogs"`
	CheckpointInterval int      `yaml:"checkpointInterval"`
}

func main() {
	var (
		configPath string
		listen     string
		logDir     string
		interval   int
	)
	flag.StringVar(&configPath, "config", "", "path to YAML config file")
	flag.StringVar(&listen, "listen", "", "listen address (overrides config)")
	flag.StringVar(&logDir, "logs", "", "directory of event logs (overrides config)")
	flag.IntVar(&interval, "checkpoint-interval", 0, "checkpoint interval in events (overrides config)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	fc := fileConfig{Listen: "127.0.0.1:8098"}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			logger.Fatal("read config", zap.Error(err))
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			logger.Fatal("parse config", zap.Error(err))
		}
	}
	if listen != "" {
		fc.Listen = listen
	}
	if logDir != "" {
		fc.EventLogDir = logDir
	}
	if interval > 0 {
		fc.CheckpointInterval = interval
	}

	cfg := jobscope.DefaultConfig()
	if fc.CheckpointInterval > 0 {
		cfg.CheckpointInterval = fc.CheckpointInterval
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	paths := append([]string{}, fc.EventLogs...)
	paths = append(paths, flag.Args()...)
	if fc.EventLogDir != "" {
		dirPaths, err := ingest.ListLogs(fc.EventLogDir)
		if err != nil {
			logger.Fatal("list event logs", zap.Error(err))
		}
		paths = append(paths, dirPaths...)
	}
	if len(paths) == 0 {
		logger.Fatal("no event logs configured; pass -logs, eventLogs or file arguments")
	}

	registry := jobscope.NewRegistry()
	if err := loadAll(registry, paths, cfg, logger); err != nil {
		logger.Fatal("load event logs", zap.Error(err))
	}
	logger.Info("applications registered", zap.Int("count", registry.Len()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpapi.New(registry, logger)
	if err := httpapi.Serve(ctx, srv, fc.Listen, logger); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}

// loadAll parses every log concurrently and registers the results. Logs with
// a fingerprint already seen are skipped as duplicates of the same file.
func loadAll(registry *jobscope.Registry, paths []string, cfg jobscope.Config, logger *zap.Logger) error {
	var (
		mu   sync.Mutex
		seen = map[uint64]string{}
	)
	g := new(errgroup.Group)
	g.SetLimit(8)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			meta, log, err := ingest.LoadFile(path)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if prev, dup := seen[meta.Fingerprint]; dup {
				logger.Warn("skipping duplicate event log",
					zap.String("path", path), zap.String("duplicateOf", prev))
				return nil
			}
			seen[meta.Fingerprint] = path
			registry.Register(jobscope.NewSource(meta, log, cfg))
			logger.Info("event log loaded",
				zap.String("app", meta.ID),
				zap.String("path", path),
				zap.Int("events", log.Len()))
			return nil
		})
	}
	return g.Wait()
}
