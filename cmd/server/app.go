package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/panel-layout/backend/internal/broadcast"
	"github.com/panel-layout/backend/internal/command"
	"github.com/panel-layout/backend/internal/config"
	"github.com/panel-layout/backend/internal/jobs"
	"github.com/panel-layout/backend/internal/oracle"
	"github.com/panel-layout/backend/internal/storage"
)

// app holds the wired service components.
type app struct {
	store      storage.Store
	jobStore   jobs.Store
	runner     *jobs.Runner
	hub        *broadcast.Hub
	dispatcher *command.Dispatcher
	log        *zap.Logger

	stopCleanup context.CancelFunc
}

func newApp(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*app, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}
	a := &app{store: store, log: log, stopCleanup: func() {}}

	if err := a.openJobs(ctx, cfg); err != nil {
		a.close()
		return nil, err
	}

	orc, err := oracle.New(ctx, oracle.Options{
		APIKey:        cfg.Oracle.APIKey,
		Model:         cfg.Oracle.Model,
		Timeout:       cfg.OracleTimeout(),
		MaxConcurrent: cfg.Oracle.MaxConcurrent,
	}, log)
	if err != nil {
		a.close()
		return nil, err
	}
	if !orc.Available() {
		log.Info("no oracle API key configured, unmatched messages get a static reply")
	}

	a.hub = broadcast.NewHub(broadcast.Options{
		QueueSize:    cfg.Broadcast.QueueSize,
		PingInterval: time.Duration(cfg.Broadcast.PingIntervalSeconds) * time.Second,
	}, log)

	a.dispatcher = command.New(a.store, orc, a.hub, cfg.Geometry, command.Options{
		SummaryLimit:      cfg.Command.SummaryLimit,
		HistoryLimit:      cfg.Command.HistoryLimit,
		OracleMaxTokens:   cfg.Oracle.MaxTokens,
		OracleTemperature: cfg.Oracle.Temperature,
		BroadcastTimeout:  cfg.PublishTimeout(),
	}, log)
	return a, nil
}

func openStore(cfg *config.AppConfig, log *zap.Logger) (storage.Store, error) {
	opts := storage.Options{AutoCreate: cfg.Storage.AutoCreateLayouts}
	switch cfg.Storage.Backend {
	case config.BackendDuckDB:
		store, err := storage.NewDuckStore(cfg.GetDataDir(), opts, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		return store, nil
	default:
		return storage.NewMemoryStore(opts), nil
	}
}

// openJobs picks Redis when an address is configured, otherwise an in-memory
// store swept on a ticker.
func (a *app) openJobs(ctx context.Context, cfg *config.AppConfig) error {
	if addr := cfg.Jobs.RedisAddr; addr != "" {
		rs, err := jobs.NewRedisStore(ctx, addr, cfg.JobTTL())
		if err != nil {
			return fmt.Errorf("failed to connect job store: %w", err)
		}
		a.jobStore = rs
	} else {
		ms := jobs.NewMemoryStore(cfg.JobTTL())
		a.jobStore = ms

		cleanupCtx, cancel := context.WithCancel(context.Background())
		a.stopCleanup = cancel
		go func() {
			ticker := time.NewTicker(cfg.CleanupInterval())
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if n := ms.Cleanup(); n > 0 {
						a.log.Debug("expired jobs removed", zap.Int("count", n))
					}
				case <-cleanupCtx.Done():
					return
				}
			}
		}()
	}
	a.runner = jobs.NewRunner(a.jobStore, cfg.JobTimeout(), a.log)
	return nil
}

// close releases everything in reverse order of construction.
func (a *app) close() {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}
	if a.runner != nil {
		a.runner.Shutdown()
	}
	a.stopCleanup()
	if a.jobStore != nil {
		if err := a.jobStore.Close(); err != nil {
			a.log.Warn("failed to close job store", zap.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close layout store", zap.Error(err))
	}
}
