// app.go
package main

import (
	"context"
	"fmt"
	"time"

	"autoscribe/internal/cascade"
	"autoscribe/internal/config"
	"autoscribe/internal/eventhub"
	"autoscribe/internal/input"
	"autoscribe/internal/log"
	"autoscribe/internal/permission"
	"autoscribe/internal/recorder"
	"autoscribe/internal/replay"
	"autoscribe/internal/store"
	"autoscribe/internal/watcher"
)

// App struct contains the core engine state and managers
type App struct {
	ctx    context.Context
	config *config.Config

	// Core managers
	gate           *permission.Gate
	driver         *input.ExecDriver
	store          *store.Store
	recorderMgr    *recorder.Manager
	replayer       *replay.Replayer
	deliverCascade *cascade.Cascade
	eventHub       *eventhub.EventHub
	dirWatcher     *watcher.Watcher
}

// NewApp creates a new App struct
func NewApp() *App {
	return &App{}
}

// Startup initializes configuration and all managers. A failure leaves the
// App unusable; the caller must not serve requests against it.
func (a *App) Startup(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return a.startup(ctx, cfg)
}

func (a *App) startup(ctx context.Context, cfg *config.Config) error {
	a.ctx = ctx
	a.config = cfg
	logger := log.WithComponent("app")

	// Catalog database plus artifact directory. The store backs every
	// catalog operation and serializes finished recordings; without it the
	// engine cannot do its job, so an open failure is fatal.
	st, err := store.Open(cfg.DatabasePath, cfg.RecordingsDir)
	if err != nil {
		return fmt.Errorf("open script store: %w", err)
	}
	a.store = st
	if err := st.SyncDir(); err != nil {
		logger.Warn().Err(err).Msg("initial catalog sync failed")
	}

	// EventHub before managers that publish through it.
	a.eventHub = eventhub.New()

	a.gate = permission.NewGate(nil)
	a.driver = input.NewExecDriver(cfg.Settings.Injector)

	capture := input.NewExecCapture(cfg.Settings.Injector.Capture)
	a.recorderMgr = recorder.NewManager(a.gate, capture, a.store)

	timing := cfg.Settings.Timing
	a.deliverCascade, err = cascade.New(a.driver, a.driver, cascade.Timing{
		PreFocusDelay: time.Duration(timing.PreFocusDelayMS) * time.Millisecond,
		CharDelay:     time.Duration(timing.CharDelayMS) * time.Millisecond,
		SettleDelay:   time.Duration(timing.SettleDelayMS) * time.Millisecond,
	}, cfg.Settings.Cascade.Strategies)
	if err != nil {
		return fmt.Errorf("build delivery cascade: %w", err)
	}

	a.replayer = replay.NewReplayer(replay.Deps{
		Keyboard: a.driver,
		Pointer:  a.driver,
		Resolver: a.driver,
		Cascade:  a.deliverCascade,
	})

	// Watch the recordings directory for out-of-band changes. The watcher
	// is an enhancement over SyncDir, so a failure here only degrades.
	w, err := watcher.New(cfg.RecordingsDir, 500*time.Millisecond, func(e watcher.Event) {
		if err := a.store.SyncDir(); err != nil {
			logger.Warn().Err(err).Msg("catalog sync failed")
		}
		a.eventHub.EmitCatalogChanged(eventhub.CatalogChangedEvent{Path: e.Path})
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to create recordings watcher")
	} else if err := w.Start(); err != nil {
		logger.Warn().Err(err).Msg("failed to start recordings watcher")
	} else {
		a.dirWatcher = w
	}

	logger.Info().Str("engine_dir", cfg.EngineDir).Msg("autoscribe started")
	return nil
}

// Shutdown releases all managers.
func (a *App) Shutdown(ctx context.Context) {
	logger := log.WithComponent("app")

	if a.dirWatcher != nil {
		a.dirWatcher.Close()
	}

	if a.replayer != nil {
		a.replayer.Cancel()
	}

	if a.recorderMgr != nil {
		if _, err := a.recorderMgr.Stop(); err != nil {
			logger.Debug().Err(err).Msg("no recording to stop on shutdown")
		}
	}

	if a.store != nil {
		a.store.Close()
	}

	logger.Info().Msg("autoscribe shutdown complete")
}

// SetEventHubBroadcaster attaches the control server's broadcaster.
func (a *App) SetEventHubBroadcaster(broadcaster eventhub.Broadcaster) {
	if a.eventHub != nil {
		a.eventHub.SetBroadcaster(broadcaster)
	}
}
