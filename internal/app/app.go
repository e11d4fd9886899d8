// Package app assembles the modewatch services: configuration, logging,
// settings storage, the mode store and the schedule engine. It is the only
// place a shared engine instance is constructed.
package app

import (
	"context"
	"sync"

	"modewatch/internal/config"
	"modewatch/internal/eventbus"
	"modewatch/internal/mode"
	"modewatch/internal/schedule"
	"modewatch/internal/settings"
	logx "modewatch/pkg/logx"
)

type App struct {
	logSvc *logx.Service
	log    logx.Logger

	cfgMgr *config.Manager
	store  settings.Store
	bus    eventbus.Bus
	modes  *mode.Store
	engine *schedule.Engine

	enabled bool

	mu          sync.Mutex
	watchCancel context.CancelFunc
	wg          sync.WaitGroup
}

func New(cfgPath string) (*App, error) {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	mgr.SetLogger(log.With(logx.String("svc", "config")))

	busyTimeout, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return nil, err
	}
	store, err := settings.Open(settings.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("svc", "settings")))
	if err != nil {
		return nil, err
	}

	tick, err := config.ParseDurationOrDefault("engine.tick", cfg.Engine.Tick, 0)
	if err != nil {
		return nil, err
	}
	dedupWindow, err := config.ParseDurationOrDefault("engine.dedup_window", cfg.Engine.DedupWindow, 0)
	if err != nil {
		return nil, err
	}
	defaultMode := cfg.Engine.DefaultMode
	if defaultMode == "" {
		defaultMode = "default"
	}
	initial := cfg.Modes.Initial
	if initial == "" {
		initial = defaultMode
	}

	bus := eventbus.New()
	modes := mode.NewStore(mode.Config{Initial: initial}, bus, log.With(logx.String("svc", "mode")))
	engine := schedule.New(schedule.Config{
		Timezone:    cfg.Engine.Timezone,
		Tick:        tick,
		DedupWindow: dedupWindow,
		DefaultMode: defaultMode,
	}, schedule.Deps{
		Store: store,
		Modes: modes,
		Bus:   bus,
	}, log.With(logx.String("svc", "engine")))

	return &App{
		logSvc:  logSvc,
		log:     log,
		cfgMgr:  mgr,
		store:   store,
		bus:     bus,
		modes:   modes,
		engine:  engine,
		enabled: cfg.Engine.IsEnabled(),
	}, nil
}

// Engine exposes the schedule engine to API callers.
func (a *App) Engine() *schedule.Engine { return a.engine }

// Modes exposes the mode store.
func (a *App) Modes() *mode.Store { return a.modes }

func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.watchCancel != nil {
		a.mu.Unlock()
		return nil
	}
	wctx, cancel := context.WithCancel(ctx)
	a.watchCancel = cancel
	a.mu.Unlock()

	// Config hot reload: re-apply logging on change. Engine trigger settings
	// (timezone/tick) are read at construction; changing them needs a restart,
	// which is called out when a reload arrives.
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		_ = a.cfgMgr.Watch(wctx)
	}()

	updates := a.cfgMgr.Subscribe(4)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.cfgMgr.Unsubscribe(updates)
		for {
			select {
			case <-wctx.Done():
				return
			case cfg, ok := <-updates:
				if !ok {
					return
				}
				a.logSvc.Apply(logx.Config{
					Level:   cfg.Logging.Level,
					Console: cfg.Logging.Console,
					File: logx.FileConfig{
						Enabled: cfg.Logging.File.Enabled,
						Path:    cfg.Logging.File.Path,
					},
				})
				a.log.Info("config reloaded; engine trigger settings apply on next restart")
			}
		}
	}()

	// Log mode transitions and schedule mutations as they happen.
	events, unsub := a.bus.Subscribe(32)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer unsub()
		for {
			select {
			case <-wctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				a.log.Debug("event", logx.String("type", ev.Type), logx.Any("data", ev.Data))
			}
		}
	}()

	if a.enabled {
		a.engine.Start(ctx)
	} else {
		a.log.Info("engine disabled by config; schedules remain editable")
	}
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	_ = ctx
	a.engine.Stop()

	a.mu.Lock()
	cancel := a.watchCancel
	a.watchCancel = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	a.wg.Wait()

	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.logSvc.Close()
	return nil
}
