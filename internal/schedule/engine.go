package schedule

import (
	"context"
	"strings"
	"time"

	"modewatch/internal/eventbus"
	"modewatch/internal/mode"
	"modewatch/internal/settings"
	logx "modewatch/pkg/logx"
)

// Config controls the engine.
type Config struct {
	// Timezone is an IANA TZ name, e.g. "Europe/Amsterdam". Empty means the
	// system local zone.
	Timezone string
	// Tick is the evaluation period. Defaults to one minute; the engine is
	// designed around minute resolution, shorter ticks only make repeated
	// passes hit the dedup guard.
	Tick time.Duration
	// DedupWindow bounds how long a fired (day, HH:MM) key suppresses
	// re-firing. Defaults to DefaultDedupWindow.
	DedupWindow time.Duration
	// DefaultMode is activated when a rule's revert time fires.
	DefaultMode string
}

// Deps are the engine's external collaborators.
type Deps struct {
	Store settings.Store  // durable settings; nil disables persistence
	Modes mode.Controller // required
	Bus   eventbus.Bus    // optional
	Clock Clock           // nil means the system clock
}

// Engine is the constructible facade over registry, evaluator and guard.
// There is deliberately no package-level shared instance; the composition
// root owns the one it builds.
type Engine struct {
	log  logx.Logger
	reg  *Registry
	eval *Evaluator
}

func New(cfg Config, deps Deps, log logx.Logger) *Engine {
	if log.IsZero() {
		log = logx.Nop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock
	}
	loc := loadLocation(cfg.Timezone, log)

	bridge := NewBridge(deps.Store, log)
	reg := NewRegistry(bridge, deps.Bus, log)
	guard := NewGuard(cfg.DedupWindow, clock)
	eval := NewEvaluator(reg, deps.Modes, guard, clock, deps.Bus, loc,
		cfg.Tick, cfg.DefaultMode, log)

	return &Engine{log: log, reg: reg, eval: eval}
}

// AddSchedule validates and stores a new rule, returning its id.
func (e *Engine) AddSchedule(ctx context.Context, d Draft) (string, error) {
	return e.reg.Add(ctx, d)
}

// UpdateSchedule merge-patches an existing rule.
func (e *Engine) UpdateSchedule(ctx context.Context, id string, p Patch) error {
	return e.reg.Update(ctx, id, p)
}

// RemoveSchedule deletes a rule.
func (e *Engine) RemoveSchedule(ctx context.Context, id string) error {
	return e.reg.Remove(ctx, id)
}

// ToggleSchedule flips a rule's enabled flag and returns the new state.
func (e *Engine) ToggleSchedule(ctx context.Context, id string) (bool, error) {
	return e.reg.Toggle(ctx, id)
}

// Schedules returns every rule in insertion order.
func (e *Engine) Schedules(ctx context.Context) []Schedule {
	return e.reg.List(ctx)
}

// SchedulesForMode returns the rules targeting the given mode.
func (e *Engine) SchedulesForMode(ctx context.Context, modeID string) []Schedule {
	return e.reg.ListForMode(ctx, modeID)
}

// Subscribe registers a listener for rule-list changes.
func (e *Engine) Subscribe(fn Listener) (unsubscribe func()) {
	return e.reg.Subscribe(fn)
}

// Start begins periodic evaluation (idempotent).
func (e *Engine) Start(ctx context.Context) { e.eval.Start(ctx) }

// Stop halts periodic evaluation (idempotent); no pass is in flight when it
// returns.
func (e *Engine) Stop() { e.eval.Stop() }

// Evaluate runs one evaluation pass outside the periodic trigger.
func (e *Engine) Evaluate(ctx context.Context) { e.eval.EvaluateOnce(ctx) }

func loadLocation(tz string, log logx.Logger) *time.Location {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Warn("invalid timezone; falling back to Local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}
