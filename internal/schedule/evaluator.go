package schedule

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"modewatch/internal/eventbus"
	"modewatch/internal/mode"
	logx "modewatch/pkg/logx"
)

// Revert is the event payload published when a rule's revert time fires.
type Revert struct {
	ScheduleID string `json:"scheduleId"`
	FromMode   string `json:"fromMode"`
	ToMode     string `json:"toMode"`
}

// Evaluator runs the periodic evaluation pass. It has two states, stopped
// (initial) and running; Start and Stop are both idempotent.
type Evaluator struct {
	log   logx.Logger
	reg   *Registry
	modes mode.Controller
	guard *Guard
	clock Clock
	bus   eventbus.Bus

	loc         *time.Location
	tick        time.Duration
	defaultMode string

	// badRuleWarn throttles warnings about corrupted persisted rules so a
	// rule with a broken time field does not warn on every minute tick.
	badRuleWarn *rate.Limiter

	mu sync.Mutex
	c  *cron.Cron
}

func NewEvaluator(reg *Registry, modes mode.Controller, guard *Guard, clock Clock,
	bus eventbus.Bus, loc *time.Location, tick time.Duration, defaultMode string,
	log logx.Logger) *Evaluator {
	if clock == nil {
		clock = SystemClock
	}
	if loc == nil {
		loc = time.Local
	}
	if tick <= 0 {
		tick = time.Minute
	}
	if defaultMode == "" {
		defaultMode = "default"
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Evaluator{
		log:         log,
		reg:         reg,
		modes:       modes,
		guard:       guard,
		clock:       clock,
		bus:         bus,
		loc:         loc,
		tick:        tick,
		defaultMode: defaultMode,
		badRuleWarn: rate.NewLimiter(rate.Every(10*time.Second), 1),
	}
}

// Start transitions stopped->running: it performs one immediate evaluation
// pass and arms the periodic trigger. Calling Start while running is a no-op.
func (e *Evaluator) Start(ctx context.Context) {
	e.mu.Lock()
	if e.c != nil {
		e.mu.Unlock()
		return
	}
	c := cron.New(cron.WithLocation(e.loc))
	_, err := c.AddFunc(fmt.Sprintf("@every %s", e.tick.String()), func() {
		e.EvaluateOnce(ctx)
	})
	if err != nil {
		e.mu.Unlock()
		e.log.Error("evaluator trigger register failed", logx.Err(err))
		return
	}
	e.c = c
	e.mu.Unlock()

	e.EvaluateOnce(ctx)
	c.Start()
	e.log.Info("evaluator started",
		logx.Duration("tick", e.tick),
		logx.String("tz", e.loc.String()))
}

// Stop disarms the trigger and waits for any in-flight pass, so no tick fires
// after it returns. Safe to call when already stopped.
func (e *Evaluator) Stop() {
	e.mu.Lock()
	c := e.c
	e.c = nil
	e.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	e.log.Info("evaluator stopped")
}

// Running reports whether the periodic trigger is armed.
func (e *Evaluator) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.c != nil
}

// EvaluateOnce runs a single evaluation pass against the current wall-clock
// time. It is safe to invoke outside the periodic trigger (e.g. a manual
// re-check); the guard keeps repeated calls within one minute idempotent.
// No panic escapes a pass.
func (e *Evaluator) EvaluateOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("panic in evaluation pass",
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())))
		}
	}()

	now := e.clock.Now().In(e.loc)
	day := dayCode(now.Weekday())
	hhmm := now.Format("15:04")
	key := day + "-" + hhmm

	if e.guard.HasFired(key) {
		return
	}

	list := e.reg.List(ctx)

	// Activation matches.
	for _, sc := range list {
		if !sc.Enabled || !containsDay(sc.Days, day) {
			continue
		}
		at, err := normalizeHHMM(sc.Time)
		if err != nil {
			e.warnBadRule(sc.ID, "time", err)
			continue
		}
		if at != hhmm {
			continue
		}
		if e.modes.ManualOverride() {
			e.log.Debug("scheduled activation suppressed (manual override)",
				logx.String("id", sc.ID), logx.String("mode", sc.ModeID))
			continue
		}
		ok := e.modes.ActivateMode(sc.ModeID, false)
		e.guard.MarkFired(key)
		e.log.Info("schedule fired",
			logx.String("id", sc.ID),
			logx.String("mode", sc.ModeID),
			logx.String("at", key),
			logx.Bool("accepted", ok))
	}

	// Revert matches: at the revert time the rule requests the default mode.
	for _, sc := range list {
		if !sc.Enabled || sc.RevertAt == "" || !containsDay(sc.Days, day) {
			continue
		}
		at, err := normalizeHHMM(sc.RevertAt)
		if err != nil {
			e.warnBadRule(sc.ID, "revertAt", err)
			continue
		}
		if at != hhmm {
			continue
		}
		if e.modes.ManualOverride() {
			e.log.Debug("scheduled revert suppressed (manual override)",
				logx.String("id", sc.ID))
			continue
		}
		ok := e.modes.ActivateMode(e.defaultMode, false)
		e.guard.MarkFired(key)
		e.log.Info("schedule reverted",
			logx.String("id", sc.ID),
			logx.String("mode", e.defaultMode),
			logx.String("at", key),
			logx.Bool("accepted", ok))
		if e.bus != nil {
			e.bus.Publish(eventbus.Event{
				Type: eventbus.TypeModeReverted,
				Time: now,
				Data: Revert{ScheduleID: sc.ID, FromMode: sc.ModeID, ToMode: e.defaultMode},
			})
		}
	}
}

// warnBadRule logs a corrupted persisted rule. The rule is skipped rather than
// aborting the pass.
func (e *Evaluator) warnBadRule(id, field string, err error) {
	if !e.badRuleWarn.Allow() {
		return
	}
	e.log.Warn("skipping rule with corrupted field",
		logx.String("id", id),
		logx.String("field", field),
		logx.Err(err))
}
