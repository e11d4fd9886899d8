package schedule

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"modewatch/internal/eventbus"
	logx "modewatch/pkg/logx"
)

// Registry owns the in-memory rule collection: validation, CRUD and querying.
// It has no knowledge of time or triggering. Every successful mutation
// persists through the bridge, notifies listeners and publishes a bus event,
// in that order.
type Registry struct {
	log      logx.Logger
	bridge   *Bridge
	notifier *notifier
	bus      eventbus.Bus

	// newID is swappable in tests.
	newID func() string

	mu     sync.Mutex
	loaded bool
	items  []Schedule
}

func NewRegistry(bridge *Bridge, bus eventbus.Bus, log logx.Logger) *Registry {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Registry{
		log:      log,
		bridge:   bridge,
		notifier: newNotifier(log),
		bus:      bus,
		newID:    uuid.NewString,
	}
}

// Subscribe registers a listener invoked with the full rule list on every
// mutation. The returned func unsubscribes.
func (r *Registry) Subscribe(fn Listener) (unsubscribe func()) {
	return r.notifier.subscribe(fn)
}

// Add validates the draft and appends a new enabled rule. It fails closed:
// on any invalid field nothing is mutated and a *ValidationError identifies
// the field.
func (r *Registry) Add(ctx context.Context, d Draft) (string, error) {
	if strings.TrimSpace(d.ModeID) == "" {
		return "", r.rejected("modeId", "must be a non-empty string")
	}
	hhmm, err := normalizeHHMM(d.Time)
	if err != nil {
		return "", r.rejected("time", err.Error())
	}
	days, err := normalizeDays(d.Days)
	if err != nil {
		return "", r.rejected("days", err.Error())
	}
	revert := ""
	if strings.TrimSpace(d.RevertAt) != "" {
		revert, err = normalizeHHMM(d.RevertAt)
		if err != nil {
			return "", r.rejected("revertAt", err.Error())
		}
	}

	sc := Schedule{
		ID:       r.newID(),
		ModeID:   strings.TrimSpace(d.ModeID),
		Time:     hhmm,
		Days:     days,
		RevertAt: revert,
		Enabled:  true,
	}

	r.mu.Lock()
	r.ensureLoadedLocked(ctx)
	r.items = append(r.items, sc)
	snapshot := copySchedules(r.items)
	r.mu.Unlock()

	r.committed(ctx, eventbus.TypeScheduleAdded, sc, snapshot)
	r.log.Info("schedule added",
		logx.String("id", sc.ID),
		logx.String("mode", sc.ModeID),
		logx.String("time", sc.Time))
	return sc.ID, nil
}

// Update shallow-merges the patch into an existing rule. Supplied fields are
// re-validated with the same rules as Add; nil fields are left untouched.
func (r *Registry) Update(ctx context.Context, id string, p Patch) error {
	// Validate before taking the lock so a bad patch mutates nothing.
	var (
		hhmm, revert, modeID string
		days                 []string
		err                  error
	)
	if p.ModeID != nil {
		modeID = strings.TrimSpace(*p.ModeID)
		if modeID == "" {
			return r.rejected("modeId", "must be a non-empty string")
		}
	}
	if p.Time != nil {
		if hhmm, err = normalizeHHMM(*p.Time); err != nil {
			return r.rejected("time", err.Error())
		}
	}
	if p.Days != nil {
		if days, err = normalizeDays(p.Days); err != nil {
			return r.rejected("days", err.Error())
		}
	}
	if p.RevertAt != nil && strings.TrimSpace(*p.RevertAt) != "" {
		if revert, err = normalizeHHMM(*p.RevertAt); err != nil {
			return r.rejected("revertAt", err.Error())
		}
	}

	r.mu.Lock()
	r.ensureLoadedLocked(ctx)
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		r.log.Warn("schedule update rejected", logx.String("id", id), logx.Err(ErrNotFound))
		return ErrNotFound
	}
	sc := &r.items[idx]
	if p.ModeID != nil {
		sc.ModeID = modeID
	}
	if p.Time != nil {
		sc.Time = hhmm
	}
	if p.Days != nil {
		sc.Days = days
	}
	if p.RevertAt != nil {
		sc.RevertAt = revert
	}
	if p.Enabled != nil {
		sc.Enabled = *p.Enabled
	}
	updated := *sc
	snapshot := copySchedules(r.items)
	r.mu.Unlock()

	r.committed(ctx, eventbus.TypeScheduleUpdated, updated, snapshot)
	r.log.Debug("schedule updated", logx.String("id", id))
	return nil
}

// Remove deletes the rule. Removing an unknown id fails with ErrNotFound.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	r.ensureLoadedLocked(ctx)
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		r.log.Warn("schedule remove rejected", logx.String("id", id), logx.Err(ErrNotFound))
		return ErrNotFound
	}
	removed := r.items[idx]
	r.items = append(r.items[:idx], r.items[idx+1:]...)
	snapshot := copySchedules(r.items)
	r.mu.Unlock()

	r.committed(ctx, eventbus.TypeScheduleRemoved, removed, snapshot)
	r.log.Info("schedule removed", logx.String("id", id))
	return nil
}

// Toggle flips the enabled flag and returns the new state.
func (r *Registry) Toggle(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	r.ensureLoadedLocked(ctx)
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		r.log.Warn("schedule toggle rejected", logx.String("id", id), logx.Err(ErrNotFound))
		return false, ErrNotFound
	}
	r.items[idx].Enabled = !r.items[idx].Enabled
	toggled := r.items[idx]
	snapshot := copySchedules(r.items)
	r.mu.Unlock()

	r.committed(ctx, eventbus.TypeScheduleToggled, toggled, snapshot)
	r.log.Debug("schedule toggled", logx.String("id", id), logx.Bool("enabled", toggled.Enabled))
	return toggled.Enabled, nil
}

// List returns all rules in insertion order.
func (r *Registry) List(ctx context.Context) []Schedule {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoadedLocked(ctx)
	return copySchedules(r.items)
}

// ListForMode returns the rules targeting the given mode, insertion order.
func (r *Registry) ListForMode(ctx context.Context, modeID string) []Schedule {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoadedLocked(ctx)
	out := make([]Schedule, 0, len(r.items))
	for _, sc := range r.items {
		if sc.ModeID == modeID {
			out = append(out, sc)
		}
	}
	return copySchedules(out)
}

// ensureLoadedLocked pulls the persisted list on first use. The bridge caches,
// so this is a cheap no-op afterwards. Call with r.mu held.
func (r *Registry) ensureLoadedLocked(ctx context.Context) {
	if r.loaded {
		return
	}
	r.loaded = true
	if r.bridge != nil {
		r.items = r.bridge.Load(ctx)
	}
}

func (r *Registry) indexLocked(id string) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

// committed runs the post-mutation pipeline: persist, notify, publish.
func (r *Registry) committed(ctx context.Context, eventType string, sc Schedule, snapshot []Schedule) {
	if r.bridge != nil {
		r.bridge.Save(ctx, snapshot)
	}
	r.notifier.notify(snapshot)
	if r.bus != nil {
		r.bus.Publish(eventbus.Event{Type: eventType, Time: time.Now(), Data: sc})
	}
}

func (r *Registry) rejected(field, reason string) *ValidationError {
	err := &ValidationError{Field: field, Reason: reason}
	r.log.Warn("schedule validation failed",
		logx.String("field", field),
		logx.String("reason", reason))
	return err
}
