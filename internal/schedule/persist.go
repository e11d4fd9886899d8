package schedule

import (
	"context"
	"encoding/json"
	"sync"

	"modewatch/internal/settings"
	logx "modewatch/pkg/logx"
)

// settingsKey is the single settings entry holding the rule list.
const settingsKey = "schedules"

// scheduleDoc is the persisted value shape: an object with one field.
type scheduleDoc struct {
	List []Schedule `json:"list"`
}

// Bridge persists the rule list through the settings store.
//
// Load reads the store once and caches; Save is fire-and-forget: a failed
// write is logged and the in-memory state stays authoritative. Losing a
// persistence write must not crash or roll back the engine.
type Bridge struct {
	store settings.Store
	log   logx.Logger

	mu     sync.Mutex
	loaded bool
	cache  []Schedule
}

func NewBridge(store settings.Store, log logx.Logger) *Bridge {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Bridge{store: store, log: log}
}

// Load returns the persisted rule list. The first successful call reads the
// settings store; later calls are cache hits.
func (b *Bridge) Load(ctx context.Context) []Schedule {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loaded {
		return copySchedules(b.cache)
	}
	b.loaded = true
	if b.store == nil {
		return nil
	}

	raw, ok, err := b.store.Get(ctx, settingsKey)
	if err != nil {
		b.log.Warn("schedule load failed; starting empty", logx.Err(err))
		return nil
	}
	if !ok {
		return nil
	}
	var doc scheduleDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		b.log.Warn("stored schedules unreadable; starting empty", logx.Err(err))
		return nil
	}
	b.cache = doc.List
	b.log.Debug("schedules loaded", logx.Int("count", len(doc.List)))
	return copySchedules(b.cache)
}

// Save writes the rule list. Errors are swallowed after logging.
func (b *Bridge) Save(ctx context.Context, list []Schedule) {
	b.mu.Lock()
	b.loaded = true
	b.cache = copySchedules(list)
	b.mu.Unlock()

	if b.store == nil {
		return
	}
	raw, err := json.Marshal(scheduleDoc{List: list})
	if err != nil {
		b.log.Warn("schedule encode failed", logx.Err(err))
		return
	}
	if err := b.store.Put(ctx, settingsKey, raw); err != nil {
		b.log.Warn("schedule save failed", logx.Err(err), logx.Int("count", len(list)))
	}
}

func copySchedules(in []Schedule) []Schedule {
	if in == nil {
		return nil
	}
	out := make([]Schedule, len(in))
	for i, s := range in {
		out[i] = s
		out[i].Days = append([]string(nil), s.Days...)
	}
	return out
}
