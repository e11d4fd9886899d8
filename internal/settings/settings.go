// Package settings provides the key/value settings store backing schedule
// persistence.
//
// Supported drivers:
//   - "file": dependency-free single JSON document with atomic rewrites
//   - "sqlite": SQLite database file
//
// If the driver is empty or "none", storage is disabled and Open returns
// (nil, nil).
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	logx "modewatch/pkg/logx"
)

var ErrDisabled = errors.New("settings storage disabled")

// Config configures the settings store.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store is the minimal persistence API consumed by the schedule engine.
// Values are opaque JSON documents keyed by name.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown settings driver: " + driver)
	}
}
