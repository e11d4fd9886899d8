package settings

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "modewatch/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// The whole key/value map lives in one JSON document. Writes rewrite the
// document to a temp file and rename it into place, so a crash mid-write
// never leaves a truncated settings file behind.
type fileStore struct {
	log logx.Logger

	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("settings.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	data := map[string]json.RawMessage{}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(b, &data); err != nil {
			// A corrupt settings file should not brick startup; start fresh
			// and let the next write replace it.
			log.Warn("settings file corrupt; starting empty", logx.String("path", path), logx.Err(err))
			data = map[string]json.RawMessage{}
		}
	case os.IsNotExist(err):
		// first run
	default:
		return nil, err
	}

	return &fileStore{log: log, path: path, data: data}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	_ = ctx
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make(json.RawMessage, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (s *fileStore) Put(ctx context.Context, key string, value json.RawMessage) error {
	_ = ctx
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = map[string]json.RawMessage{}
	}
	cp := make(json.RawMessage, len(value))
	copy(cp, value)
	s.data[key] = cp
	return s.flushLocked()
}

func (s *fileStore) flushLocked() error {
	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
