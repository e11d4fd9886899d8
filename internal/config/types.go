package config

// Config is the on-disk configuration for modewatch.
//
// The file may be JSON or YAML; YAML is coerced to JSON before strict decoding
// so unknown fields are rejected in both formats.
type Config struct {
	Logging LoggingConfig `json:"logging"`

	// Engine controls the schedule evaluation loop.
	Engine EngineConfig `json:"engine"`

	// Storage controls where the schedule list is persisted.
	Storage StorageConfig `json:"storage"`

	// Modes configures the in-process mode store.
	Modes ModesConfig `json:"modes,omitempty"`
}

type LoggingConfig struct {
	Level   string        `json:"level,omitempty"`
	Console bool          `json:"console"`
	File    FileLogConfig `json:"file,omitempty"`
}

type FileLogConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// EngineConfig controls trigger behavior for the schedule engine.
//
// All durations are Go duration strings (e.g. "30s", "1m").
//
// Enabled is a pointer so we can distinguish "omitted" (default true)
// from an explicit false.
//
// Defaults (when fields are omitted/zero):
//   - enabled: true
//   - timezone: system local
//   - tick: "1m"
//   - dedup_window: "70s"
//   - default_mode: "default"
type EngineConfig struct {
	Enabled     *bool  `json:"enabled,omitempty"`
	Timezone    string `json:"timezone,omitempty"` // IANA TZ, e.g. "Europe/Amsterdam"
	Tick        string `json:"tick,omitempty"`
	DedupWindow string `json:"dedup_window,omitempty"`
	DefaultMode string `json:"default_mode,omitempty"`
}

// StorageConfig controls the settings store backing schedule persistence.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./modewatch_settings.json" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

type ModesConfig struct {
	// Initial is the mode the store starts in. Defaults to engine.default_mode.
	Initial string `json:"initial,omitempty"`
}

func (c *EngineConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}
