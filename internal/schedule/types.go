package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Schedule is a persisted rule describing when to activate (and optionally
// revert) a mode.
//
// Known limitation: RevertAt shares the Days set with the activation time.
// "Activate Mon-Fri at 22:00, revert every day at 07:00" cannot be expressed
// with a single rule.
type Schedule struct {
	ID      string   `json:"id"`
	ModeID  string   `json:"modeId"`
	Time    string   `json:"time"` // 24h HH:MM, zero-padded
	Days    []string `json:"days"` // weekday codes, subset of sun..sat
	// RevertAt is optional; empty means the rule never reverts.
	RevertAt string `json:"revertAt,omitempty"`
	Enabled  bool   `json:"enabled"`
}

// Draft is the caller-supplied shape for Add. Days defaults to the empty set
// (legal, the rule just never fires). An empty RevertAt means none.
type Draft struct {
	ModeID   string
	Time     string
	Days     []string
	RevertAt string
}

// Patch carries partial updates for Update. Nil fields are left unchanged.
// A non-nil RevertAt pointing at an empty string clears the revert time.
type Patch struct {
	ModeID   *string
	Time     *string
	Days     []string
	RevertAt *string
	Enabled  *bool
}

// ErrNotFound is returned when an unknown schedule id is passed to
// Update/Remove/Toggle.
var ErrNotFound = errors.New("schedule not found")

// ValidationError reports which draft/patch field failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Listener receives the full rule list after every mutation.
type Listener func([]Schedule)

// Clock abstracts wall-clock reads so evaluation is testable without real
// waits.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the real wall clock.
var SystemClock Clock = systemClock{}
