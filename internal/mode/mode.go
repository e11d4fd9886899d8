// Package mode holds the operating-mode state of the dashboard and the
// collaborator surface the schedule engine drives.
//
// A mode is a named operating profile (e.g. "night", "away"). Activations are
// either manual (a human picked the mode) or scheduled. The manual-override
// flag is owned here: the schedule engine only ever reads it, so a manual
// operator action always wins over a scheduled one.
package mode

// Controller is the boundary consumed by the schedule engine.
type Controller interface {
	// ManualOverride reports whether a human explicitly chose the current mode.
	ManualOverride() bool
	// ActivateMode switches to the named mode. It reports whether the
	// activation was accepted.
	ActivateMode(modeID string, manual bool) bool
}
