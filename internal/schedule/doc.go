// Package schedule implements the schedule-driven mode activation engine.
//
// # Overview
//
// The engine holds a set of user-defined time/day rules and periodically
// decides whether a named operating mode should be activated or reverted,
// based on wall-clock time. It is split into small collaborating parts:
//
//   - Registry: in-memory rule collection; validation, CRUD and querying.
//   - Bridge: loads/saves the rule list through the settings store
//     (load-once-then-cache, fire-and-forget saves).
//   - Guard: time-windowed idempotency cache so a rule fires at most once
//     within the same wall-clock minute.
//   - Evaluator: fixed one-minute periodic pass that matches enabled rules
//     against the current (weekday, HH:MM) and drives the mode controller.
//   - Engine: the constructible facade wiring the parts together.
//
// # Precedence
//
// Manual operator action always wins over scheduled action: the evaluator
// reads the mode controller's manual-override flag and suppresses matching
// rules while it is set. The engine never writes that flag.
//
// # Resolution
//
// Ticking is deliberately coarse (minute resolution). The domain does not
// need sub-minute precision, and coarse resolution keeps the dedup-by-key
// strategy robust when a pass runs more than once within the same minute.
package schedule
