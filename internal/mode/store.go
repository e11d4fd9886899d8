package mode

import (
	"strings"
	"sync"
	"time"

	"modewatch/internal/eventbus"
	logx "modewatch/pkg/logx"
)

// Config controls the mode store.
type Config struct {
	// Initial is the mode the store starts in.
	Initial string
}

// Transition is the event payload published on every accepted activation.
type Transition struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Manual bool   `json:"manual"`
}

// Store is the in-process implementation of Controller.
type Store struct {
	log logx.Logger
	bus eventbus.Bus

	mu      sync.Mutex
	current string
	manual  bool
}

func NewStore(cfg Config, bus eventbus.Bus, log logx.Logger) *Store {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Store{
		log:     log,
		bus:     bus,
		current: strings.TrimSpace(cfg.Initial),
	}
}

// Current returns the active mode id.
func (s *Store) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Store) ManualOverride() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manual
}

// ClearManualOverride re-enables scheduled transitions.
func (s *Store) ClearManualOverride() {
	s.mu.Lock()
	s.manual = false
	s.mu.Unlock()
	s.log.Debug("manual override cleared")
}

// ActivateMode switches the current mode. Manual activations set the override
// flag; scheduled ones leave it untouched.
func (s *Store) ActivateMode(modeID string, manual bool) bool {
	modeID = strings.TrimSpace(modeID)
	if modeID == "" {
		return false
	}

	s.mu.Lock()
	from := s.current
	s.current = modeID
	if manual {
		s.manual = true
	}
	s.mu.Unlock()

	s.log.Info("mode activated",
		logx.String("from", from),
		logx.String("to", modeID),
		logx.Bool("manual", manual))
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{
			Type: eventbus.TypeModeActivated,
			Time: time.Now(),
			Data: Transition{From: from, To: modeID, Manual: manual},
		})
	}
	return true
}
