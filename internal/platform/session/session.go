// Package session holds the process-wide "currently authenticated" identity,
// one single-value slot per actor kind. The two slots are independent: one
// patient and one specialist may be active at the same time, never two of
// the same kind. Slots are atomically swapped pointers rather than locked
// structures; the operations are trivial single-value swaps.
package session

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ErrNoActiveSession is returned by Get before any Set, or after Clear.
var ErrNoActiveSession = errors.New("no active session")

// Identity is the minimal record of who is logged in. Full profiles are
// re-read from the repositories by key when a screen needs them.
type Identity struct {
	Kind         string `json:"kind"`
	Key          string `json:"key"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	SpecialistID int64  `json:"specialist_id,omitempty"`
}

// Slot is a thread-safe single-value session holder.
type Slot struct {
	name string
	cur  atomic.Pointer[Identity]
	log  zerolog.Logger
}

// NewSlot returns an empty slot. Most callers want the shared Patients and
// Specialists slots instead.
func NewSlot(name string, log zerolog.Logger) *Slot {
	return &Slot{name: name, log: log}
}

// Set installs the identity unconditionally. Replacing an active session is
// legal and last-write-wins, but worth a warning in the log.
func (s *Slot) Set(id Identity) {
	if old := s.cur.Swap(&id); old != nil {
		s.log.Warn().
			Str("slot", s.name).
			Str("previous", old.Key).
			Str("current", id.Key).
			Msg("replacing active session")
	}
}

// Get returns the active identity or ErrNoActiveSession.
func (s *Slot) Get() (Identity, error) {
	p := s.cur.Load()
	if p == nil {
		return Identity{}, ErrNoActiveSession
	}
	return *p, nil
}

// Clear empties the slot. Clearing an empty slot is a no-op.
func (s *Slot) Clear() {
	s.cur.Store(nil)
}

// IsActive reports whether an identity is set.
func (s *Slot) IsActive() bool {
	return s.cur.Load() != nil
}

var (
	mu          sync.Mutex
	baseLog     = zerolog.New(os.Stderr).With().Timestamp().Logger()
	patients    *Slot
	specialists *Slot
)

// Configure installs the process logger the shared slots warn through. It
// must run before the first accessor; once the slots exist it is a no-op.
func Configure(log zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if patients == nil {
		baseLog = log
	}
}

func ensure() {
	mu.Lock()
	defer mu.Unlock()
	if patients == nil {
		log := baseLog.With().Str("component", "session").Logger()
		patients = NewSlot("patient", log)
		specialists = NewSlot("specialist", log)
	}
}

// Patients returns the shared patient session slot.
func Patients() *Slot {
	ensure()
	return patients
}

// Specialists returns the shared specialist session slot.
func Specialists() *Slot {
	ensure()
	return specialists
}
