// Package notify is the booking-event fan-out. The Hub is a classic
// subject/observer broadcaster: listeners receive every published event
// exactly once, in attachment order, synchronously on the publishing
// goroutine. A booking is not complete until every listener has returned.
// The hub also retains an append-only history so screens can show events
// that fired before they attached.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event describes one confirmed booking.
type Event struct {
	ID           uuid.UUID `json:"id"`
	PatientKey   string    `json:"patient_key"`
	PatientName  string    `json:"patient_name,omitempty"`
	SpecialistID int64     `json:"specialist_id"`
	Date         time.Time `json:"date"`
	Time         string    `json:"time"`
	Kind         string    `json:"kind"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Listener receives booking events.
type Listener interface {
	Update(Event)
}

// Hub broadcasts events to attached listeners. One mutex covers attachment,
// detachment and publishing, so no listener is invoked once Detach has begun
// and no event slips past a registration in progress.
type Hub struct {
	mu        sync.Mutex
	listeners []Listener
	history   []Event
}

// NewHub returns an empty hub. Most callers want Default.
func NewHub() *Hub {
	return &Hub{}
}

// Attach registers the listener. Attaching the same listener twice delivers
// events twice; callers own that discipline.
func (h *Hub) Attach(l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, l)
}

// Detach removes the listener. Unknown listeners are ignored.
func (h *Hub) Detach(l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, reg := range h.listeners {
		if reg == l {
			h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
			return
		}
	}
}

// Publish stamps the event, appends it to history and invokes every
// listener in attachment order. The completed event is returned.
func (h *Hub) Publish(e Event) Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now().UTC()
	h.history = append(h.history, e)
	for _, l := range h.listeners {
		l.Update(e)
	}
	return e
}

// History returns a copy of every event ever published, oldest first.
func (h *Hub) History() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Event, len(h.history))
	copy(out, h.history)
	return out
}

// ForSpecialist returns the history slice addressed to one specialist,
// oldest first.
func (h *Hub) ForSpecialist(id int64) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Event
	for _, e := range h.history {
		if e.SpecialistID == id {
			out = append(out, e)
		}
	}
	return out
}

// LogListener writes one structured log line per booking event. The server
// attaches it at startup so every booking is visible in the log stream.
type LogListener struct {
	Log zerolog.Logger
}

// Update implements Listener.
func (l LogListener) Update(e Event) {
	l.Log.Info().
		Str("event_id", e.ID.String()).
		Str("patient", e.PatientKey).
		Int64("specialist_id", e.SpecialistID).
		Str("date", e.Date.Format("2006-01-02")).
		Str("time", e.Time).
		Str("kind", e.Kind).
		Msg("visit booked")
}

var (
	defaultOnce sync.Once
	defaultHub  *Hub
)

// Default returns the process-wide hub, created on first access and alive
// for the process lifetime.
func Default() *Hub {
	defaultOnce.Do(func() {
		defaultHub = NewHub()
	})
	return defaultHub
}
