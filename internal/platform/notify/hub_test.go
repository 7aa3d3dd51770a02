package notify

import (
	"testing"

	"github.com/google/uuid"
)

type recorder struct {
	tag  string
	seen []Event
	seq  *[]string
}

func (r *recorder) Update(e Event) {
	r.seen = append(r.seen, e)
	if r.seq != nil {
		*r.seq = append(*r.seq, r.tag)
	}
}

func TestHub_PublishDeliversInAttachmentOrder(t *testing.T) {
	h := NewHub()
	var seq []string
	first := &recorder{tag: "first", seq: &seq}
	second := &recorder{tag: "second", seq: &seq}
	h.Attach(first)
	h.Attach(second)

	h.Publish(Event{PatientKey: "AAA", SpecialistID: 1})
	h.Publish(Event{PatientKey: "BBB", SpecialistID: 1})

	want := []string{"first", "second", "first", "second"}
	if len(seq) != len(want) {
		t.Fatalf("expected %d deliveries, got %d", len(want), len(seq))
	}
	for i, tag := range want {
		if seq[i] != tag {
			t.Errorf("delivery %d: got %q, want %q", i, seq[i], tag)
		}
	}
	if len(first.seen) != 2 || len(second.seen) != 2 {
		t.Error("every listener must see every event exactly once")
	}
}

func TestHub_PublishStampsEvent(t *testing.T) {
	h := NewHub()
	e := h.Publish(Event{PatientKey: "AAA", SpecialistID: 1})
	if e.ID == uuid.Nil {
		t.Error("published event must carry an id")
	}
	if e.CreatedAt.IsZero() {
		t.Error("published event must carry a timestamp")
	}
}

func TestHub_DetachStopsDelivery(t *testing.T) {
	h := NewHub()
	kept := &recorder{}
	gone := &recorder{}
	h.Attach(kept)
	h.Attach(gone)

	h.Publish(Event{PatientKey: "AAA"})
	h.Detach(gone)
	h.Publish(Event{PatientKey: "BBB"})

	if len(gone.seen) != 1 {
		t.Errorf("detached listener received %d events, want 1", len(gone.seen))
	}
	if len(kept.seen) != 2 {
		t.Errorf("remaining listener received %d events, want 2", len(kept.seen))
	}
	h.Detach(gone)
}

func TestHub_HistoryIsAppendOnly(t *testing.T) {
	h := NewHub()
	if len(h.History()) != 0 {
		t.Fatal("new hub must have empty history")
	}

	h.Publish(Event{PatientKey: "AAA", SpecialistID: 1})
	h.Publish(Event{PatientKey: "BBB", SpecialistID: 2})

	hist := h.History()
	if len(hist) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(hist))
	}
	if hist[0].PatientKey != "AAA" || hist[1].PatientKey != "BBB" {
		t.Error("history must keep publish order, oldest first")
	}

	hist[0].PatientKey = "mutated"
	if h.History()[0].PatientKey != "AAA" {
		t.Error("History must return a copy, not the backing slice")
	}
}

func TestHub_ForSpecialistFilters(t *testing.T) {
	h := NewHub()
	h.Publish(Event{PatientKey: "AAA", SpecialistID: 1})
	h.Publish(Event{PatientKey: "BBB", SpecialistID: 2})
	h.Publish(Event{PatientKey: "CCC", SpecialistID: 1})

	mine := h.ForSpecialist(1)
	if len(mine) != 2 {
		t.Fatalf("expected 2 events for specialist 1, got %d", len(mine))
	}
	if mine[0].PatientKey != "AAA" || mine[1].PatientKey != "CCC" {
		t.Error("filtered history must keep publish order")
	}
	if len(h.ForSpecialist(99)) != 0 {
		t.Error("unknown specialist should have no events")
	}
}

func TestDefaultHubIsShared(t *testing.T) {
	if Default() != Default() {
		t.Error("Default must return the same hub instance")
	}
}
