package storage

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

// RAMStore keeps all records of one kind in a process-wide copy-on-write
// slice. Readers load an atomic snapshot and never block; writers serialize
// on a mutex and publish a fresh slice. Lookup is a linear scan, which is
// fine at the record counts a single clinic produces.
type RAMStore[T Record] struct {
	mu   sync.Mutex
	snap atomic.Pointer[[]T]
}

// NewRAMStore returns an empty in-memory store.
func NewRAMStore[T Record]() *RAMStore[T] {
	s := &RAMStore[T]{}
	empty := make([]T, 0)
	s.snap.Store(&empty)
	return s
}

func (s *RAMStore[T]) records() []T { return *s.snap.Load() }

// Save appends the record unless one already exists at the same key.
func (s *RAMStore[T]) Save(_ context.Context, rec T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.records()
	for _, r := range cur {
		if r.NaturalKey() == rec.NaturalKey() {
			return false
		}
	}
	next := make([]T, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, rec)
	s.snap.Store(&next)
	return true
}

// Find scans the current snapshot for the template's natural key.
func (s *RAMStore[T]) Find(_ context.Context, tmpl T) (T, bool) {
	for _, r := range s.records() {
		if r.NaturalKey() == tmpl.NaturalKey() {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Update replaces the record at the same key, false if none exists.
func (s *RAMStore[T]) Update(_ context.Context, rec T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.records()
	for i, r := range cur {
		if r.NaturalKey() == rec.NaturalKey() {
			next := make([]T, len(cur))
			copy(next, cur)
			next[i] = rec
			s.snap.Store(&next)
			return true
		}
	}
	return false
}

// Delete removes the record at the template's key, false if absent.
func (s *RAMStore[T]) Delete(_ context.Context, rec T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.records()
	for i, r := range cur {
		if r.NaturalKey() == rec.NaturalKey() {
			next := make([]T, 0, len(cur)-1)
			next = append(next, cur[:i]...)
			next = append(next, cur[i+1:]...)
			s.snap.Store(&next)
			return true
		}
	}
	return false
}

// GetAll returns a copy of the snapshot in insertion order.
func (s *RAMStore[T]) GetAll(_ context.Context) []T {
	cur := s.records()
	out := make([]T, len(cur))
	copy(out, cur)
	return out
}

// RAMCredentialStore is a RAMStore for records that can authenticate.
type RAMCredentialStore[T Credentialed] struct {
	*RAMStore[T]
}

// NewRAMCredentialStore returns an empty in-memory credential store.
func NewRAMCredentialStore[T Credentialed]() *RAMCredentialStore[T] {
	return &RAMCredentialStore[T]{RAMStore: NewRAMStore[T]()}
}

// FindByEmail matches case-insensitively; an empty email never matches.
func (s *RAMCredentialStore[T]) FindByEmail(_ context.Context, email string) (T, bool) {
	var zero T
	if email == "" {
		return zero, false
	}
	for _, r := range s.records() {
		if strings.EqualFold(r.LoginEmail(), email) {
			return r, true
		}
	}
	return zero, false
}
