package identity

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/clinicportal/clinicportal/internal/platform/storage"
)

// NewPatientRAMStore returns an in-memory patient store.
func NewPatientRAMStore() storage.CredentialStore[Patient] {
	return storage.NewRAMCredentialStore[Patient]()
}

// NewSpecialistRAMStore returns an in-memory specialist store that assigns
// surrogate ids on save.
func NewSpecialistRAMStore() storage.CredentialStore[Specialist] {
	return newSpecialistStore(storage.NewRAMCredentialStore[Specialist]())
}

// NewPatientFileStore stores one JSON document per patient under
// dir/pazienti, named by health-card number.
func NewPatientFileStore(dir string, log zerolog.Logger) storage.CredentialStore[Patient] {
	return storage.NewFileCredentialStore[Patient](
		filepath.Join(dir, "pazienti"),
		func(p Patient) string { return p.HealthCard },
		log.With().Str("store", "patient-file").Logger(),
	)
}

// NewSpecialistFileStore stores one JSON document per specialist under
// dir/specialista, named by sanitized specialization, and assigns surrogate
// ids on save.
func NewSpecialistFileStore(dir string, log zerolog.Logger) storage.CredentialStore[Specialist] {
	return newSpecialistStore(storage.NewFileCredentialStore[Specialist](
		filepath.Join(dir, "specialista"),
		specializationFileName,
		log.With().Str("store", "specialist-file").Logger(),
	))
}

// specialistStore decorates the RAM and file backends with surrogate-id
// assignment, which the relational backend gets from its sequence instead.
// Ids start at 1 and grow from the highest id currently stored, so they stay
// stable across restarts of the file backend.
type specialistStore struct {
	storage.CredentialStore[Specialist]
	mu sync.Mutex
}

func newSpecialistStore(inner storage.CredentialStore[Specialist]) *specialistStore {
	return &specialistStore{CredentialStore: inner}
}

func (s *specialistStore) Save(ctx context.Context, rec Specialist) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == 0 {
		var max int64
		for _, sp := range s.CredentialStore.GetAll(ctx) {
			if sp.ID > max {
				max = sp.ID
			}
		}
		rec.ID = max + 1
	}
	return s.CredentialStore.Save(ctx, rec)
}
