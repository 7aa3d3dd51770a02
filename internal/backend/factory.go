// Package backend selects and wires the storage backend the whole portal
// runs on. The three kinds are interchangeable behind identical contracts;
// picking one is a pure construction-time decision and an unknown kind is a
// configuration error the caller must treat as fatal.
package backend

import (
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/clinicportal/clinicportal/internal/domain/booking"
	"github.com/clinicportal/clinicportal/internal/domain/identity"
	"github.com/clinicportal/clinicportal/internal/platform/storage"
)

// Kind enumerates the storage backends. The numeric values are the wire
// format of the startup configuration and must not be reordered.
type Kind int

const (
	RAM      Kind = 0
	Database Kind = 1
	File     Kind = 2
)

func (k Kind) String() string {
	switch k {
	case RAM:
		return "ram"
	case Database:
		return "database"
	case File:
		return "file"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Set is one coherent trio of repositories, all wired to the same backend.
type Set struct {
	Patients    *identity.UserRepository[identity.Patient]
	Specialists *identity.UserRepository[identity.Specialist]
	Visits      *booking.AppointmentRepository
}

// The RAM backend's lists are process-wide: every Set built with Kind RAM
// shares them, which is what keeps one logged-in actor per kind meaningful
// across the whole process.
var (
	ramOnce        sync.Once
	ramPatients    storage.CredentialStore[identity.Patient]
	ramSpecialists storage.CredentialStore[identity.Specialist]
	ramVisits      storage.Store[booking.Visit]
)

func ramStores() (storage.CredentialStore[identity.Patient], storage.CredentialStore[identity.Specialist], storage.Store[booking.Visit]) {
	ramOnce.Do(func() {
		ramPatients = identity.NewPatientRAMStore()
		ramSpecialists = identity.NewSpecialistRAMStore()
		ramVisits = booking.NewVisitRAMStore()
	})
	return ramPatients, ramSpecialists, ramVisits
}

// New builds the repository set for the configured kind. dataDir is only
// read for the file backend and pool only for the database backend; the
// unused one may be zero. An unknown kind is returned as an error so the
// caller can refuse to start.
func New(kind Kind, dataDir string, pool *pgxpool.Pool, log zerolog.Logger) (*Set, error) {
	switch kind {
	case RAM:
		p, sp, v := ramStores()
		return wire(p, sp, v), nil
	case File:
		return wire(
			identity.NewPatientFileStore(dataDir, log),
			identity.NewSpecialistFileStore(dataDir, log),
			booking.NewVisitFileStore(dataDir, log),
		), nil
	case Database:
		if pool == nil {
			return nil, fmt.Errorf("database backend selected but no connection pool configured")
		}
		return wire(
			identity.NewPatientStorePG(pool, log),
			identity.NewSpecialistStorePG(pool, log),
			booking.NewVisitStorePG(pool, log),
		), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %d", int(kind))
	}
}

func wire(p storage.CredentialStore[identity.Patient], sp storage.CredentialStore[identity.Specialist], v storage.Store[booking.Visit]) *Set {
	return &Set{
		Patients:    identity.NewUserRepository[identity.Patient](p),
		Specialists: identity.NewUserRepository[identity.Specialist](sp),
		Visits:      booking.NewAppointmentRepository(v),
	}
}
