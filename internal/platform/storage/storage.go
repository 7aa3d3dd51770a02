// Package storage defines the backend-neutral persistence contract shared by
// every record kind in the portal, together with the in-memory and
// file-per-record backends. The relational backend lives with each domain
// package because its SQL is entity specific.
//
// Every operation is total: faults are logged and collapsed into a false or
// missing result, so callers never see an error value cross this boundary.
package storage

import "context"

// Record is any entity addressable by a business-meaningful natural key
// (health-card number, specialist composite, patient+date+time tuple).
type Record interface {
	NaturalKey() string
}

// Credentialed is a record kind that can log in with an email and password.
type Credentialed interface {
	Record
	LoginEmail() string
	LoginPassword() string
}

// Store is the uniform contract every backend implements for one record
// kind. Save is at-most-once create: it refuses to overwrite an existing
// record at the same natural key. GetAll carries no ordering guarantee.
type Store[T Record] interface {
	Save(ctx context.Context, rec T) bool
	Find(ctx context.Context, tmpl T) (T, bool)
	Update(ctx context.Context, rec T) bool
	Delete(ctx context.Context, rec T) bool
	GetAll(ctx context.Context) []T
}

// CredentialStore adds the case-insensitive email lookup needed by the
// authentication path. An empty email is a miss, never an error.
type CredentialStore[T Credentialed] interface {
	Store[T]
	FindByEmail(ctx context.Context, email string) (T, bool)
}
