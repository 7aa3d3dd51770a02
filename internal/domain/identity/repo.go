package identity

import (
	"context"

	"github.com/clinicportal/clinicportal/internal/platform/storage"
)

// UserRepository adapts a credential store to the domain-shaped queries the
// portal needs, most importantly credential checking. It is generic over the
// actor kind so Patient and Specialist share one implementation.
type UserRepository[T storage.Credentialed] struct {
	store storage.CredentialStore[T]
}

// NewUserRepository wraps the given store.
func NewUserRepository[T storage.Credentialed](store storage.CredentialStore[T]) *UserRepository[T] {
	return &UserRepository[T]{store: store}
}

// Authenticate looks the account up by email and compares the password with
// exact string equality. Unknown email, wrong password and storage faults
// all collapse to the same miss so a caller cannot probe which one happened.
func (r *UserRepository[T]) Authenticate(ctx context.Context, email, password string) (T, bool) {
	var zero T
	if email == "" || password == "" {
		return zero, false
	}
	u, ok := r.store.FindByEmail(ctx, email)
	if !ok || u.LoginPassword() != password {
		return zero, false
	}
	return u, true
}

// Save persists a new account; false when one exists at the same key.
func (r *UserRepository[T]) Save(ctx context.Context, rec T) bool {
	return r.store.Save(ctx, rec)
}

// Find looks up by the natural key embedded in the template.
func (r *UserRepository[T]) Find(ctx context.Context, tmpl T) (T, bool) {
	return r.store.Find(ctx, tmpl)
}

// FindByEmail looks up by login email, case-insensitively.
func (r *UserRepository[T]) FindByEmail(ctx context.Context, email string) (T, bool) {
	return r.store.FindByEmail(ctx, email)
}

// Update overwrites an existing account.
func (r *UserRepository[T]) Update(ctx context.Context, rec T) bool {
	return r.store.Update(ctx, rec)
}

// Delete removes the account at the template's key.
func (r *UserRepository[T]) Delete(ctx context.Context, rec T) bool {
	return r.store.Delete(ctx, rec)
}

// GetAll returns every account; ordering is backend-dependent.
func (r *UserRepository[T]) GetAll(ctx context.Context) []T {
	return r.store.GetAll(ctx)
}
