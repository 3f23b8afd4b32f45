package users

import "context"

// Repository is the persistence contract for user records. Implementations
// must enforce case-insensitive email uniqueness at the store and surface
// violations as ErrEmailTaken.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
