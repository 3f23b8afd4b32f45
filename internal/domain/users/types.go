package users

import "time"

// User is a registered account. PasswordHash never leaves the domain layer;
// handlers serialize their own response shapes.
type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// CreateParams carries the fields persisted for a new user. Email is already
// lowercased and Password already hashed by the service.
type CreateParams struct {
	Email        string
	FullName     string
	PasswordHash string
}
