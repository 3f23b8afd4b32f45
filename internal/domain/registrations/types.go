package registrations

import "time"

// Registration links one user to one event. At most one exists per
// (user, event) pair; the store enforces this with a unique constraint.
type Registration struct {
	ID           int64
	UserID       int64
	EventID      int64
	RegisteredAt time.Time
}
