package registrations

import "context"

// Repository is the persistence contract for the registration ledger.
//
// Insert must be atomic with respect to concurrent inserts for the same
// event: it admits the row only while the event's registration count is
// below capacity, and must surface a duplicate (user, event) pair as
// ErrAlreadyRegistered and a full event as ErrEventFull.
type Repository interface {
	Insert(ctx context.Context, userID, eventID int64) (Registration, error)
	Delete(ctx context.Context, userID, eventID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]Registration, error)
	CountForEvent(ctx context.Context, eventID int64) (int, error)
	EventCapacity(ctx context.Context, eventID int64) (int, error)
	IsRegistered(ctx context.Context, userID, eventID int64) (bool, error)
}
