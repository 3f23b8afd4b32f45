package events

import "context"

// Repository is the persistence contract for event records. List and Get
// populate RegisteredCount. Results are ordered by event date ascending.
type Repository interface {
	List(ctx context.Context, filters Filters, page Page) (ListResult, error)
	GetByID(ctx context.Context, id int64) (*Event, error)
	Create(ctx context.Context, params CreateParams, createdBy int64) (Event, error)
	Update(ctx context.Context, id int64, patch Patch) (*Event, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ListByCreator(ctx context.Context, userID int64) ([]Event, error)
}
