package events

import "time"

// Event is a scheduled happening users can register for. RegisteredCount is
// derived from the registration ledger, not stored on the row.
type Event struct {
	ID              int64
	Name            string
	Description     string
	Location        string
	DateTime        time.Time
	Capacity        int
	RegisteredCount int
	CreatedBy       int64
	CreatedAt       time.Time
}

// CreateParams is the validated input for a new event.
type CreateParams struct {
	Name        string    `validate:"required,min=1,max=255"`
	Description string    `validate:"max=2000"`
	Location    string    `validate:"required,min=1,max=255"`
	DateTime    time.Time `validate:"required"`
	Capacity    int       `validate:"required,gt=0,lte=10000"`
}

// Patch is an explicit partial update: each non-nil field overwrites the
// stored value, nil fields are untouched.
type Patch struct {
	Name        *string
	Description *string
	Location    *string
	DateTime    *time.Time
	Capacity    *int
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Location == nil &&
		p.DateTime == nil && p.Capacity == nil
}

// Filters narrows event listings. Query matches name or description,
// Location matches location; both are case-insensitive substring matches
// and are ANDed when both are set.
type Filters struct {
	Query    string
	Location string
}

// Page is offset pagination. Limit is bounded to 1..100 by ParseListParams.
type Page struct {
	Skip  int
	Limit int
}

// ListResult is one window of events plus the unwindowed total.
type ListResult struct {
	Events []Event
	Total  int
}
