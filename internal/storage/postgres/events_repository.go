package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherhub/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

const eventColumns = `
e.id, e.name, e.description, e.location, e.date_time, e.capacity,
e.created_by, e.created_at,
(SELECT count(*) FROM event_registrations reg WHERE reg.event_id = e.id) AS registered_count`

func (r *EventRepository) List(ctx context.Context, filters events.Filters, page events.Page) (events.ListResult, error) {
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	// Empty filter strings disable the corresponding predicate.
	where := `
 WHERE ($1 = '' OR e.name ILIKE '%' || $1 || '%' OR e.description ILIKE '%' || $1 || '%')
   AND ($2 = '' OR e.location ILIKE '%' || $2 || '%')`

	var total int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM events e`+where,
		filters.Query, filters.Location).Scan(&total)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("count events: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+eventColumns+`
  FROM events e`+where+`
 ORDER BY e.date_time ASC, e.id ASC
 OFFSET $3 LIMIT $4
`, filters.Query, filters.Location, page.Skip, page.Limit)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items, err := collectEvents(rows)
	if err != nil {
		return events.ListResult{}, err
	}
	return events.ListResult{Events: items, Total: total}, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*events.Event, error) {
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE e.id = $1
`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &event, nil
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams, createdBy int64) (events.Event, error) {
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
INSERT INTO events (name, description, location, date_time, capacity, created_by)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, name, description, location, date_time, capacity, created_by, created_at, 0
`, params.Name, params.Description, params.Location, params.DateTime, params.Capacity, createdBy)

	event, err := scanEvent(row)
	if err != nil {
		return events.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Update(ctx context.Context, id int64, patch events.Patch) (*events.Event, error) {
	assignments := make([]string, 0, 5)
	args := make([]any, 0, 6)

	appendSet := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		appendSet("name", *patch.Name)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.Location != nil {
		appendSet("location", *patch.Location)
	}
	if patch.DateTime != nil {
		appendSet("date_time", *patch.DateTime)
	}
	if patch.Capacity != nil {
		appendSet("capacity", *patch.Capacity)
	}
	if len(assignments) == 0 {
		return r.GetByID(ctx, id)
	}

	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	args = append(args, id)
	query := fmt.Sprintf(`
UPDATE events e SET %s
 WHERE e.id = $%d
RETURNING %s`, strings.Join(assignments, ", "), len(args), eventColumns)

	row := r.pool.QueryRow(ctx, query, args...)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return &event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *EventRepository) ListByCreator(ctx context.Context, userID int64) ([]events.Event, error) {
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE e.created_by = $1
 ORDER BY e.date_time ASC, e.id ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list events by creator: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func scanEvent(row pgx.Row) (events.Event, error) {
	var event events.Event
	var description *string
	err := row.Scan(
		&event.ID,
		&event.Name,
		&description,
		&event.Location,
		&event.DateTime,
		&event.Capacity,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.RegisteredCount,
	)
	if err != nil {
		return events.Event{}, err
	}
	event.Description = derefString(description)
	return event, nil
}

func collectEvents(rows pgx.Rows) ([]events.Event, error) {
	items := make([]events.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}

// derefString safely dereferences a string pointer, returning empty string if nil
func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
