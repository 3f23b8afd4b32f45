package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherhub/server/internal/domain/registrations"
)

var _ registrations.Repository = (*RegistrationRepository)(nil)

type RegistrationRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// Insert admits the registration only while the event is below capacity.
// The capacity predicate and the insert execute as one statement, and the
// unique (user_id, event_id) constraint rejects duplicates, so two
// concurrent registrations cannot oversubscribe an event or double-register
// a user.
func (r *RegistrationRepository) Insert(ctx context.Context, userID, eventID int64) (registrations.Registration, error) {
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
INSERT INTO event_registrations (user_id, event_id)
SELECT $1, $2
 WHERE (SELECT count(*) FROM event_registrations WHERE event_id = $2)
     < (SELECT capacity FROM events WHERE id = $2)
RETURNING id, user_id, event_id, registered_at
`, userID, eventID)

	var reg registrations.Registration
	err := row.Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.RegisteredAt)
	if err != nil {
		if isUniqueViolation(err, "event_registrations_user_event_key") {
			return registrations.Registration{}, registrations.ErrAlreadyRegistered
		}
		if errors.Is(err, pgx.ErrNoRows) {
			// Zero rows means the capacity predicate failed; the event's
			// existence was checked before this call.
			return registrations.Registration{}, registrations.ErrEventFull
		}
		return registrations.Registration{}, fmt.Errorf("insert registration: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) Delete(ctx context.Context, userID, eventID int64) (bool, error) {
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
DELETE FROM event_registrations
 WHERE user_id = $1 AND event_id = $2
`, userID, eventID)
	if err != nil {
		return false, fmt.Errorf("delete registration: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RegistrationRepository) ListByUser(ctx context.Context, userID int64) ([]registrations.Registration, error) {
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, event_id, registered_at
  FROM event_registrations
 WHERE user_id = $1
 ORDER BY registered_at DESC, id DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	items := make([]registrations.Registration, 0)
	for rows.Next() {
		var reg registrations.Registration
		if err := rows.Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		items = append(items, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return items, nil
}

func (r *RegistrationRepository) CountForEvent(ctx context.Context, eventID int64) (int, error) {
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT count(*) FROM event_registrations WHERE event_id = $1
`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func (r *RegistrationRepository) EventCapacity(ctx context.Context, eventID int64) (int, error) {
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	var capacity int
	err := r.pool.QueryRow(ctx, `
SELECT capacity FROM events WHERE id = $1
`, eventID).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, registrations.ErrEventNotFound
		}
		return 0, fmt.Errorf("event capacity: %w", err)
	}
	return capacity, nil
}

func (r *RegistrationRepository) IsRegistered(ctx context.Context, userID, eventID int64) (bool, error) {
	ctx, cancel := boundContext(ctx, r.timeout)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM event_registrations WHERE user_id = $1 AND event_id = $2
)
`, userID, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return exists, nil
}
