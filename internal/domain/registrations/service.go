package registrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var (
	// ErrEventNotFound is returned when registering for an event that does
	// not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrEventFull is returned when the event's registration count has
	// reached its capacity.
	ErrEventFull = errors.New("event is full")

	// ErrAlreadyRegistered is returned on a second registration for the
	// same (user, event) pair.
	ErrAlreadyRegistered = errors.New("already registered for this event")

	// ErrNotRegistered is returned when unregistering without an existing
	// registration.
	ErrNotRegistered = errors.New("registration not found")
)

// Service maintains the registration ledger and its two invariants:
// at most one registration per (user, event) pair, and never more
// registrations than the event's capacity.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "registrations").Logger(),
	}
}

// Register admits a new registration. Checks run in order: event existence,
// capacity, duplicate pair. The capacity and uniqueness checks here decide
// the user-facing error; the store re-enforces both atomically on insert, so
// concurrent registrations cannot oversubscribe an event.
func (s *Service) Register(ctx context.Context, userID, eventID int64) (Registration, error) {
	capacity, err := s.repo.EventCapacity(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return Registration{}, ErrEventNotFound
		}
		return Registration{}, fmt.Errorf("event capacity: %w", err)
	}

	count, err := s.repo.CountForEvent(ctx, eventID)
	if err != nil {
		return Registration{}, fmt.Errorf("count registrations: %w", err)
	}
	if count >= capacity {
		return Registration{}, ErrEventFull
	}

	registered, err := s.repo.IsRegistered(ctx, userID, eventID)
	if err != nil {
		return Registration{}, fmt.Errorf("check registration: %w", err)
	}
	if registered {
		return Registration{}, ErrAlreadyRegistered
	}

	registration, err := s.repo.Insert(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, ErrEventFull) || errors.Is(err, ErrAlreadyRegistered) {
			return Registration{}, err
		}
		return Registration{}, fmt.Errorf("insert registration: %w", err)
	}

	s.logger.Info().
		Int64("user_id", userID).
		Int64("event_id", eventID).
		Msg("registration created")
	return registration, nil
}

// Unregister removes the caller's registration. A missing registration is
// reported as ErrNotRegistered; a repeat call gets the same answer.
func (s *Service) Unregister(ctx context.Context, userID, eventID int64) error {
	removed, err := s.repo.Delete(ctx, userID, eventID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if !removed {
		return ErrNotRegistered
	}

	s.logger.Info().
		Int64("user_id", userID).
		Int64("event_id", eventID).
		Msg("registration removed")
	return nil
}

// ListForUser returns the caller's registrations, most recent first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Registration, error) {
	return s.repo.ListByUser(ctx, userID)
}

// CountForEvent returns the number of registrations for an event.
func (s *Service) CountForEvent(ctx context.Context, eventID int64) (int, error) {
	return s.repo.CountForEvent(ctx, eventID)
}

// IsRegistered reports whether the user holds a registration for the event.
func (s *Service) IsRegistered(ctx context.Context, userID, eventID int64) (bool, error) {
	return s.repo.IsRegistered(ctx, userID, eventID)
}
