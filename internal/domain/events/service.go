package events

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned when the referenced event does not exist.
	ErrNotFound = errors.New("event not found")

	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Service handles event CRUD and search.
type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		logger:   logger.With().Str("component", "events").Logger(),
	}
}

// List returns a window of events ordered by date ascending, applying any
// search filters, along with the unwindowed total.
func (s *Service) List(ctx context.Context, filters Filters, page Page) (ListResult, error) {
	if page.Limit <= 0 {
		page.Limit = DefaultLimit
	}
	return s.repo.List(ctx, filters, page)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, params CreateParams, createdBy int64) (Event, error) {
	if err := s.validate.Struct(params); err != nil {
		return Event{}, fmt.Errorf("%w: %s", ErrInvalidInput, validationDetail(err))
	}

	event, err := s.repo.Create(ctx, params, createdBy)
	if err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info().Int64("event_id", event.ID).Int64("created_by", createdBy).Msg("event created")
	return event, nil
}

// Update applies a partial update. Supplied fields are validated against the
// same bounds as creation before anything is written.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (*Event, error) {
	if err := s.validatePatch(patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	s.logger.Info().Int64("event_id", id).Msg("event deleted")
	return nil
}

func (s *Service) ListByCreator(ctx context.Context, userID int64) ([]Event, error) {
	return s.repo.ListByCreator(ctx, userID)
}

func (s *Service) validatePatch(patch Patch) error {
	if patch.Name != nil && (len(*patch.Name) < 1 || len(*patch.Name) > 255) {
		return fmt.Errorf("%w: name must be 1-255 characters", ErrInvalidInput)
	}
	if patch.Description != nil && len(*patch.Description) > 2000 {
		return fmt.Errorf("%w: description must be at most 2000 characters", ErrInvalidInput)
	}
	if patch.Location != nil && (len(*patch.Location) < 1 || len(*patch.Location) > 255) {
		return fmt.Errorf("%w: location must be 1-255 characters", ErrInvalidInput)
	}
	if patch.Capacity != nil && (*patch.Capacity < 1 || *patch.Capacity > 10000) {
		return fmt.Errorf("%w: capacity must be between 1 and 10000", ErrInvalidInput)
	}
	return nil
}

// FilterError reports an invalid query parameter.
type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParseListParams parses skip/limit/search/location query parameters.
// Absent search and location leave the filters empty, which lists everything.
func ParseListParams(values url.Values) (Filters, Page, error) {
	filters := Filters{
		Query:    strings.TrimSpace(values.Get("search")),
		Location: strings.TrimSpace(values.Get("location")),
	}
	page := Page{Skip: 0, Limit: DefaultLimit}

	if raw := strings.TrimSpace(values.Get("skip")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return filters, page, FilterError{Field: "skip", Message: "must be a number"}
		}
		if parsed < 0 {
			return filters, page, FilterError{Field: "skip", Message: "must be >= 0"}
		}
		page.Skip = parsed
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return filters, page, FilterError{Field: "limit", Message: "must be a number"}
		}
		if parsed < 1 || parsed > MaxLimit {
			return filters, page, FilterError{Field: "limit", Message: "must be between 1 and 100"}
		}
		page.Limit = parsed
	}

	return filters, page, nil
}

func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(fields, ", ")
}
