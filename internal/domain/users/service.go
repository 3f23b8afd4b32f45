package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/gatherhub/server/internal/auth"
)

var (
	// ErrEmailTaken is returned when signing up with an email that already
	// has an account, regardless of casing.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrNotFound is returned when a user lookup fails.
	ErrNotFound = errors.New("user not found")

	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

// Service handles account creation and authentication.
type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

// SignupParams is the validated signup input.
type SignupParams struct {
	Email    string `validate:"required,email,max=255"`
	FullName string `validate:"required,min=1,max=255"`
	Password string `validate:"required,min=6,max=100"`
}

// Signup creates a new account. The email is stored lowercased and the
// password is stored only as a bcrypt digest.
func (s *Service) Signup(ctx context.Context, params SignupParams) (User, error) {
	if err := s.validate.Struct(params); err != nil {
		return User{}, fmt.Errorf("%w: %s", ErrInvalidInput, validationDetail(err))
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return User{}, fmt.Errorf("signup: %w", err)
	}

	user, err := s.repo.Create(ctx, CreateParams{
		Email:        email,
		FullName:     params.FullName,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

// Authenticate looks up the user by lowercased email and verifies the
// password. Unknown email and wrong password are indistinguishable.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByEmail resolves a user from a token subject. A missing user (deleted
// after token issuance) surfaces as ErrNotFound.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
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
