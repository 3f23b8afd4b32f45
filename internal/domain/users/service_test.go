package users

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gatherhub/server/internal/auth"
)

type fakeRepo struct {
	users  map[string]*User
	nextID int64
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*User), nextID: 1}
}

func (f *fakeRepo) Create(_ context.Context, params CreateParams) (User, error) {
	if _, ok := f.users[params.Email]; ok {
		return User{}, ErrEmailTaken
	}
	user := User{
		ID:           f.nextID,
		Email:        params.Email,
		FullName:     params.FullName,
		PasswordHash: params.PasswordHash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	f.nextID++
	f.users[params.Email] = &user
	return user, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	if user, ok := f.users[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, ErrNotFound
}

func newTestService(repo Repository) *Service {
	return NewService(repo, zerolog.Nop())
}

func TestSignup(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(repo)

	user, err := service.Signup(context.Background(), SignupParams{
		Email:    "Alice@Example.com",
		FullName: "Alice Smith",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.Equal(t, "alice@example.com", user.Email)
	require.Equal(t, "Alice Smith", user.FullName)
	require.True(t, user.IsActive)
	require.NotEqual(t, "secret123", user.PasswordHash)
	require.True(t, auth.VerifyPassword("secret123", user.PasswordHash))
}

func TestSignupDuplicateEmailDifferentCase(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(repo)

	_, err := service.Signup(context.Background(), SignupParams{
		Email:    "alice@example.com",
		FullName: "Alice Smith",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = service.Signup(context.Background(), SignupParams{
		Email:    "ALICE@EXAMPLE.COM",
		FullName: "Alice Again",
		Password: "secret456",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignupValidation(t *testing.T) {
	service := newTestService(newFakeRepo())

	cases := []struct {
		name   string
		params SignupParams
	}{
		{"bad email", SignupParams{Email: "not-an-email", FullName: "Alice", Password: "secret123"}},
		{"missing name", SignupParams{Email: "alice@example.com", FullName: "", Password: "secret123"}},
		{"short password", SignupParams{Email: "alice@example.com", FullName: "Alice", Password: "12345"}},
		{"long password", SignupParams{Email: "alice@example.com", FullName: "Alice", Password: strings.Repeat("x", 101)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Signup(context.Background(), tc.params)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSignupLongPassword(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(repo)
	password := strings.Repeat("x", 100)

	_, err := service.Signup(context.Background(), SignupParams{
		Email:    "alice@example.com",
		FullName: "Alice Smith",
		Password: password,
	})
	require.NoError(t, err)

	user, err := service.Authenticate(context.Background(), "alice@example.com", password)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(repo)

	_, err := service.Signup(context.Background(), SignupParams{
		Email:    "alice@example.com",
		FullName: "Alice Smith",
		Password: "secret123",
	})
	require.NoError(t, err)

	user, err := service.Authenticate(context.Background(), "Alice@Example.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(repo)

	_, err := service.Signup(context.Background(), SignupParams{
		Email:    "alice@example.com",
		FullName: "Alice Smith",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = service.Authenticate(context.Background(), "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	service := newTestService(newFakeRepo())

	// Unknown email and wrong password produce the same error.
	_, err := service.Authenticate(context.Background(), "nobody@example.com", "secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
