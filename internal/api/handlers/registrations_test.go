package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gatherhub/server/internal/domain/users"
)

func newRegistrationsHandler(f *fixture) *RegistrationsHandler {
	return NewRegistrationsHandler(f.regs, "test")
}

func registerRequest(eventID int64, user *users.User) *http.Request {
	req := authedRequest(http.MethodPost, fmt.Sprintf("/events/%d/register", eventID), "", user)
	req.SetPathValue("id", fmt.Sprint(eventID))
	return req
}

func TestRegisterHandler(t *testing.T) {
	f := newFixture()
	handler := newRegistrationsHandler(f)
	event := seedEvent(t, f, "Jazz Night", "Portland", 50, 1)
	user := users.User{ID: 7}

	rec := httptest.NewRecorder()
	handler.Register(rec, registerRequest(event.ID, &user))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp registrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(7), resp.UserID)
	require.Equal(t, event.ID, resp.EventID)
	require.False(t, resp.RegisteredAt.IsZero())
}

func TestRegisterHandlerEventNotFound(t *testing.T) {
	f := newFixture()
	handler := newRegistrationsHandler(f)
	user := users.User{ID: 7}

	rec := httptest.NewRecorder()
	handler.Register(rec, registerRequest(42, &user))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Event not found")
}

func TestRegisterHandlerEventFull(t *testing.T) {
	f := newFixture()
	handler := newRegistrationsHandler(f)
	event := seedEvent(t, f, "Jazz Night", "Portland", 1, 1)

	first := users.User{ID: 7}
	rec := httptest.NewRecorder()
	handler.Register(rec, registerRequest(event.ID, &first))
	require.Equal(t, http.StatusCreated, rec.Code)

	second := users.User{ID: 8}
	rec = httptest.NewRecorder()
	handler.Register(rec, registerRequest(event.ID, &second))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Event is full")
}

func TestRegisterHandlerTwice(t *testing.T) {
	f := newFixture()
	handler := newRegistrationsHandler(f)
	event := seedEvent(t, f, "Jazz Night", "Portland", 50, 1)
	user := users.User{ID: 7}

	rec := httptest.NewRecorder()
	handler.Register(rec, registerRequest(event.ID, &user))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	handler.Register(rec, registerRequest(event.ID, &user))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Already registered")
}

func TestRegisterHandlerAnonymous(t *testing.T) {
	f := newFixture()
	handler := newRegistrationsHandler(f)
	event := seedEvent(t, f, "Jazz Night", "Portland", 50, 1)

	rec := httptest.NewRecorder()
	handler.Register(rec, registerRequest(event.ID, nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnregisterHandler(t *testing.T) {
	f := newFixture()
	handler := newRegistrationsHandler(f)
	event := seedEvent(t, f, "Jazz Night", "Portland", 50, 1)
	user := users.User{ID: 7}

	_, err := f.regs.Register(context.Background(), user.ID, event.ID)
	require.NoError(t, err)

	req := authedRequest(http.MethodDelete, "/events/1/register", "", &user)
	req.SetPathValue("id", fmt.Sprint(event.ID))
	rec := httptest.NewRecorder()
	handler.Unregister(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	// Repeat unregister reports not found.
	req = authedRequest(http.MethodDelete, "/events/1/register", "", &user)
	req.SetPathValue("id", fmt.Sprint(event.ID))
	rec = httptest.NewRecorder()
	handler.Unregister(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Registration not found")
}

func TestMyRegistrationsHandler(t *testing.T) {
	f := newFixture()
	handler := newRegistrationsHandler(f)
	first := seedEvent(t, f, "Jazz Night", "Portland", 50, 1)
	second := seedEvent(t, f, "Book Club", "Seattle", 20, 1)
	user := users.User{ID: 7}

	_, err := f.regs.Register(context.Background(), user.ID, first.ID)
	require.NoError(t, err)
	_, err = f.regs.Register(context.Background(), user.ID, second.ID)
	require.NoError(t, err)
	_, err = f.regs.Register(context.Background(), 8, first.ID)
	require.NoError(t, err)

	req := authedRequest(http.MethodGet, "/my-registrations", "", &user)
	rec := httptest.NewRecorder()
	handler.MyRegistrations(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []registrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
}

func TestMyRegistrationsHandlerEmpty(t *testing.T) {
	f := newFixture()
	handler := newRegistrationsHandler(f)
	user := users.User{ID: 7}

	req := authedRequest(http.MethodGet, "/my-registrations", "", &user)
	rec := httptest.NewRecorder()
	handler.MyRegistrations(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}
