package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gatherhub/server/internal/api/middleware"
	"github.com/gatherhub/server/internal/api/problem"
	"github.com/gatherhub/server/internal/domain/registrations"
)

type RegistrationsHandler struct {
	Registrations *registrations.Service
	Env           string
}

func NewRegistrationsHandler(service *registrations.Service, env string) *RegistrationsHandler {
	return &RegistrationsHandler{Registrations: service, Env: env}
}

type registrationResponse struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	EventID      int64     `json:"event_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Register handles POST /events/{id}/register.
func (h *RegistrationsHandler) Register(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Not authenticated", nil, h.Env)
		return
	}

	eventID, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	reg, err := h.Registrations.Register(r.Context(), user.ID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, registrations.ErrEventNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.Env,
				problem.WithDetail("Event not found"))
		case errors.Is(err, registrations.ErrEventFull):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeConflict, "Event is full", err, h.Env,
				problem.WithDetail("Event is full"))
		case errors.Is(err, registrations.ErrAlreadyRegistered):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeConflict, "Already registered", err, h.Env,
				problem.WithDetail("Already registered for this event"))
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toRegistrationResponse(reg))
}

// Unregister handles DELETE /events/{id}/register.
func (h *RegistrationsHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Not authenticated", nil, h.Env)
		return
	}

	eventID, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	if err := h.Registrations.Unregister(r.Context(), user.ID, eventID); err != nil {
		if errors.Is(err, registrations.ErrNotRegistered) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Registration not found", err, h.Env,
				problem.WithDetail("Registration not found"))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MyRegistrations handles GET /my-registrations.
func (h *RegistrationsHandler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Not authenticated", nil, h.Env)
		return
	}

	regs, err := h.Registrations.ListForUser(r.Context(), user.ID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	payload := make([]registrationResponse, 0, len(regs))
	for _, reg := range regs {
		payload = append(payload, toRegistrationResponse(reg))
	}
	writeJSON(w, http.StatusOK, payload)
}

func toRegistrationResponse(reg registrations.Registration) registrationResponse {
	return registrationResponse{
		ID:           reg.ID,
		UserID:       reg.UserID,
		EventID:      reg.EventID,
		RegisteredAt: reg.RegisteredAt,
	}
}
