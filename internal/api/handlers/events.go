package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gatherhub/server/internal/api/middleware"
	"github.com/gatherhub/server/internal/api/problem"
	"github.com/gatherhub/server/internal/domain/events"
	"github.com/gatherhub/server/internal/domain/registrations"
)

type EventsHandler struct {
	Events        *events.Service
	Registrations *registrations.Service
	Env           string
}

func NewEventsHandler(eventsService *events.Service, regService *registrations.Service, env string) *EventsHandler {
	return &EventsHandler{Events: eventsService, Registrations: regService, Env: env}
}

type eventResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Location        string    `json:"location"`
	DateTime        time.Time `json:"date_time"`
	Capacity        int       `json:"capacity"`
	RegisteredCount int       `json:"registered_count"`
	CreatedBy       int64     `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	IsRegistered    bool      `json:"is_registered"`
}

type paginatedEventsResponse struct {
	Events  []eventResponse `json:"events"`
	Total   int             `json:"total"`
	Skip    int             `json:"skip"`
	Limit   int             `json:"limit"`
	HasNext bool            `json:"has_next"`
	HasPrev bool            `json:"has_prev"`
}

type createEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	DateTime    time.Time `json:"date_time"`
	Capacity    int       `json:"capacity"`
}

type updateEventRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	DateTime    *time.Time `json:"date_time"`
	Capacity    *int       `json:"capacity"`
}

// List handles GET /events: paginated listing with optional search and
// location filters. Authentication is optional; when present, each event is
// annotated with whether the caller is registered.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, page, err := events.ParseListParams(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	result, err := h.Events.List(r.Context(), filters, page)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	registered, err := h.registeredEventIDs(r)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	items := make([]eventResponse, 0, len(result.Events))
	for _, event := range result.Events {
		items = append(items, toEventResponse(event, registered[event.ID]))
	}

	writeJSON(w, http.StatusOK, paginatedEventsResponse{
		Events:  items,
		Total:   result.Total,
		Skip:    page.Skip,
		Limit:   page.Limit,
		HasNext: page.Skip+page.Limit < result.Total,
		HasPrev: page.Skip > 0,
	})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	event, err := h.Events.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.Env,
				problem.WithDetail("Event not found"))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	isRegistered := false
	if user := middleware.UserFromContext(r.Context()); user != nil {
		isRegistered, err = h.Registrations.IsRegistered(r.Context(), user.ID, event.ID)
		if err != nil {
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
			return
		}
	}

	writeJSON(w, http.StatusOK, toEventResponse(*event, isRegistered))
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Not authenticated", nil, h.Env)
		return
	}

	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	event, err := h.Events.Create(r.Context(), events.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		DateTime:    req.DateTime,
		Capacity:    req.Capacity,
	}, user.ID)
	if err != nil {
		if errors.Is(err, events.ErrInvalidInput) {
			problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeValidation, "Invalid request", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(event, false))
}

// Update handles PUT /events/{id}: a partial update where only supplied
// fields change.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	var req updateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	event, err := h.Events.Update(r.Context(), id, events.Patch{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		DateTime:    req.DateTime,
		Capacity:    req.Capacity,
	})
	if err != nil {
		switch {
		case errors.Is(err, events.ErrNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.Env,
				problem.WithDetail("Event not found"))
		case errors.Is(err, events.ErrInvalidInput):
			problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeValidation, "Invalid request", err, h.Env)
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		}
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(*event, false))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	if err := h.Events.Delete(r.Context(), id); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.Env,
				problem.WithDetail("Event not found"))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MyEvents handles GET /my-events: events created by the caller.
func (h *EventsHandler) MyEvents(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Not authenticated", nil, h.Env)
		return
	}

	items, err := h.Events.ListByCreator(r.Context(), user.ID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	payload := make([]eventResponse, 0, len(items))
	for _, event := range items {
		payload = append(payload, toEventResponse(event, false))
	}
	writeJSON(w, http.StatusOK, payload)
}

// registeredEventIDs returns the set of event ids the caller is registered
// for, or an empty set for anonymous requests.
func (h *EventsHandler) registeredEventIDs(r *http.Request) (map[int64]bool, error) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		return map[int64]bool{}, nil
	}

	regs, err := h.Registrations.ListForUser(r.Context(), user.ID)
	if err != nil {
		return nil, err
	}

	ids := make(map[int64]bool, len(regs))
	for _, reg := range regs {
		ids[reg.EventID] = true
	}
	return ids, nil
}

func toEventResponse(event events.Event, isRegistered bool) eventResponse {
	return eventResponse{
		ID:              event.ID,
		Name:            event.Name,
		Description:     event.Description,
		Location:        event.Location,
		DateTime:        event.DateTime,
		Capacity:        event.Capacity,
		RegisteredCount: event.RegisteredCount,
		CreatedBy:       event.CreatedBy,
		CreatedAt:       event.CreatedAt,
		IsRegistered:    isRegistered,
	}
}
