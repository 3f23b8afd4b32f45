package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gatherhub/server/internal/domain/events"
	"github.com/gatherhub/server/internal/domain/registrations"
	"github.com/gatherhub/server/internal/domain/users"
)

// In-memory repositories backing the handler tests. The event and
// registration fakes share state so capacity checks see real counts.

type fakeUserRepo struct {
	users  map[string]*users.User
	nextID int64
}

var _ users.Repository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*users.User), nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, params users.CreateParams) (users.User, error) {
	if _, ok := f.users[params.Email]; ok {
		return users.User{}, users.ErrEmailTaken
	}
	user := users.User{
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

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	if user, ok := f.users[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, users.ErrNotFound
}

type regKey struct {
	userID  int64
	eventID int64
}

type fakeStore struct {
	events      []events.Event
	nextEventID int64
	regs        map[regKey]registrations.Registration
	nextRegID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextEventID: 1,
		regs:        make(map[regKey]registrations.Registration),
		nextRegID:   1,
	}
}

func (f *fakeStore) regCount(eventID int64) int {
	count := 0
	for key := range f.regs {
		if key.eventID == eventID {
			count++
		}
	}
	return count
}

func (f *fakeStore) findEvent(id int64) *events.Event {
	for i := range f.events {
		if f.events[i].ID == id {
			return &f.events[i]
		}
	}
	return nil
}

type fakeEventRepo struct {
	store *fakeStore
}

var _ events.Repository = (*fakeEventRepo)(nil)

func (f *fakeEventRepo) List(_ context.Context, filters events.Filters, page events.Page) (events.ListResult, error) {
	var matched []events.Event
	for _, event := range f.store.events {
		if matchesFilters(event, filters) {
			event.RegisteredCount = f.store.regCount(event.ID)
			matched = append(matched, event)
		}
	}

	total := len(matched)
	start := page.Skip
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return events.ListResult{Events: matched[start:end], Total: total}, nil
}

func matchesFilters(event events.Event, filters events.Filters) bool {
	if filters.Query != "" {
		query := strings.ToLower(filters.Query)
		if !strings.Contains(strings.ToLower(event.Name), query) &&
			!strings.Contains(strings.ToLower(event.Description), query) {
			return false
		}
	}
	if filters.Location != "" &&
		!strings.Contains(strings.ToLower(event.Location), strings.ToLower(filters.Location)) {
		return false
	}
	return true
}

func (f *fakeEventRepo) GetByID(_ context.Context, id int64) (*events.Event, error) {
	event := f.store.findEvent(id)
	if event == nil {
		return nil, events.ErrNotFound
	}
	copied := *event
	copied.RegisteredCount = f.store.regCount(id)
	return &copied, nil
}

func (f *fakeEventRepo) Create(_ context.Context, params events.CreateParams, createdBy int64) (events.Event, error) {
	event := events.Event{
		ID:          f.store.nextEventID,
		Name:        params.Name,
		Description: params.Description,
		Location:    params.Location,
		DateTime:    params.DateTime,
		Capacity:    params.Capacity,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
	f.store.nextEventID++
	f.store.events = append(f.store.events, event)
	return event, nil
}

func (f *fakeEventRepo) Update(_ context.Context, id int64, patch events.Patch) (*events.Event, error) {
	event := f.store.findEvent(id)
	if event == nil {
		return nil, events.ErrNotFound
	}
	if patch.Name != nil {
		event.Name = *patch.Name
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Location != nil {
		event.Location = *patch.Location
	}
	if patch.DateTime != nil {
		event.DateTime = *patch.DateTime
	}
	if patch.Capacity != nil {
		event.Capacity = *patch.Capacity
	}
	copied := *event
	copied.RegisteredCount = f.store.regCount(id)
	return &copied, nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id int64) (bool, error) {
	for i := range f.store.events {
		if f.store.events[i].ID == id {
			f.store.events = append(f.store.events[:i], f.store.events[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEventRepo) ListByCreator(_ context.Context, userID int64) ([]events.Event, error) {
	var created []events.Event
	for _, event := range f.store.events {
		if event.CreatedBy == userID {
			event.RegisteredCount = f.store.regCount(event.ID)
			created = append(created, event)
		}
	}
	return created, nil
}

type fakeRegRepo struct {
	store *fakeStore
}

var _ registrations.Repository = (*fakeRegRepo)(nil)

func (f *fakeRegRepo) Insert(_ context.Context, userID, eventID int64) (registrations.Registration, error) {
	event := f.store.findEvent(eventID)
	if event == nil {
		return registrations.Registration{}, registrations.ErrEventNotFound
	}
	key := regKey{userID, eventID}
	if _, ok := f.store.regs[key]; ok {
		return registrations.Registration{}, registrations.ErrAlreadyRegistered
	}
	if f.store.regCount(eventID) >= event.Capacity {
		return registrations.Registration{}, registrations.ErrEventFull
	}
	registration := registrations.Registration{
		ID:           f.store.nextRegID,
		UserID:       userID,
		EventID:      eventID,
		RegisteredAt: time.Now().UTC(),
	}
	f.store.nextRegID++
	f.store.regs[key] = registration
	return registration, nil
}

func (f *fakeRegRepo) Delete(_ context.Context, userID, eventID int64) (bool, error) {
	key := regKey{userID, eventID}
	if _, ok := f.store.regs[key]; !ok {
		return false, nil
	}
	delete(f.store.regs, key)
	return true, nil
}

func (f *fakeRegRepo) ListByUser(_ context.Context, userID int64) ([]registrations.Registration, error) {
	var result []registrations.Registration
	for key, row := range f.store.regs {
		if key.userID == userID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (f *fakeRegRepo) CountForEvent(_ context.Context, eventID int64) (int, error) {
	return f.store.regCount(eventID), nil
}

func (f *fakeRegRepo) EventCapacity(_ context.Context, eventID int64) (int, error) {
	event := f.store.findEvent(eventID)
	if event == nil {
		return 0, registrations.ErrEventNotFound
	}
	return event.Capacity, nil
}

func (f *fakeRegRepo) IsRegistered(_ context.Context, userID, eventID int64) (bool, error) {
	_, ok := f.store.regs[regKey{userID, eventID}]
	return ok, nil
}

// fixture bundles the services and handlers under test.
type fixture struct {
	userRepo *fakeUserRepo
	store    *fakeStore

	usersService *users.Service
	events       *events.Service
	regs         *registrations.Service
}

func newFixture() *fixture {
	userRepo := newFakeUserRepo()
	store := newFakeStore()
	logger := zerolog.Nop()
	return &fixture{
		userRepo:     userRepo,
		store:        store,
		usersService: users.NewService(userRepo, logger),
		events:       events.NewService(&fakeEventRepo{store: store}, logger),
		regs:         registrations.NewService(&fakeRegRepo{store: store}, logger),
	}
}
