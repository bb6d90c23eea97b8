package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// RoomStore persists meeting rooms.
type RoomStore interface {
	RoomCatalog
	ListRooms(ctx context.Context) ([]Room, error)
	CreateRoom(ctx context.Context, room Room) (Room, error)
}

// EventStore persists events.
type EventStore interface {
	EventCatalog
	ListEvents(ctx context.Context) ([]Event, error)
	CreateEvent(ctx context.Context, event Event) (Event, error)
}

// UserStore persists accounts and their login credentials.
type UserStore interface {
	UserDirectory
	FacultyLister
	CreateUser(ctx context.Context, user User, passwordHash string) (User, error)
}

// DirectoryService serves the reference data behind the scheduling forms:
// rooms, events, and faculty accounts.
type DirectoryService struct {
	rooms       RoomStore
	events      EventStore
	users       UserStore
	hasher      func(password string) (string, error)
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewDirectoryService wires dependencies for reference data management.
func NewDirectoryService(rooms RoomStore, events EventStore, users UserStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *DirectoryService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &DirectoryService{
		rooms:       rooms,
		events:      events,
		users:       users,
		hasher:      func(password string) (string, error) { return CreatePasswordHash(password, DefaultArgon2idParams) },
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// ListRooms returns every room, for the scheduling forms.
func (s *DirectoryService) ListRooms(ctx context.Context) ([]Room, error) {
	if s == nil || s.rooms == nil {
		return nil, fmt.Errorf("room store not configured")
	}
	return s.rooms.ListRooms(ctx)
}

// CreateRoom registers a room.
func (s *DirectoryService) CreateRoom(ctx context.Context, principal Principal, name string) (Room, error) {
	if s == nil || s.rooms == nil {
		return Room{}, fmt.Errorf("room store not configured")
	}
	if !principal.Grants.ManageEvents {
		return Room{}, ErrUnauthorized
	}

	name = strings.TrimSpace(name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "room name is required")
		return Room{}, vErr
	}

	room, err := s.rooms.CreateRoom(ctx, Room{ID: s.idGenerator(), Name: name})
	if err != nil {
		return Room{}, mapSessionRepoError(err)
	}

	serviceLogger(ctx, s.logger, "DirectoryService", "CreateRoom").InfoContext(ctx, "room created", "room_id", room.ID)
	return room, nil
}

// ListEvents returns every event.
func (s *DirectoryService) ListEvents(ctx context.Context) ([]Event, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("event store not configured")
	}
	return s.events.ListEvents(ctx)
}

// CreateEvent registers an event.
func (s *DirectoryService) CreateEvent(ctx context.Context, principal Principal, event Event) (Event, error) {
	if s == nil || s.events == nil {
		return Event{}, fmt.Errorf("event store not configured")
	}
	if !principal.Grants.ManageEvents {
		return Event{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	event.Name = strings.TrimSpace(event.Name)
	event.Location = strings.TrimSpace(event.Location)
	if event.Name == "" {
		vErr.add("name", "event name is required")
	}
	if event.Start.IsZero() {
		vErr.add("startDate", "start date is required")
	}
	if event.End.IsZero() {
		vErr.add("endDate", "end date is required")
	}
	if !event.Start.IsZero() && !event.End.IsZero() && event.End.Before(event.Start) {
		vErr.add("endDate", "end date must not be before start date")
	}
	if vErr.HasErrors() {
		return Event{}, vErr
	}

	event.ID = s.idGenerator()
	event.CreatedBy = principal.UserID
	if event.Status == "" {
		event.Status = "Planned"
	}
	event.CreatedAt = s.now()
	event.UpdatedAt = event.CreatedAt

	persisted, err := s.events.CreateEvent(ctx, event)
	if err != nil {
		return Event{}, mapSessionRepoError(err)
	}

	serviceLogger(ctx, s.logger, "DirectoryService", "CreateEvent").InfoContext(ctx, "event created", "event_id", persisted.ID)
	return persisted, nil
}

// ListFaculty returns every faculty account.
func (s *DirectoryService) ListFaculty(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("user store not configured")
	}
	if !principal.Grants.ManageSessions {
		return nil, ErrUnauthorized
	}
	return s.users.ListFaculty(ctx)
}

// CreateFaculty registers a faculty account with an initial password.
func (s *DirectoryService) CreateFaculty(ctx context.Context, principal Principal, user User, password string) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user store not configured")
	}
	if !principal.Grants.ManageEvents {
		return User{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	if user.Name == "" {
		vErr.add("name", "name is required")
	}
	if user.Email == "" {
		vErr.add("email", "email is required")
	} else if !strings.Contains(user.Email, "@") {
		vErr.add("email", "please enter a valid email")
	}
	if len(password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	if vErr.HasErrors() {
		return User{}, vErr
	}

	hash, err := s.hasher(password)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	if user.ID == "" {
		user.ID = s.idGenerator()
	}
	user.Role = RoleFaculty

	persisted, err := s.users.CreateUser(ctx, user, hash)
	if err != nil {
		return User{}, mapSessionRepoError(err)
	}

	serviceLogger(ctx, s.logger, "DirectoryService", "CreateFaculty").InfoContext(ctx, "faculty account created", "user_id", persisted.ID)
	return persisted, nil
}
