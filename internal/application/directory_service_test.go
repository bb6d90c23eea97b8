package application

import (
	"context"
	"errors"
	"testing"
)

type roomStoreStub struct {
	roomCatalogStub
	created []Room
}

func (r *roomStoreStub) ListRooms(_ context.Context) ([]Room, error) {
	out := make([]Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out, nil
}

func (r *roomStoreStub) CreateRoom(_ context.Context, room Room) (Room, error) {
	r.created = append(r.created, room)
	return room, nil
}

type eventStoreStub struct {
	eventCatalogStub
	created   []Event
	createErr error
}

func (e *eventStoreStub) ListEvents(_ context.Context) ([]Event, error) {
	out := make([]Event, 0, len(e.events))
	for _, event := range e.events {
		out = append(out, event)
	}
	return out, nil
}

func (e *eventStoreStub) CreateEvent(_ context.Context, event Event) (Event, error) {
	if e.createErr != nil {
		return Event{}, e.createErr
	}
	e.created = append(e.created, event)
	return event, nil
}

type userStoreStub struct {
	userDirectoryStub
	hashes map[string]string
}

func (u *userStoreStub) ListFaculty(_ context.Context) ([]User, error) {
	var out []User
	for _, user := range u.users {
		if user.Role == RoleFaculty {
			out = append(out, user)
		}
	}
	return out, nil
}

func (u *userStoreStub) CreateUser(_ context.Context, user User, passwordHash string) (User, error) {
	if _, err := u.GetUserByEmail(context.Background(), user.Email); err == nil {
		return User{}, ErrAlreadyExists
	}
	if u.users == nil {
		u.users = map[string]User{}
	}
	if u.hashes == nil {
		u.hashes = map[string]string{}
	}
	u.users[user.ID] = user
	u.hashes[user.ID] = passwordHash
	return user, nil
}

func newDirectoryService(rooms *roomStoreStub, events *eventStoreStub, users *userStoreStub) *DirectoryService {
	if rooms == nil {
		rooms = &roomStoreStub{}
	}
	if events == nil {
		events = &eventStoreStub{}
	}
	if users == nil {
		users = &userStoreStub{}
	}
	svc := NewDirectoryService(rooms, events, users, sequentialIDs("dir"), fixedNow, nil)
	svc.hasher = func(password string) (string, error) { return "hashed:" + password, nil }
	return svc
}

func TestCreateRoom(t *testing.T) {
	t.Parallel()

	rooms := &roomStoreStub{}
	svc := newDirectoryService(rooms, nil, nil)

	room, err := svc.CreateRoom(context.Background(), organizerPrincipal(), "  Hall A  ")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if room.Name != "Hall A" {
		t.Fatalf("expected trimmed name, got %q", room.Name)
	}
	if len(rooms.created) != 1 {
		t.Fatalf("expected one stored room, got %d", len(rooms.created))
	}

	if _, err := svc.CreateRoom(context.Background(), organizerPrincipal(), "   "); err == nil {
		t.Fatal("expected validation error for blank name")
	}
	if _, err := svc.CreateRoom(context.Background(), facultyPrincipal("faculty-evt_123", "doc@example.com"), "Hall B"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for faculty caller, got %v", err)
	}
}

func TestCreateEventValidation(t *testing.T) {
	t.Parallel()

	start := testClock.AddDate(0, 1, 0)

	cases := map[string]struct {
		event   Event
		wantErr bool
	}{
		"valid": {
			event: Event{Name: "Annual Meet", Start: start, End: start.AddDate(0, 0, 2), Location: "Geneva"},
		},
		"missing name": {
			event:   Event{Start: start, End: start.AddDate(0, 0, 2)},
			wantErr: true,
		},
		"missing dates": {
			event:   Event{Name: "Annual Meet"},
			wantErr: true,
		},
		"inverted dates": {
			event:   Event{Name: "Annual Meet", Start: start, End: start.AddDate(0, 0, -1)},
			wantErr: true,
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			svc := newDirectoryService(nil, &eventStoreStub{}, nil)
			got, err := svc.CreateEvent(context.Background(), organizerPrincipal(), tc.event)
			if tc.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("create failed: %v", err)
			}
			if got.Status != "Planned" {
				t.Fatalf("expected default status, got %q", got.Status)
			}
			if got.CreatedBy != "user-1" {
				t.Fatalf("expected creator stamped, got %q", got.CreatedBy)
			}
			if !got.CreatedAt.Equal(fixedNow()) || !got.UpdatedAt.Equal(fixedNow()) {
				t.Fatalf("expected timestamps from the clock, got %+v", got)
			}
		})
	}
}

func TestCreateFaculty(t *testing.T) {
	t.Parallel()

	users := &userStoreStub{}
	svc := newDirectoryService(nil, nil, users)

	created, err := svc.CreateFaculty(context.Background(), organizerPrincipal(), User{
		Name:        "Dr. Rivera",
		Email:       "Doc@Example.com  ",
		Institution: "Metro University",
	}, "long-enough-pw")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Role != RoleFaculty {
		t.Fatalf("expected FACULTY role, got %q", created.Role)
	}
	if created.Email != "doc@example.com" {
		t.Fatalf("expected normalized email, got %q", created.Email)
	}
	if users.hashes[created.ID] != "hashed:long-enough-pw" {
		t.Fatalf("expected hashed password stored, got %q", users.hashes[created.ID])
	}

	if _, err := svc.CreateFaculty(context.Background(), organizerPrincipal(), User{Name: "Dup", Email: "doc@example.com"}, "long-enough-pw"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for reused email, got %v", err)
	}
}

func TestCreateFacultyRejectsWeakInput(t *testing.T) {
	t.Parallel()

	svc := newDirectoryService(nil, nil, &userStoreStub{})

	cases := map[string]struct {
		user     User
		password string
	}{
		"short password": {user: User{Name: "Dr. R", Email: "r@example.com"}, password: "short"},
		"bad email":      {user: User{Name: "Dr. R", Email: "not-an-email"}, password: "long-enough-pw"},
		"missing name":   {user: User{Email: "r@example.com"}, password: "long-enough-pw"},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.CreateFaculty(context.Background(), organizerPrincipal(), tc.user, tc.password)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestListFacultyRequiresSessionManager(t *testing.T) {
	t.Parallel()

	users := &userStoreStub{userDirectoryStub: userDirectoryStub{users: map[string]User{
		"faculty-evt_123": {ID: "faculty-evt_123", Role: RoleFaculty},
	}}}
	svc := newDirectoryService(nil, nil, users)

	listed, err := svc.ListFaculty(context.Background(), organizerPrincipal())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected one faculty member, got %d", len(listed))
	}

	if _, err := svc.ListFaculty(context.Background(), facultyPrincipal("faculty-evt_123", "doc@example.com")); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
