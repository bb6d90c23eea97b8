package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/conference-hub/internal/application"
)

var (
	userCounter    uint64
	roomCounter    uint64
	eventCounter   uint64
	sessionCounter uint64
)

var referenceTime = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserOption configures a generated user fixture.
type UserOption func(*application.User)

// NewUserFixture returns a deterministic faculty user with optional overrides.
func NewUserFixture(opts ...UserOption) application.User {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("faculty-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := application.User{
		ID:          id,
		Name:        fmt.Sprintf("Faculty %03d", idx),
		Email:       fmt.Sprintf("%s@example.com", id),
		Role:        application.RoleFaculty,
		Institution: "Metro University",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithRole overrides the fixture's role.
func WithRole(role application.Role) UserOption {
	return func(user *application.User) {
		user.Role = role
	}
}

// WithEmail overrides the fixture's email address.
func WithEmail(email string) UserOption {
	return func(user *application.User) {
		user.Email = email
	}
}

// NewRoomFixture returns a deterministic room.
func NewRoomFixture() application.Room {
	idx := atomic.AddUint64(&roomCounter, 1)
	return application.Room{
		ID:   fmt.Sprintf("room-%03d", idx),
		Name: fmt.Sprintf("Hall %03d", idx),
	}
}

// EventOption configures a generated event fixture.
type EventOption func(*application.Event)

// NewEventFixture returns a deterministic three-day event.
func NewEventFixture(opts ...EventOption) application.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	start := referenceTime.AddDate(0, 0, int(idx))
	event := application.Event{
		ID:        fmt.Sprintf("evt-%03d", idx),
		Name:      fmt.Sprintf("Conference %03d", idx),
		Start:     start,
		End:       start.AddDate(0, 0, 3),
		Location:  "Convention Centre",
		Status:    "Planned",
		CreatedAt: start,
		UpdatedAt: start,
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// SessionOption configures a generated session fixture.
type SessionOption func(*application.Session)

// NewSessionFixture returns a deterministic one-hour pending session. Each
// fixture occupies its own hour so fixtures never conflict unless a test
// arranges them to.
func NewSessionFixture(opts ...SessionOption) application.Session {
	idx := atomic.AddUint64(&sessionCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * 2 * time.Hour)
	session := application.Session{
		ID:           fmt.Sprintf("ses-%03d", idx),
		Title:        fmt.Sprintf("Session %03d", idx),
		Start:        start,
		End:          start.Add(time.Hour),
		Status:       application.SessionStatusDraft,
		InviteStatus: application.InviteStatusPending,
		TravelStatus: application.TravelStatusPending,
		FacultyID:    fmt.Sprintf("faculty-%03d", idx),
		FacultyEmail: fmt.Sprintf("faculty-%03d@example.com", idx),
		CreatedAt:    start,
		UpdatedAt:    start,
	}
	for _, opt := range opts {
		opt(&session)
	}
	return session
}

// WithFaculty pins the session to the given faculty identity.
func WithFaculty(facultyID, email string) SessionOption {
	return func(session *application.Session) {
		session.FacultyID = facultyID
		session.FacultyEmail = email
	}
}

// WithTimes overrides the session's scheduled interval.
func WithTimes(start, end time.Time) SessionOption {
	return func(session *application.Session) {
		session.Start = start
		session.End = end
	}
}

// WithRoom pins the session to a room.
func WithRoom(roomID string) SessionOption {
	return func(session *application.Session) {
		session.RoomID = roomID
	}
}
