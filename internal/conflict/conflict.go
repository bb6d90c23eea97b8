package conflict

import (
	"fmt"
	"time"
)

// Booking represents a scheduled engagement in the conference domain.
type Booking struct {
	SessionID string
	Title     string
	FacultyID string
	RoomID    string
	Start     time.Time
	End       time.Time
}

// Type describes the kind of double-booking detected between sessions.
type Type string

const (
	// TypeFaculty indicates the faculty member is double-booked.
	TypeFaculty Type = "faculty"
	// TypeRoom indicates the room is double-booked.
	TypeRoom Type = "room"
)

// Conflict details an overlapping booking that callers can present to users.
// A conflict is an advisory, not an error: detection always succeeds and
// reports zero or more of them.
type Conflict struct {
	SessionID string
	Title     string
	FacultyID string
	RoomID    string
	Start     time.Time
	End       time.Time
	Type      Type
	Message   string
}

// Detect identifies conflicts for the candidate booking against existing ones.
//
// Two ranges overlap when existing.Start < candidate.End AND
// existing.End > candidate.Start; ranges that merely touch at an endpoint do
// not conflict. An overlapping booking yields one conflict per shared
// dimension, so a booking that shares both the faculty and the room produces
// two entries.
func Detect(existing []Booking, candidate Booking) []Conflict {
	var conflicts []Conflict

	for _, booking := range existing {
		if booking.SessionID == candidate.SessionID {
			continue
		}
		if !overlaps(booking, candidate) {
			continue
		}

		if candidate.FacultyID != "" && booking.FacultyID == candidate.FacultyID {
			conflicts = append(conflicts, newConflict(booking, TypeFaculty))
		}
		if candidate.RoomID != "" && booking.RoomID == candidate.RoomID {
			conflicts = append(conflicts, newConflict(booking, TypeRoom))
		}
	}

	return conflicts
}

func overlaps(existing, candidate Booking) bool {
	return existing.Start.Before(candidate.End) && existing.End.After(candidate.Start)
}

func newConflict(booking Booking, kind Type) Conflict {
	c := Conflict{
		SessionID: booking.SessionID,
		Title:     booking.Title,
		FacultyID: booking.FacultyID,
		RoomID:    booking.RoomID,
		Start:     booking.Start,
		End:       booking.End,
		Type:      kind,
	}
	switch kind {
	case TypeFaculty:
		c.Message = fmt.Sprintf("faculty is already booked for %q from %s to %s",
			booking.Title, formatStamp(booking.Start), formatStamp(booking.End))
	case TypeRoom:
		c.Message = fmt.Sprintf("room %s is already booked for %q from %s to %s",
			booking.RoomID, booking.Title, formatStamp(booking.Start), formatStamp(booking.End))
	}
	return c
}

func formatStamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
