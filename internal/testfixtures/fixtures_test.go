package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/conference-hub/internal/application"
)

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2026, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	updated := clock.Advance(90 * time.Minute)
	if !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(2 * time.Hour))
	if got := clock.Now(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(2*time.Hour), got)
	}
}

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("entity")

	if first, second := gen.Next(), gen.Next(); first != "entity-1" || second != "entity-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}

	gen.Reset("res")
	if next := gen.Next(); next != "res-1" {
		t.Fatalf("expected res-1 after reset, got %q", next)
	}
}

func TestSessionFixturesDoNotOverlap(t *testing.T) {
	first := NewSessionFixture()
	second := NewSessionFixture()

	if first.Start.Before(second.End) && first.End.After(second.Start) {
		t.Fatalf("fixtures overlap: %v-%v and %v-%v", first.Start, first.End, second.Start, second.End)
	}
	if first.InviteStatus != application.InviteStatusPending {
		t.Fatalf("invite status = %q", first.InviteStatus)
	}
}

func TestSQLiteHarnessRoundTrip(t *testing.T) {
	harness := NewSQLiteHarness(t)
	ctx := context.Background()

	session := NewSessionFixture(WithFaculty("faculty-rt", "rt@example.com"))
	if _, err := harness.Sessions.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	stored, err := harness.Sessions.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if stored.FacultyID != "faculty-rt" || !stored.Start.Equal(session.Start) {
		t.Fatalf("stored session = %+v", stored)
	}
}
