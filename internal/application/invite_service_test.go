package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/conference-hub/internal/mail"
)

type senderStub struct {
	sent    []mail.Message
	sendErr error
}

func (s *senderStub) Send(_ context.Context, message mail.Message) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, message)
	return nil
}

func inviteSessions() []Session {
	return []Session{
		{
			ID:           "sess-2",
			Title:        "Afternoon Workshop",
			Place:        "Main Campus",
			RoomID:       "room-1",
			FacultyEmail: "doc@example.com",
			Start:        testClock.Add(30 * time.Hour),
			End:          testClock.Add(31 * time.Hour),
		},
		{
			ID:           "sess-1",
			Title:        "Opening Keynote",
			Place:        "Main Campus",
			RoomID:       "room-1",
			FacultyEmail: "doc@example.com",
			Start:        testClock.Add(25 * time.Hour),
			End:          testClock.Add(26 * time.Hour),
		},
	}
}

func TestSendBulkInviteSendsOneOrderedMail(t *testing.T) {
	t.Parallel()

	sender := &senderStub{}
	svc := NewInviteService(sender, &roomCatalogStub{rooms: map[string]Room{"room-1": {ID: "room-1", Name: "Hall A"}}}, "https://conf.example.com/", nil)

	outcome := svc.SendBulkInvite(context.Background(), inviteSessions(), "Dr. Rivera", "doc@example.com")
	if !outcome.OK {
		t.Fatalf("expected OK outcome, got %+v", outcome)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly one mail, got %d", len(sender.sent))
	}

	message := sender.sent[0]
	if message.To != "doc@example.com" {
		t.Fatalf("unexpected recipient %q", message.To)
	}
	keynote := strings.Index(message.Text, "Opening Keynote")
	workshop := strings.Index(message.Text, "Afternoon Workshop")
	if keynote < 0 || workshop < 0 || keynote > workshop {
		t.Fatalf("sessions should appear in start order:\n%s", message.Text)
	}
	if !strings.Contains(message.Text, "Hall A") {
		t.Fatalf("room name should be resolved, got:\n%s", message.Text)
	}
	if !strings.Contains(message.Text, "https://conf.example.com/faculty-login?email=doc%40example.com") {
		t.Fatalf("login link missing or malformed:\n%s", message.Text)
	}
}

func TestSendBulkInviteReportsTransportFailure(t *testing.T) {
	t.Parallel()

	sender := &senderStub{sendErr: errors.New("smtp unreachable")}
	svc := NewInviteService(sender, nil, "https://conf.example.com", nil)

	outcome := svc.SendBulkInvite(context.Background(), inviteSessions(), "Dr. Rivera", "doc@example.com")
	if outcome.OK {
		t.Fatalf("expected warning outcome")
	}
	if !strings.Contains(outcome.Warning, "smtp unreachable") {
		t.Fatalf("warning should carry the cause, got %q", outcome.Warning)
	}
}

func TestSendBulkInviteReportsDegenerateInput(t *testing.T) {
	t.Parallel()

	sender := &senderStub{}
	svc := NewInviteService(sender, nil, "https://conf.example.com", nil)

	outcome := svc.SendBulkInvite(context.Background(), nil, "Dr. Rivera", "doc@example.com")
	if outcome.OK || outcome.Warning == "" {
		t.Fatalf("empty batch should yield a warning outcome, got %+v", outcome)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("nothing should be sent")
	}
}

func TestSendUpdateNotice(t *testing.T) {
	t.Parallel()

	sender := &senderStub{}
	svc := NewInviteService(sender, nil, "https://conf.example.com", nil)

	session := inviteSessions()[1]
	outcome := svc.SendUpdateNotice(context.Background(), session, "Dr. Rivera", "Hall A")
	if !outcome.OK {
		t.Fatalf("expected OK outcome, got %+v", outcome)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].Subject, "Session Updated") {
		t.Fatalf("unexpected subject %q", sender.sent[0].Subject)
	}
}
