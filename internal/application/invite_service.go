package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/example/conference-hub/internal/mail"
)

// InviteService renders and dispatches faculty notification mail. All of its
// operations are best-effort: failures surface as Outcome warnings so the
// scheduling flows they decorate still succeed.
type InviteService struct {
	sender  mail.Sender
	rooms   RoomCatalog
	baseURL string
	logger  *slog.Logger
}

// NewInviteService wires the mail transport and the site base URL used in
// login links.
func NewInviteService(sender mail.Sender, rooms RoomCatalog, baseURL string, logger *slog.Logger) *InviteService {
	return &InviteService{
		sender:  sender,
		rooms:   rooms,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  defaultLogger(logger),
	}
}

// SendBulkInvite sends one consolidated invitation covering every session in
// the batch, ordered by start time.
func (s *InviteService) SendBulkInvite(ctx context.Context, sessions []Session, facultyName, email string) InviteOutcome {
	if s == nil || s.sender == nil {
		return mail.Warn("mail transport not configured")
	}

	logger := serviceLogger(ctx, s.logger, "InviteService", "SendBulkInvite", "email", email, "session_count", len(sessions))

	ordered := make([]Session, len(sessions))
	copy(ordered, sessions)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start.Before(ordered[j].Start) })

	invitation := mail.Invitation{
		FacultyName: facultyName,
		Email:       email,
		Sessions:    s.summaries(ctx, ordered),
		BaseURL:     s.baseURL,
	}

	message, err := invitation.Message()
	if err != nil {
		logger.WarnContext(ctx, "invitation could not be rendered", "error", err)
		return mail.Warn("invitation could not be rendered: " + err.Error())
	}

	if err := s.sender.Send(ctx, message); err != nil {
		logger.WarnContext(ctx, "invitation could not be sent", "error", err)
		return mail.Warn("invitation could not be sent: " + err.Error())
	}

	logger.InfoContext(ctx, "invitation sent")
	return mail.Ok()
}

// SendUpdateNotice tells the faculty member their session changed and asks
// them to reconfirm availability.
func (s *InviteService) SendUpdateNotice(ctx context.Context, session Session, facultyName, roomName string) InviteOutcome {
	if s == nil || s.sender == nil {
		return mail.Warn("mail transport not configured")
	}

	logger := serviceLogger(ctx, s.logger, "InviteService", "SendUpdateNotice", "session_id", session.ID, "email", session.FacultyEmail)

	notice := mail.UpdateNotice{
		FacultyName: facultyName,
		Email:       session.FacultyEmail,
		RoomName:    roomName,
		Session:     s.summary(ctx, session),
		BaseURL:     s.baseURL,
	}

	message, err := notice.Message()
	if err != nil {
		logger.WarnContext(ctx, "update notice could not be rendered", "error", err)
		return mail.Warn("update notice could not be rendered: " + err.Error())
	}

	if err := s.sender.Send(ctx, message); err != nil {
		logger.WarnContext(ctx, "update notice could not be sent", "error", err)
		return mail.Warn("update notice could not be sent: " + err.Error())
	}

	logger.InfoContext(ctx, "update notice sent")
	return mail.Ok()
}

func (s *InviteService) summaries(ctx context.Context, sessions []Session) []mail.SessionSummary {
	out := make([]mail.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, s.summary(ctx, session))
	}
	return out
}

func (s *InviteService) summary(ctx context.Context, session Session) mail.SessionSummary {
	roomName := session.RoomID
	if s.rooms != nil {
		if room, err := s.rooms.GetRoom(ctx, session.RoomID); err == nil && room.Name != "" {
			roomName = room.Name
		}
	}
	return mail.SessionSummary{
		Title:       session.Title,
		Place:       session.Place,
		RoomName:    roomName,
		Description: session.Description,
		Start:       session.Start,
		End:         session.End,
	}
}
