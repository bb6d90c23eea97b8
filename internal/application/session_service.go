package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/example/conference-hub/internal/conflict"
	"github.com/example/conference-hub/internal/persistence"
)

// minSessionDuration is the shortest engagement the scheduling flow accepts.
const minSessionDuration = 15 * time.Minute

// SessionRepository captures the persistence interactions needed by the
// session service.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]Session, error)
	ListConflictCandidates(ctx context.Context, facultyID, roomID string, start, end time.Time) ([]Session, error)
}

// SessionFilter narrows queries issued to the session repository.
type SessionFilter struct {
	FacultyID    string
	FacultyEmail string
	EventID      string
	IDs          []string
}

// UserDirectory exposes the account lookups the scheduling flows need.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id string) (Room, error)
}

// EventCatalog exposes the event lookups that scope session creation.
type EventCatalog interface {
	GetEvent(ctx context.Context, id string) (Event, error)
	CountEvents(ctx context.Context) (int, error)
}

// InviteDispatcher sends the consolidated invitation and update
// notifications. Both operations are best-effort.
type InviteDispatcher interface {
	SendBulkInvite(ctx context.Context, sessions []Session, facultyName, email string) InviteOutcome
	SendUpdateNotice(ctx context.Context, session Session, facultyName, roomName string) InviteOutcome
}

// SessionService orchestrates validation, conflict checking, persistence and
// invitation dispatch for session operations.
type SessionService struct {
	sessions    SessionRepository
	users       UserDirectory
	rooms       RoomCatalog
	events      EventCatalog
	dispatcher  InviteDispatcher
	advisories  *gocache.Cache
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewSessionService wires dependencies for session operations.
func NewSessionService(sessions SessionRepository, users UserDirectory, rooms RoomCatalog, events EventCatalog, dispatcher InviteDispatcher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SessionService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		sessions:    sessions,
		users:       users,
		rooms:       rooms,
		events:      events,
		dispatcher:  dispatcher,
		advisories:  gocache.New(30*time.Second, time.Minute),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *SessionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SessionService", operation, attrs...)
}

// CheckConflicts reports the existing sessions double-booking the candidate's
// faculty or room. A non-empty result is not an error.
func (s *SessionService) CheckConflicts(ctx context.Context, candidate Session) ([]conflict.Conflict, error) {
	if s == nil || s.sessions == nil {
		return nil, nil
	}

	existing, err := s.sessions.ListConflictCandidates(ctx, candidate.FacultyID, candidate.RoomID, candidate.Start, candidate.End)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	bookings := make([]conflict.Booking, 0, len(existing))
	for _, sess := range existing {
		bookings = append(bookings, toBooking(sess))
	}

	return conflict.Detect(bookings, toBooking(candidate)), nil
}

// CreateSession validates one session specification, runs the conflict
// checker, and persists unless the caller asked for a dry-run probe.
func (s *SessionService) CreateSession(ctx context.Context, params CreateSessionParams) (Session, []conflict.Conflict, error) {
	if s == nil {
		return Session{}, nil, fmt.Errorf("SessionService is nil")
	}
	if !params.Principal.Grants.ManageSessions {
		return Session{}, nil, ErrUnauthorized
	}

	vErr := &ValidationError{}
	s.validateScope(ctx, params.FacultyID, params.FacultyEmail, params.EventID, vErr)
	validateSessionInput(params.Input, "", vErr)
	if vErr.HasErrors() {
		return Session{}, nil, vErr
	}

	candidate := s.buildSession(params.FacultyID, params.FacultyEmail, params.EventID, params.PosterPath, params.Input)

	conflicts, err := s.CheckConflicts(ctx, candidate)
	if err != nil {
		return Session{}, nil, err
	}

	if params.ConflictOnly {
		return Session{}, conflicts, nil
	}

	if len(conflicts) > 0 && !params.Overwrite {
		return Session{}, nil, &ConflictError{SessionTitle: candidate.Title, Conflicts: conflicts}
	}

	persisted, err := s.sessions.CreateSession(ctx, candidate)
	if err != nil {
		return Session{}, nil, mapSessionRepoError(err)
	}
	s.advisories.Flush()

	return persisted, conflicts, nil
}

// BulkCreate creates the batch one session at a time, in list order. The
// first blocking conflict halts the batch: earlier sessions stay committed,
// the offender and everything after it are never persisted. On full success
// exactly one consolidated invitation is dispatched.
func (s *SessionService) BulkCreate(ctx context.Context, params BulkCreateParams) (BulkCreateResult, error) {
	if s == nil {
		return BulkCreateResult{}, fmt.Errorf("SessionService is nil")
	}
	if !params.Principal.Grants.ManageSessions {
		return BulkCreateResult{}, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "BulkCreate", "faculty_id", params.FacultyID, "batch_size", len(params.Sessions))

	vErr := &ValidationError{}
	s.validateScope(ctx, params.FacultyID, params.FacultyEmail, params.EventID, vErr)
	if len(params.Sessions) == 0 {
		vErr.add("sessions", "at least one session is required")
	}
	for i, input := range params.Sessions {
		validateSessionInput(input, fmt.Sprintf("sessions[%d].", i), vErr)
	}
	if vErr.HasErrors() {
		return BulkCreateResult{}, vErr
	}

	result := BulkCreateResult{}

	for i, input := range params.Sessions {
		candidate := s.buildSession(params.FacultyID, params.FacultyEmail, params.EventID, params.PosterPath, input)

		// Conflict checks see committed rows only, never siblings still
		// pending in this batch.
		conflicts, err := s.CheckConflicts(ctx, candidate)
		if err != nil {
			return result, fmt.Errorf("conflict check for session %q: %w", input.Title, err)
		}

		if len(conflicts) > 0 && !params.Overwrite {
			logger.WarnContext(ctx, "bulk creation halted on conflict",
				"session_title", input.Title, "position", i, "committed", len(result.Created))
			return result, &ConflictError{
				SessionTitle: input.Title,
				Conflicts:    conflicts,
				CommittedIDs: sessionIDs(result.Created),
			}
		}

		persisted, err := s.sessions.CreateSession(ctx, candidate)
		if err != nil {
			s.advisories.Flush()
			return result, fmt.Errorf("failed to create session %q: %w", input.Title, mapSessionRepoError(err))
		}
		result.Created = append(result.Created, persisted)
	}

	s.advisories.Flush()

	if s.dispatcher != nil {
		result.Invitation = s.dispatcher.SendBulkInvite(ctx, result.Created, params.FacultyName, params.FacultyEmail)
		if !result.Invitation.OK {
			logger.WarnContext(ctx, "bulk invitation dispatch failed", "warning", result.Invitation.Warning)
		}
	}

	logger.InfoContext(ctx, "bulk creation committed", "created", len(result.Created))
	return result, nil
}

// SendInvitations dispatches one consolidated invitation covering
// already-created sessions, for callers that created them individually.
func (s *SessionService) SendInvitations(ctx context.Context, principal Principal, ids []string) (InviteOutcome, error) {
	if s == nil {
		return InviteOutcome{}, fmt.Errorf("SessionService is nil")
	}
	if !principal.Grants.ManageSessions {
		return InviteOutcome{}, ErrUnauthorized
	}
	if len(ids) == 0 {
		return InviteOutcome{}, &ValidationError{FieldErrors: map[string]string{"sessions": "at least one session is required"}}
	}

	sessions, err := s.sessions.ListSessions(ctx, SessionFilter{IDs: ids})
	if err != nil {
		return InviteOutcome{}, mapSessionRepoError(err)
	}
	if len(sessions) == 0 {
		return InviteOutcome{}, ErrNotFound
	}

	email := sessions[0].FacultyEmail
	for _, sess := range sessions {
		if sess.FacultyEmail != email {
			return InviteOutcome{}, &ValidationError{FieldErrors: map[string]string{"sessions": "all sessions must belong to one faculty member"}}
		}
	}

	name := s.facultyDisplayName(ctx, sessions[0].FacultyID, email)
	if s.dispatcher == nil {
		return InviteOutcome{Warning: "invitation dispatcher not configured"}, nil
	}
	return s.dispatcher.SendBulkInvite(ctx, sessions, name, email), nil
}

// UpdateSession edits schedule and details of an existing session and sends
// the "session updated" notice asking the faculty member to reconfirm.
// Conflicts on edit are advisory warnings, not blockers.
func (s *SessionService) UpdateSession(ctx context.Context, params UpdateSessionParams) (Session, []conflict.Conflict, error) {
	if s == nil {
		return Session{}, nil, fmt.Errorf("SessionService is nil")
	}
	if !params.Principal.Grants.ManageSessions {
		return Session{}, nil, ErrUnauthorized
	}

	existing, err := s.sessions.GetSession(ctx, params.SessionID)
	if err != nil {
		return Session{}, nil, mapSessionRepoError(err)
	}

	vErr := &ValidationError{}
	validateSessionInput(params.Input, "", vErr)
	if vErr.HasErrors() {
		return Session{}, nil, vErr
	}

	updated := existing
	updated.Title = strings.TrimSpace(params.Input.Title)
	updated.Place = strings.TrimSpace(params.Input.Place)
	updated.RoomID = params.Input.RoomID
	updated.Description = strings.TrimSpace(params.Input.Description)
	updated.Start = params.Input.Start
	updated.End = params.Input.End
	updated.Status = params.Input.Status
	updated.UpdatedAt = s.now()

	warnings, err := s.CheckConflicts(ctx, updated)
	if err != nil {
		return Session{}, nil, err
	}

	persisted, err := s.sessions.UpdateSession(ctx, updated)
	if err != nil {
		return Session{}, nil, mapSessionRepoError(err)
	}
	s.advisories.Flush()

	if s.dispatcher != nil {
		name := s.facultyDisplayName(ctx, persisted.FacultyID, persisted.FacultyEmail)
		outcome := s.dispatcher.SendUpdateNotice(ctx, persisted, name, s.roomName(ctx, persisted.RoomID))
		if !outcome.OK {
			s.loggerWith(ctx, "UpdateSession", "session_id", persisted.ID).
				WarnContext(ctx, "update notification dispatch failed", "warning", outcome.Warning)
		}
	}

	return persisted, warnings, nil
}

// Respond applies a faculty member's accept or decline to a pending
// invitation and returns the updated record.
func (s *SessionService) Respond(ctx context.Context, params RespondParams) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("SessionService is nil")
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(params.SessionID) == "" {
		vErr.add("id", "session id is required")
	}
	switch params.Status {
	case InviteStatusAccepted:
	case InviteStatusDeclined:
		switch params.Reason {
		case DeclineNotInterested, DeclineSuggestedTopic, DeclineTimeConflict:
		case "":
			vErr.add("rejectionReason", "a decline reason is required")
		default:
			vErr.add("rejectionReason", "unknown decline reason")
		}
	default:
		vErr.add("inviteStatus", "invite status must be Accepted or Declined")
	}
	if vErr.HasErrors() {
		return Session{}, vErr
	}

	existing, err := s.sessions.GetSession(ctx, params.SessionID)
	if err != nil {
		return Session{}, mapSessionRepoError(err)
	}

	// Only the invitee (or organizer-tier callers) may answer an invitation.
	if !params.Principal.ActsFor(existing.FacultyID) &&
		(existing.FacultyEmail == "" || !strings.EqualFold(params.Principal.Email, existing.FacultyEmail)) {
		return Session{}, ErrUnauthorized
	}

	if existing.InviteStatus != InviteStatusPending {
		vErr.add("inviteStatus", "invitation has already been answered")
		return Session{}, vErr
	}

	updated := existing
	updated.InviteStatus = params.Status
	updated.UpdatedAt = s.now()

	if params.Status == InviteStatusDeclined {
		rejection := &Rejection{
			Reason: params.Reason,
			Query:  strings.TrimSpace(params.Query),
		}
		if params.Reason == DeclineSuggestedTopic {
			rejection.SuggestedTopic = strings.TrimSpace(params.SuggestedTopic)
		}
		if params.Reason == DeclineTimeConflict {
			rejection.SuggestedStart = params.SuggestedStart
			rejection.SuggestedEnd = params.SuggestedEnd
		}
		updated.Rejection = rejection
	}

	persisted, err := s.sessions.UpdateSession(ctx, updated)
	if err != nil {
		return Session{}, mapSessionRepoError(err)
	}
	s.advisories.Flush()

	s.loggerWith(ctx, "Respond", "session_id", persisted.ID).
		InfoContext(ctx, "invitation answered", "invite_status", persisted.InviteStatus)
	return persisted, nil
}

// ListSessions enumerates sessions visible to the principal: faculty callers
// see their own invitations, organizer-tier callers the requested scope.
// Advisory conflicts among the listed sessions accompany the result and are
// cached briefly; every mutation flushes the cache.
func (s *SessionService) ListSessions(ctx context.Context, params ListSessionsParams) ([]Session, []conflict.Conflict, error) {
	if s == nil || s.sessions == nil {
		return nil, nil, fmt.Errorf("session repository not configured")
	}

	filter := SessionFilter{EventID: params.EventID, FacultyID: params.FacultyID}
	if !params.Principal.Grants.ManageSessions {
		filter.FacultyID = BaseFacultyID(params.Principal.UserID)
		filter.FacultyEmail = params.Principal.Email
	}

	sessions, err := s.sessions.ListSessions(ctx, filter)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	key := advisoryKey(filter)
	if cached, ok := s.advisories.Get(key); ok {
		return sessions, cached.([]conflict.Conflict), nil
	}

	warnings := listConflicts(sessions)
	s.advisories.SetDefault(key, warnings)

	return sessions, warnings, nil
}

func (s *SessionService) buildSession(facultyID, facultyEmail, eventID, posterPath string, input SessionInput) Session {
	now := s.now()
	status := input.Status
	if status == "" {
		status = SessionStatusDraft
	}
	return Session{
		ID:           s.idGenerator(),
		Title:        strings.TrimSpace(input.Title),
		Place:        strings.TrimSpace(input.Place),
		RoomID:       input.RoomID,
		Description:  strings.TrimSpace(input.Description),
		Start:        input.Start,
		End:          input.End,
		Status:       status,
		InviteStatus: InviteStatusPending,
		TravelStatus: TravelStatusPending,
		EventID:      eventID,
		FacultyID:    facultyID,
		FacultyEmail: strings.TrimSpace(facultyEmail),
		PosterPath:   posterPath,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// validateScope checks the batch-level fields shared by single and bulk
// creation: faculty identity, contact email, and event selection. An event is
// required only when events exist in the caller's scope.
func (s *SessionService) validateScope(ctx context.Context, facultyID, facultyEmail, eventID string, vErr *ValidationError) {
	if strings.TrimSpace(facultyID) == "" {
		vErr.add("facultyId", "please select a faculty")
	}
	email := strings.TrimSpace(facultyEmail)
	if email == "" {
		vErr.add("email", "faculty email is required")
	} else if !strings.Contains(email, "@") {
		vErr.add("email", "please enter a valid email")
	}

	if eventID == "" && s.events != nil {
		count, err := s.events.CountEvents(ctx)
		if err == nil && count > 0 {
			vErr.add("eventId", "please select an event")
		}
	} else if eventID != "" && s.events != nil {
		if _, err := s.events.GetEvent(ctx, eventID); errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			vErr.add("eventId", "event does not exist")
		}
	}
}

func validateSessionInput(input SessionInput, prefix string, vErr *ValidationError) {
	if strings.TrimSpace(input.Title) == "" {
		vErr.add(prefix+"title", "title is required")
	}
	if strings.TrimSpace(input.Place) == "" {
		vErr.add(prefix+"place", "place is required")
	}
	if input.RoomID == "" {
		vErr.add(prefix+"roomId", "room is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		vErr.add(prefix+"description", "description is required")
	}
	if input.Start.IsZero() {
		vErr.add(prefix+"startTime", "start time is required")
	}
	if input.End.IsZero() {
		vErr.add(prefix+"endTime", "end time is required")
	}
	if !input.Start.IsZero() && !input.End.IsZero() {
		if !input.End.After(input.Start) {
			vErr.add(prefix+"endTime", "end time must be after start time")
		} else if input.End.Sub(input.Start) < minSessionDuration {
			vErr.add(prefix+"endTime", "session must be at least 15 minutes long")
		}
	}
	switch input.Status {
	case "", SessionStatusDraft, SessionStatusConfirmed:
	default:
		vErr.add(prefix+"status", "status must be Draft or Confirmed")
	}
}

func (s *SessionService) facultyDisplayName(ctx context.Context, facultyID, email string) string {
	if s.users != nil {
		if user, err := s.users.GetUser(ctx, facultyID); err == nil && user.Name != "" {
			return user.Name
		}
		if user, err := s.users.GetUserByEmail(ctx, email); err == nil && user.Name != "" {
			return user.Name
		}
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "Faculty Member"
}

func (s *SessionService) roomName(ctx context.Context, roomID string) string {
	if s.rooms != nil {
		if room, err := s.rooms.GetRoom(ctx, roomID); err == nil && room.Name != "" {
			return room.Name
		}
	}
	return roomID
}

func toBooking(session Session) conflict.Booking {
	return conflict.Booking{
		SessionID: session.ID,
		Title:     session.Title,
		FacultyID: session.FacultyID,
		RoomID:    session.RoomID,
		Start:     session.Start,
		End:       session.End,
	}
}

func sessionIDs(sessions []Session) []string {
	if len(sessions) == 0 {
		return nil
	}
	ids := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		ids = append(ids, sess.ID)
	}
	return ids
}

func listConflicts(sessions []Session) []conflict.Conflict {
	if len(sessions) <= 1 {
		return nil
	}

	var warnings []conflict.Conflict
	for i := 0; i+1 < len(sessions); i++ {
		bookings := make([]conflict.Booking, 0, len(sessions)-i-1)
		for _, sess := range sessions[i+1:] {
			bookings = append(bookings, toBooking(sess))
		}
		warnings = append(warnings, conflict.Detect(bookings, toBooking(sessions[i]))...)
	}
	return warnings
}

func advisoryKey(filter SessionFilter) string {
	return strings.Join([]string{filter.FacultyID, filter.FacultyEmail, filter.EventID, strings.Join(filter.IDs, ",")}, "|")
}

func mapSessionRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("endTime", "end time must be after start time")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("roomId", "related records are missing")
		return vErr
	}
	return err
}
