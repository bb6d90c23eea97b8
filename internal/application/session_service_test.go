package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/conference-hub/internal/conflict"
)

var testClock = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testClock }

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type sessionRepoStub struct {
	stored     []Session
	createErr  error
	getFn      func(id string) (Session, error)
	updateFn   func(session Session) (Session, error)
	listFn     func(filter SessionFilter) ([]Session, error)
	candidates []Session
}

func (s *sessionRepoStub) CreateSession(_ context.Context, session Session) (Session, error) {
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	s.stored = append(s.stored, session)
	return session, nil
}

func (s *sessionRepoStub) GetSession(_ context.Context, id string) (Session, error) {
	if s.getFn != nil {
		return s.getFn(id)
	}
	for _, sess := range s.stored {
		if sess.ID == id {
			return sess, nil
		}
	}
	return Session{}, ErrNotFound
}

func (s *sessionRepoStub) UpdateSession(_ context.Context, session Session) (Session, error) {
	if s.updateFn != nil {
		return s.updateFn(session)
	}
	for i, sess := range s.stored {
		if sess.ID == session.ID {
			s.stored[i] = session
			return session, nil
		}
	}
	return Session{}, ErrNotFound
}

func (s *sessionRepoStub) ListSessions(_ context.Context, filter SessionFilter) ([]Session, error) {
	if s.listFn != nil {
		return s.listFn(filter)
	}
	return s.stored, nil
}

func (s *sessionRepoStub) ListConflictCandidates(_ context.Context, facultyID, roomID string, start, end time.Time) ([]Session, error) {
	var out []Session
	for _, sess := range append(append([]Session{}, s.candidates...), s.stored...) {
		if sess.FacultyID != facultyID && sess.RoomID != roomID {
			continue
		}
		if sess.Start.Before(end) && sess.End.After(start) {
			out = append(out, sess)
		}
	}
	return out, nil
}

type dispatcherStub struct {
	invites     int
	notices     int
	lastEmail   string
	lastBatch   []Session
	inviteOut   InviteOutcome
	noticeOut   InviteOutcome
	lastSession Session
}

func (d *dispatcherStub) SendBulkInvite(_ context.Context, sessions []Session, _ string, email string) InviteOutcome {
	d.invites++
	d.lastEmail = email
	d.lastBatch = sessions
	if d.inviteOut == (InviteOutcome{}) {
		return InviteOutcome{OK: true}
	}
	return d.inviteOut
}

func (d *dispatcherStub) SendUpdateNotice(_ context.Context, session Session, _, _ string) InviteOutcome {
	d.notices++
	d.lastSession = session
	if d.noticeOut == (InviteOutcome{}) {
		return InviteOutcome{OK: true}
	}
	return d.noticeOut
}

type eventCatalogStub struct {
	events map[string]Event
}

func (e *eventCatalogStub) GetEvent(_ context.Context, id string) (Event, error) {
	if event, ok := e.events[id]; ok {
		return event, nil
	}
	return Event{}, ErrNotFound
}

func (e *eventCatalogStub) CountEvents(_ context.Context) (int, error) {
	return len(e.events), nil
}

type userDirectoryStub struct {
	users map[string]User
}

func (u *userDirectoryStub) GetUser(_ context.Context, id string) (User, error) {
	if user, ok := u.users[id]; ok {
		return user, nil
	}
	return User{}, ErrNotFound
}

func (u *userDirectoryStub) GetUserByEmail(_ context.Context, email string) (User, error) {
	for _, user := range u.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

type roomCatalogStub struct {
	rooms map[string]Room
}

func (r *roomCatalogStub) GetRoom(_ context.Context, id string) (Room, error) {
	if room, ok := r.rooms[id]; ok {
		return room, nil
	}
	return Room{}, ErrNotFound
}

func organizerPrincipal() Principal {
	return NewPrincipal(User{ID: "user-1", Email: "org@example.com", Role: RoleOrganizer})
}

func facultyPrincipal(id, email string) Principal {
	return NewPrincipal(User{ID: id, Email: email, Role: RoleFaculty})
}

func newSessionService(repo *sessionRepoStub, dispatcher *dispatcherStub, events *eventCatalogStub) *SessionService {
	if events == nil {
		events = &eventCatalogStub{events: map[string]Event{"evt_123": {ID: "evt_123", Name: "Annual Meet"}}}
	}
	return NewSessionService(repo, &userDirectoryStub{users: map[string]User{}}, &roomCatalogStub{rooms: map[string]Room{"room-1": {ID: "room-1", Name: "Hall A"}}}, events, dispatcher, sequentialIDs("sess"), fixedNow, nil)
}

func validInput(title string, startOffset time.Duration) SessionInput {
	start := testClock.Add(24*time.Hour + startOffset)
	return SessionInput{
		Title:       title,
		Place:       "Main Campus",
		RoomID:      "room-1",
		Description: "Keynote talk",
		Start:       start,
		End:         start.Add(time.Hour),
	}
}

func TestCreateSessionValidation(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		mutate    func(*CreateSessionParams)
		wantField string
	}{
		"missing title": {
			mutate:    func(p *CreateSessionParams) { p.Input.Title = "  " },
			wantField: "title",
		},
		"missing room": {
			mutate:    func(p *CreateSessionParams) { p.Input.RoomID = "" },
			wantField: "roomId",
		},
		"end before start": {
			mutate:    func(p *CreateSessionParams) { p.Input.End = p.Input.Start.Add(-time.Hour) },
			wantField: "endTime",
		},
		"under fifteen minutes": {
			mutate:    func(p *CreateSessionParams) { p.Input.End = p.Input.Start.Add(10 * time.Minute) },
			wantField: "endTime",
		},
		"missing faculty": {
			mutate:    func(p *CreateSessionParams) { p.FacultyID = "" },
			wantField: "facultyId",
		},
		"malformed email": {
			mutate:    func(p *CreateSessionParams) { p.FacultyEmail = "not-an-email" },
			wantField: "email",
		},
		"unknown event": {
			mutate:    func(p *CreateSessionParams) { p.EventID = "evt_missing" },
			wantField: "eventId",
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			repo := &sessionRepoStub{}
			svc := newSessionService(repo, &dispatcherStub{}, nil)

			params := CreateSessionParams{
				Principal:    organizerPrincipal(),
				FacultyID:    "faculty-evt_123",
				FacultyEmail: "doc@example.com",
				EventID:      "evt_123",
				Input:        validInput("Keynote", 0),
			}
			tc.mutate(&params)

			_, _, err := svc.CreateSession(context.Background(), params)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.wantField]; !ok {
				t.Fatalf("expected field %q in %v", tc.wantField, vErr.FieldErrors)
			}
			if len(repo.stored) != 0 {
				t.Fatalf("expected nothing persisted, got %d", len(repo.stored))
			}
		})
	}
}

func TestCreateSessionRequiresManageGrant(t *testing.T) {
	t.Parallel()

	svc := newSessionService(&sessionRepoStub{}, &dispatcherStub{}, nil)
	_, _, err := svc.CreateSession(context.Background(), CreateSessionParams{
		Principal: facultyPrincipal("faculty-evt_123", "doc@example.com"),
		FacultyID: "faculty-evt_123",
		Input:     validInput("Keynote", 0),
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCreateSessionConflictOnlyDoesNotPersist(t *testing.T) {
	t.Parallel()

	input := validInput("Keynote", 0)
	repo := &sessionRepoStub{candidates: []Session{{
		ID:        "existing-1",
		Title:     "Morning Rounds",
		FacultyID: "faculty-evt_123",
		RoomID:    "room-9",
		Start:     input.Start.Add(-30 * time.Minute),
		End:       input.Start.Add(30 * time.Minute),
	}}}
	svc := newSessionService(repo, &dispatcherStub{}, nil)

	_, conflicts, err := svc.CreateSession(context.Background(), CreateSessionParams{
		Principal:    organizerPrincipal(),
		FacultyID:    "faculty-evt_123",
		FacultyEmail: "doc@example.com",
		EventID:      "evt_123",
		Input:        input,
		ConflictOnly: true,
	})
	if err != nil {
		t.Fatalf("conflictOnly probe should not error: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Type != conflict.TypeFaculty {
		t.Fatalf("expected one faculty conflict, got %+v", conflicts)
	}
	if len(repo.stored) != 0 {
		t.Fatalf("probe must not persist, stored %d", len(repo.stored))
	}
}

func TestCreateSessionBlockedWithoutOverwrite(t *testing.T) {
	t.Parallel()

	input := validInput("Keynote", 0)
	repo := &sessionRepoStub{candidates: []Session{{
		ID:        "existing-1",
		Title:     "Morning Rounds",
		FacultyID: "other-faculty",
		RoomID:    "room-1",
		Start:     input.Start,
		End:       input.End,
	}}}
	svc := newSessionService(repo, &dispatcherStub{}, nil)

	params := CreateSessionParams{
		Principal:    organizerPrincipal(),
		FacultyID:    "faculty-evt_123",
		FacultyEmail: "doc@example.com",
		EventID:      "evt_123",
		Input:        input,
	}

	_, _, err := svc.CreateSession(context.Background(), params)
	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if cErr.SessionTitle != "Keynote" {
		t.Fatalf("unexpected title %q", cErr.SessionTitle)
	}
	if len(repo.stored) != 0 {
		t.Fatalf("blocked create must not persist")
	}

	params.Overwrite = true
	created, _, err := svc.CreateSession(context.Background(), params)
	if err != nil {
		t.Fatalf("overwrite create failed: %v", err)
	}
	if created.InviteStatus != InviteStatusPending || created.Status != SessionStatusDraft {
		t.Fatalf("unexpected statuses %q/%q", created.Status, created.InviteStatus)
	}
	if len(repo.stored) != 1 {
		t.Fatalf("expected one persisted session, got %d", len(repo.stored))
	}
}

func TestBulkCreateHaltsOnConflictAndKeepsEarlierSessions(t *testing.T) {
	t.Parallel()

	blocked := validInput("Conflicting Talk", 5*time.Hour)
	repo := &sessionRepoStub{candidates: []Session{{
		ID:        "existing-1",
		Title:     "Board Review",
		FacultyID: "faculty-evt_123",
		RoomID:    "room-2",
		Start:     blocked.Start,
		End:       blocked.End,
	}}}
	dispatcher := &dispatcherStub{}
	svc := newSessionService(repo, dispatcher, nil)

	result, err := svc.BulkCreate(context.Background(), BulkCreateParams{
		Principal:    organizerPrincipal(),
		FacultyID:    "faculty-evt_123",
		FacultyEmail: "doc@example.com",
		FacultyName:  "Dr. Rivera",
		EventID:      "evt_123",
		Sessions: []SessionInput{
			validInput("Opening Talk", 0),
			validInput("Workshop", 2 * time.Hour),
			blocked,
			validInput("Never Created", 8 * time.Hour),
		},
	})

	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if cErr.SessionTitle != "Conflicting Talk" {
		t.Fatalf("unexpected offending title %q", cErr.SessionTitle)
	}
	if len(result.Created) != 2 || len(repo.stored) != 2 {
		t.Fatalf("expected two committed sessions, got %d result / %d stored", len(result.Created), len(repo.stored))
	}
	if len(cErr.CommittedIDs) != 2 || cErr.CommittedIDs[0] != result.Created[0].ID {
		t.Fatalf("committed ids should name the surviving sessions, got %v", cErr.CommittedIDs)
	}
	if dispatcher.invites != 0 {
		t.Fatalf("no invitation should go out on a halted batch")
	}
}

func TestBulkCreateOverwritePersistsEverySession(t *testing.T) {
	t.Parallel()

	blocked := validInput("Conflicting Talk", 5*time.Hour)
	repo := &sessionRepoStub{candidates: []Session{{
		ID:        "existing-1",
		Title:     "Board Review",
		FacultyID: "faculty-evt_123",
		RoomID:    "room-2",
		Start:     blocked.Start,
		End:       blocked.End,
	}}}
	dispatcher := &dispatcherStub{}
	svc := newSessionService(repo, dispatcher, nil)

	result, err := svc.BulkCreate(context.Background(), BulkCreateParams{
		Principal:    organizerPrincipal(),
		FacultyID:    "faculty-evt_123",
		FacultyEmail: "doc@example.com",
		FacultyName:  "Dr. Rivera",
		EventID:      "evt_123",
		Overwrite:    true,
		Sessions: []SessionInput{
			validInput("Opening Talk", 0),
			blocked,
			validInput("Closing Talk", 8 * time.Hour),
		},
	})
	if err != nil {
		t.Fatalf("overwrite bulk create failed: %v", err)
	}
	if len(result.Created) != 3 || len(repo.stored) != 3 {
		t.Fatalf("expected all three sessions persisted, got %d result / %d stored", len(result.Created), len(repo.stored))
	}
	if dispatcher.invites != 1 {
		t.Fatalf("expected one invitation, got %d", dispatcher.invites)
	}
}

func TestBulkCreateValidatesAllSessionsUpFront(t *testing.T) {
	t.Parallel()

	repo := &sessionRepoStub{}
	svc := newSessionService(repo, &dispatcherStub{}, nil)

	bad := validInput("Short Talk", 2*time.Hour)
	bad.End = bad.Start.Add(5 * time.Minute)

	_, err := svc.BulkCreate(context.Background(), BulkCreateParams{
		Principal:    organizerPrincipal(),
		FacultyID:    "faculty-evt_123",
		FacultyEmail: "doc@example.com",
		EventID:      "evt_123",
		Sessions:     []SessionInput{validInput("Opening Talk", 0), bad},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["sessions[1].endTime"]; !ok {
		t.Fatalf("expected positional field key, got %v", vErr.FieldErrors)
	}
	if len(repo.stored) != 0 {
		t.Fatalf("validation failure must not persist anything")
	}
}

func TestBulkCreateSendsOneConsolidatedInvitation(t *testing.T) {
	t.Parallel()

	repo := &sessionRepoStub{}
	dispatcher := &dispatcherStub{}
	svc := newSessionService(repo, dispatcher, nil)

	result, err := svc.BulkCreate(context.Background(), BulkCreateParams{
		Principal:    organizerPrincipal(),
		FacultyID:    "faculty-evt_123",
		FacultyEmail: "doc@example.com",
		FacultyName:  "Dr. Rivera",
		EventID:      "evt_123",
		Sessions: []SessionInput{
			validInput("Opening Talk", 0),
			validInput("Workshop", 2 * time.Hour),
			validInput("Panel", 4 * time.Hour),
		},
	})
	if err != nil {
		t.Fatalf("bulk create failed: %v", err)
	}
	if len(result.Created) != 3 {
		t.Fatalf("expected three sessions, got %d", len(result.Created))
	}
	if dispatcher.invites != 1 {
		t.Fatalf("expected exactly one invitation, got %d", dispatcher.invites)
	}
	if len(dispatcher.lastBatch) != 3 || dispatcher.lastEmail != "doc@example.com" {
		t.Fatalf("invitation should cover the whole batch for the faculty email")
	}
	if !result.Invitation.OK {
		t.Fatalf("expected OK invitation outcome, got %+v", result.Invitation)
	}
	for _, sess := range result.Created {
		if sess.InviteStatus != InviteStatusPending {
			t.Fatalf("created sessions must start Pending, got %q", sess.InviteStatus)
		}
	}
}

func TestBulkCreateSurvivesFailedInvitation(t *testing.T) {
	t.Parallel()

	repo := &sessionRepoStub{}
	dispatcher := &dispatcherStub{inviteOut: InviteOutcome{Warning: "smtp unreachable"}}
	svc := newSessionService(repo, dispatcher, nil)

	result, err := svc.BulkCreate(context.Background(), BulkCreateParams{
		Principal:    organizerPrincipal(),
		FacultyID:    "faculty-evt_123",
		FacultyEmail: "doc@example.com",
		EventID:      "evt_123",
		Sessions:     []SessionInput{validInput("Opening Talk", 0)},
	})
	if err != nil {
		t.Fatalf("dispatch failure must not fail the batch: %v", err)
	}
	if len(result.Created) != 1 {
		t.Fatalf("session should stay committed")
	}
	if result.Invitation.OK || result.Invitation.Warning != "smtp unreachable" {
		t.Fatalf("expected warning outcome, got %+v", result.Invitation)
	}
}

func TestRespond(t *testing.T) {
	t.Parallel()

	suggested := testClock.Add(72 * time.Hour)
	suggestedEnd := suggested.Add(time.Hour)

	cases := map[string]struct {
		initial   InviteStatus
		params    RespondParams
		wantErr   string
		check     func(t *testing.T, got Session)
	}{
		"accept": {
			initial: InviteStatusPending,
			params:  RespondParams{SessionID: "sess-1", Status: InviteStatusAccepted},
			check: func(t *testing.T, got Session) {
				if got.InviteStatus != InviteStatusAccepted || got.Rejection != nil {
					t.Fatalf("unexpected state %q %+v", got.InviteStatus, got.Rejection)
				}
			},
		},
		"decline needs reason": {
			initial: InviteStatusPending,
			params:  RespondParams{SessionID: "sess-1", Status: InviteStatusDeclined},
			wantErr: "rejectionReason",
		},
		"decline unknown reason": {
			initial: InviteStatusPending,
			params:  RespondParams{SessionID: "sess-1", Status: InviteStatusDeclined, Reason: "Busy"},
			wantErr: "rejectionReason",
		},
		"decline with suggested topic": {
			initial: InviteStatusPending,
			params: RespondParams{
				SessionID:      "sess-1",
				Status:         InviteStatusDeclined,
				Reason:         DeclineSuggestedTopic,
				SuggestedTopic: "Pediatric Imaging",
			},
			check: func(t *testing.T, got Session) {
				if got.Rejection == nil || got.Rejection.SuggestedTopic != "Pediatric Imaging" {
					t.Fatalf("suggested topic not recorded: %+v", got.Rejection)
				}
			},
		},
		"decline with time conflict": {
			initial: InviteStatusPending,
			params: RespondParams{
				SessionID:      "sess-1",
				Status:         InviteStatusDeclined,
				Reason:         DeclineTimeConflict,
				SuggestedStart: &suggested,
				SuggestedEnd:   &suggestedEnd,
			},
			check: func(t *testing.T, got Session) {
				if got.Rejection == nil || got.Rejection.SuggestedStart == nil || !got.Rejection.SuggestedStart.Equal(suggested) {
					t.Fatalf("suggested window not recorded: %+v", got.Rejection)
				}
			},
		},
		"already answered": {
			initial: InviteStatusAccepted,
			params:  RespondParams{SessionID: "sess-1", Status: InviteStatusDeclined, Reason: DeclineNotInterested},
			wantErr: "inviteStatus",
		},
		"invalid target status": {
			initial: InviteStatusPending,
			params:  RespondParams{SessionID: "sess-1", Status: InviteStatusPending},
			wantErr: "inviteStatus",
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			repo := &sessionRepoStub{stored: []Session{{
				ID:           "sess-1",
				Title:        "Keynote",
				FacultyID:    "faculty-evt_123",
				FacultyEmail: "doc@example.com",
				InviteStatus: tc.initial,
			}}}
			svc := newSessionService(repo, &dispatcherStub{}, nil)

			tc.params.Principal = facultyPrincipal("faculty-evt_123-987654", "doc@example.com")
			got, err := svc.Respond(context.Background(), tc.params)
			if tc.wantErr != "" {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if _, ok := vErr.FieldErrors[tc.wantErr]; !ok {
					t.Fatalf("expected field %q, got %v", tc.wantErr, vErr.FieldErrors)
				}
				return
			}
			if err != nil {
				t.Fatalf("respond failed: %v", err)
			}
			tc.check(t, got)
		})
	}
}

func TestRespondEnforcesInviteeOwnership(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		principal Principal
		wantOK    bool
	}{
		"unrelated faculty":           {principal: facultyPrincipal("faculty-evt_999", "other@example.com")},
		"composite identity of owner": {principal: facultyPrincipal("faculty-evt_123-987654", "session@example.com"), wantOK: true},
		"matching email":              {principal: facultyPrincipal("user-77", "doc@example.com"), wantOK: true},
		"organizer":                   {principal: organizerPrincipal(), wantOK: true},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			repo := &sessionRepoStub{stored: []Session{{
				ID:           "sess-1",
				Title:        "Keynote",
				FacultyID:    "faculty-evt_123",
				FacultyEmail: "doc@example.com",
				InviteStatus: InviteStatusPending,
			}}}
			svc := newSessionService(repo, &dispatcherStub{}, nil)

			got, err := svc.Respond(context.Background(), RespondParams{
				Principal: tc.principal,
				SessionID: "sess-1",
				Status:    InviteStatusAccepted,
			})
			if !tc.wantOK {
				if !errors.Is(err, ErrUnauthorized) {
					t.Fatalf("expected ErrUnauthorized, got %v", err)
				}
				if repo.stored[0].InviteStatus != InviteStatusPending {
					t.Fatalf("invitation must stay pending, got %q", repo.stored[0].InviteStatus)
				}
				return
			}
			if err != nil {
				t.Fatalf("respond failed: %v", err)
			}
			if got.InviteStatus != InviteStatusAccepted {
				t.Fatalf("expected accepted invitation, got %q", got.InviteStatus)
			}
		})
	}
}

func TestUpdateSessionSendsNoticeAndKeepsAdvisoryConflicts(t *testing.T) {
	t.Parallel()

	input := validInput("Keynote", 0)
	repo := &sessionRepoStub{
		stored: []Session{{
			ID:           "sess-1",
			Title:        "Keynote",
			FacultyID:    "faculty-evt_123",
			FacultyEmail: "doc@example.com",
			RoomID:       "room-1",
			Start:        input.Start,
			End:          input.End,
			InviteStatus: InviteStatusAccepted,
		}},
		candidates: []Session{{
			ID:        "sess-2",
			Title:     "Grand Rounds",
			FacultyID: "faculty-evt_123",
			RoomID:    "room-3",
			Start:     input.Start,
			End:       input.End,
		}},
	}
	dispatcher := &dispatcherStub{}
	svc := newSessionService(repo, dispatcher, nil)

	updated, warnings, err := svc.UpdateSession(context.Background(), UpdateSessionParams{
		Principal: organizerPrincipal(),
		SessionID: "sess-1",
		Input:     input,
	})
	if err != nil {
		t.Fatalf("update failed despite advisory conflict: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one advisory conflict, got %d", len(warnings))
	}
	if dispatcher.notices != 1 || dispatcher.lastSession.ID != updated.ID {
		t.Fatalf("expected one update notice for the edited session")
	}
}

func TestListSessionsScopesFacultyCallers(t *testing.T) {
	t.Parallel()

	var seen SessionFilter
	repo := &sessionRepoStub{listFn: func(filter SessionFilter) ([]Session, error) {
		seen = filter
		return nil, nil
	}}
	svc := newSessionService(repo, &dispatcherStub{}, nil)

	_, _, err := svc.ListSessions(context.Background(), ListSessionsParams{
		Principal: facultyPrincipal("faculty-evt_123-987654", "doc@example.com"),
		FacultyID: "someone-else",
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if seen.FacultyID != "faculty-evt_123" {
		t.Fatalf("faculty caller must be pinned to their base identity, got %q", seen.FacultyID)
	}
	if seen.FacultyEmail != "doc@example.com" {
		t.Fatalf("faculty caller must be pinned to their email, got %q", seen.FacultyEmail)
	}
}
