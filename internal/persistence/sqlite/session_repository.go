package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/conference-hub/internal/application"
	"github.com/example/conference-hub/internal/persistence"
)

const sessionColumns = `id, title, place, room_id, description, start_time, end_time,
	status, invite_status, travel_status,
	reject_reason, suggested_topic, suggested_start, suggested_end, reject_query,
	event_id, faculty_id, faculty_email, poster_path, created_at, updated_at`

// SessionRepository stores conference sessions in SQLite.
type SessionRepository struct {
	helper *QueryHelper
	retry  *RetryHelper
}

// NewSessionRepository creates a session repository on the shared pool.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{
		helper: NewQueryHelper(pool),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateSession inserts a new session row.
func (r *SessionRepository) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	if session.ID == "" || session.FacultyID == "" {
		return application.Session{}, persistence.ErrConstraintViolation
	}

	query := `INSERT INTO sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	reason, topic, sStart, sEnd, rQuery := rejectionColumns(session.Rejection)

	err := r.retry.WithRetry(ctx, func() error {
		_, err := r.helper.Exec(ctx, query,
			session.ID,
			session.Title,
			session.Place,
			session.RoomID,
			session.Description,
			formatTime(session.Start),
			formatTime(session.End),
			string(session.Status),
			string(session.InviteStatus),
			string(session.TravelStatus),
			reason, topic, sStart, sEnd, rQuery,
			session.EventID,
			session.FacultyID,
			session.FacultyEmail,
			session.PosterPath,
			formatTime(session.CreatedAt),
			formatTime(session.UpdatedAt),
		)
		return err
	})
	if err != nil {
		return application.Session{}, MapError(err)
	}

	return session, nil
}

// GetSession retrieves a session by id.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (application.Session, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// UpdateSession rewrites the mutable columns of an existing session. The id,
// faculty and creation timestamp never change.
func (r *SessionRepository) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	if session.ID == "" {
		return application.Session{}, persistence.ErrConstraintViolation
	}

	query := `UPDATE sessions SET
		title = ?, place = ?, room_id = ?, description = ?,
		start_time = ?, end_time = ?,
		status = ?, invite_status = ?, travel_status = ?,
		reject_reason = ?, suggested_topic = ?, suggested_start = ?, suggested_end = ?, reject_query = ?,
		poster_path = ?, updated_at = ?
		WHERE id = ?`

	reason, topic, sStart, sEnd, rQuery := rejectionColumns(session.Rejection)

	err := r.retry.WithRetry(ctx, func() error {
		result, err := r.helper.Exec(ctx, query,
			session.Title,
			session.Place,
			session.RoomID,
			session.Description,
			formatTime(session.Start),
			formatTime(session.End),
			string(session.Status),
			string(session.InviteStatus),
			string(session.TravelStatus),
			reason, topic, sStart, sEnd, rQuery,
			session.PosterPath,
			formatTime(session.UpdatedAt),
			session.ID,
		)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return application.Session{}, MapError(err)
	}

	return r.GetSession(ctx, session.ID)
}

// ListSessions returns sessions matching the filter ordered by start time.
// Faculty-scoped filters match by id or email so invitations addressed to
// either identity are visible.
func (r *SessionRepository) ListSessions(ctx context.Context, filter application.SessionFilter) ([]application.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var clauses []string
	var args []any

	switch {
	case filter.FacultyID != "" && filter.FacultyEmail != "":
		clauses = append(clauses, `(faculty_id = ? OR faculty_email = ?)`)
		args = append(args, filter.FacultyID, filter.FacultyEmail)
	case filter.FacultyID != "":
		clauses = append(clauses, `faculty_id = ?`)
		args = append(args, filter.FacultyID)
	case filter.FacultyEmail != "":
		clauses = append(clauses, `faculty_email = ?`)
		args = append(args, filter.FacultyEmail)
	}
	if filter.EventID != "" {
		clauses = append(clauses, `event_id = ?`)
		args = append(args, filter.EventID)
	}
	if len(filter.IDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.IDs)), ", ")
		clauses = append(clauses, `id IN (`+placeholders+`)`)
		for _, id := range filter.IDs {
			args = append(args, id)
		}
	}

	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY start_time, id`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var sessions []application.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// ListConflictCandidates returns sessions sharing the faculty or room whose
// interval overlaps [start, end). Touching intervals do not overlap.
func (r *SessionRepository) ListConflictCandidates(ctx context.Context, facultyID, roomID string, start, end time.Time) ([]application.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions
		WHERE (faculty_id = ? OR room_id = ?)
		  AND start_time < ? AND end_time > ?
		ORDER BY start_time, id`

	rows, err := r.helper.Query(ctx, query, facultyID, roomID, formatTime(end), formatTime(start))
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var sessions []application.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (application.Session, error) {
	var session application.Session
	var startStr, endStr, createdStr, updatedStr string
	var status, inviteStatus, travelStatus string
	var reason, topic, sStart, sEnd, rQuery sql.NullString

	err := row.Scan(
		&session.ID,
		&session.Title,
		&session.Place,
		&session.RoomID,
		&session.Description,
		&startStr,
		&endStr,
		&status,
		&inviteStatus,
		&travelStatus,
		&reason,
		&topic,
		&sStart,
		&sEnd,
		&rQuery,
		&session.EventID,
		&session.FacultyID,
		&session.FacultyEmail,
		&session.PosterPath,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return application.Session{}, MapError(err)
	}

	session.Status = application.SessionStatus(status)
	session.InviteStatus = application.InviteStatus(inviteStatus)
	session.TravelStatus = application.TravelStatus(travelStatus)

	if session.Start, err = parseTime(startStr); err != nil {
		return application.Session{}, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if session.End, err = parseTime(endStr); err != nil {
		return application.Session{}, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if session.CreatedAt, err = parseTime(createdStr); err != nil {
		return application.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return application.Session{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	if reason.Valid && reason.String != "" {
		rejection := &application.Rejection{
			Reason:         application.DeclineReason(reason.String),
			SuggestedTopic: topic.String,
			Query:          rQuery.String,
		}
		if rejection.SuggestedStart, err = parseTimePtr(sStart); err != nil {
			return application.Session{}, fmt.Errorf("failed to parse suggested_start: %w", err)
		}
		if rejection.SuggestedEnd, err = parseTimePtr(sEnd); err != nil {
			return application.Session{}, fmt.Errorf("failed to parse suggested_end: %w", err)
		}
		session.Rejection = rejection
	}

	return session, nil
}

func rejectionColumns(rejection *application.Rejection) (reason, topic, start, end, query sql.NullString) {
	if rejection == nil {
		return
	}
	reason = sql.NullString{String: string(rejection.Reason), Valid: true}
	if rejection.SuggestedTopic != "" {
		topic = sql.NullString{String: rejection.SuggestedTopic, Valid: true}
	}
	if rejection.SuggestedStart != nil {
		start = sql.NullString{String: formatTime(*rejection.SuggestedStart), Valid: true}
	}
	if rejection.SuggestedEnd != nil {
		end = sql.NullString{String: formatTime(*rejection.SuggestedEnd), Valid: true}
	}
	if rejection.Query != "" {
		query = sql.NullString{String: rejection.Query, Valid: true}
	}
	return
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

func parseTimePtr(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	parsed, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
