package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/conference-hub/internal/application"
	"github.com/example/conference-hub/internal/persistence"
)

const authSessionColumns = `id, user_id, token, expires_at, revoked_at, created_at, updated_at`

// AuthSessionRepository stores opaque login sessions.
type AuthSessionRepository struct {
	helper *QueryHelper
	retry  *RetryHelper
}

// NewAuthSessionRepository creates a login session repository on the shared
// pool.
func NewAuthSessionRepository(pool *ConnectionPool) *AuthSessionRepository {
	return &AuthSessionRepository{
		helper: NewQueryHelper(pool),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateAuthSession inserts a new login session row.
func (r *AuthSessionRepository) CreateAuthSession(ctx context.Context, session application.AuthSession) (application.AuthSession, error) {
	if session.ID == "" || session.UserID == "" || session.Token == "" {
		return application.AuthSession{}, persistence.ErrConstraintViolation
	}

	var revokedAt sql.NullString
	if session.RevokedAt != nil {
		revokedAt = sql.NullString{String: formatTime(*session.RevokedAt), Valid: true}
	}

	err := r.retry.WithRetry(ctx, func() error {
		_, err := r.helper.Exec(ctx, `INSERT INTO auth_sessions (`+authSessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			session.ID,
			session.UserID,
			session.Token,
			formatTime(session.ExpiresAt),
			revokedAt,
			formatTime(session.CreatedAt),
			formatTime(session.UpdatedAt),
		)
		return err
	})
	if err != nil {
		return application.AuthSession{}, MapError(err)
	}
	return session, nil
}

// GetAuthSessionByToken retrieves a login session by its token value.
func (r *AuthSessionRepository) GetAuthSessionByToken(ctx context.Context, token string) (application.AuthSession, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+authSessionColumns+` FROM auth_sessions WHERE token = ?`, token)

	var session application.AuthSession
	var expiresStr, createdStr, updatedStr string
	var revokedAt sql.NullString

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&expiresStr,
		&revokedAt,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return application.AuthSession{}, MapError(err)
	}

	if session.ExpiresAt, err = parseTime(expiresStr); err != nil {
		return application.AuthSession{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if session.CreatedAt, err = parseTime(createdStr); err != nil {
		return application.AuthSession{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return application.AuthSession{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if session.RevokedAt, err = parseTimePtr(revokedAt); err != nil {
		return application.AuthSession{}, fmt.Errorf("failed to parse revoked_at: %w", err)
	}

	return session, nil
}

// RevokeAuthSession stamps the session as revoked.
func (r *AuthSessionRepository) RevokeAuthSession(ctx context.Context, id string, revokedAt time.Time) error {
	stamp := formatTime(revokedAt)
	err := r.retry.WithRetry(ctx, func() error {
		result, err := r.helper.Exec(ctx, `UPDATE auth_sessions SET revoked_at = ?, updated_at = ? WHERE id = ?`, stamp, stamp, id)
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
	return MapError(err)
}

// DeleteExpiredAuthSessions removes login sessions expired before the cutoff.
func (r *AuthSessionRepository) DeleteExpiredAuthSessions(ctx context.Context, before time.Time) error {
	_, err := r.helper.Exec(ctx, `DELETE FROM auth_sessions WHERE expires_at < ?`, formatTime(before))
	return MapError(err)
}
