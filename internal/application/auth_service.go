package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/conference-hub/internal/persistence"
)

// CredentialStore loads stored login credentials by email.
type CredentialStore interface {
	GetCredentials(ctx context.Context, email string) (Credentials, error)
}

// AuthSessionRepository persists opaque login sessions.
type AuthSessionRepository interface {
	CreateAuthSession(ctx context.Context, session AuthSession) (AuthSession, error)
	GetAuthSessionByToken(ctx context.Context, token string) (AuthSession, error)
	RevokeAuthSession(ctx context.Context, id string, revokedAt time.Time) error
	DeleteExpiredAuthSessions(ctx context.Context, before time.Time) error
}

// AuthService implements login, token validation and logout.
type AuthService struct {
	credentials    CredentialStore
	sessions       AuthSessionRepository
	users          UserDirectory
	verifyPassword func(hashedPassword, password string) error
	tokenGenerator func() string
	idGenerator    func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService wires dependencies for the authentication flows.
func NewAuthService(credentials CredentialStore, sessions AuthSessionRepository, users UserDirectory, tokenGenerator, idGenerator func() string, sessionTTL time.Duration, now func() time.Time, logger *slog.Logger) *AuthService {
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		sessions:       sessions,
		users:          users,
		verifyPassword: VerifyPassword,
		tokenGenerator: tokenGenerator,
		idGenerator:    idGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate checks the email and password and mints a login session.
// Lookup failures and password mismatches both surface as
// ErrInvalidCredentials so callers cannot probe which emails exist.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (AuthSession, User, error) {
	if s == nil || s.credentials == nil || s.sessions == nil {
		return AuthSession{}, User{}, fmt.Errorf("auth service not configured")
	}

	email = strings.TrimSpace(strings.ToLower(email))
	logger := s.loggerWith(ctx, "Authenticate", "email", email)

	vErr := &ValidationError{}
	if email == "" {
		vErr.add("email", "email is required")
	}
	if password == "" {
		vErr.add("password", "password is required")
	}
	if vErr.HasErrors() {
		return AuthSession{}, User{}, vErr
	}

	creds, err := s.credentials.GetCredentials(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			logger.InfoContext(ctx, "login rejected", "reason", "unknown_email")
			return AuthSession{}, User{}, ErrInvalidCredentials
		}
		return AuthSession{}, User{}, fmt.Errorf("failed to load credentials: %w", err)
	}

	if err := s.verifyPassword(creds.PasswordHash, password); err != nil {
		logger.InfoContext(ctx, "login rejected", "reason", "password_mismatch")
		return AuthSession{}, User{}, ErrInvalidCredentials
	}

	if creds.Disabled {
		logger.InfoContext(ctx, "login rejected", "reason", "account_disabled")
		return AuthSession{}, User{}, ErrAccountDisabled
	}

	now := s.now()
	session := AuthSession{
		ID:        s.idGenerator(),
		UserID:    creds.User.ID,
		Token:     s.tokenGenerator(),
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	persisted, err := s.sessions.CreateAuthSession(ctx, session)
	if err != nil {
		return AuthSession{}, User{}, fmt.Errorf("failed to create login session: %w", err)
	}

	logger.InfoContext(ctx, "login succeeded", "user_id", creds.User.ID, "role", creds.User.Role)
	return persisted, creds.User, nil
}

// ValidateSession resolves a bearer token to the acting principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	if s == nil || s.sessions == nil {
		return Principal{}, fmt.Errorf("auth service not configured")
	}
	if strings.TrimSpace(token) == "" {
		return Principal{}, ErrUnauthorized
	}

	session, err := s.sessions.GetAuthSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, fmt.Errorf("failed to load login session: %w", err)
	}

	if session.RevokedAt != nil {
		return Principal{}, ErrSessionRevoked
	}
	if !s.now().Before(session.ExpiresAt) {
		return Principal{}, ErrSessionExpired
	}

	user, err := s.users.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, fmt.Errorf("failed to load session user: %w", err)
	}

	return NewPrincipal(user), nil
}

// RevokeSession invalidates the login session behind the token. Revoking an
// unknown token is not an error.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("auth service not configured")
	}

	session, err := s.sessions.GetAuthSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load login session: %w", err)
	}

	if err := s.sessions.RevokeAuthSession(ctx, session.ID, s.now()); err != nil {
		return fmt.Errorf("failed to revoke login session: %w", err)
	}

	s.loggerWith(ctx, "RevokeSession").InfoContext(ctx, "login session revoked", "user_id", session.UserID)
	return nil
}

// PurgeExpiredSessions removes login sessions past their expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("auth service not configured")
	}
	return s.sessions.DeleteExpiredAuthSessions(ctx, s.now())
}
