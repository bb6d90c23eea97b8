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

const userColumns = `id, name, email, role, institution, designation, department, phone, event_id, created_at, updated_at`

// UserRepository stores accounts and their login credentials.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	retry  *RetryHelper
	now    func() time.Time
}

// NewUserRepository creates a user repository on the shared pool.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		retry:  NewRetryHelper(DefaultRetryConfig()),
		now:    time.Now,
	}
}

// CreateUser inserts the account and its credentials in one transaction.
func (r *UserRepository) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if user.ID == "" || user.Email == "" {
		return application.User{}, persistence.ErrConstraintViolation
	}

	user.Email = strings.ToLower(user.Email)
	now := r.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				user.ID,
				user.Name,
				user.Email,
				string(user.Role),
				user.Institution,
				user.Designation,
				user.Department,
				user.Phone,
				user.EventID,
				formatTime(user.CreatedAt),
				formatTime(user.UpdatedAt),
			); err != nil {
				return err
			}
			_, err := tx.Exec(`INSERT INTO credentials (user_id, password_hash, disabled) VALUES (?, ?, 0)`,
				user.ID, passwordHash)
			return err
		})
	})
	if err != nil {
		return application.User{}, MapError(err)
	}

	return user, nil
}

// GetUser retrieves an account by id.
func (r *UserRepository) GetUser(ctx context.Context, id string) (application.User, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves an account by email, case-insensitively.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (application.User, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email))
	return scanUser(row)
}

// ListFaculty returns faculty accounts ordered by name.
func (r *UserRepository) ListFaculty(ctx context.Context) ([]application.User, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY name, id`, string(application.RoleFaculty))
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var users []application.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetCredentials loads the login credentials behind an email address.
func (r *UserRepository) GetCredentials(ctx context.Context, email string) (application.Credentials, error) {
	query := `SELECT ` + prefixColumns("u", userColumns) + `, c.password_hash, c.disabled
		FROM users u
		JOIN credentials c ON c.user_id = u.id
		WHERE u.email = ?`

	var creds application.Credentials
	var createdStr, updatedStr, role string
	var disabled int

	err := r.helper.QueryRow(ctx, query, strings.ToLower(email)).Scan(
		&creds.User.ID,
		&creds.User.Name,
		&creds.User.Email,
		&role,
		&creds.User.Institution,
		&creds.User.Designation,
		&creds.User.Department,
		&creds.User.Phone,
		&creds.User.EventID,
		&createdStr,
		&updatedStr,
		&creds.PasswordHash,
		&disabled,
	)
	if err != nil {
		return application.Credentials{}, MapError(err)
	}

	creds.User.Role = application.Role(role)
	creds.Disabled = disabled != 0
	if creds.User.CreatedAt, err = parseTime(createdStr); err != nil {
		return application.Credentials{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if creds.User.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return application.Credentials{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return creds, nil
}

func scanUser(row rowScanner) (application.User, error) {
	var user application.User
	var role, createdStr, updatedStr string

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&role,
		&user.Institution,
		&user.Designation,
		&user.Department,
		&user.Phone,
		&user.EventID,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return application.User{}, MapError(err)
	}

	user.Role = application.Role(role)
	if user.CreatedAt, err = parseTime(createdStr); err != nil {
		return application.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if user.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return application.User{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return user, nil
}

// prefixColumns qualifies each column in a comma-separated list with a table
// alias for use in joins.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
