package sqlite

import (
	"context"
	"fmt"

	"github.com/example/conference-hub/internal/application"
	"github.com/example/conference-hub/internal/persistence"
)

const eventColumns = `id, name, start_date, end_date, location, status, created_by, created_at, updated_at`

// EventRepository stores events.
type EventRepository struct {
	helper *QueryHelper
	retry  *RetryHelper
}

// NewEventRepository creates an event repository on the shared pool.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		helper: NewQueryHelper(pool),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateEvent inserts a new event row.
func (r *EventRepository) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if event.ID == "" || event.Name == "" {
		return application.Event{}, persistence.ErrConstraintViolation
	}

	err := r.retry.WithRetry(ctx, func() error {
		_, err := r.helper.Exec(ctx, `INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			event.ID,
			event.Name,
			formatTime(event.Start),
			formatTime(event.End),
			event.Location,
			event.Status,
			event.CreatedBy,
			formatTime(event.CreatedAt),
			formatTime(event.UpdatedAt),
		)
		return err
	})
	if err != nil {
		return application.Event{}, MapError(err)
	}
	return event, nil
}

// GetEvent retrieves an event by id.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (application.Event, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(ctx, r.helper, row)
}

// ListEvents returns every event ordered by start date, with session counts.
func (r *EventRepository) ListEvents(ctx context.Context) ([]application.Event, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY start_date, id`)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var events []application.Event
	for rows.Next() {
		event, err := scanEvent(ctx, r.helper, rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// CountEvents reports how many events exist.
func (r *EventRepository) CountEvents(ctx context.Context) (int, error) {
	var count int
	if err := r.helper.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

func scanEvent(ctx context.Context, helper *QueryHelper, row rowScanner) (application.Event, error) {
	var event application.Event
	var startStr, endStr, createdStr, updatedStr string

	err := row.Scan(
		&event.ID,
		&event.Name,
		&startStr,
		&endStr,
		&event.Location,
		&event.Status,
		&event.CreatedBy,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return application.Event{}, MapError(err)
	}

	if event.Start, err = parseTime(startStr); err != nil {
		return application.Event{}, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if event.End, err = parseTime(endStr); err != nil {
		return application.Event{}, fmt.Errorf("failed to parse end_date: %w", err)
	}
	if event.CreatedAt, err = parseTime(createdStr); err != nil {
		return application.Event{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if event.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return application.Event{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	if err := helper.QueryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE event_id = ?`, event.ID).Scan(&event.SessionCount); err != nil {
		return application.Event{}, MapError(err)
	}

	return event, nil
}
