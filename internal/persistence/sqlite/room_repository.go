package sqlite

import (
	"context"

	"github.com/example/conference-hub/internal/application"
	"github.com/example/conference-hub/internal/persistence"
)

// RoomRepository stores meeting rooms.
type RoomRepository struct {
	helper *QueryHelper
	retry  *RetryHelper
}

// NewRoomRepository creates a room repository on the shared pool.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{
		helper: NewQueryHelper(pool),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateRoom inserts a new room row.
func (r *RoomRepository) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if room.ID == "" || room.Name == "" {
		return application.Room{}, persistence.ErrConstraintViolation
	}

	err := r.retry.WithRetry(ctx, func() error {
		_, err := r.helper.Exec(ctx, `INSERT INTO rooms (id, name) VALUES (?, ?)`, room.ID, room.Name)
		return err
	})
	if err != nil {
		return application.Room{}, MapError(err)
	}
	return room, nil
}

// GetRoom retrieves a room by id.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (application.Room, error) {
	var room application.Room
	err := r.helper.QueryRow(ctx, `SELECT id, name FROM rooms WHERE id = ?`, id).Scan(&room.ID, &room.Name)
	if err != nil {
		return application.Room{}, MapError(err)
	}
	return room, nil
}

// ListRooms returns every room ordered by name.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]application.Room, error) {
	rows, err := r.helper.Query(ctx, `SELECT id, name FROM rooms ORDER BY name, id`)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var rooms []application.Room
	for rows.Next() {
		var room application.Room
		if err := rows.Scan(&room.ID, &room.Name); err != nil {
			return nil, MapError(err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}
