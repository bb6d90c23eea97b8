package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/conference-hub/internal/persistence/sqlite"
)

// SQLiteHarness provides migrated repositories backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool      *sqlite.ConnectionPool
	Users     *sqlite.UserRepository
	Rooms     *sqlite.RoomRepository
	Events    *sqlite.EventRepository
	Sessions  *sqlite.SessionRepository
	Auth      *sqlite.AuthSessionRepository
	Documents *sqlite.DocumentRepository
	Requests  *sqlite.RequestRepository
}

// NewSQLiteHarness opens a temporary database, applies the migrations, and
// registers cleanup with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "conference.db")
	pool, err := sqlite.NewConnectionPool(path)
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}
	tb.Cleanup(func() { _ = pool.Close() })

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		tb.Fatalf("failed to migrate database: %v", err)
	}

	return &SQLiteHarness{
		Pool:      pool,
		Users:     sqlite.NewUserRepository(pool),
		Rooms:     sqlite.NewRoomRepository(pool),
		Events:    sqlite.NewEventRepository(pool),
		Sessions:  sqlite.NewSessionRepository(pool),
		Auth:      sqlite.NewAuthSessionRepository(pool),
		Documents: sqlite.NewDocumentRepository(pool),
		Requests:  sqlite.NewRequestRepository(pool),
	}
}
