package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"listo/models"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail indicates the unique email constraint was hit.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserStore persists user records.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TaskStore persists task records. Each call is atomic on a single row.
type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListTasksByUser(ctx context.Context, userID uuid.UUID) ([]models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

type Store interface {
	UserStore
	TaskStore
	Close() error
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Options selects and locates a store backend.
type Options struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
}

// Open connects to the configured backend and makes sure its schema exists.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverPostgres, "":
		pool, err := Connect(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store := NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	case DriverSQLite:
		return OpenSQLite(opts.SQLitePath)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}
