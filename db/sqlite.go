package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"listo/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT,
	completed   INTEGER NOT NULL DEFAULT 0,
	user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS tasks_user_id_idx ON tasks (user_id, created_at);
`

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// SQLiteStore implements Store over a single SQLite file.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID.String(), user.Name, user.Email, user.Password, toMillis(user.CreatedAt), toMillis(user.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, name, email, password, created_at, updated_at FROM users WHERE email = ?", email)
	return scanSQLiteUser(row)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, name, email, password, created_at, updated_at FROM users WHERE id = ?", id.String())
	return scanSQLiteUser(row)
}

func scanSQLiteUser(row *sql.Row) (*models.User, error) {
	var (
		user                 models.User
		id                   string
		createdAt, updatedAt int64
	)
	err := row.Scan(&id, &user.Name, &user.Email, &user.Password, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if user.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return &user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row rowScanner) (*models.Task, error) {
	var (
		task                 models.Task
		id, userID           string
		description          sql.NullString
		createdAt, updatedAt int64
	)
	if err := row.Scan(&id, &task.Title, &description, &task.Completed, &userID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if task.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse task id: %w", err)
	}
	if task.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("parse task owner: %w", err)
	}
	if description.Valid {
		task.Description = &description.String
	}
	task.CreatedAt = fromMillis(createdAt)
	task.UpdatedAt = fromMillis(updatedAt)
	return &task, nil
}

func nullableString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func (s *SQLiteStore) CreateTask(ctx context.Context, task *models.Task) error {
	_, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		task.ID.String(), task.Title, nullableString(task.Description), task.Completed,
		task.UserID.String(), toMillis(task.CreatedAt), toMillis(task.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id.String())
	task, err := scanSQLiteTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (s *SQLiteStore) ListTasksByUser(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY created_at, rowid", userID.String())
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, task *models.Task) error {
	result, err := s.sqlDB.ExecContext(ctx,
		"UPDATE tasks SET title = ?, description = ?, completed = ?, updated_at = ? WHERE id = ?",
		task.Title, nullableString(task.Description), task.Completed, toMillis(task.UpdatedAt), task.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireAffected(result)
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	result, err := s.sqlDB.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
