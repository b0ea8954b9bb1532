package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"listo/models"
)

const uniqueViolation = "23505"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id          UUID PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT,
	completed   BOOLEAN NOT NULL DEFAULT FALSE,
	user_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS tasks_user_id_idx ON tasks (user_id, created_at);
`

const taskColumns = "id, title, description, completed, user_id, created_at, updated_at"

// PostgresStore implements Store over a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, user.Password, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT id, name, email, password, created_at, updated_at FROM users WHERE email=$1", email)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT id, name, email, password, created_at, updated_at FROM users WHERE id=$1", id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) CreateTask(ctx context.Context, task *models.Task) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		task.ID, task.Title, task.Description, task.Completed, task.UserID, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.pool.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id=$1", id).
		Scan(&task.ID, &task.Title, &task.Description, &task.Completed, &task.UserID, &task.CreatedAt, &task.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

func (s *PostgresStore) ListTasksByUser(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id=$1 ORDER BY created_at, id", userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.Completed, &task.UserID, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *PostgresStore) UpdateTask(ctx context.Context, task *models.Task) error {
	commandTag, err := s.pool.Exec(ctx,
		"UPDATE tasks SET title=$1, description=$2, completed=$3, updated_at=$4 WHERE id=$5",
		task.Title, task.Description, task.Completed, task.UpdatedAt, task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	commandTag, err := s.pool.Exec(ctx, "DELETE FROM tasks WHERE id=$1", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
