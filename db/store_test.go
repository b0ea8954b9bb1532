package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"listo/models"
)

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestSQLiteStoreContract(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "listo.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	runStoreContract(t, store)
}

func TestPostgresStoreContract(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	store, err := Open(context.Background(), Options{Driver: DriverPostgres, DatabaseURL: url})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	runStoreContract(t, store)
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "mysql"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenPostgresRequiresURL(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: DriverPostgres}); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestMemoryStoreDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := newUser("cascade@example.com")
	if err := store.CreateUser(ctx, &user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	task := newTask(user.ID, "owned")
	if err := store.CreateTask(ctx, &task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := store.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := store.GetUserByEmail(ctx, user.Email); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected task to be removed, got %v", err)
	}
}

func newUser(email string) models.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.User{
		ID:        uuid.New(),
		Name:      "Test User",
		Email:     email,
		Password:  "$2a$10$hash",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTask(owner uuid.UUID, title string) models.Task {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.Task{
		ID:        uuid.New(),
		Title:     title,
		UserID:    owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func runStoreContract(t *testing.T, store Store) {
	ctx := context.Background()
	suffix := uuid.NewString()

	alice := newUser("alice-" + suffix + "@example.com")
	bob := newUser("bob-" + suffix + "@example.com")

	t.Run("users", func(t *testing.T) {
		if err := store.CreateUser(ctx, &alice); err != nil {
			t.Fatalf("create alice: %v", err)
		}
		if err := store.CreateUser(ctx, &bob); err != nil {
			t.Fatalf("create bob: %v", err)
		}

		dup := newUser(alice.Email)
		if err := store.CreateUser(ctx, &dup); !errors.Is(err, ErrDuplicateEmail) {
			t.Fatalf("expected ErrDuplicateEmail, got %v", err)
		}

		got, err := store.GetUserByEmail(ctx, alice.Email)
		if err != nil {
			t.Fatalf("get by email: %v", err)
		}
		if got.ID != alice.ID || got.Name != alice.Name || got.Password != alice.Password {
			t.Fatalf("unexpected user: %+v", got)
		}

		got, err = store.GetUserByID(ctx, bob.ID)
		if err != nil {
			t.Fatalf("get by id: %v", err)
		}
		if got.Email != bob.Email {
			t.Fatalf("expected %q, got %q", bob.Email, got.Email)
		}

		if _, err := store.GetUserByID(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetUserByEmail(ctx, "ALICE-"+suffix+"@example.com"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected case-sensitive email lookup, got %v", err)
		}
	})

	t.Run("tasks", func(t *testing.T) {
		description := "with notes"
		first := newTask(alice.ID, "first")
		first.Description = &description
		second := newTask(alice.ID, "second")
		second.CreatedAt = first.CreatedAt.Add(time.Second)
		other := newTask(bob.ID, "bob's")

		for _, task := range []*models.Task{&first, &second, &other} {
			if err := store.CreateTask(ctx, task); err != nil {
				t.Fatalf("create task %q: %v", task.Title, err)
			}
		}

		got, err := store.GetTask(ctx, first.ID)
		if err != nil {
			t.Fatalf("get task: %v", err)
		}
		if got.Title != "first" || got.Description == nil || *got.Description != description || got.Completed {
			t.Fatalf("unexpected task: %+v", got)
		}
		if got.UserID != alice.ID {
			t.Fatalf("expected owner %s, got %s", alice.ID, got.UserID)
		}

		list, err := store.ListTasksByUser(ctx, alice.ID)
		if err != nil {
			t.Fatalf("list tasks: %v", err)
		}
		if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
			t.Fatalf("unexpected alice tasks: %+v", list)
		}

		empty, err := store.ListTasksByUser(ctx, uuid.New())
		if err != nil {
			t.Fatalf("list empty: %v", err)
		}
		if empty == nil || len(empty) != 0 {
			t.Fatalf("expected empty non-nil slice, got %#v", empty)
		}

		got.Completed = true
		got.Description = nil
		got.UpdatedAt = got.UpdatedAt.Add(time.Minute)
		if err := store.UpdateTask(ctx, got); err != nil {
			t.Fatalf("update task: %v", err)
		}
		updated, err := store.GetTask(ctx, first.ID)
		if err != nil {
			t.Fatalf("get updated: %v", err)
		}
		if !updated.Completed || updated.Description != nil || updated.Title != "first" {
			t.Fatalf("unexpected updated task: %+v", updated)
		}

		missing := newTask(alice.ID, "ghost")
		if err := store.UpdateTask(ctx, &missing); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound on update, got %v", err)
		}

		if err := store.DeleteTask(ctx, first.ID); err != nil {
			t.Fatalf("delete task: %v", err)
		}
		if _, err := store.GetTask(ctx, first.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteTask(ctx, first.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}

		bobs, err := store.ListTasksByUser(ctx, bob.ID)
		if err != nil {
			t.Fatalf("list bob: %v", err)
		}
		if len(bobs) != 1 || bobs[0].ID != other.ID {
			t.Fatalf("unexpected bob tasks: %+v", bobs)
		}
	})
}
