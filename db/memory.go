package db

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"listo/models"
)

// MemoryStore keeps users and tasks in process memory. Data does not survive
// a restart; it backs DB_DRIVER=memory and the test suites.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]models.User
	emails    map[string]uuid.UUID
	tasks     map[uuid.UUID]models.Task
	taskOrder []uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[uuid.UUID]models.User),
		emails: make(map[string]uuid.UUID),
		tasks:  make(map[uuid.UUID]models.Task),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[user.Email]; exists {
		return ErrDuplicateEmail
	}
	s.users[user.ID] = *user
	s.emails[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// DeleteUser removes a user and cascades to their tasks.
func (s *MemoryStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	delete(s.emails, user.Email)

	kept := s.taskOrder[:0]
	for _, taskID := range s.taskOrder {
		if s.tasks[taskID].UserID == id {
			delete(s.tasks, taskID)
			continue
		}
		kept = append(kept, taskID)
	}
	s.taskOrder = kept
	return nil
}

func cloneTask(task models.Task) models.Task {
	if task.Description != nil {
		description := *task.Description
		task.Description = &description
	}
	return task
}

func (s *MemoryStore) CreateTask(ctx context.Context, task *models.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[task.ID] = cloneTask(*task)
	s.taskOrder = append(s.taskOrder, task.ID)
	return nil
}

func (s *MemoryStore) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	task = cloneTask(task)
	return &task, nil
}

func (s *MemoryStore) ListTasksByUser(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []models.Task{}
	for _, id := range s.taskOrder {
		if task := s.tasks[id]; task.UserID == userID {
			tasks = append(tasks, cloneTask(task))
		}
	}
	return tasks, nil
}

func (s *MemoryStore) UpdateTask(ctx context.Context, task *models.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[task.ID]
	if !ok {
		return ErrNotFound
	}
	current.Title = task.Title
	current.Description = task.Description
	current.Completed = task.Completed
	current.UpdatedAt = task.UpdatedAt
	s.tasks[task.ID] = cloneTask(current)
	return nil
}

func (s *MemoryStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	for i, taskID := range s.taskOrder {
		if taskID == id {
			s.taskOrder = append(s.taskOrder[:i], s.taskOrder[i+1:]...)
			break
		}
	}
	return nil
}
