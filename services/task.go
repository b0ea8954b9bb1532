package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"listo/apperrors"
	"listo/db"
	"listo/models"
)

type CreateTaskInput struct {
	Title       string
	Description *string
}

// UpdateTaskInput holds a partial update. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

type TaskService struct {
	tasks db.TaskStore
	now   func() time.Time
	newID func() uuid.UUID
}

func NewTaskService(tasks db.TaskStore) *TaskService {
	return &TaskService{
		tasks: tasks,
		now:   time.Now,
		newID: uuid.New,
	}
}

func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, in CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.Validation("Title is required")
	}

	createdAt := s.now().UTC()
	task := &models.Task{
		ID:          s.newID(),
		Title:       title,
		Description: in.Description,
		Completed:   false,
		UserID:      userID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, apperrors.Internal("create task", err)
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	tasks, err := s.tasks.ListTasksByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("list tasks", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	return s.owned(ctx, userID, taskID, "Task does not belong to user")
}

func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.owned(ctx, userID, taskID, "Task does not belong to user")
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperrors.Validation("Title cannot be empty")
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = in.Description
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}
	task.UpdatedAt = s.now().UTC()

	if err := s.tasks.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.NotFound("Task not found")
		}
		return nil, apperrors.Internal("update task", err)
	}
	return task, nil
}

// Delete removes the task and returns its state prior to deletion.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.owned(ctx, userID, taskID, "Not authorized to delete this task")
	if err != nil {
		return nil, err
	}

	if err := s.tasks.DeleteTask(ctx, task.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.NotFound("Task not found")
		}
		return nil, apperrors.Internal("delete task", err)
	}
	return task, nil
}

// owned loads a task and checks that userID owns it. Existence is checked first,
// so a missing id is NotFound for everyone.
func (s *TaskService) owned(ctx context.Context, userID, taskID uuid.UUID, forbidden string) (*models.Task, error) {
	task, err := s.tasks.GetTask(ctx, taskID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperrors.NotFound("Task not found")
	}
	if err != nil {
		return nil, apperrors.Internal("get task", err)
	}
	if !task.OwnedBy(userID) {
		return nil, apperrors.Forbidden(forbidden)
	}
	return task, nil
}
