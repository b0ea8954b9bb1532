package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"listo/apperrors"
	"listo/middlewares"
	"listo/services"
)

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// UpdateTaskRequest fields are optional; omitted or null fields keep their value.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

type TaskHandler struct {
	tasks *services.TaskService
	log   logrus.FieldLogger
}

func NewTaskHandler(tasks *services.TaskService, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log}
}

// taskID parses the {id} path variable. Anything that is not a UUID cannot
// name an existing task.
func taskID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, apperrors.NotFound("Task not found")
	}
	return id, nil
}

// GetTasks godoc
// @Summary      List the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Task
// @Failure      401  {object}  MessageResponse
// @Failure      500  {object}  MessageResponse
// @Router       /tasks [get]
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context(), middlewares.GetUserID(r))
	if err != nil {
		writeError(w, r, h.log, "GetTasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask godoc
// @Summary      Create a task owned by the caller
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        task  body      CreateTaskRequest  true  "Task to create"
// @Success      201   {object}  models.Task
// @Failure      400   {object}  MessageResponse
// @Failure      401   {object}  MessageResponse
// @Failure      500   {object}  MessageResponse
// @Router       /tasks [post]
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeJSON(r, &req) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.tasks.Create(r.Context(), middlewares.GetUserID(r), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, h.log, "CreateTask", err)
		return
	}

	h.log.WithField("task_id", task.ID).Debug("task created")
	writeJSON(w, http.StatusCreated, task)
}

// GetTaskByID godoc
// @Summary      Get one of the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      401  {object}  MessageResponse
// @Failure      403  {object}  MessageResponse
// @Failure      404  {object}  MessageResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, r, h.log, "GetTaskByID", err)
		return
	}

	task, err := h.tasks.Get(r.Context(), middlewares.GetUserID(r), id)
	if err != nil {
		writeError(w, r, h.log, "GetTaskByID", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpdateTask godoc
// @Summary      Partially update one of the caller's tasks
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task ID"
// @Param        task  body      UpdateTaskRequest  true  "Fields to change"
// @Success      200   {object}  models.Task
// @Failure      400   {object}  MessageResponse
// @Failure      401   {object}  MessageResponse
// @Failure      403   {object}  MessageResponse
// @Failure      404   {object}  MessageResponse
// @Failure      500   {object}  MessageResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, r, h.log, "UpdateTask", err)
		return
	}

	var req UpdateTaskRequest
	if !decodeJSON(r, &req) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.tasks.Update(r.Context(), middlewares.GetUserID(r), id, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		writeError(w, r, h.log, "UpdateTask", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask godoc
// @Summary      Delete one of the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      401  {object}  MessageResponse
// @Failure      403  {object}  MessageResponse
// @Failure      404  {object}  MessageResponse
// @Failure      500  {object}  MessageResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, r, h.log, "DeleteTask", err)
		return
	}

	task, err := h.tasks.Delete(r.Context(), middlewares.GetUserID(r), id)
	if err != nil {
		writeError(w, r, h.log, "DeleteTask", err)
		return
	}

	h.log.WithField("task_id", task.ID).Info("task deleted")
	writeJSON(w, http.StatusOK, task)
}
