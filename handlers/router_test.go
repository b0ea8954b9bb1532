package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"listo/db"
	"listo/models"
	"listo/services"
	"listo/utils"
)

type testAPI struct {
	t       *testing.T
	handler http.Handler
	store   *db.MemoryStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	tokens, err := utils.NewTokenService("router-secret", time.Hour)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := db.NewMemoryStore()
	handler := NewRouter(RouterConfig{
		Auth:           services.NewAuthService(store, tokens),
		Tasks:          services.NewTaskService(store),
		Logger:         log,
		AllowedOrigins: []string{"*"},
	})
	return &testAPI{t: t, handler: handler, store: store}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}

func expectMessage(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	expectStatus(t, rec, status)
	if got := decode[MessageResponse](t, rec).Message; got != message {
		t.Fatalf("expected message %q, got %q", message, got)
	}
}

func (a *testAPI) register(name, email string) AuthResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/auth/register", "", RegisterRequest{
		Name: name, Email: email, Password: "longpass1", ConfirmPassword: "longpass1",
	})
	expectStatus(a.t, rec, http.StatusCreated)
	return decode[AuthResponse](a.t, rec)
}

func TestAdaLovelaceWalkthrough(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Ada Lovelace", "email": "ada@x.com", "password": "longpass1", "confirmPassword": "longpass1",
	})
	expectStatus(t, rec, http.StatusCreated)
	raw := decode[map[string]any](t, rec)
	for _, key := range []string{"id", "name", "email", "token"} {
		if v, ok := raw[key].(string); !ok || v == "" {
			t.Fatalf("expected non-empty %q in %v", key, raw)
		}
	}
	if _, ok := raw["password"]; ok {
		t.Fatal("password must never be returned")
	}
	token := raw["token"].(string)

	rec = api.do(http.MethodPost, "/tasks", token, map[string]string{"title": "Write paper"})
	expectStatus(t, rec, http.StatusCreated)
	task := decode[models.Task](t, rec)
	if task.Completed {
		t.Fatal("new task must not be completed")
	}
	if task.UserID.String() != raw["id"] {
		t.Fatalf("task owner %s, want %v", task.UserID, raw["id"])
	}

	rec = api.do(http.MethodPut, "/tasks/"+task.ID.String(), token, map[string]bool{"completed": true})
	expectStatus(t, rec, http.StatusOK)
	updated := decode[models.Task](t, rec)
	if !updated.Completed || updated.Title != "Write paper" {
		t.Fatalf("unexpected updated task: %+v", updated)
	}

	rec = api.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "ada@x.com", Password: "wrong"})
	expectMessage(t, rec, http.StatusUnauthorized, "Invalid email or password")

	rec = api.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "ada@x.com", Password: "longpass1"})
	expectStatus(t, rec, http.StatusOK)
	if decode[AuthResponse](t, rec).Token == "" {
		t.Fatal("expected token on login")
	}
}

func TestRegisterErrors(t *testing.T) {
	api := newTestAPI(t)
	api.register("Ada Lovelace", "ada@x.com")

	rec := api.do(http.MethodPost, "/auth/register", "", RegisterRequest{
		Name: "Ada Again", Email: "ada@x.com", Password: "longpass1", ConfirmPassword: "longpass1",
	})
	expectMessage(t, rec, http.StatusConflict, "User already exists")

	rec = api.do(http.MethodPost, "/auth/register", "", RegisterRequest{
		Name: "Grace Hopper", Email: "grace@x.com", Password: "longpass1", ConfirmPassword: "longpass2",
	})
	expectMessage(t, rec, http.StatusBadRequest, "Passwords do not match")

	rec = api.do(http.MethodPost, "/auth/register", "", RegisterRequest{Email: "grace@x.com"})
	expectMessage(t, rec, http.StatusBadRequest, "All fields are required")

	rec = api.do(http.MethodPost, "/auth/register", "", "{not json")
	expectMessage(t, rec, http.StatusBadRequest, "Invalid request body")

	rec = api.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "ada@x.com"})
	expectMessage(t, rec, http.StatusBadRequest, "Email and password are required")
}

func TestTasksRequireToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/tasks", "", nil)
	expectMessage(t, rec, http.StatusUnauthorized, "No token provided")

	rec = api.do(http.MethodGet, "/tasks", "not-a-jwt", nil)
	expectMessage(t, rec, http.StatusUnauthorized, "Not authorized, invalid token")

	ada := api.register("Ada Lovelace", "ada@x.com")
	if err := api.store.DeleteUser(t.Context(), ada.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	rec = api.do(http.MethodGet, "/tasks", ada.Token, nil)
	expectMessage(t, rec, http.StatusUnauthorized, "Not authorized, user no longer exists")
}

func TestTaskOwnershipIsEnforced(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register("Ada Lovelace", "ada@x.com")
	grace := api.register("Grace Hopper", "grace@x.com")

	rec := api.do(http.MethodPost, "/tasks", ada.Token, CreateTaskRequest{Title: "Ada's task"})
	expectStatus(t, rec, http.StatusCreated)
	task := decode[models.Task](t, rec)
	path := "/tasks/" + task.ID.String()

	rec = api.do(http.MethodGet, "/tasks", grace.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	if tasks := decode[[]models.Task](t, rec); len(tasks) != 0 {
		t.Fatalf("grace sees foreign tasks: %+v", tasks)
	}

	rec = api.do(http.MethodGet, path, grace.Token, nil)
	expectMessage(t, rec, http.StatusForbidden, "Task does not belong to user")

	rec = api.do(http.MethodPut, path, grace.Token, map[string]any{"title": "hijacked", "completed": true})
	expectMessage(t, rec, http.StatusForbidden, "Task does not belong to user")

	rec = api.do(http.MethodDelete, path, grace.Token, nil)
	expectMessage(t, rec, http.StatusForbidden, "Not authorized to delete this task")

	rec = api.do(http.MethodGet, path, ada.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	unchanged := decode[models.Task](t, rec)
	if unchanged.Title != "Ada's task" || unchanged.Completed {
		t.Fatalf("task changed by another user: %+v", unchanged)
	}
}

func TestTaskCRUD(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register("Ada Lovelace", "ada@x.com")

	rec := api.do(http.MethodGet, "/tasks", ada.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty JSON array, got %s", rec.Body.String())
	}

	rec = api.do(http.MethodPost, "/tasks", ada.Token, map[string]string{"title": "   "})
	expectMessage(t, rec, http.StatusBadRequest, "Title is required")

	rec = api.do(http.MethodPost, "/tasks", ada.Token, map[string]string{"title": "Notes", "description": "analytical engine"})
	expectStatus(t, rec, http.StatusCreated)
	task := decode[models.Task](t, rec)
	path := "/tasks/" + task.ID.String()

	rec = api.do(http.MethodPut, path, ada.Token, map[string]string{"title": ""})
	expectMessage(t, rec, http.StatusBadRequest, "Title cannot be empty")

	rec = api.do(http.MethodPut, path, ada.Token, map[string]any{"completed": true, "description": nil})
	expectStatus(t, rec, http.StatusOK)
	updated := decode[models.Task](t, rec)
	if updated.Description == nil || *updated.Description != "analytical engine" || updated.Title != "Notes" {
		t.Fatalf("omitted fields not preserved: %+v", updated)
	}

	rec = api.do(http.MethodGet, "/tasks", ada.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	if tasks := decode[[]models.Task](t, rec); len(tasks) != 1 || !tasks[0].Completed {
		t.Fatalf("unexpected list: %+v", tasks)
	}

	rec = api.do(http.MethodDelete, path, ada.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	if deleted := decode[models.Task](t, rec); deleted.ID != task.ID || !deleted.Completed {
		t.Fatalf("expected prior state, got %+v", deleted)
	}

	rec = api.do(http.MethodDelete, path, ada.Token, nil)
	expectMessage(t, rec, http.StatusNotFound, "Task not found")

	rec = api.do(http.MethodPut, "/tasks/"+uuid.NewString(), ada.Token, map[string]bool{"completed": true})
	expectMessage(t, rec, http.StatusNotFound, "Task not found")

	rec = api.do(http.MethodDelete, "/tasks/42", ada.Token, nil)
	expectMessage(t, rec, http.StatusNotFound, "Task not found")

	rec = api.do(http.MethodPut, "/tasks/"+uuid.NewString(), ada.Token, "{broken")
	expectMessage(t, rec, http.StatusBadRequest, "Invalid request body")
}

func TestAPIPrefixMirrorsRoutes(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name: "Ada Lovelace", Email: "ada@x.com", Password: "longpass1", ConfirmPassword: "longpass1",
	})
	expectStatus(t, rec, http.StatusCreated)
	token := decode[AuthResponse](t, rec).Token

	rec = api.do(http.MethodPost, "/api/tasks", token, CreateTaskRequest{Title: "prefixed"})
	expectStatus(t, rec, http.StatusCreated)

	rec = api.do(http.MethodGet, "/tasks", token, nil)
	expectStatus(t, rec, http.StatusOK)
	if tasks := decode[[]models.Task](t, rec); len(tasks) != 1 {
		t.Fatalf("expected shared state across prefixes, got %+v", tasks)
	}

	rec = api.do(http.MethodGet, "/api/health", "", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestAuxiliaryEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/health", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if health := decode[HealthResponse](t, rec); health.Status != "OK" {
		t.Fatalf("unexpected health: %+v", health)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	rec = api.do(http.MethodGet, "/metrics", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatal("expected request counter in metrics output")
	}

	rec = api.do(http.MethodGet, "/swagger/doc.json", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "/tasks/{id}") {
		t.Fatal("expected task routes in swagger doc")
	}

	rec = api.do(http.MethodGet, "/nowhere", "", nil)
	expectMessage(t, rec, http.StatusNotFound, "Route not found")

	rec = api.do(http.MethodPatch, "/auth/login", "", nil)
	expectStatus(t, rec, http.StatusMethodNotAllowed)
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatal("expected CORS allow-origin header")
	}
}
