package handlers

import (
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "listo/docs"
	"listo/middlewares"
	"listo/services"
)

type RouterConfig struct {
	Auth           *services.AuthService
	Tasks          *services.TaskService
	Logger         *logrus.Logger
	AllowedOrigins []string
}

// NewRouter wires every endpoint. The API is mounted at the root and again
// under /api.
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Auth, cfg.Logger)
	taskHandler := NewTaskHandler(cfg.Tasks, cfg.Logger)

	r := mux.NewRouter()
	r.Use(middlewares.RequestID, middlewares.Logging(cfg.Logger), middlewares.Metrics)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.HandleFunc("/", homeHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", Health).Methods(http.MethodGet)
	r.Handle("/metrics", middlewares.MetricsHandler()).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	requireAuth := middlewares.RequireAuth(cfg.Auth, cfg.Logger)
	for _, api := range []*mux.Router{r, r.PathPrefix("/api").Subrouter()} {
		if api != r {
			api.HandleFunc("/health", Health).Methods(http.MethodGet)
		}
		api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
		api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

		tasks := api.PathPrefix("/tasks").Subrouter()
		tasks.Use(requireAuth)
		tasks.HandleFunc("", taskHandler.GetTasks).Methods(http.MethodGet)
		tasks.HandleFunc("", taskHandler.CreateTask).Methods(http.MethodPost)
		tasks.HandleFunc("/{id}", taskHandler.GetTaskByID).Methods(http.MethodGet)
		tasks.HandleFunc("/{id}", taskHandler.UpdateTask).Methods(http.MethodPut)
		tasks.HandleFunc("/{id}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	}

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.AllowedOrigins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type", middlewares.RequestIDHeader}),
		gorillahandlers.ExposedHeaders([]string{middlewares.RequestIDHeader}),
	)
	recovery := gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(cfg.Logger),
		gorillahandlers.PrintRecoveryStack(false),
	)
	return recovery(cors(r))
}
