package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"listo/models"
	"listo/services"
)

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the user's public fields plus a bearer token, flattened.
type AuthResponse struct {
	models.PublicUser
	Token string `json:"token"`
}

type AuthHandler struct {
	auth *services.AuthService
	log  logrus.FieldLogger
}

func NewAuthHandler(auth *services.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Register godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "Registration details"
// @Success      201   {object}  AuthResponse
// @Failure      400   {object}  MessageResponse
// @Failure      409   {object}  MessageResponse
// @Failure      500   {object}  MessageResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(r, &req) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.auth.Register(r.Context(), services.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, r, h.log, "Register", err)
		return
	}

	h.log.WithField("user_id", result.User.ID).Info("user registered")
	writeJSON(w, http.StatusCreated, AuthResponse{PublicUser: result.User, Token: result.Token})
}

// Login godoc
// @Summary      Log in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  AuthResponse
// @Failure      400   {object}  MessageResponse
// @Failure      401   {object}  MessageResponse
// @Failure      500   {object}  MessageResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(r, &req) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.auth.Login(r.Context(), services.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		writeError(w, r, h.log, "Login", err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{PublicUser: result.User, Token: result.Token})
}
