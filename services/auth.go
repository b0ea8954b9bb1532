package services

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"listo/apperrors"
	"listo/db"
	"listo/models"
	"listo/utils"
)

const minPasswordLength = 8

const invalidCredentials = "Invalid email or password"

// Tokens issues and verifies identity tokens.
type Tokens interface {
	Issue(userID uuid.UUID) (string, error)
	Verify(token string) (uuid.UUID, error)
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  models.PublicUser
	Token string
}

type AuthService struct {
	users  db.UserStore
	tokens Tokens
	now    func() time.Time
	newID  func() uuid.UUID
}

func NewAuthService(users db.UserStore, tokens Tokens) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		now:    time.Now,
		newID:  uuid.New,
	}
}

func validateRegistration(in RegisterInput) error {
	if in.Name == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return apperrors.Validation("All fields are required")
	}
	if !utils.ValidEmail(in.Email) {
		return apperrors.Validation("Invalid email format")
	}
	if !utils.ValidName(in.Name) {
		return apperrors.Validation("Name must be 2-50 characters and contain only letters")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return apperrors.Validation("Password must be at least 8 characters")
	}
	if in.Password != in.ConfirmPassword {
		return apperrors.Validation("Passwords do not match")
	}
	if len(in.Password) > utils.MaxPasswordBytes {
		return apperrors.Validation("Password must be at most 72 bytes")
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	_, err := s.users.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperrors.Conflict("User already exists")
	case !errors.Is(err, db.ErrNotFound):
		return nil, apperrors.Internal("lookup user by email", err)
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal("hash password", err)
	}

	createdAt := s.now().UTC()
	user := models.User{
		ID:        s.newID(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  hashed,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("User already exists")
		}
		return nil, apperrors.Internal("create user", err)
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if in.Email == "" || in.Password == "" {
		return nil, apperrors.Validation("Email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperrors.Unauthorized(invalidCredentials)
	}
	if err != nil {
		return nil, apperrors.Internal("lookup user by email", err)
	}
	if !utils.CheckPassword(in.Password, user.Password) {
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	return s.issue(*user)
}

// Authenticate resolves a bearer token to the user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.PublicUser, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return models.PublicUser{}, apperrors.Unauthenticated("Not authorized, invalid token")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return models.PublicUser{}, apperrors.Unauthenticated("Not authorized, user no longer exists")
	}
	if err != nil {
		return models.PublicUser{}, apperrors.Internal("lookup user by id", err)
	}
	return user.Public(), nil
}

func (s *AuthService) issue(user models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.Internal("issue token", err)
	}
	return &AuthResult{User: user.Public(), Token: token}, nil
}
