package auth

import (
	"context"
	"errors"

	"github.com/hugh/docvault/internal/apperr"
	"github.com/hugh/docvault/internal/database/models"
	"github.com/hugh/docvault/internal/users"
)

var (
	ErrNotRegistered      = apperr.Authentication("User is not registered")
	ErrInvalidCredentials = apperr.Authentication("Invalid credentials")
	ErrInactiveUser       = apperr.Authentication("User account is inactive")
	ErrMissingToken       = apperr.Authentication("Authentication required. Please log in.")
)

type Service struct {
	users *users.Store
	jwt   *JWTService
}

func NewService(store *users.Store, jwt *JWTService) *Service {
	return &Service{users: store, jwt: jwt}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Register creates a viewer account. Store validation and duplicate errors
// are returned unchanged.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	return s.users.Create(ctx, users.CreateInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
	})
}

// Authenticate checks an email/password pair and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}

	if !users.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	user.PasswordHash = ""
	return user, nil
}

// Login issues a session token for an authenticated user.
func (s *Service) Login(ctx context.Context, user *models.User) (string, error) {
	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}

// IdentifyCaller resolves a bearer token to the active user it names. Tokens
// are not revocable: a valid token for a user that still exists and is active
// is accepted until it expires, even after logout.
func (s *Service) IdentifyCaller(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrInactiveUser
		}
		return nil, err
	}

	return user, nil
}
