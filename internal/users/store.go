// Package users persists user identities and credentials.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/docvault/internal/access"
	"github.com/hugh/docvault/internal/apperr"
	"github.com/hugh/docvault/internal/database/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = apperr.NotFound("User not found")
	ErrEmailTaken          = apperr.Validation("Email already registered")
	ErrPasswordTooLong     = apperr.Validation(fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes))
	ErrRoleChangeForbidden = apperr.Authorization("Only admins can change roles.")
	ErrInvalidRole         = apperr.Validation("Role must be one of: viewer, editor, admin")
	ErrEmptyName           = apperr.Validation("Name cannot be empty")
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type CreateInput struct {
	Email    string
	Password string
	Name     string
}

// Patch carries the optional fields of a profile update.
type Patch struct {
	Name *string
	Role *models.Role
}

func (p Patch) empty() bool {
	return p.Name == nil && p.Role == nil
}

// Create registers a viewer. The password is hashed once, here, before the
// row is written.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Name = strings.TrimSpace(input.Name)

	if err := validateCreate(input); err != nil {
		return nil, err
	}

	var existing int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", input.Email).
		Count(&existing).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("checking email: %w", err))
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(input.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("hashing password: %w", err))
	}

	user := &models.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Role:         models.RoleViewer,
		IsActive:     true,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, apperr.Internal(fmt.Errorf("creating user: %w", err))
	}

	return user, nil
}

func validateCreate(input CreateInput) error {
	fields := make(map[string]string)
	first := ""
	for _, f := range []struct{ key, label, value string }{
		{"password", "Password", input.Password},
		{"email", "Email", input.Email},
		{"name", "Name", input.Name},
	} {
		if f.value == "" {
			msg := f.label + " is required"
			fields[f.key] = msg
			if first == "" {
				first = msg
			}
		}
	}
	if _, ok := fields["password"]; !ok && len(input.Password) > MaxPasswordBytes {
		fields["password"] = ErrPasswordTooLong.Message
		first = ErrPasswordTooLong.Message
	}
	if len(fields) > 0 {
		return apperr.ValidationFields(first, fields)
	}
	return nil
}

// FindByEmail looks a user up regardless of state. It backs credential checks
// only and must not be exposed to clients.
func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("email = ?", strings.TrimSpace(email)).
		First(&user).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &user, nil
}

// FindActiveByID resolves callers, so it filters with access.ActiveOnly
// rather than a caller-scoped access.Visible.
func (s *Store) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Scopes(access.ActiveOnly).
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &user, nil
}

func (s *Store) FindAllActive(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).
		Scopes(access.ActiveOnly).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("listing users: %w", err))
	}
	return users, nil
}

// Update applies patch to an active user. Changing the role to a different
// value requires an admin actor; resubmitting the current role is allowed.
func (s *Store) Update(ctx context.Context, id uuid.UUID, patch Patch, actor *models.User) (*models.User, error) {
	user, err := s.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.empty() {
		return user, nil
	}

	updates := make(map[string]interface{})

	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, ErrInvalidRole
		}
		if *patch.Role != user.Role {
			if actor == nil || actor.Role != models.RoleAdmin {
				return nil, ErrRoleChangeForbidden
			}
			updates["role"] = *patch.Role
		}
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		updates["name"] = name
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("updating user: %w", err))
	}

	return s.FindActiveByID(ctx, id)
}

// SoftDelete deactivates an active user. A second call reports not found.
// Documents owned by the user are left untouched.
func (s *Store) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Scopes(access.ActiveOnly).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return apperr.Internal(fmt.Errorf("deactivating user: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return apperr.Internal(fmt.Errorf("loading user: %w", err))
}
