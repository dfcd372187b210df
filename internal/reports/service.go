// Package reports aggregates users and documents for the admin reporting
// surface. Every query is a full scan; there is no pagination.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/docvault/internal/access"
	"github.com/hugh/docvault/internal/apperr"
	"github.com/hugh/docvault/internal/database/models"
	"gorm.io/gorm"
)

// uploaderRoles are the roles that can upload, and so the only ones the
// per-uploader reports consider.
var uploaderRoles = []models.Role{models.RoleAdmin, models.RoleEditor}

// Documents are reported only while their owner is active too, so every
// report agrees with DocumentsByUser.
const (
	joinOwners   = "JOIN users ON users.id = documents.owner_id"
	activeOwners = "users.is_active = ?"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RoleCounts always carries every role, zero when nothing matched.
type RoleCounts map[models.Role]int64

type UserDocuments struct {
	UserID        uuid.UUID         `json:"user_id"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Role          models.Role       `json:"role"`
	DocumentCount int               `json:"document_count"`
	Documents     []DocumentSummary `json:"documents"`
}

type DocumentSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

type DocumentUploader struct {
	DocumentID   uuid.UUID `json:"document_id"`
	Title        string    `json:"title"`
	UploadedAt   time.Time `json:"uploaded_at"`
	UploaderID   uuid.UUID `json:"uploader_id"`
	UploaderName string    `json:"uploader_name"`
}

type roleCount struct {
	Role  models.Role
	Count int64
}

func newRoleCounts(rows []roleCount) RoleCounts {
	counts := make(RoleCounts, len(models.AllRoles))
	for _, r := range models.AllRoles {
		counts[r] = 0
	}
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts
}

// UsersByRole counts active users per role.
func (s *Service) UsersByRole(ctx context.Context, caller *models.User) (RoleCounts, error) {
	var rows []roleCount
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Scopes(access.Visible(caller)).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("counting users by role: %w", err))
	}
	return newRoleCounts(rows), nil
}

// DocumentsByUploaderRole counts active documents of active owners by the
// owner's role.
func (s *Service) DocumentsByUploaderRole(ctx context.Context, caller *models.User) (RoleCounts, error) {
	var rows []roleCount
	if err := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Scopes(access.Visible(caller)).
		Select("users.role AS role, COUNT(documents.id) AS count").
		Joins(joinOwners).
		Where(activeOwners, true).
		Group("users.role").
		Scan(&rows).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("counting documents by role: %w", err))
	}
	return newRoleCounts(rows), nil
}

// DocumentsByUser lists each active admin and editor with their active
// documents, including users who uploaded nothing.
func (s *Service) DocumentsByUser(ctx context.Context, caller *models.User) ([]UserDocuments, error) {
	var owners []models.User
	if err := s.db.WithContext(ctx).
		Scopes(access.Visible(caller)).
		Where("role IN ?", uploaderRoles).
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Scopes(access.Visible(caller)).Omit("content").Order("created_at ASC")
		}).
		Order("name ASC").
		Find(&owners).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("listing documents by user: %w", err))
	}

	out := make([]UserDocuments, 0, len(owners))
	for _, u := range owners {
		entry := UserDocuments{
			UserID:        u.ID,
			Name:          u.Name,
			Email:         u.Email,
			Role:          u.Role,
			DocumentCount: len(u.Documents),
			Documents:     make([]DocumentSummary, 0, len(u.Documents)),
		}
		for _, d := range u.Documents {
			entry.Documents = append(entry.Documents, DocumentSummary{
				ID:           d.ID,
				Title:        d.Title,
				OriginalName: d.OriginalName,
				MimeType:     d.MimeType,
				Size:         d.Size,
				CreatedAt:    d.CreatedAt,
			})
		}
		out = append(out, entry)
	}
	return out, nil
}

// AdminEditorDocumentTotal counts active documents owned by active admins or
// editors. It matches the sum of DocumentCount over DocumentsByUser.
func (s *Service) AdminEditorDocumentTotal(ctx context.Context, caller *models.User) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Scopes(access.Visible(caller)).
		Joins(joinOwners).
		Where(activeOwners, true).
		Where("users.role IN ?", uploaderRoles).
		Count(&total).Error; err != nil {
		return 0, apperr.Internal(fmt.Errorf("counting admin and editor documents: %w", err))
	}
	return total, nil
}

// DocumentsWithUploader pairs every active document with its uploader's name.
func (s *Service) DocumentsWithUploader(ctx context.Context, caller *models.User) ([]DocumentUploader, error) {
	rows := make([]DocumentUploader, 0)
	if err := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Scopes(access.Visible(caller)).
		Select("documents.id AS document_id, documents.title AS title, documents.created_at AS uploaded_at, users.id AS uploader_id, users.name AS uploader_name").
		Joins(joinOwners).
		Where(activeOwners, true).
		Order("documents.created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("listing documents with uploader: %w", err))
	}
	return rows, nil
}
