// Package documents persists uploaded files and their ownership.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/docvault/internal/access"
	"github.com/hugh/docvault/internal/apperr"
	"github.com/hugh/docvault/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound = apperr.NotFound("Document not found")
	ErrEmptyContent     = apperr.Validation("File is required")
	ErrMissingOwner     = apperr.Validation("Document owner is required")
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type SaveInput struct {
	Content      []byte
	Title        string
	OriginalName string
	MimeType     string
	Owner        *models.User
}

type ReplaceInput struct {
	Content      []byte
	OriginalName string
	MimeType     string
}

// Save stores content verbatim under owner. The upload size cap is the
// caller's responsibility.
func (s *Store) Save(ctx context.Context, input SaveInput) (*models.Document, error) {
	if len(input.Content) == 0 {
		return nil, ErrEmptyContent
	}
	if input.Owner == nil || input.Owner.ID == uuid.Nil {
		return nil, ErrMissingOwner
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = input.OriginalName
	}

	doc := &models.Document{
		Title:        title,
		OriginalName: input.OriginalName,
		MimeType:     input.MimeType,
		Size:         int64(len(input.Content)),
		Content:      input.Content,
		IsActive:     true,
		OwnerID:      input.Owner.ID,
	}

	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("saving document: %w", err))
	}

	doc.Owner = input.Owner
	return doc, nil
}

// ListActive returns the documents caller may see, newest first, with their
// owners loaded and content left out.
func (s *Store) ListActive(ctx context.Context, caller *models.User) ([]models.Document, error) {
	var docs []models.Document
	if err := s.db.WithContext(ctx).
		Scopes(access.Visible(caller)).
		Omit("content").
		Preload("Owner").
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("listing documents: %w", err))
	}
	return docs, nil
}

// GetByID loads a document with its content. Documents the caller may not see
// are reported as absent.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID, caller *models.User) (*models.Document, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).
		Preload("Owner").
		Where("id = ?", id).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, apperr.Internal(fmt.Errorf("loading document: %w", err))
	}

	if !access.IsVisible(&doc, caller) {
		return nil, ErrDocumentNotFound
	}
	return &doc, nil
}

// SoftDelete deactivates an active document.
func (s *Store) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Scopes(access.ActiveOnly).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return apperr.Internal(fmt.Errorf("deactivating document: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// ReplaceContent overwrites the bytes and file metadata of an active
// document wholesale. The title is kept.
func (s *Store) ReplaceContent(ctx context.Context, id uuid.UUID, input ReplaceInput, caller *models.User) (*models.Document, error) {
	if len(input.Content) == 0 {
		return nil, ErrEmptyContent
	}

	result := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Scopes(access.ActiveOnly).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":       input.Content,
			"original_name": input.OriginalName,
			"mime_type":     input.MimeType,
			"size":          int64(len(input.Content)),
		})
	if result.Error != nil {
		return nil, apperr.Internal(fmt.Errorf("replacing document content: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return nil, ErrDocumentNotFound
	}

	return s.GetByID(ctx, id, caller)
}
