package dto

import (
	"time"

	"github.com/hugh/docvault/internal/database/models"
)

type UploaderResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DocumentResponse describes a document without its content.
type DocumentResponse struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	OriginalName string            `json:"original_name"`
	MimeType     string            `json:"mime_type"`
	Size         int64             `json:"size"`
	IsActive     bool              `json:"is_active"`
	CreatedAt    string            `json:"created_at"`
	ModifiedAt   string            `json:"modified_at"`
	Uploader     *UploaderResponse `json:"uploader,omitempty"`
}

func DocumentToResponse(d *models.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:           d.ID.String(),
		Title:        d.Title,
		OriginalName: d.OriginalName,
		MimeType:     d.MimeType,
		Size:         d.Size,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
		ModifiedAt:   d.UpdatedAt.Format(time.RFC3339),
	}
	if d.Owner != nil {
		resp.Uploader = &UploaderResponse{
			ID:    d.Owner.ID.String(),
			Name:  d.Owner.Name,
			Email: d.Owner.Email,
		}
	}
	return resp
}

func DocumentsToResponse(docs []models.Document) []DocumentResponse {
	out := make([]DocumentResponse, len(docs))
	for i := range docs {
		out[i] = DocumentToResponse(&docs[i])
	}
	return out
}
