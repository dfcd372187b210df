package models

import "github.com/google/uuid"

// Document holds uploaded bytes verbatim. UpdatedAt doubles as the modified
// timestamp and moves on every content or flag change.
type Document struct {
	Base
	Title        string    `gorm:"not null" json:"title"`
	OriginalName string    `gorm:"not null" json:"original_name"`
	MimeType     string    `gorm:"not null" json:"mime_type"`
	Size         int64     `gorm:"not null" json:"size"`
	Content      []byte    `gorm:"not null" json:"-"`
	IsActive     bool      `gorm:"default:true;index" json:"is_active"`
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) Deactivated() bool {
	return !d.IsActive
}
