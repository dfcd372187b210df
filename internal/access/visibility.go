package access

import (
	"github.com/hugh/docvault/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Lifecycle is implemented by soft-deletable models.
type Lifecycle interface {
	Deactivated() bool
}

// IsVisible is the single read rule: a resolved caller sees active records,
// and nobody sees deactivated ones, whatever their role.
func IsVisible(entity Lifecycle, caller *models.User) bool {
	return caller != nil && IsActive(entity)
}

func IsActive(entity Lifecycle) bool {
	return entity != nil && !entity.Deactivated()
}

// ActiveOnly is the query form of IsActive. It filters on the statement's own
// table so it stays unambiguous when other tables are joined in.
func ActiveOnly(db *gorm.DB) *gorm.DB {
	return db.Where(clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: "is_active"},
		Value:  true,
	})
}

// Visible is the query form of IsVisible.
func Visible(caller *models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if caller == nil {
			return db.Where("1 = 0")
		}
		return ActiveOnly(db)
	}
}
