package models

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `gorm:"not null" json:"name"`
	Role         Role   `gorm:"type:varchar(16);not null;default:viewer;index" json:"role"`
	IsActive     bool   `gorm:"default:true;index" json:"is_active"`

	Documents []Document `gorm:"foreignKey:OwnerID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) Deactivated() bool {
	return !u.IsActive
}
