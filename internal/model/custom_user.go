package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomUser represents a self-registered account, kept in a table disjoint
// from admin accounts. Login email is unique within this table only.
type CustomUser struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FullName      string     `gorm:"type:varchar(255);not null" json:"full_name"`
	LoginEmail    string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"login_email"`
	LoginPassword string     `gorm:"type:varchar(255);not null" json:"-"`
	CreatedByID   *uuid.UUID `gorm:"type:uuid;index" json:"created_by_id"` // Admin who registered on the user's behalf, if any
	CreatedBy     *AdminUser `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CustomUser) TableName() string { return "custom_users" }

func (u *CustomUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
