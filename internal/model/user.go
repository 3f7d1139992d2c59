package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminUser represents an administrative account. These accounts are
// provisioned out-of-band (seed tooling), never via public registration.
type AdminUser struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"type:varchar(255);not null" json:"-"` // Omit password hash from JSON
	IsSuperuser bool      `gorm:"default:false" json:"is_superuser"`
	IsStaff     bool      `gorm:"default:false" json:"is_staff"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AdminUser) TableName() string { return "admin_users" }

// CanLogin reports whether the account carries an elevated-privilege flag.
// Admin accounts without either flag cannot use the shared login.
func (u *AdminUser) CanLogin() bool {
	return u.IsSuperuser || u.IsStaff
}

func (u *AdminUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// RefreshToken stores long-lived tokens allowing admins to request new access
// tokens. Revoked rows double as the blacklist for rotation and logout.
type RefreshToken struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AdminUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"admin_user_id"`
	AdminUser   AdminUser `gorm:"foreignKey:AdminUserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt   time.Time `gorm:"not null" json:"expires_at"`
	Revoked     bool      `gorm:"default:false;index" json:"revoked"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
