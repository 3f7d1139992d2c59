package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity log actions
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionLogin  = "login"
	ActionLogout = "logout"
	ActionView   = "view"
	ActionExport = "export"
)

// Activity log entity types
const (
	EntityBooking = "booking"
	EntityUser    = "user"
	EntityAuth    = "auth"
	EntitySystem  = "system"
)

// ActivityLog tracks who did what and when. Rows are append-only; the only
// mutation allowed is the bulk purge-by-age operation.
type ActivityLog struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Action      string    `gorm:"type:varchar(20);not null;index" json:"action"`
	EntityType  string    `gorm:"type:varchar(50);not null;index" json:"entity_type"`
	EntityID    string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName  string    `gorm:"type:varchar(255)" json:"entity_name"`
	Description string    `gorm:"type:text" json:"description"`

	PerformedByAdminID  *uuid.UUID  `gorm:"type:uuid;index" json:"performed_by_admin_id"`
	PerformedByAdmin    *AdminUser  `gorm:"foreignKey:PerformedByAdminID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	PerformedByCustomID *uuid.UUID  `gorm:"type:uuid;index" json:"performed_by_custom_id"`
	PerformedByCustom   *CustomUser `gorm:"foreignKey:PerformedByCustomID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	IPAddress string    `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent string    `gorm:"type:text" json:"user_agent"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_logs" }

func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// PerformerName returns a display name for whoever performed the action.
func (l *ActivityLog) PerformerName() string {
	if l.PerformedByAdmin != nil {
		return l.PerformedByAdmin.Username + " (Admin)"
	}
	if l.PerformedByCustom != nil {
		return l.PerformedByCustom.FullName + " (User)"
	}
	return "System"
}
