package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Booking represents a calendar event. Times are stored as zero-padded
// "HH:MM" strings so lexicographic comparison matches chronological order.
//
// Invariants enforced by the service layer:
//   - EndTime > StartTime
//   - at most 2 bookings share a BookingDate
//   - AdvanceGiven >= 0 (fixed-point, never float)
type Booking struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientName   string          `gorm:"type:varchar(255);not null" json:"client_name"`
	BookingDate  time.Time       `gorm:"type:date;not null;index" json:"booking_date"`
	StartTime    string          `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime      string          `gorm:"type:varchar(5);not null" json:"end_time"`
	PhoneNumber  string          `gorm:"type:varchar(17);not null" json:"phone_number"`
	Email        string          `gorm:"type:varchar(255)" json:"email"`
	EventType    string          `gorm:"type:varchar(255);not null" json:"event_type"`
	MenuType     string          `gorm:"type:varchar(255)" json:"menu_type"`
	PackCount    int             `gorm:"default:0" json:"pack_count"`
	AdvanceGiven decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"advance_given"`

	// Creator is exactly one of the two references, or neither.
	CreatedByAdminID  *uuid.UUID  `gorm:"type:uuid;index" json:"created_by_admin_id"`
	CreatedByAdmin    *AdminUser  `gorm:"foreignKey:CreatedByAdminID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	CreatedByCustomID *uuid.UUID  `gorm:"type:uuid;index" json:"created_by_custom_id"`
	CreatedByCustom   *CustomUser `gorm:"foreignKey:CreatedByCustomID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// CreatorName returns a display name for whoever created the booking.
func (b *Booking) CreatorName() string {
	if b.CreatedByAdmin != nil {
		return b.CreatedByAdmin.Username + " (Admin)"
	}
	if b.CreatedByCustom != nil {
		return b.CreatedByCustom.FullName + " (User)"
	}
	return "System"
}
