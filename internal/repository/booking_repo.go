package repository

import (
	"context"
	"time"

	"reception/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingFilter collects the composable filters shared by the booking list,
// report, and export queries. Zero values mean "no filter".
type BookingFilter struct {
	DateFrom        *time.Time
	DateTo          *time.Time // inclusive upper bound on booking_date
	EventType       string
	CreatedByAdmin  *uuid.UUID
	CreatedByCustom *uuid.UUID
	Search          string // case-insensitive substring over client/phone/email/event
	MinAdvance      *decimal.Decimal
	MaxAdvance      *decimal.Decimal
}

// BookingRepository defines data access for the booking ledger.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, filter BookingFilter, offset, limit int) ([]model.Booking, int64, error)
	ListAll(ctx context.Context, filter BookingFilter) ([]model.Booking, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.Booking, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error)
	// CountOnDate counts bookings on a calendar date, excluding excludeID
	// when non-empty (for date-changing updates).
	CountOnDate(ctx context.Context, date time.Time, excludeID string) (int64, error)
	SumAdvance(ctx context.Context, filter BookingFilter) (decimal.Decimal, error)
	EventBreakdown(ctx context.Context, filter BookingFilter) ([]model.EventTypeBreakdown, error)
	Update(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id string) error
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) applyFilter(db *gorm.DB, filter BookingFilter) *gorm.DB {
	if filter.DateFrom != nil {
		db = db.Where("booking_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		db = db.Where("booking_date <= ?", *filter.DateTo)
	}
	if filter.EventType != "" {
		db = db.Where("event_type = ?", filter.EventType)
	}
	if filter.CreatedByAdmin != nil {
		db = db.Where("created_by_admin_id = ?", *filter.CreatedByAdmin)
	}
	if filter.CreatedByCustom != nil {
		db = db.Where("created_by_custom_id = ?", *filter.CreatedByCustom)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where(
			"LOWER(client_name) LIKE LOWER(?) OR LOWER(phone_number) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?) OR LOWER(event_type) LIKE LOWER(?)",
			like, like, like, like,
		)
	}
	if filter.MinAdvance != nil {
		db = db.Where("advance_given >= ?", *filter.MinAdvance)
	}
	if filter.MaxAdvance != nil {
		db = db.Where("advance_given <= ?", *filter.MaxAdvance)
	}
	return db
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return GetDB(ctx, r.db).Create(booking).Error
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	err := GetDB(ctx, r.db).
		Preload("CreatedByAdmin").
		Preload("CreatedByCustom").
		First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) List(ctx context.Context, filter BookingFilter, offset, limit int) ([]model.Booking, int64, error) {
	var bookings []model.Booking
	var total int64

	base := r.applyFilter(GetDB(ctx, r.db).Model(&model.Booking{}), filter)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.applyFilter(GetDB(ctx, r.db), filter).
		Preload("CreatedByAdmin").
		Preload("CreatedByCustom").
		Order("booking_date desc, start_time desc").
		Offset(offset).Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *bookingRepository) ListAll(ctx context.Context, filter BookingFilter) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.applyFilter(GetDB(ctx, r.db), filter).
		Preload("CreatedByAdmin").
		Preload("CreatedByCustom").
		Order("booking_date desc, start_time desc").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepository) ListByDate(ctx context.Context, date time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := GetDB(ctx, r.db).
		Preload("CreatedByAdmin").
		Preload("CreatedByCustom").
		Where("booking_date = ?", date).
		Order("start_time asc").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepository) ListBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := GetDB(ctx, r.db).
		Where("booking_date >= ? AND booking_date < ?", from, to).
		Order("booking_date asc, start_time asc").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepository) CountOnDate(ctx context.Context, date time.Time, excludeID string) (int64, error) {
	query := GetDB(ctx, r.db).Model(&model.Booking{}).Where("booking_date = ?", date)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var total int64
	err := query.Count(&total).Error
	return total, err
}

func (r *bookingRepository) SumAdvance(ctx context.Context, filter BookingFilter) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.applyFilter(GetDB(ctx, r.db).Model(&model.Booking{}), filter).
		Select("COALESCE(SUM(advance_given), 0) as total").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func (r *bookingRepository) EventBreakdown(ctx context.Context, filter BookingFilter) ([]model.EventTypeBreakdown, error) {
	var rows []struct {
		EventType    string
		Count        int64
		TotalAdvance decimal.Decimal
	}
	err := r.applyFilter(GetDB(ctx, r.db).Model(&model.Booking{}), filter).
		Select("event_type, COUNT(id) as count, COALESCE(SUM(advance_given), 0) as total_advance").
		Group("event_type").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]model.EventTypeBreakdown, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.EventTypeBreakdown{
			EventType:    row.EventType,
			Count:        row.Count,
			TotalAdvance: row.TotalAdvance.StringFixed(2),
		})
	}
	return out, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	return GetDB(ctx, r.db).Save(booking).Error
}

func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Booking{}).Error
}
