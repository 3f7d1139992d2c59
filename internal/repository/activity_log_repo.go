package repository

import (
	"context"
	"time"

	"reception/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityFilter collects the composable filters of the activity log query.
// Zero values mean "no filter". CreatedBefore is exclusive, CreatedFrom
// inclusive; callers translate a date_to form value to midnight-plus-one-day.
type ActivityFilter struct {
	Action            string
	EntityType        string
	PerformedByAdmin  *uuid.UUID
	PerformedByCustom *uuid.UUID
	CreatedFrom       *time.Time
	CreatedBefore     *time.Time
	Search            string
}

// ActivityLogRepository defines data access for the append-only activity
// trail. There is no update operation by design.
type ActivityLogRepository interface {
	Log(ctx context.Context, entry *model.ActivityLog) error
	List(ctx context.Context, filter ActivityFilter, offset, limit int) ([]model.ActivityLog, int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountByActionSince(ctx context.Context, since time.Time) ([]model.ActionCount, error)
	CountByEntitySince(ctx context.Context, since time.Time) ([]model.EntityCount, error)
	TopAdminPerformersSince(ctx context.Context, since time.Time, limit int) ([]model.PerformerCount, error)
	TopCustomPerformersSince(ctx context.Context, since time.Time, limit int) ([]model.PerformerCount, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) applyFilter(db *gorm.DB, filter ActivityFilter) *gorm.DB {
	if filter.Action != "" {
		db = db.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		db = db.Where("entity_type = ?", filter.EntityType)
	}
	if filter.PerformedByAdmin != nil {
		db = db.Where("performed_by_admin_id = ?", *filter.PerformedByAdmin)
	}
	if filter.PerformedByCustom != nil {
		db = db.Where("performed_by_custom_id = ?", *filter.PerformedByCustom)
	}
	if filter.CreatedFrom != nil {
		db = db.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("LOWER(entity_name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like)
	}
	return db
}

func (r *activityLogRepository) Log(ctx context.Context, entry *model.ActivityLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityFilter, offset, limit int) ([]model.ActivityLog, int64, error) {
	var logs []model.ActivityLog
	var total int64

	base := r.applyFilter(GetDB(ctx, r.db).Model(&model.ActivityLog{}), filter)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.applyFilter(GetDB(ctx, r.db), filter).
		Preload("PerformedByAdmin").
		Preload("PerformedByCustom").
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *activityLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.ActivityLog{}).
		Where("created_at >= ?", since).
		Count(&total).Error
	return total, err
}

func (r *activityLogRepository) CountByActionSince(ctx context.Context, since time.Time) ([]model.ActionCount, error) {
	var rows []model.ActionCount
	err := GetDB(ctx, r.db).Model(&model.ActivityLog{}).
		Select("action, COUNT(id) as count").
		Where("created_at >= ?", since).
		Group("action").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *activityLogRepository) CountByEntitySince(ctx context.Context, since time.Time) ([]model.EntityCount, error) {
	var rows []model.EntityCount
	err := GetDB(ctx, r.db).Model(&model.ActivityLog{}).
		Select("entity_type, COUNT(id) as count").
		Where("created_at >= ?", since).
		Group("entity_type").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *activityLogRepository) TopAdminPerformersSince(ctx context.Context, since time.Time, limit int) ([]model.PerformerCount, error) {
	var rows []model.PerformerCount
	err := GetDB(ctx, r.db).Model(&model.ActivityLog{}).
		Select("admin_users.id as id, admin_users.username as name, COUNT(activity_logs.id) as count").
		Joins("JOIN admin_users ON admin_users.id = activity_logs.performed_by_admin_id").
		Where("activity_logs.created_at >= ?", since).
		Group("admin_users.id, admin_users.username").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *activityLogRepository) TopCustomPerformersSince(ctx context.Context, since time.Time, limit int) ([]model.PerformerCount, error) {
	var rows []model.PerformerCount
	err := GetDB(ctx, r.db).Model(&model.ActivityLog{}).
		Select("custom_users.id as id, custom_users.full_name as name, COUNT(activity_logs.id) as count").
		Joins("JOIN custom_users ON custom_users.id = activity_logs.performed_by_custom_id").
		Where("activity_logs.created_at >= ?", since).
		Group("custom_users.id, custom_users.full_name").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *activityLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := GetDB(ctx, r.db).
		Where("created_at < ?", cutoff).
		Delete(&model.ActivityLog{})
	return res.RowsAffected, res.Error
}
