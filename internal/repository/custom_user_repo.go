package repository

import (
	"context"

	"reception/internal/model"

	"gorm.io/gorm"
)

// CustomUserRepository defines data access for self-registered accounts.
type CustomUserRepository interface {
	Create(ctx context.Context, user *model.CustomUser) error
	GetByID(ctx context.Context, id string) (*model.CustomUser, error)
	GetByEmail(ctx context.Context, email string) (*model.CustomUser, error)
	// EmailTaken reports whether another row (excluding excludeID, which may
	// be empty) already uses the email.
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]model.CustomUser, int64, error)
	Update(ctx context.Context, user *model.CustomUser) error
	Delete(ctx context.Context, id string) error
}

type customUserRepository struct {
	db *gorm.DB
}

func NewCustomUserRepository(db *gorm.DB) CustomUserRepository {
	return &customUserRepository{db: db}
}

func (r *customUserRepository) Create(ctx context.Context, user *model.CustomUser) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *customUserRepository) GetByID(ctx context.Context, id string) (*model.CustomUser, error) {
	var user model.CustomUser
	if err := GetDB(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *customUserRepository) GetByEmail(ctx context.Context, email string) (*model.CustomUser, error) {
	var user model.CustomUser
	if err := GetDB(ctx, r.db).First(&user, "login_email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *customUserRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	query := GetDB(ctx, r.db).Model(&model.CustomUser{}).Where("login_email = ?", email)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *customUserRepository) List(ctx context.Context, offset, limit int) ([]model.CustomUser, int64, error) {
	var users []model.CustomUser
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.CustomUser{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *customUserRepository) Update(ctx context.Context, user *model.CustomUser) error {
	return GetDB(ctx, r.db).Save(user).Error
}

func (r *customUserRepository) Delete(ctx context.Context, id string) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.CustomUser{}).Error
}
