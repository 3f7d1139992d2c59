package repository

import (
	"context"

	"reception/internal/model"

	"gorm.io/gorm"
)

// AdminUserRepository defines data access for administrative accounts.
// Accounts are provisioned out-of-band; Create exists for seed tooling only.
type AdminUserRepository interface {
	Create(ctx context.Context, user *model.AdminUser) error
	GetByID(ctx context.Context, id string) (*model.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*model.AdminUser, error)
	Count(ctx context.Context) (int64, error)
}

type adminUserRepository struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &adminUserRepository{db: db}
}

func (r *adminUserRepository) Create(ctx context.Context, user *model.AdminUser) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *adminUserRepository) GetByID(ctx context.Context, id string) (*model.AdminUser, error) {
	var user model.AdminUser
	if err := GetDB(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *adminUserRepository) GetByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	var user model.AdminUser
	if err := GetDB(ctx, r.db).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *adminUserRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.AdminUser{}).Count(&total).Error
	return total, err
}
