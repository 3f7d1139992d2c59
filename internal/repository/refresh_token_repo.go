package repository

import (
	"context"
	"time"

	"reception/internal/model"

	"gorm.io/gorm"
)

// RefreshTokenRepository defines data access for the admin refresh-token
// store. Revocation is the blacklist: rotated and logged-out tokens stay in
// the table flagged revoked until purged by age.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, adminUserID string) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) error
}

type refreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	return GetDB(ctx, r.db).Create(token).Error
}

func (r *refreshTokenRepository) GetByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	var rt model.RefreshToken
	if err := GetDB(ctx, r.db).First(&rt, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, token string) error {
	return GetDB(ctx, r.db).Model(&model.RefreshToken{}).
		Where("token = ?", token).
		Update("revoked", true).Error
}

func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, adminUserID string) error {
	return GetDB(ctx, r.db).Model(&model.RefreshToken{}).
		Where("admin_user_id = ? AND revoked = ?", adminUserID, false).
		Update("revoked", true).Error
}

func (r *refreshTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) error {
	return GetDB(ctx, r.db).
		Where("expires_at < ?", cutoff).
		Delete(&model.RefreshToken{}).Error
}
