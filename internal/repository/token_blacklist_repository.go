package repository

import (
	"time"

	"github.com/greencart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenBlacklistRepository 刷新令牌黑名单数据访问接口
type TokenBlacklistRepository interface {
	Add(entry *models.TokenBlacklist) error
	Exists(jti string) (bool, error)
	PurgeExpired(now time.Time) (int64, error)
}

// GormTokenBlacklistRepository GORM 实现
type GormTokenBlacklistRepository struct {
	db *gorm.DB
}

// NewTokenBlacklistRepository 创建黑名单仓库
func NewTokenBlacklistRepository(db *gorm.DB) *GormTokenBlacklistRepository {
	return &GormTokenBlacklistRepository{db: db}
}

// Add 加入黑名单（重复加入忽略）
func (r *GormTokenBlacklistRepository) Add(entry *models.TokenBlacklist) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error
}

// Exists 判断令牌是否已吊销
func (r *GormTokenBlacklistRepository) Exists(jti string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.TokenBlacklist{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpired 清理已过期的黑名单记录
func (r *GormTokenBlacklistRepository) PurgeExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", now).Delete(&models.TokenBlacklist{})
	return result.RowsAffected, result.Error
}
