package models

import "time"

// TokenBlacklist 已吊销的刷新令牌（未启用 Redis 时使用）
type TokenBlacklist struct {
	ID         uint      `gorm:"primarykey"`
	JTI        string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	CustomerID uint      `gorm:"not null;index"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	CreatedAt  time.Time
}

// TableName 指定表名
func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
