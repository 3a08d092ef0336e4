package cache

import (
	"context"
	"strings"
	"time"
)

func refreshBlacklistKey(jti string) string {
	return "jwt:blacklist:" + strings.TrimSpace(jti)
}

// BlacklistRefreshToken 吊销刷新令牌，TTL 与令牌剩余有效期一致
func BlacklistRefreshToken(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return SetString(ctx, refreshBlacklistKey(jti), "1", ttl)
}

// IsRefreshTokenBlacklisted 判断刷新令牌是否已吊销
func IsRefreshTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	return Exists(ctx, refreshBlacklistKey(jti))
}
