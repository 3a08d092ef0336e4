package models

import (
	"strings"

	"github.com/greencart/internal/logger"
)

// EnsureStaffAccounts 将配置中的邮箱标记为员工账号
func EnsureStaffAccounts(emails []string) error {
	normalized := make([]string, 0, len(emails))
	for _, email := range emails {
		trimmed := strings.ToLower(strings.TrimSpace(email))
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	if len(normalized) == 0 {
		return nil
	}
	result := DB.Model(&Customer{}).Where("email IN ? AND is_staff = ?", normalized, false).Update("is_staff", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		logger.Infow("staff_accounts_promoted", "count", result.RowsAffected)
	}
	return nil
}
