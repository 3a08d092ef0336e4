package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// containsExpr 构建大小写不敏感的模糊匹配条件，兼容 sqlite 与 postgres。
func containsExpr(db *gorm.DB, column string) string {
	return containsExprByDialect(dbDialectName(db), column)
}

func containsExprByDialect(dialect, column string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return column + ` ILIKE ? ESCAPE '\'`
	default:
		// sqlite 的 LIKE 对 ASCII 默认不区分大小写
		return column + ` LIKE ? ESCAPE '\'`
	}
}

// likePattern 转义通配符后包裹为 %value%
func likePattern(value string) string {
	escaped := strings.NewReplacer("%", "\\%", "_", "\\_").Replace(strings.TrimSpace(value))
	return "%" + escaped + "%"
}

// IsUniqueViolation 判断是否唯一约束冲突
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "sqlstate 23505")
}
