package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Customer 顾客账户表
type Customer struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                 // 主键
	Username           string         `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"` // 用户名
	Email              string         `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`    // 邮箱（小写）
	PasswordHash       string         `gorm:"type:varchar(255);not null" json:"-"`                  // bcrypt 哈希
	FirstName          string         `gorm:"type:varchar(150)" json:"first_name"`                  // 名
	LastName           string         `gorm:"type:varchar(150)" json:"last_name"`                   // 姓
	Phone              string         `gorm:"type:varchar(20)" json:"phone"`                        // 电话
	IsStaff            bool           `gorm:"not null;default:false" json:"is_staff"`               // 是否员工
	IsActive           bool           `gorm:"not null" json:"is_active"`                            // 是否启用
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                          // 令牌版本（改密后递增）
	TokenInvalidBefore *time.Time     `json:"-"`                                                    // 在此之前签发的令牌失效
	LastLoginAt        *time.Time     `json:"last_login_at"`                                        // 最近登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt          time.Time      `json:"updated_at"`                                           // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                       // 软删除时间
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}

// FullName 返回展示用姓名
func (c *Customer) FullName() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
