package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`                       // 主键
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`       // 用户名
	Email        string         `gorm:"index" json:"email"`                         // 邮箱
	Status       string         `gorm:"default:'active'" json:"status"`             // 账号状态
	Credit       int            `gorm:"not null;default:0" json:"credit"`           // 积分余额（与积分流水合计保持一致）
	TokenVersion uint64         `gorm:"not null;default:0" json:"-"`                // Token 版本（用于全量失效）
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                    // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                             // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
