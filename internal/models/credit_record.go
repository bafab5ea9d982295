package models

import "time"

// CreditRecord 积分流水
type CreditRecord struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                   // 主键
	UserID        uint      `gorm:"index;not null" json:"user_id"`                          // 用户
	OrderID       *uint     `gorm:"index" json:"order_id,omitempty"`                        // 关联订单
	Operation     string    `gorm:"type:varchar(32);index;not null" json:"operation"`       // 流水类型
	Number        int       `gorm:"not null" json:"number"`                                 // 变动积分（带符号）
	BalanceBefore int       `gorm:"not null" json:"balance_before"`                         // 变动前余额
	BalanceAfter  int       `gorm:"not null" json:"balance_after"`                          // 变动后余额
	Status        string    `gorm:"type:varchar(16);not null;default:'final'" json:"status"` // pending 为待支付订单预扣
	Reference     string    `gorm:"type:varchar(128);uniqueIndex" json:"reference"`         // 幂等引用
	Remark        string    `gorm:"type:varchar(255)" json:"remark"`                        // 备注
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                                             // 更新时间
}

// TableName 指定表名
func (CreditRecord) TableName() string {
	return "credit_records"
}
