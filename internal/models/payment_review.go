package models

import "time"

// PaymentReview 支付已确认但入账失败、需人工处理的记录
type PaymentReview struct {
	ID          uint       `gorm:"primarykey" json:"id"`                               // 主键
	OrderID     uint       `gorm:"index" json:"order_id"`                              // 订单
	OrderNumber string     `gorm:"type:varchar(64);index" json:"order_number"`         // 订单编号
	Source      string     `gorm:"type:varchar(32)" json:"source"`                     // 触发来源
	Reason      string     `gorm:"type:text" json:"reason"`                            // 失败原因
	Resolved    bool       `gorm:"not null;default:false;index" json:"resolved"`       // 是否已处理
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`                              // 处理时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                            // 创建时间
}

// TableName 指定表名
func (PaymentReview) TableName() string {
	return "payment_reviews"
}
