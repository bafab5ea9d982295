package models

import "time"

// Order 订单表
type Order struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                      // 主键
	OrderNumber      string     `gorm:"uniqueIndex;type:varchar(64);not null" json:"order_number"` // 订单编号
	Name             string     `gorm:"not null" json:"name"`                                      // 订单名称
	UserID           uint       `gorm:"index;not null" json:"user_id"`                             // 用户
	TotalPrice       Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`  // 原价合计
	RealPrice        Money      `gorm:"type:decimal(20,2);not null;default:0" json:"real_price"`   // 实付金额
	PayType          int        `gorm:"not null;default:1" json:"pay_type"`                        // 支付方式
	OrderStatus      int        `gorm:"index;not null;default:0" json:"order_status"`              // 订单状态（0 待支付 1 已支付 2 已取消）
	Credit           int        `gorm:"not null;default:0" json:"credit"`                          // 抵扣的积分
	CouponIssuanceID *uint      `gorm:"index" json:"coupon_issuance_id,omitempty"`                 // 使用的用户优惠券
	PayTime          *time.Time `gorm:"index" json:"pay_time"`                                     // 支付时间
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt        time.Time  `gorm:"index" json:"updated_at"`                                   // 更新时间

	Details []OrderDetail `gorm:"foreignKey:OrderID" json:"details,omitempty"` // 订单明细
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderDetail 订单明细（下单时价格快照，不可变）
type OrderDetail struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID      uint      `gorm:"index;not null" json:"order_id"`                           // 订单
	CourseID     uint      `gorm:"index;not null" json:"course_id"`                          // 课程
	Name         string    `gorm:"not null" json:"name"`                                     // 课程名称快照
	Cover        string    `gorm:"type:varchar(255)" json:"course_cover"`                    // 封面快照
	Price        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`       // 原价
	RealPrice    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"real_price"`  // 活动价
	DiscountName string    `gorm:"type:varchar(64);default:''" json:"discount_name"`        // 活动优惠类型
	CreatedAt    time.Time `json:"created_at"`                                               // 创建时间
}

// TableName 指定表名
func (OrderDetail) TableName() string {
	return "order_details"
}
