package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon 优惠券模板
type Coupon struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                    // 主键
	Name       string         `gorm:"not null" json:"name"`                                    // 名称
	Discount   int            `gorm:"not null;default:1" json:"discount"`                      // 抵扣方式（1 满减 2 折扣）
	CouponType int            `gorm:"not null;default:0" json:"coupon_type"`                   // 适用范围（0 通用 1 方向 2 分类 3 课程）
	Condition  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"condition"`  // 使用门槛
	Sale       string         `gorm:"type:varchar(32);not null" json:"sale"`                   // 优惠公式（-20 / *0.8）
	StartTime  time.Time      `gorm:"index" json:"start_time"`                                 // 生效时间
	EndTime    time.Time      `gorm:"index" json:"end_time"`                                   // 失效时间
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                                              // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间

	Targets []CouponTarget `gorm:"foreignKey:CouponID" json:"targets,omitempty"` // 适用对象
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}

// CouponTarget 优惠券适用对象（方向/分类/课程）
type CouponTarget struct {
	ID         uint `gorm:"primarykey" json:"id"`                 // 主键
	CouponID   uint `gorm:"index;not null" json:"coupon_id"`      // 优惠券
	TargetType int  `gorm:"not null" json:"target_type"`          // 与 Coupon.CouponType 取值一致
	TargetID   uint `gorm:"not null" json:"target_id"`            // 目标ID
}

// TableName 指定表名
func (CouponTarget) TableName() string {
	return "coupon_targets"
}

// CouponIssuance 发放给用户的优惠券（权威记录）
type CouponIssuance struct {
	ID        uint       `gorm:"primarykey" json:"id"`                          // 主键
	UserID    uint       `gorm:"index;not null" json:"user_id"`                 // 用户
	CouponID  uint       `gorm:"index;not null" json:"coupon_id"`               // 优惠券模板
	OrderID   *uint      `gorm:"index" json:"order_id,omitempty"`               // 锁定/使用的订单
	UseStatus int        `gorm:"index;not null;default:0" json:"use_status"`    // 状态（0 未使用 1 已使用 2 已锁定 3 已撤销）
	UseTime   *time.Time `json:"use_time,omitempty"`                            // 使用时间
	CreatedAt time.Time  `gorm:"index" json:"created_at"`                       // 发放时间
	UpdatedAt time.Time  `json:"updated_at"`                                    // 更新时间

	Coupon Coupon `gorm:"foreignKey:CouponID" json:"coupon"` // 关联模板
}

// TableName 指定表名
func (CouponIssuance) TableName() string {
	return "coupon_issuances"
}
