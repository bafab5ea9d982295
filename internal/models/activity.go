package models

import "time"

// Activity 优惠活动
type Activity struct {
	ID        uint      `gorm:"primarykey" json:"id"`       // 主键
	Name      string    `gorm:"not null" json:"name"`       // 活动名称
	StartTime time.Time `gorm:"index" json:"start_time"`    // 开始时间
	EndTime   time.Time `gorm:"index" json:"end_time"`      // 结束时间
	CreatedAt time.Time `json:"created_at"`                 // 创建时间
}

// TableName 指定表名
func (Activity) TableName() string {
	return "activities"
}

// DiscountType 优惠类型（限时免费、限时折扣、满减等）
type DiscountType struct {
	ID   uint   `gorm:"primarykey" json:"id"` // 主键
	Name string `gorm:"not null" json:"name"` // 类型名称
}

// TableName 指定表名
func (DiscountType) TableName() string {
	return "discount_types"
}

// Discount 优惠规则，Sale 为公式：0 免费，*0.8 打折，-20 立减
type Discount struct {
	ID             uint         `gorm:"primarykey" json:"id"`                                    // 主键
	DiscountTypeID uint         `gorm:"index;not null" json:"discount_type_id"`                  // 优惠类型
	Condition      Money        `gorm:"type:decimal(20,2);not null;default:0" json:"condition"`  // 满足价格门槛才生效
	Sale           string       `gorm:"type:varchar(32);not null" json:"sale"`                   // 优惠公式
	DiscountType   DiscountType `gorm:"foreignKey:DiscountTypeID" json:"discount_type"`          // 关联类型
}

// TableName 指定表名
func (Discount) TableName() string {
	return "discounts"
}

// CourseActivityPrice 课程参与活动的价格映射
type CourseActivityPrice struct {
	ID         uint      `gorm:"primarykey" json:"id"`                       // 主键
	ActivityID uint      `gorm:"index;not null" json:"activity_id"`          // 活动
	CourseID   uint      `gorm:"index;not null" json:"course_id"`            // 课程
	DiscountID uint      `gorm:"index;not null" json:"discount_id"`          // 优惠规则
	CreatedAt  time.Time `json:"created_at"`                                 // 创建时间
	Activity   Activity  `gorm:"foreignKey:ActivityID" json:"activity"`      // 关联活动
	Discount   Discount  `gorm:"foreignKey:DiscountID" json:"discount"`      // 关联优惠
}

// TableName 指定表名
func (CourseActivityPrice) TableName() string {
	return "course_activity_prices"
}
