package models

import "time"

// UserCourse 用户已购课程（学习权限）
type UserCourse struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                   // 主键
	UserID    uint      `gorm:"uniqueIndex:idx_user_course;not null" json:"user_id"`    // 用户
	CourseID  uint      `gorm:"uniqueIndex:idx_user_course;not null" json:"course_id"`  // 课程
	OrderID   uint      `gorm:"index" json:"order_id"`                                  // 来源订单
	CreatedAt time.Time `json:"created_at"`                                             // 开通时间
}

// TableName 指定表名
func (UserCourse) TableName() string {
	return "user_courses"
}
