package models

import (
	"time"

	"gorm.io/gorm"
)

// CourseDirection 课程方向
type CourseDirection struct {
	ID        uint      `gorm:"primarykey" json:"id"`  // 主键
	Name      string    `gorm:"not null" json:"name"`  // 名称
	CreatedAt time.Time `json:"created_at"`            // 创建时间
}

// TableName 指定表名
func (CourseDirection) TableName() string {
	return "course_directions"
}

// CourseCategory 课程分类
type CourseCategory struct {
	ID          uint      `gorm:"primarykey" json:"id"`          // 主键
	DirectionID uint      `gorm:"index" json:"direction_id"`     // 所属方向
	Name        string    `gorm:"not null" json:"name"`          // 名称
	CreatedAt   time.Time `json:"created_at"`                    // 创建时间
}

// TableName 指定表名
func (CourseCategory) TableName() string {
	return "course_categories"
}

// Course 课程（目录数据，订单侧只读）
type Course struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                // 主键
	Name        string         `gorm:"not null" json:"name"`                                // 课程名称
	Cover       string         `gorm:"type:varchar(255)" json:"course_cover"`               // 封面
	CategoryID  uint           `gorm:"index" json:"category_id"`                            // 分类
	DirectionID uint           `gorm:"index" json:"direction_id"`                           // 方向
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`  // 原价
	Credit      int            `gorm:"not null;default:0" json:"credit"`                    // 购买可抵扣的积分上限
	IsShow      bool           `gorm:"not null;default:true" json:"is_show"`                // 是否上架
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                          // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (Course) TableName() string {
	return "courses"
}
