package repository

import (
	"errors"
	"time"

	"github.com/fuguang-next/internal/models"

	"gorm.io/gorm"
)

// CourseRepository 课程目录数据访问接口
type CourseRepository interface {
	WithTx(tx *gorm.DB) *GormCourseRepository
	GetPublishedByID(id uint) (*models.Course, error)
	ListPublishedByIDs(ids []uint) ([]models.Course, error)
	ActiveActivityPrices(courseIDs []uint, now time.Time) (map[uint]models.CourseActivityPrice, error)
	Create(course *models.Course) error
}

// GormCourseRepository GORM 实现
type GormCourseRepository struct {
	db *gorm.DB
}

// NewCourseRepository 创建课程仓库
func NewCourseRepository(db *gorm.DB) *GormCourseRepository {
	return &GormCourseRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCourseRepository) WithTx(tx *gorm.DB) *GormCourseRepository {
	if tx == nil {
		return r
	}
	return &GormCourseRepository{db: tx}
}

// GetPublishedByID 获取上架且未删除的课程
func (r *GormCourseRepository) GetPublishedByID(id uint) (*models.Course, error) {
	if id == 0 {
		return nil, nil
	}
	var course models.Course
	if err := r.db.Where("id = ? AND is_show = ?", id, true).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

// ListPublishedByIDs 批量获取上架课程，按 ID 升序
func (r *GormCourseRepository) ListPublishedByIDs(ids []uint) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	var courses []models.Course
	if err := r.db.Where("id IN ? AND is_show = ?", ids, true).Order("id asc").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// ActiveActivityPrices 获取课程当前生效的活动价，同一课程取最新创建（ID 最大）的一条
func (r *GormCourseRepository) ActiveActivityPrices(courseIDs []uint, now time.Time) (map[uint]models.CourseActivityPrice, error) {
	result := make(map[uint]models.CourseActivityPrice, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}
	var rows []models.CourseActivityPrice
	err := r.db.
		Joins("JOIN activities ON activities.id = course_activity_prices.activity_id").
		Preload("Activity").
		Preload("Discount").
		Preload("Discount.DiscountType").
		Where("course_activity_prices.course_id IN ?", courseIDs).
		Where("activities.start_time < ? AND activities.end_time > ?", now, now).
		Order("course_activity_prices.id desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if _, exists := result[row.CourseID]; exists {
			continue
		}
		result[row.CourseID] = row
	}
	return result, nil
}

// Create 创建课程
func (r *GormCourseRepository) Create(course *models.Course) error {
	return r.db.Create(course).Error
}
