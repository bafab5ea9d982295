package repository

import (
	"github.com/fuguang-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserCourseRepository 用户课程权限数据访问接口
type UserCourseRepository interface {
	Owns(userID, courseID uint) (bool, error)
	Grant(rows []models.UserCourse) error
	ListCourseIDs(userID uint) ([]uint, error)
	WithTx(tx *gorm.DB) *GormUserCourseRepository
}

// GormUserCourseRepository GORM 实现
type GormUserCourseRepository struct {
	db *gorm.DB
}

// NewUserCourseRepository 创建用户课程仓库
func NewUserCourseRepository(db *gorm.DB) *GormUserCourseRepository {
	return &GormUserCourseRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserCourseRepository) WithTx(tx *gorm.DB) *GormUserCourseRepository {
	if tx == nil {
		return r
	}
	return &GormUserCourseRepository{db: tx}
}

// Owns 判断用户是否已拥有课程
func (r *GormUserCourseRepository) Owns(userID, courseID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.UserCourse{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Grant 批量开通课程，已存在的 (user_id, course_id) 忽略
func (r *GormUserCourseRepository) Grant(rows []models.UserCourse) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).CreateInBatches(&rows, 100).Error
}

// ListCourseIDs 用户已拥有的课程 ID
func (r *GormUserCourseRepository) ListCourseIDs(userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.UserCourse{}).
		Where("user_id = ?", userID).
		Order("course_id asc").
		Pluck("course_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
