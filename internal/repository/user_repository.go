package repository

import (
	"errors"

	"github.com/fuguang-next/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	Create(user *models.User) error
	DeductCredit(userID uint, amount int) (bool, error)
	AddCredit(userID uint, amount int) error
	WithTx(tx *gorm.DB) *GormUserRepository
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// DeductCredit 原子扣减积分，余额不足时返回 false
func (r *GormUserRepository) DeductCredit(userID uint, amount int) (bool, error) {
	if amount <= 0 {
		return true, nil
	}
	result := r.db.Model(&models.User{}).
		Where("id = ? AND credit >= ?", userID, amount).
		UpdateColumn("credit", gorm.Expr("credit - ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// AddCredit 原子增加积分
func (r *GormUserRepository) AddCredit(userID uint, amount int) error {
	if amount == 0 {
		return nil
	}
	result := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("credit", gorm.Expr("credit + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
