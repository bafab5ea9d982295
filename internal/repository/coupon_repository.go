package repository

import (
	"errors"

	"github.com/fuguang-next/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠券数据访问接口
type CouponRepository interface {
	CreateCoupon(coupon *models.Coupon) error
	GetCouponByID(id uint) (*models.Coupon, error)
	CreateIssuance(issuance *models.CouponIssuance) error
	GetIssuanceByID(id uint) (*models.CouponIssuance, error)
	GetIssuanceByOrderID(orderID uint) (*models.CouponIssuance, error)
	TransitionIssuance(id uint, from, to int, updates map[string]interface{}) (bool, error)
	WithTx(tx *gorm.DB) *GormCouponRepository
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓库
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRepository) WithTx(tx *gorm.DB) *GormCouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// CreateCoupon 创建优惠券模板及适用对象
func (r *GormCouponRepository) CreateCoupon(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

// GetCouponByID 获取优惠券模板
func (r *GormCouponRepository) GetCouponByID(id uint) (*models.Coupon, error) {
	if id == 0 {
		return nil, nil
	}
	var coupon models.Coupon
	if err := r.db.Preload("Targets").First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// CreateIssuance 发放优惠券
func (r *GormCouponRepository) CreateIssuance(issuance *models.CouponIssuance) error {
	return r.db.Omit("Coupon").Create(issuance).Error
}

// GetIssuanceByID 获取用户优惠券
func (r *GormCouponRepository) GetIssuanceByID(id uint) (*models.CouponIssuance, error) {
	if id == 0 {
		return nil, nil
	}
	var issuance models.CouponIssuance
	if err := r.db.Preload("Coupon").Preload("Coupon.Targets").First(&issuance, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &issuance, nil
}

// GetIssuanceByOrderID 获取订单锁定的用户优惠券
func (r *GormCouponRepository) GetIssuanceByOrderID(orderID uint) (*models.CouponIssuance, error) {
	if orderID == 0 {
		return nil, nil
	}
	var issuance models.CouponIssuance
	if err := r.db.Preload("Coupon").Preload("Coupon.Targets").
		Where("order_id = ?", orderID).
		First(&issuance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &issuance, nil
}

// TransitionIssuance 条件更新用户优惠券状态
func (r *GormCouponRepository) TransitionIssuance(id uint, from, to int, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{}
	for k, v := range updates {
		values[k] = v
	}
	values["use_status"] = to
	result := r.db.Model(&models.CouponIssuance{}).
		Where("id = ? AND use_status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
