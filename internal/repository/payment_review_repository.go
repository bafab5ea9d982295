package repository

import (
	"time"

	"github.com/fuguang-next/internal/models"

	"gorm.io/gorm"
)

// PaymentReviewRepository 支付人工处理记录数据访问接口
type PaymentReviewRepository interface {
	Create(review *models.PaymentReview) error
	List(filter PaymentReviewListFilter) ([]models.PaymentReview, int64, error)
	Resolve(id uint) (bool, error)
}

// GormPaymentReviewRepository GORM 实现
type GormPaymentReviewRepository struct {
	db *gorm.DB
}

// NewPaymentReviewRepository 创建支付人工处理记录仓库
func NewPaymentReviewRepository(db *gorm.DB) *GormPaymentReviewRepository {
	return &GormPaymentReviewRepository{db: db}
}

// Create 写入待处理记录
func (r *GormPaymentReviewRepository) Create(review *models.PaymentReview) error {
	return r.db.Create(review).Error
}

// List 分页查询
func (r *GormPaymentReviewRepository) List(filter PaymentReviewListFilter) ([]models.PaymentReview, int64, error) {
	query := r.db.Model(&models.PaymentReview{})
	if filter.Resolved != nil {
		query = query.Where("resolved = ?", *filter.Resolved)
	}
	var reviews []models.PaymentReview
	total, err := countAndPage(query, filter.Page, filter.PageSize, &reviews)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// Resolve 标记为已处理
func (r *GormPaymentReviewRepository) Resolve(id uint) (bool, error) {
	now := time.Now()
	result := r.db.Model(&models.PaymentReview{}).
		Where("id = ? AND resolved = ?", id, false).
		Updates(map[string]interface{}{"resolved": true, "resolved_at": now})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
