package repository

import (
	"errors"
	"strings"

	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order) error
	CreateDetails(details []models.OrderDetail) error
	GetByID(id uint) (*models.Order, error)
	GetByIDAndUser(id uint, userID uint) (*models.Order, error)
	GetByOrderNumber(orderNumber string) (*models.Order, error)
	GetByOrderNumberAndUser(orderNumber string, userID uint) (*models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListStalePending(filter StalePendingOrderFilter) ([]models.Order, error)
	UpdatePricing(order *models.Order) error
	TransitionStatus(id uint, from, to int, updates map[string]interface{}) (bool, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Omit("Details").Create(order).Error
}

// CreateDetails 批量写入订单明细
func (r *GormOrderRepository) CreateDetails(details []models.OrderDetail) error {
	if len(details) == 0 {
		return nil
	}
	return r.db.CreateInBatches(&details, 100).Error
}

func (r *GormOrderRepository) first(query *gorm.DB) (*models.Order, error) {
	var order models.Order
	if err := query.Preload("Details").First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(r.db.Where("id = ?", id))
}

// GetByIDAndUser 获取用户订单
func (r *GormOrderRepository) GetByIDAndUser(id uint, userID uint) (*models.Order, error) {
	if id == 0 || userID == 0 {
		return nil, nil
	}
	return r.first(r.db.Where("id = ? AND user_id = ?", id, userID))
}

// GetByOrderNumber 根据订单号获取订单
func (r *GormOrderRepository) GetByOrderNumber(orderNumber string) (*models.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, nil
	}
	return r.first(r.db.Where("order_number = ?", orderNumber))
}

// GetByOrderNumberAndUser 根据订单号获取用户订单
func (r *GormOrderRepository) GetByOrderNumberAndUser(orderNumber string, userID uint) (*models.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" || userID == 0 {
		return nil, nil
	}
	return r.first(r.db.Where("order_number = ? AND user_id = ?", orderNumber, userID))
}

// ListByUser 获取用户订单列表
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("user_id = ?", filter.UserID)
	if filter.OrderStatus != nil {
		query = query.Where("order_status = ?", *filter.OrderStatus)
	}
	if filter.OrderNumber != "" {
		query = query.Where(containsCondition(r.db, "order_number"), "%"+filter.OrderNumber+"%")
	}

	var orders []models.Order
	total, err := countAndPage(query, filter.Page, filter.PageSize, &orders, "Details")
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListStalePending 按 ID 游标扫描创建时间早于指定时间的待支付订单
func (r *GormOrderRepository) ListStalePending(filter StalePendingOrderFilter) ([]models.Order, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	var orders []models.Order
	if err := r.db.
		Where("order_status = ? AND created_at < ? AND id > ?", constants.OrderStatusPending, filter.CreatedBefore, filter.AfterID).
		Order("id asc").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdatePricing 写回订单金额、积分与优惠券
func (r *GormOrderRepository) UpdatePricing(order *models.Order) error {
	if order == nil || order.ID == 0 {
		return errors.New("order is required")
	}
	return r.db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"total_price":        order.TotalPrice,
		"real_price":         order.RealPrice,
		"credit":             order.Credit,
		"coupon_issuance_id": order.CouponIssuanceID,
	}).Error
}

// TransitionStatus 条件更新订单状态，仅当当前状态为 from 时生效
func (r *GormOrderRepository) TransitionStatus(id uint, from, to int, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{}
	for k, v := range updates {
		values[k] = v
	}
	values["order_status"] = to
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND order_status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
