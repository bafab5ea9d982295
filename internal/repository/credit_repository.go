package repository

import (
	"errors"
	"strings"

	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/models"

	"gorm.io/gorm"
)

// CreditRepository 积分流水数据访问接口
type CreditRepository interface {
	CreateRecord(record *models.CreditRecord) error
	GetByReference(reference string) (*models.CreditRecord, error)
	ListRecords(filter CreditRecordListFilter) ([]models.CreditRecord, int64, error)
	FinalizeByReference(reference string) (bool, error)
	SumByUser(userID uint) (int, error)
	WithTx(tx *gorm.DB) *GormCreditRepository
}

// GormCreditRepository GORM 实现
type GormCreditRepository struct {
	db *gorm.DB
}

// NewCreditRepository 创建积分流水仓库
func NewCreditRepository(db *gorm.DB) *GormCreditRepository {
	return &GormCreditRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCreditRepository) WithTx(tx *gorm.DB) *GormCreditRepository {
	if tx == nil {
		return r
	}
	return &GormCreditRepository{db: tx}
}

// CreateRecord 写入积分流水
func (r *GormCreditRepository) CreateRecord(record *models.CreditRecord) error {
	return r.db.Create(record).Error
}

// GetByReference 按幂等引用获取流水
func (r *GormCreditRepository) GetByReference(reference string) (*models.CreditRecord, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var record models.CreditRecord
	if err := r.db.Where("reference = ?", reference).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListRecords 分页查询积分流水
func (r *GormCreditRepository) ListRecords(filter CreditRecordListFilter) ([]models.CreditRecord, int64, error) {
	query := r.db.Model(&models.CreditRecord{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Operation != "" {
		query = query.Where("operation = ?", filter.Operation)
	}
	var records []models.CreditRecord
	total, err := countAndPage(query, filter.Page, filter.PageSize, &records)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// FinalizeByReference 将预扣流水转为最终状态
func (r *GormCreditRepository) FinalizeByReference(reference string) (bool, error) {
	result := r.db.Model(&models.CreditRecord{}).
		Where("reference = ? AND status = ?", reference, constants.CreditRecordPending).
		Update("status", constants.CreditRecordFinal)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SumByUser 汇总用户积分流水
func (r *GormCreditRepository) SumByUser(userID uint) (int, error) {
	var sum int64
	if err := r.db.Model(&models.CreditRecord{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(number), 0)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return int(sum), nil
}
