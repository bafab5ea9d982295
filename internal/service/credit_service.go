package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/logger"
	"github.com/fuguang-next/internal/models"
	"github.com/fuguang-next/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreditService 积分账户服务，余额变动与流水写入在同一事务内完成
type CreditService struct {
	userRepo   repository.UserRepository
	creditRepo repository.CreditRepository
}

// NewCreditService 创建积分服务
func NewCreditService(userRepo repository.UserRepository, creditRepo repository.CreditRepository) *CreditService {
	return &CreditService{userRepo: userRepo, creditRepo: creditRepo}
}

// AdjustCreditInput 管理员调整积分输入
type AdjustCreditInput struct {
	UserID    uint
	Delta     int
	Remark    string
	Reference string
}

// Balance 查询积分余额
func (s *CreditService) Balance(userID uint) (int, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrUserNotFound
	}
	return user.Credit, nil
}

// ListRecords 积分流水列表
func (s *CreditService) ListRecords(filter repository.CreditRecordListFilter) ([]models.CreditRecord, int64, error) {
	return s.creditRepo.ListRecords(filter)
}

// AdminAdjust 管理员调整积分，reference 相同的请求只生效一次
func (s *CreditService) AdminAdjust(ctx context.Context, input AdjustCreditInput) (*models.CreditRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input.UserID == 0 || input.Delta == 0 {
		return nil, ErrCreditAdjustInvalid
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		reference = uuid.NewString()
	}
	reference = "admin:" + reference

	var record *models.CreditRecord
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		creditRepo := s.creditRepo.WithTx(tx)
		existing, err := creditRepo.GetByReference(reference)
		if err != nil {
			return err
		}
		if existing != nil {
			record = existing
			return nil
		}
		userRepo := s.userRepo.WithTx(tx)
		if input.Delta > 0 {
			if err := userRepo.AddCredit(input.UserID, input.Delta); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUserNotFound
				}
				return err
			}
		} else {
			ok, err := userRepo.DeductCredit(input.UserID, -input.Delta)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientCredit
			}
		}
		created, err := s.writeRecord(tx, input.UserID, nil, constants.CreditOperationAdminAdjust, input.Delta, constants.CreditRecordFinal, reference, input.Remark)
		if err != nil {
			return err
		}
		record = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("credit_admin_adjusted", "user_id", input.UserID, "delta", input.Delta, "reference", reference)
	return record, nil
}

// reserve 下单预扣积分，流水状态为 pending，支付成功后转为 final
func (s *CreditService) reserve(tx *gorm.DB, userID, orderID uint, amount int) error {
	if amount <= 0 {
		return nil
	}
	ok, err := s.userRepo.WithTx(tx).DeductCredit(userID, amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientCredit
	}
	_, err = s.writeRecord(tx, userID, &orderID, constants.CreditOperationSpend, -amount, constants.CreditRecordPending, spendReference(orderID), "")
	return err
}

// finalize 支付成功后确认预扣流水
func (s *CreditService) finalize(tx *gorm.DB, orderID uint) error {
	_, err := s.creditRepo.WithTx(tx).FinalizeByReference(spendReference(orderID))
	return err
}

// refund 取消订单时返还预扣积分，重复调用不会重复返还
func (s *CreditService) refund(tx *gorm.DB, userID, orderID uint, amount int) error {
	if amount <= 0 {
		return nil
	}
	creditRepo := s.creditRepo.WithTx(tx)
	reference := refundReference(orderID)
	existing, err := creditRepo.GetByReference(reference)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	if _, err := creditRepo.FinalizeByReference(spendReference(orderID)); err != nil {
		return err
	}
	if err := s.userRepo.WithTx(tx).AddCredit(userID, amount); err != nil {
		return err
	}
	_, err = s.writeRecord(tx, userID, &orderID, constants.CreditOperationRefund, amount, constants.CreditRecordFinal, reference, "")
	return err
}

func (s *CreditService) writeRecord(tx *gorm.DB, userID uint, orderID *uint, operation string, delta int, status, reference, remark string) (*models.CreditRecord, error) {
	user, err := s.userRepo.WithTx(tx).GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	record := &models.CreditRecord{
		UserID:        userID,
		OrderID:       orderID,
		Operation:     operation,
		Number:        delta,
		BalanceBefore: user.Credit - delta,
		BalanceAfter:  user.Credit,
		Status:        status,
		Reference:     reference,
		Remark:        remark,
	}
	if err := s.creditRepo.WithTx(tx).CreateRecord(record); err != nil {
		return nil, err
	}
	return record, nil
}

func spendReference(orderID uint) string {
	return fmt.Sprintf("order:%d:spend", orderID)
}

func refundReference(orderID uint) string {
	return fmt.Sprintf("order:%d:refund", orderID)
}
