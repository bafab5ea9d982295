package service

import (
	"context"
	"errors"

	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/logger"
	"github.com/fuguang-next/internal/metrics"
	"github.com/fuguang-next/internal/models"

	"gorm.io/gorm"
)

// CancelOrder 用户取消待支付订单
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.OrderStatus != constants.OrderStatusPending {
		return nil, ErrOrderAlreadyFinalized
	}
	if err := s.cancel(ctx, order, constants.CancelReasonUser); err != nil {
		return nil, err
	}
	order.OrderStatus = constants.OrderStatusCancelled
	return order, nil
}

// CancelExpiredOrder 超时取消，订单已支付或已取消时直接返回
func (s *OrderService) CancelExpiredOrder(ctx context.Context, orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		logger.Warnw("order_timeout_cancel_missing", "order_id", orderID)
		return nil
	}
	if order.OrderStatus != constants.OrderStatusPending {
		return nil
	}
	err = s.cancel(ctx, order, constants.CancelReasonTimeout)
	if errors.Is(err, ErrOrderAlreadyFinalized) {
		return nil
	}
	return err
}

// cancel 条件更新 0→2，返还积分并解绑优惠券；提交后再恢复优惠券账本
func (s *OrderService) cancel(ctx context.Context, order *models.Order, reason string) error {
	var released *models.CouponIssuance
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.WithTx(tx).TransitionStatus(order.ID, constants.OrderStatusPending, constants.OrderStatusCancelled, nil)
		if err != nil {
			return err
		}
		if !ok {
			return ErrOrderAlreadyFinalized
		}
		if err := s.credits.refund(tx, order.UserID, order.ID, order.Credit); err != nil {
			return err
		}
		if order.CouponIssuanceID == nil {
			return nil
		}
		couponRepo := s.couponRepo.WithTx(tx)
		issuance, err := couponRepo.GetIssuanceByID(*order.CouponIssuanceID)
		if err != nil {
			return err
		}
		if issuance == nil || issuance.UseStatus != constants.CouponIssuanceBound {
			return nil
		}
		unbound, err := couponRepo.TransitionIssuance(issuance.ID, constants.CouponIssuanceBound, constants.CouponIssuanceUnused, map[string]interface{}{
			"order_id": nil,
			"use_time": nil,
		})
		if err != nil {
			return err
		}
		if unbound {
			released = issuance
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrOrderAlreadyFinalized) {
			logger.Errorw("order_cancel_failed", "order_id", order.ID, "order_number", order.OrderNumber, "reason", reason, "error", err)
		}
		return err
	}

	if released != nil {
		if err := s.coupons.restoreLedger(ctx, released); err != nil {
			logger.Errorw("coupon_ledger_restore_failed", "order_id", order.ID, "issuance_id", released.ID, "error", err)
		}
	}
	metrics.OrdersCancelled.WithLabelValues(reason).Inc()
	logger.Infow("order_cancelled", "order_id", order.ID, "order_number", order.OrderNumber, "reason", reason, "credit_refund", order.Credit)
	return nil
}
