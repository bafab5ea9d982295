package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/fuguang-next/internal/config"
	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/logger"
	"github.com/fuguang-next/internal/metrics"
	"github.com/fuguang-next/internal/models"
	"github.com/fuguang-next/internal/repository"

	"golang.org/x/sync/errgroup"
)

// SweepStats 一次巡检的统计
type SweepStats struct {
	Scanned   int64 `json:"scanned"`
	Settled   int64 `json:"settled"`
	Cancelled int64 `json:"cancelled"`
	Skipped   int64 `json:"skipped"`
}

// ReconcileService 超时待支付订单巡检：先查网关，已付则入账，否则关闭
type ReconcileService struct {
	orderRepo repository.OrderRepository
	payments  *PaymentService
	orders    *OrderService
	batchSize int
	workers   int
	staleAge  time.Duration
	now       func() time.Time
}

// NewReconcileService 创建巡检服务
func NewReconcileService(orderRepo repository.OrderRepository, payments *PaymentService, orders *OrderService, cfg config.ReconcileConfig, pricing PricingConfig) *ReconcileService {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 100
	}
	workers := cfg.Concurrency
	if workers <= 0 {
		workers = 4
	}
	grace := time.Duration(cfg.GraceMinutes) * time.Minute
	if grace < 0 {
		grace = 0
	}
	return &ReconcileService{
		orderRepo: orderRepo,
		payments:  payments,
		orders:    orders,
		batchSize: batch,
		workers:   workers,
		staleAge:  pricing.OrderTimeout() + grace,
		now:       time.Now,
	}
}

// Sweep 扫描一轮超时订单
func (s *ReconcileService) Sweep(ctx context.Context) (SweepStats, error) {
	var stats SweepStats
	cutoff := s.now().Add(-s.staleAge)
	var afterID uint
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		orders, err := s.orderRepo.ListStalePending(repository.StalePendingOrderFilter{
			CreatedBefore: cutoff,
			AfterID:       afterID,
			Limit:         s.batchSize,
		})
		if err != nil {
			return stats, err
		}
		if len(orders) == 0 {
			break
		}

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(s.workers)
		for i := range orders {
			order := &orders[i]
			group.Go(func() error {
				outcome := s.reconcileOne(groupCtx, order)
				metrics.SweepOrders.WithLabelValues(outcome).Inc()
				switch outcome {
				case "settled":
					atomic.AddInt64(&stats.Settled, 1)
				case "cancelled":
					atomic.AddInt64(&stats.Cancelled, 1)
				default:
					atomic.AddInt64(&stats.Skipped, 1)
				}
				return nil
			})
		}
		_ = group.Wait()
		stats.Scanned += int64(len(orders))
		afterID = orders[len(orders)-1].ID
		if len(orders) < s.batchSize {
			break
		}
	}
	if stats.Scanned > 0 {
		logger.Infow("reconcile_sweep_finished",
			"scanned", stats.Scanned,
			"settled", stats.Settled,
			"cancelled", stats.Cancelled,
			"skipped", stats.Skipped,
		)
	}
	return stats, nil
}

func (s *ReconcileService) reconcileOne(ctx context.Context, order *models.Order) string {
	status, err := s.payments.queryTradeStatus(ctx, order.OrderNumber)
	if err != nil {
		logger.Warnw("reconcile_query_failed", "order_id", order.ID, "order_number", order.OrderNumber, "error", err)
		return "skipped"
	}
	if isTradePaid(status) {
		if err := s.payments.settle(ctx, order, constants.PaymentSourceSweep); err != nil {
			return "skipped"
		}
		return "settled"
	}
	if err := s.orders.cancel(ctx, order, constants.CancelReasonSweep); err != nil {
		if !errors.Is(err, ErrOrderAlreadyFinalized) {
			logger.Warnw("reconcile_cancel_failed", "order_id", order.ID, "error", err)
		}
		return "skipped"
	}
	return "cancelled"
}
