package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fuguang-next/internal/cache"
	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/logger"
	"github.com/fuguang-next/internal/metrics"
	"github.com/fuguang-next/internal/models"
	"github.com/fuguang-next/internal/queue"
	"github.com/fuguang-next/internal/repository"

	"gorm.io/gorm"
)

// NoCoupon 下单时不使用优惠券
const NoCoupon int64 = -1

// checkoutLockTTL 单个用户下单锁的最长持有时间
const checkoutLockTTL = 30 * time.Second

// TaskScheduler 延迟任务调度
type TaskScheduler interface {
	EnqueueOrderTimeoutCancel(payload queue.OrderTimeoutCancelPayload, delay time.Duration) error
	EnqueuePaymentSettleRetry(payload queue.PaymentSettleRetryPayload, delay time.Duration) error
}

// OrderService 订单服务
type OrderService struct {
	orderRepo  repository.OrderRepository
	courseRepo repository.CourseRepository
	userRepo   repository.UserRepository
	couponRepo repository.CouponRepository
	cart       cache.CartStore
	ledger     cache.CouponLedger
	numbers    OrderNumberAllocator
	discounts  *DiscountEngine
	credits    *CreditService
	coupons    *CouponService
	scheduler  TaskScheduler
	pricing    PricingConfig
	locks      cache.Locker
}

// OrderServiceDeps 订单服务依赖
type OrderServiceDeps struct {
	OrderRepo  repository.OrderRepository
	CourseRepo repository.CourseRepository
	UserRepo   repository.UserRepository
	CouponRepo repository.CouponRepository
	Cart       cache.CartStore
	Ledger     cache.CouponLedger
	Numbers    OrderNumberAllocator
	Discounts  *DiscountEngine
	Credits    *CreditService
	Coupons    *CouponService
	Scheduler  TaskScheduler
	Pricing    PricingConfig
	Locks      cache.Locker
}

// NewOrderService 创建订单服务
func NewOrderService(deps OrderServiceDeps) *OrderService {
	return &OrderService{
		orderRepo:  deps.OrderRepo,
		courseRepo: deps.CourseRepo,
		userRepo:   deps.UserRepo,
		couponRepo: deps.CouponRepo,
		cart:       deps.Cart,
		ledger:     deps.Ledger,
		numbers:    deps.Numbers,
		discounts:  deps.Discounts,
		credits:    deps.Credits,
		coupons:    deps.Coupons,
		scheduler:  deps.Scheduler,
		pricing:    deps.Pricing,
		locks:      deps.Locks,
	}
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID           uint
	PayType          int
	CouponIssuanceID int64
	Credit           int
}

// OrderStatusChoice 订单状态选项
type OrderStatusChoice struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// OrderStatusChoices 订单状态列表
func OrderStatusChoices() []OrderStatusChoice {
	return []OrderStatusChoice{
		{Value: constants.OrderStatusPending, Label: "未支付"},
		{Value: constants.OrderStatusPaid, Label: "已支付"},
		{Value: constants.OrderStatusCancelled, Label: "已取消"},
	}
}

// CreateOrder 用购物车勾选的课程创建待支付订单
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	order, err := s.createOrder(ctx, input)
	switch {
	case err == nil:
		metrics.OrdersCreated.WithLabelValues("success").Inc()
	case errors.Is(err, ErrOrderCreateFailed):
		metrics.OrdersCreated.WithLabelValues("failed").Inc()
	default:
		metrics.OrdersCreated.WithLabelValues("rejected").Inc()
	}
	return order, err
}

func (s *OrderService) createOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.PayType != constants.PayTypeAlipay {
		return nil, ErrInvalidPayType
	}
	if input.Credit < 0 {
		return nil, ErrCreditAmountInvalid
	}
	if s.locks != nil {
		unlock, locked, err := s.locks.TryLock(ctx, fmt.Sprintf("checkout:%d", input.UserID), checkoutLockTTL)
		if err != nil {
			logger.Errorw("order_checkout_lock_failed", "user_id", input.UserID, "error", err)
			return nil, ErrOrderCreateFailed
		}
		if !locked {
			return nil, ErrCheckoutInProgress
		}
		defer unlock()
	}
	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Status == constants.UserStatusDisabled {
		return nil, ErrUserDisabled
	}

	var coupon *cache.CouponLedgerEntry
	switch {
	case input.CouponIssuanceID > 0:
		coupon, err = s.ledger.Get(ctx, user.ID, uint(input.CouponIssuanceID))
		if err != nil {
			return nil, err
		}
		if coupon == nil {
			return nil, ErrCouponInvalid
		}
	case input.CouponIssuanceID != NoCoupon && input.CouponIssuanceID != 0:
		return nil, ErrCouponInvalid
	}
	if input.Credit > user.Credit {
		return nil, ErrInsufficientCredit
	}

	var (
		order       *models.Order
		consumed    map[uint]bool
		cartRebuilt bool
		couponTaken bool
	)
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		courseRepo := s.courseRepo.WithTx(tx)

		orderNumber, err := s.numbers.Next(ctx, user.ID)
		if err != nil {
			return err
		}
		order = &models.Order{
			OrderNumber: orderNumber,
			Name:        s.pricing.OrderSubject(),
			UserID:      user.ID,
			PayType:     input.PayType,
			OrderStatus: constants.OrderStatusPending,
		}
		if err := orderRepo.Create(order); err != nil {
			return err
		}

		entries, err := s.cart.Entries(ctx, user.ID)
		if err != nil {
			return err
		}
		selected := make([]uint, 0, len(entries))
		for courseID, isSelected := range entries {
			if isSelected {
				selected = append(selected, courseID)
			}
		}
		if len(selected) == 0 {
			return ErrEmptyCart
		}
		courses, err := courseRepo.ListPublishedByIDs(selected)
		if err != nil {
			return err
		}
		if len(courses) == 0 {
			return ErrEmptyCart
		}
		discounts, err := s.discounts.WithRepo(courseRepo).Describe(courses)
		if err != nil {
			return err
		}
		quote, err := s.pricing.Quote(QuoteInput{
			Courses:   courses,
			Discounts: discounts,
			Coupon:    coupon,
			Credit:    input.Credit,
		})
		if err != nil {
			return err
		}

		if err := s.credits.reserve(tx, user.ID, order.ID, input.Credit); err != nil {
			return err
		}

		for i := range quote.Details {
			quote.Details[i].OrderID = order.ID
		}
		if err := orderRepo.CreateDetails(quote.Details); err != nil {
			return err
		}

		order.TotalPrice = models.NewMoneyFromDecimal(quote.TotalPrice)
		order.RealPrice = models.NewMoneyFromDecimal(quote.RealPrice)
		order.Credit = input.Credit
		if coupon != nil {
			issuanceID := coupon.IssuanceID
			order.CouponIssuanceID = &issuanceID
		}
		if err := orderRepo.UpdatePricing(order); err != nil {
			return err
		}
		order.Details = quote.Details

		// 只删除本单结算的条目，未勾选及并发加入的条目保持不变
		if err := s.cart.Remove(ctx, user.ID, selected...); err != nil {
			return err
		}
		consumed = make(map[uint]bool, len(selected))
		for _, courseID := range selected {
			consumed[courseID] = true
		}
		cartRebuilt = true

		if coupon != nil {
			bound, err := s.couponRepo.WithTx(tx).TransitionIssuance(coupon.IssuanceID, constants.CouponIssuanceUnused, constants.CouponIssuanceBound, map[string]interface{}{
				"order_id": order.ID,
			})
			if err != nil {
				return err
			}
			if !bound {
				return ErrCouponInvalid
			}
			if err := s.ledger.Delete(ctx, user.ID, coupon.IssuanceID); err != nil {
				return err
			}
			couponTaken = true
		}
		return nil
	})
	if err != nil {
		s.compensateCreate(ctx, user.ID, consumed, cartRebuilt, coupon, couponTaken)
		if isOrderRejection(err) {
			return nil, err
		}
		logger.Errorw("order_create_failed", "user_id", user.ID, "coupon_issuance_id", input.CouponIssuanceID, "credit", input.Credit, "error", err)
		return nil, ErrOrderCreateFailed
	}

	// 超时任务在提交后入队，失败时撤销订单
	if err := s.scheduler.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{OrderID: order.ID}, s.pricing.OrderTimeout()); err != nil {
		logger.Errorw("order_enqueue_timeout_cancel_failed", "order_id", order.ID, "order_number", order.OrderNumber, "error", err)
		if cancelErr := s.cancel(ctx, order, constants.CancelReasonEnqueueFailed); cancelErr != nil {
			// 对账巡检会兜底取消滞留的待支付订单
			logger.Errorw("order_enqueue_rollback_failed", "order_id", order.ID, "order_number", order.OrderNumber, "error", cancelErr)
			return nil, ErrOrderCreateFailed
		}
		s.compensateCreate(ctx, user.ID, consumed, true, nil, false)
		return nil, ErrOrderCreateFailed
	}

	logger.Infow("order_created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"user_id", user.ID,
		"total_price", order.TotalPrice.String(),
		"real_price", order.RealPrice.String(),
		"credit", order.Credit,
	)
	return order, nil
}

// compensateCreate 下单失败后逐字段写回已结算的购物车条目并恢复优惠券账本
func (s *OrderService) compensateCreate(ctx context.Context, userID uint, consumed map[uint]bool, cartRebuilt bool, coupon *cache.CouponLedgerEntry, couponTaken bool) {
	if cartRebuilt && len(consumed) > 0 {
		if err := s.cart.Merge(ctx, userID, consumed); err != nil {
			logger.Errorw("order_create_cart_restore_failed", "user_id", userID, "error", err)
		}
	}
	if couponTaken && coupon != nil {
		if ttl := ledgerTTL(coupon.EndTime, time.Now()); ttl > 0 {
			if err := s.ledger.Put(ctx, coupon, ttl); err != nil {
				logger.Errorw("order_create_coupon_restore_failed", "user_id", userID, "issuance_id", coupon.IssuanceID, "error", err)
			}
		}
	}
}

func isOrderRejection(err error) bool {
	for _, target := range []error{
		ErrEmptyCart,
		ErrCouponInvalid,
		ErrInsufficientCredit,
		ErrCreditExceedsEarnable,
		ErrInvalidPayType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ListOrders 用户订单列表
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.OrderStatus != nil && !isKnownOrderStatus(*filter.OrderStatus) {
		filter.OrderStatus = nil
	}
	return s.orderRepo.ListByUser(filter)
}

// GetOrder 用户订单详情
func (s *OrderService) GetOrder(userID uint, orderNumber string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNumberAndUser(orderNumber, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func isKnownOrderStatus(status int) bool {
	for _, choice := range OrderStatusChoices() {
		if choice.Value == status {
			return true
		}
	}
	return false
}
