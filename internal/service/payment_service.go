package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/logger"
	"github.com/fuguang-next/internal/metrics"
	"github.com/fuguang-next/internal/models"
	"github.com/fuguang-next/internal/payment/alipay"
	"github.com/fuguang-next/internal/queue"
	"github.com/fuguang-next/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	defaultGatewayQueryTimeout = 10 * time.Second
	settleRetryDelay           = time.Minute
)

// errAlreadySettled 并发确认时订单已由其他入口入账
var errAlreadySettled = errors.New("order already settled")

// PaymentGateway 支付网关
type PaymentGateway interface {
	PagePayURL(ctx context.Context, orderNumber string, amount decimal.Decimal, subject string) (string, error)
	QueryTradeStatus(ctx context.Context, orderNumber string) (string, error)
	VerifyCallback(form map[string][]string) error
}

// PaymentLink 支付跳转信息
type PaymentLink struct {
	PayType     int    `json:"pay_type"`
	PayTypeName string `json:"get_pay_type_display"`
	Link        string `json:"link"`
}

// PaymentResult 支付确认结果
type PaymentResult struct {
	OrderNumber string               `json:"order_number"`
	PayTime     *time.Time           `json:"pay_time"`
	RealPrice   models.Money         `json:"real_price"`
	Courses     []models.OrderDetail `json:"course_list"`
}

// PaymentService 支付对账服务
type PaymentService struct {
	orderRepo      repository.OrderRepository
	couponRepo     repository.CouponRepository
	userCourseRepo repository.UserCourseRepository
	reviewRepo     repository.PaymentReviewRepository
	credits        *CreditService
	gateway        PaymentGateway
	scheduler      TaskScheduler
	queryTimeout   time.Duration
	queries        singleflight.Group
	now            func() time.Time
}

// PaymentServiceDeps 支付服务依赖
type PaymentServiceDeps struct {
	OrderRepo      repository.OrderRepository
	CouponRepo     repository.CouponRepository
	UserCourseRepo repository.UserCourseRepository
	ReviewRepo     repository.PaymentReviewRepository
	Credits        *CreditService
	Gateway        PaymentGateway
	Scheduler      TaskScheduler
	QueryTimeout   time.Duration
}

// NewPaymentService 创建支付服务
func NewPaymentService(deps PaymentServiceDeps) *PaymentService {
	timeout := deps.QueryTimeout
	if timeout <= 0 {
		timeout = defaultGatewayQueryTimeout
	}
	return &PaymentService{
		orderRepo:      deps.OrderRepo,
		couponRepo:     deps.CouponRepo,
		userCourseRepo: deps.UserCourseRepo,
		reviewRepo:     deps.ReviewRepo,
		credits:        deps.Credits,
		gateway:        deps.Gateway,
		scheduler:      deps.Scheduler,
		queryTimeout:   timeout,
		now:            time.Now,
	}
}

// CreatePaymentLink 生成支付宝电脑网站支付链接
func (s *PaymentService) CreatePaymentLink(ctx context.Context, userID uint, orderNumber string) (*PaymentLink, error) {
	order, err := s.orderRepo.GetByOrderNumberAndUser(orderNumber, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.OrderStatus != constants.OrderStatusPending {
		return nil, ErrOrderAlreadyPaid
	}
	if !order.RealPrice.Decimal.IsPositive() {
		// 全额抵扣的订单无需跳转支付
		if err := s.settle(ctx, order, constants.PaymentSourceSync); err != nil {
			return nil, err
		}
		return &PaymentLink{PayType: order.PayType, PayTypeName: payTypeName(order.PayType)}, nil
	}
	link, err := s.gateway.PagePayURL(ctx, order.OrderNumber, order.RealPrice.Decimal, order.Name)
	if err != nil {
		logger.Errorw("payment_link_create_failed", "order_number", order.OrderNumber, "error", err)
		return nil, mapAlipayGatewayError(err)
	}
	return &PaymentLink{PayType: order.PayType, PayTypeName: payTypeName(order.PayType), Link: link}, nil
}

// ConfirmPaymentSync 处理支付宝同步回跳
func (s *PaymentService) ConfirmPaymentSync(ctx context.Context, form map[string][]string) (*PaymentResult, error) {
	if err := s.gateway.VerifyCallback(form); err != nil {
		logger.Warnw("payment_return_verify_failed", "error", err)
		return nil, ErrPaymentSignatureInvalid
	}
	order, err := s.orderRepo.GetByOrderNumber(formValue(form, "out_trade_no"))
	if err != nil {
		return nil, err
	}
	return s.confirm(ctx, order, constants.PaymentSourceSync)
}

// QueryPayment 主动查询订单支付结果
func (s *PaymentService) QueryPayment(ctx context.Context, userID uint, orderNumber string) (*PaymentResult, error) {
	order, err := s.orderRepo.GetByOrderNumberAndUser(orderNumber, userID)
	if err != nil {
		return nil, err
	}
	return s.confirm(ctx, order, constants.PaymentSourceQuery)
}

func (s *PaymentService) confirm(ctx context.Context, order *models.Order, source string) (*PaymentResult, error) {
	if order == nil {
		return nil, ErrOrderNotFound
	}
	switch order.OrderStatus {
	case constants.OrderStatusCancelled:
		return nil, ErrOrderClosed
	case constants.OrderStatusPending:
		status, err := s.queryTradeStatus(ctx, order.OrderNumber)
		if err != nil {
			return nil, err
		}
		if !isTradePaid(status) {
			return nil, ErrOrderNotPaid
		}
		if err := s.settle(ctx, order, source); err != nil {
			return nil, err
		}
	}
	current, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrOrderNotFound
	}
	return &PaymentResult{
		OrderNumber: current.OrderNumber,
		PayTime:     current.PayTime,
		RealPrice:   current.RealPrice,
		Courses:     current.Details,
	}, nil
}

// HandleAlipayNotify 处理支付宝异步通知，返回应答文本 success / fail
func (s *PaymentService) HandleAlipayNotify(ctx context.Context, form map[string][]string) string {
	ack := s.handleNotify(ctx, form)
	metrics.NotifyResults.WithLabelValues(ack).Inc()
	return ack
}

func (s *PaymentService) handleNotify(ctx context.Context, form map[string][]string) string {
	const (
		ackSuccess = "success"
		ackFail    = "fail"
	)
	orderNumber := formValue(form, "out_trade_no")
	if err := s.gateway.VerifyCallback(form); err != nil {
		logger.Errorw("payment_notify_verify_failed", "order_number", orderNumber, "error", err)
		return ackFail
	}
	if !isTradePaid(formValue(form, "trade_status")) {
		return ackFail
	}
	order, err := s.orderRepo.GetByOrderNumber(orderNumber)
	if err != nil {
		logger.Errorw("payment_notify_order_lookup_failed", "order_number", orderNumber, "error", err)
		return ackFail
	}
	if order == nil {
		logger.Warnw("payment_notify_order_missing", "order_number", orderNumber)
		return ackFail
	}
	switch order.OrderStatus {
	case constants.OrderStatusPaid:
		return ackSuccess
	case constants.OrderStatusCancelled:
		s.flagForReview(ctx, order, constants.PaymentSourceNotify, ErrOrderClosed, false)
		return ackFail
	}
	if err := s.settle(ctx, order, constants.PaymentSourceNotify); err != nil {
		return ackFail
	}
	return ackSuccess
}

// RetrySettlement 入账失败后的重试，由队列任务触发
func (s *PaymentService) RetrySettlement(ctx context.Context, orderID uint, source string) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil || order.OrderStatus != constants.OrderStatusPending {
		return nil
	}
	err = s.applySettlement(ctx, order)
	if errors.Is(err, errAlreadySettled) {
		return nil
	}
	if err != nil {
		logger.Warnw("payment_settle_retry_failed", "order_id", orderID, "source", source, "error", err)
		return err
	}
	metrics.PaymentsSettled.WithLabelValues(source).Inc()
	logger.Infow("payment_settle_retry_succeeded", "order_id", orderID, "source", source)
	return nil
}

// ListReviews 待人工处理的支付记录
func (s *PaymentService) ListReviews(filter repository.PaymentReviewListFilter) ([]models.PaymentReview, int64, error) {
	return s.reviewRepo.List(filter)
}

// ResolveReview 标记人工处理完成
func (s *PaymentService) ResolveReview(id uint) error {
	ok, err := s.reviewRepo.Resolve(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPaymentReviewNotFound
	}
	return nil
}

// settle 入账：订单 0→1，确认积分流水，优惠券标记已使用，开通课程
func (s *PaymentService) settle(ctx context.Context, order *models.Order, source string) error {
	err := s.applySettlement(ctx, order)
	switch {
	case err == nil:
		metrics.PaymentsSettled.WithLabelValues(source).Inc()
		logger.Infow("payment_settled", "order_id", order.ID, "order_number", order.OrderNumber, "source", source)
		return nil
	case errors.Is(err, errAlreadySettled):
		return nil
	case errors.Is(err, ErrOrderClosed):
		s.flagForReview(ctx, order, source, err, false)
		return ErrOrderClosed
	default:
		s.flagForReview(ctx, order, source, err, true)
		return ErrPaymentSettlementFailed
	}
}

func (s *PaymentService) applySettlement(ctx context.Context, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		now := s.now()
		orderRepo := s.orderRepo.WithTx(tx)
		ok, err := orderRepo.TransitionStatus(order.ID, constants.OrderStatusPending, constants.OrderStatusPaid, map[string]interface{}{
			"pay_time": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			current, err := orderRepo.GetByID(order.ID)
			if err != nil {
				return err
			}
			if current != nil && current.OrderStatus == constants.OrderStatusPaid {
				return errAlreadySettled
			}
			return ErrOrderClosed
		}

		if err := s.credits.finalize(tx, order.ID); err != nil {
			return err
		}

		if order.CouponIssuanceID != nil {
			used, err := s.couponRepo.WithTx(tx).TransitionIssuance(*order.CouponIssuanceID, constants.CouponIssuanceBound, constants.CouponIssuanceUsed, map[string]interface{}{
				"use_time": now,
			})
			if err != nil {
				return err
			}
			if !used {
				logger.Warnw("payment_settle_coupon_not_bound", "order_id", order.ID, "issuance_id", *order.CouponIssuanceID)
			}
		}

		details := order.Details
		if len(details) == 0 {
			current, err := orderRepo.GetByID(order.ID)
			if err != nil {
				return err
			}
			if current != nil {
				details = current.Details
			}
		}
		grants := make([]models.UserCourse, 0, len(details))
		for _, detail := range details {
			grants = append(grants, models.UserCourse{
				UserID:   order.UserID,
				CourseID: detail.CourseID,
				OrderID:  order.ID,
			})
		}
		return s.userCourseRepo.WithTx(tx).Grant(grants)
	})
}

// flagForReview 记录需人工处理的入账失败，可重试时推送重试任务
func (s *PaymentService) flagForReview(ctx context.Context, order *models.Order, source string, cause error, retry bool) {
	logger.Errorw("payment_settlement_failed",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"source", source,
		"manual_review", true,
		"error", cause,
	)
	metrics.PaymentReviews.WithLabelValues(source).Inc()
	review := &models.PaymentReview{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Source:      source,
		Reason:      cause.Error(),
	}
	if err := s.reviewRepo.Create(review); err != nil {
		logger.Errorw("payment_review_create_failed", "order_id", order.ID, "error", err)
	}
	if !retry || s.scheduler == nil {
		return
	}
	if err := s.scheduler.EnqueuePaymentSettleRetry(queue.PaymentSettleRetryPayload{OrderID: order.ID, Source: source}, settleRetryDelay); err != nil {
		logger.Errorw("payment_settle_retry_enqueue_failed", "order_id", order.ID, "error", err)
	}
}

// queryTradeStatus 查询交易状态，同一订单的并发查询合并为一次网关请求
func (s *PaymentService) queryTradeStatus(ctx context.Context, orderNumber string) (string, error) {
	result, err, _ := s.queries.Do(orderNumber, func() (interface{}, error) {
		queryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.queryTimeout)
		defer cancel()
		started := time.Now()
		status, err := s.gateway.QueryTradeStatus(queryCtx, orderNumber)
		label := "ok"
		if err != nil {
			label = "error"
		}
		metrics.GatewayQueryDuration.WithLabelValues(label).Observe(time.Since(started).Seconds())
		return status, err
	})
	if err != nil {
		logger.Warnw("payment_gateway_query_failed", "order_number", orderNumber, "error", err)
		return "", mapAlipayGatewayError(err)
	}
	return result.(string), nil
}

// mapAlipayGatewayError 网关错误映射为业务错误
func mapAlipayGatewayError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, alipay.ErrRequestFailed):
		return fmt.Errorf("%w: %v", ErrPaymentGatewayUnavailable, err)
	case errors.Is(err, alipay.ErrSignatureInvalid):
		return ErrPaymentSignatureInvalid
	default:
		return fmt.Errorf("%w: %v", ErrPaymentGatewayRequest, err)
	}
}

func isTradePaid(status string) bool {
	switch strings.TrimSpace(status) {
	case constants.AlipayTradeSuccess, constants.AlipayTradeFinished:
		return true
	default:
		return false
	}
}

func payTypeName(payType int) string {
	if payType == constants.PayTypeAlipay {
		return "支付宝"
	}
	return ""
}

func formValue(form map[string][]string, key string) string {
	values := form[key]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
