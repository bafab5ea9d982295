package constants

// 订单状态常量（只允许 0→1 或 0→2）
const (
	OrderStatusPending   = 0
	OrderStatusPaid      = 1
	OrderStatusCancelled = 2
)

// 订单支付方式常量
const (
	PayTypeAlipay = 1
)

// 优惠券抵扣方式
const (
	CouponDiscountFlat       = 1 // 满减
	CouponDiscountPercentage = 2 // 折扣
)

// 优惠券适用范围
const (
	CouponScopeUniversal = 0
	CouponScopeDirection = 1
	CouponScopeCategory  = 2
	CouponScopeCourse    = 3
)

// 用户优惠券状态
const (
	CouponIssuanceUnused  = 0
	CouponIssuanceUsed    = 1
	CouponIssuanceBound   = 2 // 已锁定到待支付订单
	CouponIssuanceRevoked = 3
)

// 积分流水类型
const (
	CreditOperationSpend       = "spend"
	CreditOperationRefund      = "refund"
	CreditOperationAdminAdjust = "admin_adjust"
)

// 积分流水状态
const (
	CreditRecordPending = "pending"
	CreditRecordFinal   = "final"
)

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 支付确认来源
const (
	PaymentSourceSync   = "sync_return"
	PaymentSourceQuery  = "query"
	PaymentSourceNotify = "notify"
	PaymentSourceSweep  = "sweep"
)

// 订单取消原因
const (
	CancelReasonUser          = "user"
	CancelReasonTimeout       = "timeout"
	CancelReasonSweep         = "sweep"
	CancelReasonEnqueueFailed = "enqueue_failed"
)

// 支付宝交易状态
const (
	AlipayTradeSuccess  = "TRADE_SUCCESS"
	AlipayTradeFinished = "TRADE_FINISHED"
	AlipayTradeWaitPay  = "WAIT_BUYER_PAY"
	AlipayTradeClosed   = "TRADE_CLOSED"
)

// 异步队列常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskOrderTimeoutCancel = "order:timeout_cancel"
	TaskPaymentSettleRetry = "payment:settle_retry"
)
