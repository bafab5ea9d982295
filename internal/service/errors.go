package service

import "errors"

// 购物车
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseAlreadyOwned = errors.New("course already owned")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrCartItemNotFound   = errors.New("cart item not found")
)

// 优惠券
var (
	ErrCouponInvalid          = errors.New("coupon invalid")
	ErrCouponNotFound         = errors.New("coupon not found")
	ErrCouponExpired          = errors.New("coupon expired")
	ErrCouponIssuanceNotFound = errors.New("coupon issuance not found")
	ErrCouponIssuanceInUse    = errors.New("coupon issuance is bound to an order")
)

// 积分
var (
	ErrInsufficientCredit    = errors.New("insufficient credit")
	ErrCreditExceedsEarnable = errors.New("credit exceeds order limit")
	ErrCreditAdjustInvalid   = errors.New("credit adjust invalid")
	ErrCreditAmountInvalid   = errors.New("credit amount invalid")
)

// 订单
var (
	ErrEmptyCart             = errors.New("no selected course in cart")
	ErrInvalidPayType        = errors.New("invalid pay type")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderCreateFailed     = errors.New("order create failed")
	ErrCheckoutInProgress    = errors.New("checkout already in progress")
	ErrOrderAlreadyFinalized = errors.New("order already finalized")
	ErrOrderAlreadyPaid      = errors.New("order already paid")
	ErrOrderClosed           = errors.New("order closed")
	ErrOrderNotPaid          = errors.New("order not paid")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserDisabled          = errors.New("user disabled")
)

// 支付
var (
	ErrPaymentSignatureInvalid   = errors.New("payment signature invalid")
	ErrPaymentGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrPaymentGatewayRequest     = errors.New("payment gateway request failed")
	ErrPaymentSettlementFailed   = errors.New("payment processing incomplete")
	ErrPaymentReviewNotFound     = errors.New("payment review not found")
)

// 鉴权
var (
	ErrInvalidToken = errors.New("invalid token")
)
