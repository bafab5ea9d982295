package public

import (
	"errors"

	"github.com/fuguang-next/internal/http/response"
	"github.com/fuguang-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrCourseNotFound, code: response.CodeNotFound, key: "error.course_not_found"},
	{target: service.ErrCourseAlreadyOwned, code: response.CodeConflict, key: "error.course_already_owned"},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, key: "error.cart_item_not_found"},
}

var userErrorRules = []mappedHandlerError{
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrUserDisabled, code: response.CodeForbidden, key: "error.user_disabled"},
}

var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrEmptyCart, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrInvalidPayType, code: response.CodeBadRequest, key: "error.pay_type_invalid"},
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, key: "error.coupon_invalid"},
	{target: service.ErrCouponNotFound, code: response.CodeBadRequest, key: "error.coupon_not_found"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, key: "error.coupon_expired"},
	{target: service.ErrInsufficientCredit, code: response.CodeBadRequest, key: "error.credit_insufficient"},
	{target: service.ErrCreditExceedsEarnable, code: response.CodeBadRequest, key: "error.credit_exceeds_earnable"},
	{target: service.ErrCreditAmountInvalid, code: response.CodeBadRequest, key: "error.credit_amount_invalid"},
	{target: service.ErrCourseAlreadyOwned, code: response.CodeConflict, key: "error.course_already_owned"},
	{target: service.ErrCheckoutInProgress, code: response.CodeConflict, key: "error.checkout_in_progress"},
}

var orderStateErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
	{target: service.ErrOrderAlreadyFinalized, code: response.CodeConflict, key: "error.order_already_finalized"},
	{target: service.ErrOrderAlreadyPaid, code: response.CodeConflict, key: "error.order_already_paid"},
	{target: service.ErrOrderClosed, code: response.CodeConflict, key: "error.order_closed"},
}

var paymentErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotPaid, code: response.CodeBadRequest, key: "error.order_not_paid"},
	{target: service.ErrPaymentSignatureInvalid, code: response.CodeBadRequest, key: "error.payment_signature_invalid"},
	{target: service.ErrPaymentGatewayUnavailable, code: response.CodeUnavailable, key: "error.payment_gateway_unavailable"},
	{target: service.ErrPaymentGatewayRequest, code: response.CodeBadGateway, key: "error.payment_gateway_request_failed"},
	{target: service.ErrPaymentSettlementFailed, code: response.CodeInternal, key: "error.payment_settlement_failed"},
}

func respondCartError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, fallbackKey)
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderCreateErrorRules, userErrorRules), response.CodeInternal, "error.order_create_failed")
}

func respondOrderStateError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, orderStateErrorRules, response.CodeInternal, fallbackKey)
}

func respondPaymentError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderStateErrorRules, paymentErrorRules), response.CodeInternal, "error.payment_fetch_failed")
}
