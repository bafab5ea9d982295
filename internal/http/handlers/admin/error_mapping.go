package admin

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

var couponIssuanceErrorRules = []mappedHandlerError{
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrCouponNotFound, code: response.CodeNotFound, key: "error.coupon_not_found"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, key: "error.coupon_expired"},
	{target: service.ErrCouponIssuanceNotFound, code: response.CodeNotFound, key: "error.coupon_issuance_not_found"},
	{target: service.ErrCouponIssuanceInUse, code: response.CodeConflict, key: "error.coupon_issuance_in_use"},
}

var creditAdjustErrorRules = []mappedHandlerError{
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrCreditAdjustInvalid, code: response.CodeBadRequest, key: "error.credit_adjust_invalid"},
	{target: service.ErrInsufficientCredit, code: response.CodeBadRequest, key: "error.credit_insufficient"},
}

var paymentReviewErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentReviewNotFound, code: response.CodeNotFound, key: "error.payment_review_not_found"},
}
