package public

import (
	"github.com/fuguang-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListCoupons 用户全部可用优惠券
func (h *Handler) ListCoupons(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	coupons, err := h.CouponService.ListUserCoupons(c.Request.Context(), uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"coupon_list": coupons})
}

// ListUsableCoupons 结算页可用优惠券与积分
func (h *Handler) ListUsableCoupons(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	result, err := h.CouponService.ListUsableCoupons(c.Request.Context(), uid)
	if err != nil {
		respondWithMappedError(c, err, concatMappedHandlerErrors(cartErrorRules, userErrorRules), response.CodeInternal, "error.coupon_fetch_failed")
		return
	}
	response.Success(c, result)
}
