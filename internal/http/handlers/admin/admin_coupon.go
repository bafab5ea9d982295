package admin

import (
	"github.com/fuguang-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// IssueCouponRequest 发放优惠券请求
type IssueCouponRequest struct {
	UserID   uint `json:"user_id" binding:"required"`
	CouponID uint `json:"coupon_id" binding:"required"`
}

// IssueCoupon 给用户发放优惠券
func (h *Handler) IssueCoupon(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req IssueCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	issuance, err := h.CouponService.IssueCoupon(c.Request.Context(), req.UserID, req.CouponID)
	if err != nil {
		respondWithMappedError(c, err, couponIssuanceErrorRules, response.CodeInternal, "error.coupon_update_failed")
		return
	}
	requestLog(c).Infow("admin_coupon_issued",
		"admin_id", adminID,
		"user_id", req.UserID,
		"issuance_id", issuance.ID,
	)
	response.Success(c, issuance)
}

// RevokeCoupon 撤销用户优惠券
func (h *Handler) RevokeCoupon(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	issuanceID, ok := parseUintParam(c, "id", "error.bad_request")
	if !ok {
		return
	}
	if err := h.CouponService.RevokeCoupon(c.Request.Context(), issuanceID); err != nil {
		respondWithMappedError(c, err, couponIssuanceErrorRules, response.CodeInternal, "error.coupon_update_failed")
		return
	}
	requestLog(c).Infow("admin_coupon_revoked", "admin_id", adminID, "issuance_id", issuanceID)
	response.Success(c, gin.H{"revoked": true})
}
