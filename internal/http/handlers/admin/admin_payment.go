package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/fuguang-next/internal/http/handlers/shared"
	"github.com/fuguang-next/internal/http/response"
	"github.com/fuguang-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListPaymentReviews 待人工处理的支付记录，resolved 为空时返回全部
func (h *Handler) ListPaymentReviews(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	filter := repository.PaymentReviewListFilter{Page: page, PageSize: pageSize}
	if raw := strings.TrimSpace(c.Query("resolved")); raw != "" {
		resolved, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		filter.Resolved = &resolved
	}

	reviews, total, err := h.PaymentService.ListReviews(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.payment_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, reviews, response.BuildPagination(page, pageSize, total))
}

// ResolvePaymentReview 标记支付记录已人工处理
func (h *Handler) ResolvePaymentReview(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	reviewID, ok := parseUintParam(c, "id", "error.bad_request")
	if !ok {
		return
	}
	if err := h.PaymentService.ResolveReview(reviewID); err != nil {
		respondWithMappedError(c, err, paymentReviewErrorRules, response.CodeInternal, "error.payment_fetch_failed")
		return
	}
	requestLog(c).Infow("admin_payment_review_resolved", "admin_id", adminID, "review_id", reviewID)
	response.Success(c, gin.H{"resolved": true})
}
