package public

import (
	"strconv"
	"strings"

	"github.com/fuguang-next/internal/http/response"
	"github.com/fuguang-next/internal/repository"
	"github.com/fuguang-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	PayType  int   `json:"pay_type" binding:"required,pay_type"`
	CouponID int64 `json:"coupon_id"`
	Credit   int   `json:"credit"`
}

// CreateOrder 由购物车勾选课程创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if hasValidationTag(err, payTypeTag) {
			respondError(c, response.CodeBadRequest, "error.pay_type_invalid", nil)
			return
		}
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		UserID:           uid,
		PayType:          req.PayType,
		CouponIssuanceID: req.CouponID,
		Credit:           req.Credit,
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders 用户订单列表，order_status 为空或非法时返回全部
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
	}
	if raw := strings.TrimSpace(c.Query("order_status")); raw != "" {
		if status, err := strconv.Atoi(raw); err == nil {
			filter.OrderStatus = &status
		}
	}

	orders, total, err := h.OrderService.ListOrders(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// ListOrderStatuses 订单状态选项
func (h *Handler) ListOrderStatuses(c *gin.Context) {
	response.Success(c, service.OrderStatusChoices())
}

// GetOrder 按订单号获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderNumber := strings.TrimSpace(c.Param("order_number"))
	if orderNumber == "" {
		respondError(c, response.CodeBadRequest, "error.order_id_invalid", nil)
		return
	}
	order, err := h.OrderService.GetOrder(uid, orderNumber)
	if err != nil {
		respondOrderStateError(c, err, "error.order_fetch_failed")
		return
	}
	response.Success(c, order)
}

// CancelOrder 用户取消待支付订单
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderNumber := strings.TrimSpace(c.Param("order_number"))
	if orderNumber == "" {
		respondError(c, response.CodeBadRequest, "error.order_id_invalid", nil)
		return
	}
	order, err := h.OrderService.GetOrder(uid, orderNumber)
	if err != nil {
		respondOrderStateError(c, err, "error.order_cancel_failed")
		return
	}
	cancelled, err := h.OrderService.CancelOrder(c.Request.Context(), uid, order.ID)
	if err != nil {
		respondOrderStateError(c, err, "error.order_cancel_failed")
		return
	}
	response.Success(c, cancelled)
}
