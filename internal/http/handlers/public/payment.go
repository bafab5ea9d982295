package public

import (
	"net/http"
	"strings"

	"github.com/fuguang-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// alipayNotifyFailAck 支付宝异步通知失败应答
const alipayNotifyFailAck = "fail"

// GetPaymentLink 生成支付宝支付跳转链接
func (h *Handler) GetPaymentLink(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderNumber, ok := orderNumberParam(c)
	if !ok {
		return
	}
	link, err := h.PaymentService.CreatePaymentLink(c.Request.Context(), uid, orderNumber)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	response.Success(c, link)
}

// QueryPayment 主动向支付宝查询订单支付结果
func (h *Handler) QueryPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderNumber, ok := orderNumberParam(c)
	if !ok {
		return
	}
	result, err := h.PaymentService.QueryPayment(c.Request.Context(), uid, orderNumber)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	response.Success(c, result)
}

// AlipayReturn 支付宝同步跳转，验签后以网关查询结果为准
func (h *Handler) AlipayReturn(c *gin.Context) {
	form, err := parseCallbackForm(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.PaymentService.ConfirmPaymentSync(c.Request.Context(), form)
	if err != nil {
		requestLog(c).Warnw("alipay_return_rejected",
			"order_number", getFirstValue(form, "out_trade_no"),
			"error", err,
		)
		respondPaymentError(c, err)
		return
	}
	response.Success(c, result)
}

// AlipayNotify 支付宝异步通知，只返回纯文本应答
func (h *Handler) AlipayNotify(c *gin.Context) {
	form, err := parseCallbackForm(c)
	if err != nil {
		requestLog(c).Warnw("alipay_notify_form_invalid", "error", err)
		c.String(http.StatusOK, alipayNotifyFailAck)
		return
	}
	ack := h.PaymentService.HandleAlipayNotify(c.Request.Context(), form)
	c.String(http.StatusOK, ack)
}

func orderNumberParam(c *gin.Context) (string, bool) {
	orderNumber := strings.TrimSpace(c.Param("order_number"))
	if orderNumber == "" {
		respondError(c, response.CodeBadRequest, "error.order_id_invalid", nil)
		return "", false
	}
	return orderNumber, true
}

func parseCallbackForm(c *gin.Context) (map[string][]string, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	if len(c.Request.PostForm) > 0 {
		return c.Request.PostForm, nil
	}
	return c.Request.Form, nil
}

func getFirstValue(form map[string][]string, key string) string {
	if values, ok := form[key]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}
