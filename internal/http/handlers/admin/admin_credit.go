package admin

import (
	"github.com/fuguang-next/internal/http/response"
	"github.com/fuguang-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdjustCreditRequest 调整用户积分请求，reference 用于幂等
type AdjustCreditRequest struct {
	Delta     int    `json:"delta" binding:"required"`
	Remark    string `json:"remark" binding:"max=255"`
	Reference string `json:"reference" binding:"max=64"`
}

// AdjustUserCredit 管理员调整用户积分
func (h *Handler) AdjustUserCredit(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	userID, ok := parseUintParam(c, "id", "error.user_id_invalid")
	if !ok {
		return
	}
	var req AdjustCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.credit_adjust_invalid", err)
		return
	}
	record, err := h.CreditService.AdminAdjust(c.Request.Context(), service.AdjustCreditInput{
		UserID:    userID,
		Delta:     req.Delta,
		Remark:    req.Remark,
		Reference: req.Reference,
	})
	if err != nil {
		respondWithMappedError(c, err, creditAdjustErrorRules, response.CodeInternal, "error.credit_update_failed")
		return
	}
	requestLog(c).Infow("admin_credit_adjusted",
		"admin_id", adminID,
		"user_id", userID,
		"delta", req.Delta,
		"record_id", record.ID,
	)
	response.Success(c, record)
}
