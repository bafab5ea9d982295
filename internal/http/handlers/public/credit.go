package public

import (
	"strings"

	"github.com/fuguang-next/internal/http/response"
	"github.com/fuguang-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetCredit 当前用户积分余额
func (h *Handler) GetCredit(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	balance, err := h.CreditService.Balance(uid)
	if err != nil {
		respondWithMappedError(c, err, userErrorRules, response.CodeInternal, "error.credit_fetch_failed")
		return
	}
	response.Success(c, gin.H{
		"credit":          balance,
		"credit_to_money": h.Pricing.CreditToMoneyRate().IntPart(),
	})
}

// ListCreditRecords 当前用户积分流水
func (h *Handler) ListCreditRecords(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	records, total, err := h.CreditService.ListRecords(repository.CreditRecordListFilter{
		Page:      page,
		PageSize:  pageSize,
		UserID:    uid,
		Operation: strings.TrimSpace(c.Query("operation")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.credit_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, records, response.BuildPagination(page, pageSize, total))
}
