package admin

import (
	handlershared "github.com/fuguang-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "admin_id", "error.admin_id_invalid", "error.admin_id_type_invalid")
}

func parseUintParam(c *gin.Context, name, invalidKey string) (uint, bool) {
	return handlershared.ParseUintParam(c, name, invalidKey)
}
