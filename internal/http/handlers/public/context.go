package public

import (
	handlershared "github.com/fuguang-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "user_id", "error.user_id_invalid", "error.user_id_type_invalid")
}

func parseUintParam(c *gin.Context, name, invalidKey string) (uint, bool) {
	return handlershared.ParseUintParam(c, name, invalidKey)
}

func parsePagination(c *gin.Context) (int, int) {
	return handlershared.ParsePagination(c)
}
