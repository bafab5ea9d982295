package shared

import (
	"github.com/fuguang-next/internal/http/response"
	"github.com/fuguang-next/internal/i18n"
	"github.com/fuguang-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 按请求语言返回错误响应；5xx 记 error，其余有原始错误时记 warn
func RespondError(c *gin.Context, code int, key string, err error) {
	locale := i18n.ResolveLocale(c)
	appErr := response.NewKeyedError(code, key, i18n.T(locale, key), err)
	if err != nil {
		fields := []interface{}{
			"code", appErr.Code,
			"error_key", appErr.Key,
			"path", c.FullPath(),
			"error", err,
		}
		if appErr.Code >= response.CodeInternal {
			RequestLog(c).Errorw("handler_error", fields...)
		} else {
			RequestLog(c).Warnw("handler_rejected", fields...)
		}
	}
	response.Error(c, appErr.Code, appErr.Message)
}
