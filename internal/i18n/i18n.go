package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"

	// DefaultLocale 未识别语言时使用
	DefaultLocale = LocaleZhCN
)

// ResolveLocale 按 query lang、X-Locale、Accept-Language 的顺序解析语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	candidates := []string{
		c.Query("lang"),
		c.GetHeader("X-Locale"),
		c.GetHeader("Accept-Language"),
	}
	for _, raw := range candidates {
		if locale := NormalizeLocale(raw); locale != "" {
			return locale
		}
	}
	return DefaultLocale
}

// NormalizeLocale 归一化语言标识，无法识别时返回空串
func NormalizeLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	first := strings.SplitN(raw, ",", 2)[0]
	first = strings.SplitN(first, ";", 2)[0]
	tag := strings.ToLower(strings.TrimSpace(first))
	switch {
	case strings.HasPrefix(tag, "zh"):
		return LocaleZhCN
	case strings.HasPrefix(tag, "en"):
		return LocaleEnUS
	default:
		return ""
	}
}

// T 翻译消息 key，缺失时回退到默认语言，再回退到 key 本身
func T(locale, key string) string {
	if messages, ok := catalog[NormalizeLocale(locale)]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
