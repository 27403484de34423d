package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultLocale 默认语言
const DefaultLocale = "en-US"

var supportedLocales = map[string]string{
	"en":    "en-US",
	"en-us": "en-US",
	"zh":    "zh-CN",
	"zh-cn": "zh-CN",
	"ms":    "ms-MY",
	"ms-my": "ms-MY",
}

// ResolveLocale 根据请求解析语言（优先 query，其次 Accept-Language）
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if locale := normalizeLocale(c.Query("locale")); locale != "" {
		return locale
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := normalizeLocale(tag); locale != "" {
			return locale
		}
	}
	return DefaultLocale
}

// T 返回指定语言的文案，找不到时回退默认语言
func T(locale, key string) string {
	if messagesByLocale, ok := messages[locale]; ok {
		if message, ok := messagesByLocale[key]; ok {
			return message
		}
	}
	if message, ok := messages[DefaultLocale][key]; ok {
		return message
	}
	return key
}

// Sprintf 返回带参数的本地化文案
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func normalizeLocale(tag string) string {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	if normalized == "" {
		return ""
	}
	if locale, ok := supportedLocales[normalized]; ok {
		return locale
	}
	if idx := strings.Index(normalized, "-"); idx > 0 {
		if locale, ok := supportedLocales[normalized[:idx]]; ok {
			return locale
		}
	}
	return ""
}
