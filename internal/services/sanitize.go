package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Политика без разрешённых тегов: из пользовательского текста остаётся только текст.
// bluemonday.Policy безопасна для конкурентного использования после настройки.
var plainText = bluemonday.StrictPolicy()

func sanitizeText(s string) string {
	return strings.TrimSpace(plainText.Sanitize(s))
}
