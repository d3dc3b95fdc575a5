package htmlclean

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy вырезает всю разметку целиком, оставляя только текст.
var policy = bluemonday.StrictPolicy()

// Clean приводит HTML-тело сообщения к плоскому тексту: убирает теги,
// декодирует HTML-сущности, схлопывает пробелы. Работает best-effort на
// любом мусоре на входе и идемпотентна: Clean(Clean(x)) == Clean(x).
func Clean(raw string) string {
	if raw == "" {
		return ""
	}
	text := policy.Sanitize(raw)
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}
