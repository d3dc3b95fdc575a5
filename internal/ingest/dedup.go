package ingest

import (
	"crypto/sha256"
	"encoding/hex"
)

// DedupKey считает ключ дедупликации: hex sha256 над байтами полезной
// нагрузки плюс идентификатор запроса. Одинаковые аргументы дают
// одинаковый ключ (окно подавления дублей работает), другой request id —
// другой ключ: настоящая повторная доставка сознательно проходит как
// новое сообщение.
func DedupKey(payload []byte, requestID string) string {
	h := sha256.New()
	h.Write(payload)
	h.Write([]byte(requestID))
	return hex.EncodeToString(h.Sum(nil))
}
