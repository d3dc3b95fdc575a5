package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/loopper-ai/ticket-ingest/internal/ingest"
	"github.com/loopper-ai/ticket-ingest/internal/webhook"
)

// maxBodyBytes ограничивает тело вебхука (Freshdesk шлёт килобайты,
// не мегабайты).
const maxBodyBytes = 1 << 20

// Processor — интерфейс оркестратора (для подмены моком в тестах).
type Processor interface {
	Process(ctx context.Context, payload webhook.Payload, rawBody []byte, requestID string) (ingest.Outcome, error)
}

// WebhookHandler принимает вебхуки Freshdesk. Источнику всегда быстро
// отвечаем 200, как только событие в очереди (канонически или raw),
// чтобы он не ретраил уже сохранённое; 5xx — только когда очередь
// не приняла сообщение.
type WebhookHandler struct {
	svc Processor
}

// NewWebhookHandler создаёт обработчик.
func NewWebhookHandler(svc Processor) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

// Handle — POST /webhook/freshdesk.
func (h *WebhookHandler) Handle(c *gin.Context) {
	rawBody, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "rejected", "message": "unreadable body"})
		return
	}

	payload, err := webhook.Parse(rawBody)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "rejected", "message": "body must be a JSON object"})
		return
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	outcome, err := h.svc.Process(c.Request.Context(), payload, rawBody, requestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to queue message"})
		return
	}
	c.JSON(http.StatusOK, outcome)
}
