package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopper-ai/ticket-ingest/internal/ingest"
	"github.com/loopper-ai/ticket-ingest/internal/webhook"
)

type fakeProcessor struct {
	outcome   ingest.Outcome
	err       error
	requestID string
	payload   webhook.Payload
}

func (f *fakeProcessor) Process(ctx context.Context, payload webhook.Payload, rawBody []byte, requestID string) (ingest.Outcome, error) {
	f.payload = payload
	f.requestID = requestID
	return f.outcome, f.err
}

func doPost(t *testing.T, svc *fakeProcessor, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook/freshdesk", NewWebhookHandler(svc).Handle)

	req := httptest.NewRequest(http.MethodPost, "/webhook/freshdesk", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookHandle(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		svc := &fakeProcessor{outcome: ingest.Outcome{Status: ingest.StatusAccepted, TicketID: "9"}}
		w := doPost(t, svc, `{"freshdesk_webhook":{"ticket_id":"9"}}`, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var out ingest.Outcome
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Equal(t, ingest.StatusAccepted, out.Status)
		assert.Equal(t, "9", out.TicketID)
	})

	t.Run("non-object body rejected with 400", func(t *testing.T) {
		svc := &fakeProcessor{}
		w := doPost(t, svc, `["not","an","object"]`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, svc.payload, "processor must not be called")
	})

	t.Run("queue failure yields 500", func(t *testing.T) {
		svc := &fakeProcessor{err: errors.New("kafka down")}
		w := doPost(t, svc, `{}`, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "failed to queue message")
	})

	t.Run("request id from header", func(t *testing.T) {
		svc := &fakeProcessor{}
		doPost(t, svc, `{}`, map[string]string{"X-Request-ID": "fd-123"})
		assert.Equal(t, "fd-123", svc.requestID)
	})

	t.Run("request id generated when absent", func(t *testing.T) {
		svc := &fakeProcessor{}
		doPost(t, svc, `{}`, nil)
		assert.NotEmpty(t, svc.requestID)
	})
}
