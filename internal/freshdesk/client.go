package freshdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/loopper-ai/ticket-ingest/internal/errs"
)

// Credentials — доступ к Freshdesk API. Принадлежат только этому пакету:
// не логируются и не попадают ни в одно сообщение очереди.
type Credentials struct {
	BaseURL string
	APIKey  string
}

// Client ходит в Freshdesk API за тикетом и историей переписки.
// Один вызов — один исходящий запрос; ретраи — забота очереди.
type Client struct {
	creds      Credentials
	httpClient *http.Client
}

// NewClient создаёт клиент с ограниченным таймаутом.
func NewClient(creds Credentials, timeout time.Duration) *Client {
	return &Client{
		creds: creds,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchTicket загружает тикет вместе с conversations и requester.
// Нужен для updated-вебхуков, в которых нет истории переписки.
// Любая сетевая ошибка, не-2xx или битый JSON => errs.ErrFetch.
func (c *Client) FetchTicket(ctx context.Context, ticketID string) (map[string]any, error) {
	url := fmt.Sprintf("%s/api/v2/tickets/%s?include=conversations,requester", c.creds.BaseURL, ticketID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", errs.ErrFetch, err)
	}
	// Freshdesk API: Basic Auth, ключ вместо логина, "X" вместо пароля.
	req.SetBasicAuth(c.creds.APIKey, "X")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ticket %s: %v", errs.ErrFetch, ticketID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: ticket %s: status %d: %s", errs.ErrFetch, ticketID, resp.StatusCode, body)
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: ticket %s: invalid json: %v", errs.ErrFetch, ticketID, err)
	}
	return data, nil
}
