package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client отправляет батчи форвардера на ingestion-эндпоинт app-сервера.
// В отличие от best-effort клиентов, результат здесь значим: не-2xx или
// сетевая ошибка означают ретрай всего батча через передоставку очереди.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient создаёт клиент с ограниченным таймаутом.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// PostBatch отправляет сериализованный батч одним POST-ом.
// Любой 2xx — батч принят; всё остальное — ошибка.
func (c *Client) PostBatch(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend: status %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
