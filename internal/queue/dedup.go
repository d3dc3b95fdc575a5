package queue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupKeyPrefix = "ticket-ingest:dedup:"

// Deduper реализует окно подавления дубликатов поверх redis: SETNX с TTL
// на dedup_key. Kafka, в отличие от FIFO-очередей с нативной
// дедупликацией, такого окна не имеет, поэтому держим его сами.
type Deduper struct {
	client *redis.Client
	window time.Duration
}

// NewDeduper создаёт окно дедупликации. Пустой addr => nil (выключено).
func NewDeduper(addr string, window time.Duration) *Deduper {
	if addr == "" {
		return nil
	}
	return &Deduper{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		window: window,
	}
}

// Seen отмечает ключ и сообщает, встречался ли он внутри окна.
func (d *Deduper) Seen(ctx context.Context, dedupKey string) (bool, error) {
	set, err := d.client.SetNX(ctx, dedupKeyPrefix+dedupKey, 1, d.window).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Close закрывает соединение с redis.
func (d *Deduper) Close() error {
	return d.client.Close()
}
