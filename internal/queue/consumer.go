package queue

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// Consumer читает конверты батчами для форвардера. Коммит оффсетов —
// только после успешной доставки всего батча: непрокоммиченный батч
// очередь передоставит, это и есть механизм ретраев.
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer создаёт группового консьюмера топика.
func NewConsumer(brokers []string, topic, group string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			Topic:       topic,
			GroupID:     group,
			MinBytes:    1,
			MaxBytes:    10e6, // 10MB
			MaxWait:     500 * time.Millisecond,
			StartOffset: kafka.FirstOffset,
		}),
	}
}

// FetchBatch блокируется до первого сообщения, затем добирает остальные
// в пределах wait, но не больше max. Возвращает nil при отмене ctx.
func (c *Consumer) FetchBatch(ctx context.Context, max int, wait time.Duration) ([]kafka.Message, error) {
	first, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, err
	}

	batch := []kafka.Message{first}
	fillCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	for len(batch) < max {
		msg, err := c.reader.FetchMessage(fillCtx)
		if err != nil {
			// Таймаут добора — это полный батч, а не ошибка.
			break
		}
		batch = append(batch, msg)
	}
	return batch, nil
}

// Commit подтверждает сообщения. Вызывается только при пустом списке
// неудач от форвардера.
func (c *Consumer) Commit(ctx context.Context, msgs ...kafka.Message) error {
	return c.reader.CommitMessages(ctx, msgs...)
}

// Close закрывает reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
