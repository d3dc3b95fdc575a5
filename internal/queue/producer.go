package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/loopper-ai/ticket-ingest/internal/errs"
	"github.com/loopper-ai/ticket-ingest/internal/model"
)

// DedupHeader — заголовок сообщения с ключом дедупликации.
const DedupHeader = "x-dedup-key"

// MessageIDHeader — заголовок со сгенерированным идентификатором сообщения.
const MessageIDHeader = "x-message-id"

// Enqueuer — интерфейс отправки в очередь (для подмены моком в тестах).
type Enqueuer interface {
	Send(ctx context.Context, env model.Envelope) (string, error)
}

// Producer пишет конверты в топик Kafka. Ключ сообщения — group_key
// конверта, поэтому все сообщения одного тикета попадают в одну партицию
// и доставляются форвардеру по порядку. В отличие от событийного
// продюсера, отправка здесь не best-effort: ошибка записи фатальна для
// вызова и поднимается как errs.ErrEnqueue.
type Producer struct {
	writer *kafka.Writer
	dedup  *Deduper
	topic  string
}

// NewProducer создаёт продюсер. dedup может быть nil — тогда окно
// подавления дубликатов выключено.
func NewProducer(brokers []string, topic string, dedup *Deduper) *Producer {
	return &Producer{
		topic: topic,
		dedup: dedup,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// Send отправляет конверт и возвращает идентификатор сообщения.
// Дубликат внутри окна подавления считается успехом: очередь уже держит
// сообщение с тем же dedup_key, повторная отправка не нужна.
func (p *Producer) Send(ctx context.Context, env model.Envelope) (string, error) {
	if env.GroupKey == "" {
		env.GroupKey = model.FallbackGroupKey
	}

	if p.dedup != nil {
		seen, err := p.dedup.Seen(ctx, env.DedupKey)
		if err != nil {
			// Окно дедупликации — оптимизация, не барьер: при недоступном
			// redis отправляем как есть.
			log.Printf("queue: dedup check failed, sending anyway: %v", err)
		} else if seen {
			log.Printf("queue: duplicate suppressed group=%s dedup=%.16s", env.GroupKey, env.DedupKey)
			return "duplicate:" + env.DedupKey[:16], nil
		}
	}

	msgID := uuid.NewString()
	msg := kafka.Message{
		Key:   []byte(env.GroupKey),
		Value: env.Body,
		Headers: []kafka.Header{
			{Key: DedupHeader, Value: []byte(env.DedupKey)},
			{Key: MessageIDHeader, Value: []byte(msgID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrEnqueue, err)
	}

	log.Printf("queue: sent message_id=%s group=%s", msgID, env.GroupKey)
	return msgID, nil
}

// Close закрывает writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
