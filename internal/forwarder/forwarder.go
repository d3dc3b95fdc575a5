package forwarder

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/loopper-ai/ticket-ingest/internal/queue"
)

// Record — одно сообщение очереди в батче, уходящем на app-сервер.
type Record struct {
	ID       string          `json:"id"`
	GroupKey string          `json:"group_key"`
	DedupKey string          `json:"dedup_key,omitempty"`
	Body     json.RawMessage `json:"body"`
}

// Batch — тело POST-а на app-сервер: весь батч целиком, не только тела.
type Batch struct {
	Source  string   `json:"source"`
	Records []Record `json:"records"`
}

// BatchPoster — транспортный коллаборатор (см. backend.Client).
type BatchPoster interface {
	PostBatch(ctx context.Context, body []byte) error
}

// BatchSource — источник батчей (см. queue.Consumer).
type BatchSource interface {
	FetchBatch(ctx context.Context, max int, wait time.Duration) ([]kafka.Message, error)
	Commit(ctx context.Context, msgs ...kafka.Message) error
}

// Forwarder сливает очередь на app-сервер батчами. Семантика отказа —
// всё или ничего: app-сервер не сообщает, какая именно запись не
// принялась, поэтому при любом отказе ретраится весь батч, а
// идемпотентность повторной доставки — забота app-сервера.
type Forwarder struct {
	poster BatchPoster
}

// New создаёт форвардер.
func New(poster BatchPoster) *Forwarder {
	return &Forwarder{poster: poster}
}

// RecordFromMessage строит запись батча из сообщения очереди.
// Идентификатор "partition-offset" стабилен при передоставке.
func RecordFromMessage(msg kafka.Message) Record {
	rec := Record{
		ID:       fmt.Sprintf("%d-%d", msg.Partition, msg.Offset),
		GroupKey: string(msg.Key),
		Body:     json.RawMessage(msg.Value),
	}
	for _, h := range msg.Headers {
		if h.Key == queue.DedupHeader {
			rec.DedupKey = string(h.Value)
		}
	}
	return rec
}

// Forward отправляет батч и возвращает идентификаторы записей на ретрай:
// пустой список — батч доставлен целиком, полный — не доставлен ничего.
// Частичного успеха не бывает.
func (f *Forwarder) Forward(ctx context.Context, records []Record) []string {
	if len(records) == 0 {
		return nil
	}

	body, err := json.Marshal(Batch{Source: "ticket-ingest", Records: records})
	if err != nil {
		// Недосериализовавшийся батч доставить нельзя — весь на ретрай.
		log.Printf("forwarder: marshal batch: %v", err)
		return allIDs(records)
	}

	if err := f.poster.PostBatch(ctx, body); err != nil {
		log.Printf("forwarder: batch of %d rejected: %v", len(records), err)
		return allIDs(records)
	}

	log.Printf("forwarder: batch of %d delivered", len(records))
	return nil
}

// Run — цикл форвардера: добрать батч, отправить, закоммитить при
// полном успехе. Останавливается по отмене ctx.
func (f *Forwarder) Run(ctx context.Context, source BatchSource, batchSize int, batchWait time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msgs, err := source.FetchBatch(ctx, batchSize, batchWait)
		if err != nil {
			return fmt.Errorf("forwarder: fetch batch: %w", err)
		}
		if len(msgs) == 0 {
			// Отмена ctx во время ожидания.
			continue
		}

		records := make([]Record, len(msgs))
		for i, msg := range msgs {
			records[i] = RecordFromMessage(msg)
		}

		if failed := f.Forward(ctx, records); len(failed) > 0 {
			// Без коммита: очередь передоставит весь батч.
			continue
		}
		if err := source.Commit(ctx, msgs...); err != nil {
			log.Printf("forwarder: commit failed (batch will redeliver): %v", err)
		}
	}
}

func allIDs(records []Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
