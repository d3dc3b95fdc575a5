package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/loopper-ai/ticket-ingest/internal/config"
	"github.com/loopper-ai/ticket-ingest/internal/model"
	"github.com/loopper-ai/ticket-ingest/internal/webhook"
)

// Статусы исхода обработки вебхука.
const (
	StatusAccepted    = "accepted"     // канонический AgentInput в очереди
	StatusAcceptedRaw = "accepted_raw" // raw fallback в очереди
	StatusSkipped     = "skipped"      // отфильтровано политикой, без отправки
)

// Outcome — результат Process для HTTP-слоя.
type Outcome struct {
	Status    string          `json:"status"`
	EventType model.EventType `json:"event_type"`
	TicketID  string          `json:"ticket_id,omitempty"`
	MessageID string          `json:"message_id,omitempty"`
	Warning   string          `json:"warning,omitempty"`
}

// Enqueuer — коллаборатор очереди (см. queue.Producer).
type Enqueuer interface {
	Send(ctx context.Context, env model.Envelope) (string, error)
}

// Journal — best-effort журнал отправок; nil-безопасная реализация в store.
type Journal interface {
	Record(ctx context.Context, rec *model.EnqueueRecord)
}

// Service — оркестратор надёжной постановки в очередь: классификация,
// роутинг, fallback и ровно одна попытка отправки на событие.
type Service struct {
	cfg     *config.Config
	queue   Enqueuer
	router  *webhook.Router
	journal Journal
}

// NewService собирает оркестратор. journal может быть nil.
func NewService(cfg *config.Config, queue Enqueuer, router *webhook.Router, journal Journal) *Service {
	return &Service{cfg: cfg, queue: queue, router: router, journal: journal}
}

// Process обрабатывает один вебхук. Контракт:
//   - событие, отфильтрованное политикой, — успешный no-op (StatusSkipped);
//   - любая ошибка классификации/извлечения/обогащения перехватывается
//     ровно здесь и превращается в raw fallback — событие не теряется;
//   - ошибка самой отправки фатальна (errs.ErrEnqueue), второго
//     fallback-уровня нет: бэкстоп — ретрай исходного вебхука источником.
func (s *Service) Process(ctx context.Context, payload webhook.Payload, rawBody []byte, requestID string) (Outcome, error) {
	eventType := webhook.Classify(payload)
	ticketID, _ := webhook.ExtractTicketID(payload)
	log.Printf("ingest: event_type=%s ticket_id=%q request_id=%s", eventType, ticketID, requestID)

	if !s.cfg.ShouldProcess(eventType) {
		return Outcome{Status: StatusSkipped, EventType: eventType, TicketID: ticketID}, nil
	}

	var (
		body    []byte
		raw     bool
		warning string
	)
	agentInput, resolveErr := s.router.Resolve(ctx, payload)
	if resolveErr == nil {
		ticketID = agentInput.TicketID
		encoded, err := json.Marshal(agentInput)
		if err != nil {
			// Канонический документ не сериализуется — уходим в fallback,
			// как и при любой другой ошибке нормализации.
			resolveErr = fmt.Errorf("marshal agent input: %w", err)
		} else {
			body = encoded
		}
	}
	if resolveErr != nil {
		log.Printf("ingest: falling back to raw ticket_id=%q: %v", ticketID, resolveErr)
		warning = resolveErr.Error()
		raw = true
		fallback := model.NewRawFallback(warning, json.RawMessage(rawBody), eventType, ticketID)
		encoded, err := json.Marshal(fallback)
		if err != nil {
			// Исходное тело — не валидный JSON до сюда не доходит
			// (handler отверг бы его), но на всякий случай упаковываем строкой.
			fallback.Payload, _ = json.Marshal(string(rawBody))
			encoded, _ = json.Marshal(fallback)
		}
		body = encoded
	}

	groupKey := ticketID
	if groupKey == "" {
		groupKey = model.FallbackGroupKey
	}
	env := model.Envelope{
		Body:     body,
		GroupKey: groupKey,
		DedupKey: DedupKey(body, requestID),
	}

	messageID, err := s.queue.Send(ctx, env)
	if err != nil {
		return Outcome{}, err
	}

	if s.journal != nil {
		s.journal.Record(ctx, &model.EnqueueRecord{
			TicketID:   ticketID,
			EventType:  string(eventType),
			Raw:        raw,
			ParseError: warning,
			GroupKey:   env.GroupKey,
			DedupKey:   env.DedupKey,
			MessageID:  messageID,
			Body:       string(body),
		})
	}

	status := StatusAccepted
	if raw {
		status = StatusAcceptedRaw
	}
	return Outcome{
		Status:    status,
		EventType: eventType,
		TicketID:  ticketID,
		MessageID: messageID,
		Warning:   warning,
	}, nil
}
