package freshdesk

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/loopper-ai/ticket-ingest/internal/htmlclean"
	"github.com/loopper-ai/ticket-ingest/internal/model"
)

// TicketToAgentInput переводит ответ Freshdesk API в канонический
// AgentInput. Берутся только публичные conversations (private-заметки
// исключаются всегда, это не настройка); порядок — как вернул API.
// Тикет без публичных сообщений — валидный пустой тикет, не ошибка.
func TicketToAgentInput(data map[string]any, eventType model.EventType, now time.Time) (model.AgentInput, error) {
	ticketID := stringField(data, "id")
	if ticketID == "" {
		return model.AgentInput{}, fmt.Errorf("freshdesk response missing ticket id")
	}

	createdAt := timeField(data, "created_at", now)
	updatedAt := timeField(data, "updated_at", createdAt)

	var messages []model.Message
	conversations, _ := data["conversations"].([]any)
	for _, raw := range conversations {
		conv, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if private, _ := conv["private"].(bool); private {
			continue
		}
		body := htmlclean.Clean(stringField(conv, "body_text"))
		if body == "" {
			body = htmlclean.Clean(stringField(conv, "body"))
		}
		if body == "" {
			continue
		}
		direction := model.DirectionOutgoing
		// Отсутствие флага трактуем как входящее: так ведёт себя Freshdesk.
		if incoming, ok := conv["incoming"].(bool); !ok || incoming {
			direction = model.DirectionIncoming
		}
		messages = append(messages, model.Message{
			MessageIndex: len(messages),
			Timestamp:    timeField(conv, "created_at", now),
			Author:       stringField(conv, "from_email"),
			CleanBody:    body,
			Direction:    direction,
		})
	}

	ticket := model.NewTicket(ticketID, messages, createdAt, updatedAt)
	log.Printf("freshdesk: parsed ticket %s: %d public messages", ticketID, ticket.MessageCount)

	return model.AgentInput{
		EventType: eventType,
		TicketID:  ticketID,
		Ticket:    ticket,
	}, nil
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func timeField(m map[string]any, key string, fallback time.Time) time.Time {
	if s, ok := m[key].(string); ok {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return ts
		}
	}
	return fallback
}
