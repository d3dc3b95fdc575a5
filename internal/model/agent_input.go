package model

import (
	"encoding/json"
	"time"
)

// EventType — тип события вебхука.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventUnknown EventType = "unknown"
)

// Direction — направление сообщения в переписке.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// FallbackGroupKey — ключ упорядочивания для сообщений без известного
// ticket_id. Ключ группы никогда не бывает пустым.
const FallbackGroupKey = "unrouted"

// Message — одно сообщение переписки. После создания не изменяется.
type Message struct {
	MessageIndex int       `json:"message_index"`
	Timestamp    time.Time `json:"timestamp"`
	Author       string    `json:"author,omitempty"`
	CleanBody    string    `json:"clean_body"`
	Direction    Direction `json:"direction"`
}

// Ticket — тикет с историей переписки. Агрегаты считаются один раз в
// NewTicket и дальше не пересчитываются.
type Ticket struct {
	TicketID         string      `json:"ticket_id"`
	Messages         []Message   `json:"messages"`
	MessageCount     int         `json:"message_count"`
	StartedAt        time.Time   `json:"started_at"`
	LastUpdatedAt    time.Time   `json:"last_updated_at"`
	DurationHours    float64     `json:"duration_hours"`
	IncomingCount    int         `json:"incoming_count"`
	OutgoingCount    int         `json:"outgoing_count"`
	ConversationFlow []Direction `json:"conversation_flow"`
}

// NewTicket собирает тикет и вычисляет производные поля.
// Инварианты: incoming+outgoing == len(messages), len(flow) == len(messages),
// duration_hours >= 0.
func NewTicket(ticketID string, messages []Message, startedAt, lastUpdatedAt time.Time) Ticket {
	flow := make([]Direction, len(messages))
	incoming := 0
	for i, m := range messages {
		flow[i] = m.Direction
		if m.Direction == DirectionIncoming {
			incoming++
		}
	}
	duration := lastUpdatedAt.Sub(startedAt).Hours()
	if duration < 0 {
		duration = 0
	}
	return Ticket{
		TicketID:         ticketID,
		Messages:         messages,
		MessageCount:     len(messages),
		StartedAt:        startedAt,
		LastUpdatedAt:    lastUpdatedAt,
		DurationHours:    duration,
		IncomingCount:    incoming,
		OutgoingCount:    len(messages) - incoming,
		ConversationFlow: flow,
	}
}

// AgentInput — канонический документ, который уходит в очередь при
// успешном разборе вебхука.
type AgentInput struct {
	EventType EventType `json:"event_type"`
	TicketID  string    `json:"ticket_id"`
	Ticket    Ticket    `json:"ticket"`
}

// RawFallback — гарантированная замена AgentInput: исходное тело вебхука
// плюс причина, по которой нормализация не удалась. Никогда не отбрасывается.
type RawFallback struct {
	Raw        bool            `json:"_raw"`
	ParseError string          `json:"_parse_error"`
	Payload    json.RawMessage `json:"payload"`
	EventType  EventType       `json:"event_type"`
	TicketID   string          `json:"ticket_id,omitempty"`
}

// NewRawFallback строит fallback-сообщение. ticketID может быть пустым —
// тогда поле отсутствует в JSON, а ключ группы берётся из FallbackGroupKey.
func NewRawFallback(parseError string, payload json.RawMessage, eventType EventType, ticketID string) RawFallback {
	return RawFallback{
		Raw:        true,
		ParseError: parseError,
		Payload:    payload,
		EventType:  eventType,
		TicketID:   ticketID,
	}
}

// Envelope — то, что реально отправляется в очередь.
// GroupKey всегда непустой, DedupKey — hex sha256.
type Envelope struct {
	Body     []byte
	GroupKey string
	DedupKey string
}
