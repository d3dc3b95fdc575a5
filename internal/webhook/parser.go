package webhook

import (
	"fmt"
	"strings"
	"time"

	"github.com/loopper-ai/ticket-ingest/internal/errs"
	"github.com/loopper-ai/ticket-ingest/internal/htmlclean"
	"github.com/loopper-ai/ticket-ingest/internal/model"
)

// noDescription — тело сообщения, когда у созданного тикета нет ни
// описания, ни темы.
const noDescription = "(No description provided)"

// Classify определяет тип события по полю triggered_event.
// Нераспознанные и отсутствующие значения дают EventUnknown.
func Classify(p Payload) model.EventType {
	triggered, _ := p.Str("triggered_event")
	triggered = strings.ToLower(triggered)
	switch {
	case strings.Contains(triggered, "created"):
		return model.EventCreated
	case strings.Contains(triggered, "update"):
		return model.EventUpdated
	default:
		return model.EventUnknown
	}
}

// ExtractTicketID достаёт идентификатор тикета как строку.
func ExtractTicketID(p Payload) (string, bool) {
	return p.Str("ticket_id", "id")
}

// BuildFromCreated собирает AgentInput напрямую из created-вебхука,
// без похода в Freshdesk API. Единственная невосстановимая ситуация на
// этом пути — отсутствие идентификатора тикета.
func BuildFromCreated(p Payload, now time.Time) (model.AgentInput, error) {
	ticketID, ok := ExtractTicketID(p)
	if !ok {
		return model.AgentInput{}, fmt.Errorf("%w: created event", errs.ErrMissingTicketID)
	}

	desc, _ := p.Str("ticket_description", "description")
	subject, _ := p.Str("ticket_subject", "subject")
	author, _ := p.Str("ticket_contact_email", "requester_email")

	body := htmlclean.Clean(desc)
	if body == "" {
		body = htmlclean.Clean(subject)
	}
	if body == "" {
		body = noDescription
	}

	eventAt, ok := p.Time("triggered_at", "created_at")
	if !ok {
		eventAt = now
	}

	message := model.Message{
		MessageIndex: 0,
		Timestamp:    eventAt,
		Author:       author,
		CleanBody:    body,
		Direction:    model.DirectionIncoming,
	}
	ticket := model.NewTicket(ticketID, []model.Message{message}, eventAt, eventAt)

	return model.AgentInput{
		EventType: model.EventCreated,
		TicketID:  ticketID,
		Ticket:    ticket,
	}, nil
}
