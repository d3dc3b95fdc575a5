package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/loopper-ai/ticket-ingest/internal/errs"
	"github.com/loopper-ai/ticket-ingest/internal/freshdesk"
	"github.com/loopper-ai/ticket-ingest/internal/model"
)

// TicketFetcher — внешний коллаборатор похода за тикетом (4.3 из спеки
// живёт за этим интерфейсом, в тестах подменяется моком).
type TicketFetcher interface {
	FetchTicket(ctx context.Context, ticketID string) (map[string]any, error)
}

// CredentialsSource выдаёт учётные данные Freshdesk. Ошибка источника
// фатальна только для updated-пути и даёт raw fallback, как и FetchError.
type CredentialsSource interface {
	Credentials() (freshdesk.Credentials, error)
}

// Router диспетчеризует вебхук по типу события: created собирается из
// самого payload, updated требует похода в Freshdesk. Ошибки не
// проглатываются — fallback строит оркестратор, не роутер.
type Router struct {
	Secrets    CredentialsSource
	NewFetcher func(freshdesk.Credentials) TicketFetcher
	Now        func() time.Time
}

func (r *Router) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Resolve строит AgentInput для распознанного события.
// unknown падает сразу, без попыток извлечения.
func (r *Router) Resolve(ctx context.Context, p Payload) (model.AgentInput, error) {
	switch Classify(p) {
	case model.EventCreated:
		return BuildFromCreated(p, r.now())

	case model.EventUpdated:
		ticketID, ok := ExtractTicketID(p)
		if !ok {
			return model.AgentInput{}, fmt.Errorf("%w: updated event", errs.ErrMissingTicketID)
		}
		creds, err := r.Secrets.Credentials()
		if err != nil {
			return model.AgentInput{}, fmt.Errorf("%w: %v", errs.ErrCredentials, err)
		}
		data, err := r.NewFetcher(creds).FetchTicket(ctx, ticketID)
		if err != nil {
			return model.AgentInput{}, err
		}
		return freshdesk.TicketToAgentInput(data, model.EventUpdated, r.now())

	default:
		triggered, _ := p.Str("triggered_event")
		return model.AgentInput{}, fmt.Errorf("%w: %q", errs.ErrUnclassifiedEvent, triggered)
	}
}
