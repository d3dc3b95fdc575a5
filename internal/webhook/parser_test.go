package webhook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopper-ai/ticket-ingest/internal/errs"
	"github.com/loopper-ai/ticket-ingest/internal/model"
)

func mustParse(t *testing.T, raw string) Payload {
	t.Helper()
	p, err := Parse([]byte(raw))
	require.NoError(t, err)
	return p
}

func TestParse(t *testing.T) {
	t.Run("rejects non-object bodies", func(t *testing.T) {
		for _, raw := range []string{`[]`, `"str"`, `42`, `null`, `{broken`} {
			_, err := Parse([]byte(raw))
			assert.Error(t, err, "raw %s", raw)
		}
	})

	t.Run("accepts empty object", func(t *testing.T) {
		p := mustParse(t, `{}`)
		assert.Equal(t, model.EventUnknown, Classify(p))
	})
}

func TestClassify(t *testing.T) {
	cases := []struct {
		triggered string
		want      model.EventType
	}{
		{"ticket_created", model.EventCreated},
		{"Ticket Created", model.EventCreated},
		{"ticket_updated", model.EventUpdated},
		{"note update on ticket", model.EventUpdated},
		{"ticket_deleted", model.EventUnknown},
		{"", model.EventUnknown},
	}
	for _, c := range cases {
		p := Payload{"freshdesk_webhook": map[string]any{"triggered_event": c.triggered}}
		assert.Equal(t, c.want, Classify(p), "triggered_event %q", c.triggered)
	}
}

func TestExtractTicketID(t *testing.T) {
	t.Run("string id inside wrapper", func(t *testing.T) {
		p := mustParse(t, `{"freshdesk_webhook":{"ticket_id":"123"}}`)
		id, ok := ExtractTicketID(p)
		require.True(t, ok)
		assert.Equal(t, "123", id)
	})

	t.Run("numeric id without wrapper", func(t *testing.T) {
		p := mustParse(t, `{"id":456}`)
		id, ok := ExtractTicketID(p)
		require.True(t, ok)
		assert.Equal(t, "456", id)
	})

	t.Run("absent", func(t *testing.T) {
		_, ok := ExtractTicketID(mustParse(t, `{"freshdesk_webhook":{}}`))
		assert.False(t, ok)
	})
}

func TestBuildFromCreated(t *testing.T) {
	now := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

	t.Run("full created webhook", func(t *testing.T) {
		p := mustParse(t, `{"freshdesk_webhook":{
			"triggered_event":"ticket_created",
			"ticket_id":"881",
			"ticket_subject":"Printer down",
			"ticket_description":"<p>The printer on <b>floor 3</b> is down</p>",
			"ticket_contact_email":"user@example.com",
			"triggered_at":"2026-04-02T09:30:00Z"}}`)

		input, err := BuildFromCreated(p, now)
		require.NoError(t, err)

		assert.Equal(t, model.EventCreated, input.EventType)
		assert.Equal(t, "881", input.TicketID)
		require.Len(t, input.Ticket.Messages, 1)

		msg := input.Ticket.Messages[0]
		assert.Equal(t, 0, msg.MessageIndex)
		assert.Equal(t, "The printer on floor 3 is down", msg.CleanBody)
		assert.Equal(t, "user@example.com", msg.Author)
		assert.Equal(t, model.DirectionIncoming, msg.Direction)
		assert.Equal(t, time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC), msg.Timestamp)

		assert.Equal(t, 1, input.Ticket.MessageCount)
		assert.Equal(t, 1, input.Ticket.IncomingCount)
		assert.Equal(t, 0, input.Ticket.OutgoingCount)
	})

	t.Run("subject substitutes empty description", func(t *testing.T) {
		p := mustParse(t, `{"freshdesk_webhook":{
			"ticket_id":"1","ticket_subject":"Just a subject","ticket_description":"<br/>"}}`)
		input, err := BuildFromCreated(p, now)
		require.NoError(t, err)
		assert.Equal(t, "Just a subject", input.Ticket.Messages[0].CleanBody)
	})

	t.Run("placeholder when nothing usable", func(t *testing.T) {
		p := mustParse(t, `{"freshdesk_webhook":{"ticket_id":"1"}}`)
		input, err := BuildFromCreated(p, now)
		require.NoError(t, err)
		assert.Equal(t, "(No description provided)", input.Ticket.Messages[0].CleanBody)
	})

	t.Run("event time falls back to now", func(t *testing.T) {
		p := mustParse(t, `{"freshdesk_webhook":{"ticket_id":"1","triggered_at":"not a time"}}`)
		input, err := BuildFromCreated(p, now)
		require.NoError(t, err)
		assert.Equal(t, now, input.Ticket.Messages[0].Timestamp)
	})

	t.Run("missing ticket id is the only fatal case", func(t *testing.T) {
		p := mustParse(t, `{"freshdesk_webhook":{"triggered_event":"ticket_created"}}`)
		_, err := BuildFromCreated(p, now)
		require.ErrorIs(t, err, errs.ErrMissingTicketID)
	})
}
