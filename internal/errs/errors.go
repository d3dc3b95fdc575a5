package errs

import "errors"

// Ошибки домена. Всё, кроме ErrEnqueue, перехватывается оркестратором
// и превращается в raw fallback; ErrEnqueue поднимается до HTTP-ответа.
var (
	// ErrMissingTicketID — created-вебхук без идентификатора тикета.
	ErrMissingTicketID = errors.New("webhook payload missing ticket id")

	// ErrUnclassifiedEvent — triggered_event отсутствует или не распознан.
	ErrUnclassifiedEvent = errors.New("unclassified event type")

	// ErrCredentials — не удалось получить учётные данные Freshdesk.
	ErrCredentials = errors.New("freshdesk credentials unavailable")

	// ErrFetch — Freshdesk API недоступен или вернул не-2xx.
	ErrFetch = errors.New("freshdesk fetch failed")

	// ErrEnqueue — очередь не приняла сообщение. Второго fallback-уровня нет.
	ErrEnqueue = errors.New("queue send failed")
)
