package webhook

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Payload — сырое тело вебхука. Форма зависит от источника, поэтому все
// поля читаются через явные optional-аксессоры, а не через структуры.
type Payload map[string]any

// Parse разбирает тело запроса. Ошибка — если это не JSON-объект.
func Parse(raw []byte) (Payload, error) {
	var p map[string]any
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse webhook body: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("webhook body must be a JSON object")
	}
	return Payload(p), nil
}

// block возвращает блок freshdesk_webhook, либо сам payload, если
// источник прислал поля без обёртки.
func (p Payload) block() map[string]any {
	if inner, ok := p["freshdesk_webhook"].(map[string]any); ok {
		return inner
	}
	return p
}

// Str возвращает первое непустое строковое значение по списку ключей.
// Числа приводятся к строке (Freshdesk шлёт ticket_id и так, и так).
func (p Payload) Str(keys ...string) (string, bool) {
	block := p.block()
	for _, k := range keys {
		switch v := block[k].(type) {
		case string:
			if v != "" {
				return v, true
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		case json.Number:
			return v.String(), true
		}
	}
	return "", false
}

// Time возвращает первую распарсившуюся RFC3339-метку по списку ключей.
func (p Payload) Time(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		s, ok := p.Str(k)
		if !ok {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
