package secrets

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/loopper-ai/ticket-ingest/internal/errs"
	"github.com/loopper-ai/ticket-ingest/internal/freshdesk"
)

// Source читает учётные данные Freshdesk из примонтированного
// JSON-секрета ({"FRESHDESK_BASE_URL": ..., "FRESHDESK_API_KEY": ...}),
// а при пустом пути — из окружения. Значения никуда не логируются.
type Source struct {
	path string
}

// NewSource создаёт источник. path может быть пустым — тогда env-режим.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Credentials возвращает готовые учётные данные либо errs.ErrCredentials.
func (s *Source) Credentials() (freshdesk.Credentials, error) {
	var data map[string]string

	if s.path != "" {
		raw, err := os.ReadFile(s.path)
		if err != nil {
			return freshdesk.Credentials{}, fmt.Errorf("%w: read %s: %v", errs.ErrCredentials, s.path, err)
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return freshdesk.Credentials{}, fmt.Errorf("%w: secret file is not valid json", errs.ErrCredentials)
		}
	} else {
		data = map[string]string{
			"FRESHDESK_BASE_URL": os.Getenv("FRESHDESK_BASE_URL"),
			"FRESHDESK_API_KEY":  os.Getenv("FRESHDESK_API_KEY"),
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(data["FRESHDESK_BASE_URL"]), "/")
	apiKey := strings.TrimSpace(data["FRESHDESK_API_KEY"])
	if baseURL == "" || apiKey == "" {
		return freshdesk.Credentials{}, fmt.Errorf("%w: FRESHDESK_BASE_URL and FRESHDESK_API_KEY are required", errs.ErrCredentials)
	}

	return freshdesk.Credentials{BaseURL: baseURL, APIKey: apiKey}, nil
}
