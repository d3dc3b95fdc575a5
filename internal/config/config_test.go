package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopper-ai/ticket-ingest/internal/model"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("KAFKA_BROKERS", "localhost:9092")
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8098", cfg.HTTPPort)
		assert.Equal(t, "ticket.agent-input", cfg.KafkaTopic)
		assert.Equal(t, "ticket-ingest-forwarder", cfg.KafkaGroup)
		assert.Equal(t, 5*time.Minute, cfg.DedupWindow)
		assert.Equal(t, 15*time.Second, cfg.APITimeout)
		assert.Equal(t, 10, cfg.BatchSize)
		assert.True(t, cfg.ProcessCreated)
		assert.True(t, cfg.ProcessUpdated)
		assert.False(t, cfg.JournalEnabled())
	})

	t.Run("backend url derived from server url", func(t *testing.T) {
		t.Setenv("KAFKA_BROKERS", "localhost:9092")
		t.Setenv("BACKEND_SERVER_URL", "https://app.example.com/")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://app.example.com/queue/webhook", cfg.BackendURL)
	})

	t.Run("explicit webhook url wins", func(t *testing.T) {
		t.Setenv("KAFKA_BROKERS", "localhost:9092")
		t.Setenv("BACKEND_SERVER_URL", "https://app.example.com")
		t.Setenv("BACKEND_WEBHOOK_URL", "https://other.example.com/ingest")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://other.example.com/ingest", cfg.BackendURL)
	})

	t.Run("journal enabled by database name", func(t *testing.T) {
		t.Setenv("KAFKA_BROKERS", "localhost:9092")
		t.Setenv("DB_DATABASE", "ticket_ingest")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.JournalEnabled())
		assert.Contains(t, cfg.DSN(), "dbname=ticket_ingest")
		assert.Contains(t, cfg.DatabaseURL(), "/ticket_ingest?")
	})
}

func TestValidate(t *testing.T) {
	t.Run("kafka is required", func(t *testing.T) {
		cfg := &Config{}
		require.Error(t, cfg.Validate())
	})

	t.Run("forwarder needs a backend", func(t *testing.T) {
		cfg := &Config{KafkaBrokers: []string{"b:9092"}, KafkaTopic: "t"}
		require.NoError(t, cfg.Validate())
		require.Error(t, cfg.ValidateForwarder())

		cfg.BackendURL = "https://app.example.com/queue/webhook"
		require.NoError(t, cfg.ValidateForwarder())
	})
}

func TestShouldProcess(t *testing.T) {
	cfg := &Config{ProcessCreated: false, ProcessUpdated: true}
	assert.False(t, cfg.ShouldProcess(model.EventCreated))
	assert.True(t, cfg.ShouldProcess(model.EventUpdated))
	assert.True(t, cfg.ShouldProcess(model.EventUnknown), "unknown is never filtered")
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, b:9092 ,"))
	assert.Nil(t, ParseBrokers(""))
}
