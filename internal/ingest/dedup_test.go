package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupKey(t *testing.T) {
	payload := []byte(`{"ticket_id":"1"}`)

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, DedupKey(payload, "req-1"), DedupKey(payload, "req-1"))
	})

	t.Run("hex sha256", func(t *testing.T) {
		key := DedupKey(payload, "req-1")
		assert.Len(t, key, 64)
		assert.Regexp(t, "^[0-9a-f]+$", key)
	})

	t.Run("request id participates", func(t *testing.T) {
		assert.NotEqual(t, DedupKey(payload, "req-1"), DedupKey(payload, "req-2"))
	})

	t.Run("payload participates", func(t *testing.T) {
		assert.NotEqual(t, DedupKey(payload, "req-1"), DedupKey([]byte(`{"ticket_id":"2"}`), "req-1"))
	})
}
