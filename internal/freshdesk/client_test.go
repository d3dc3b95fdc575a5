package freshdesk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopper-ai/ticket-ingest/internal/errs"
)

func TestClientFetchTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v2/tickets/42", r.URL.Path)
			assert.Equal(t, "conversations,requester", r.URL.Query().Get("include"))
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "secret-key", user)
			assert.Equal(t, "X", pass)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":42,"subject":"hi"}`))
		}))
		defer srv.Close()

		c := NewClient(Credentials{BaseURL: srv.URL, APIKey: "secret-key"}, 5*time.Second)
		data, err := c.FetchTicket(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, float64(42), data["id"])
	})

	t.Run("non-2xx wraps ErrFetch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))
		defer srv.Close()

		c := NewClient(Credentials{BaseURL: srv.URL, APIKey: "k"}, 5*time.Second)
		_, err := c.FetchTicket(ctx, "42")
		require.ErrorIs(t, err, errs.ErrFetch)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("invalid json wraps ErrFetch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>nope</html>"))
		}))
		defer srv.Close()

		c := NewClient(Credentials{BaseURL: srv.URL, APIKey: "k"}, 5*time.Second)
		_, err := c.FetchTicket(ctx, "42")
		require.ErrorIs(t, err, errs.ErrFetch)
	})

	t.Run("transport failure wraps ErrFetch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // адрес больше не слушается

		c := NewClient(Credentials{BaseURL: srv.URL, APIKey: "k"}, time.Second)
		_, err := c.FetchTicket(ctx, "42")
		require.ErrorIs(t, err, errs.ErrFetch)
	})
}
