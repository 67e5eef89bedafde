package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGet(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"ok":true}`))
		case "/missing":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewClient(WithUserAgent("autochart-test"), WithRateLimit(100, 10))

	t.Run("success returns body", func(t *testing.T) {
		body, err := client.Get(context.Background(), srv.URL+"/ok")
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(body))
		assert.Equal(t, "autochart-test", gotUA)
	})

	t.Run("non-2xx returns StatusError", func(t *testing.T) {
		_, err := client.Get(context.Background(), srv.URL+"/missing")
		require.Error(t, err)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	})

	t.Run("server error", func(t *testing.T) {
		_, err := client.Get(context.Background(), srv.URL+"/boom")
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	})
}

func TestClientGetCanceledContext(t *testing.T) {
	client := NewClient(WithRateLimit(0.001, 1))

	// consume the only token
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	_, err := client.Get(ctx, srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Get(ctx, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

func TestClientGetBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 16)))
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		limit   int64
		wantErr bool
	}{
		{name: "under limit", limit: 32},
		{name: "exactly at limit", limit: 16},
		{name: "over limit", limit: 15, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(WithRateLimit(100, 10), WithMaxBodyBytes(tt.limit))

			body, err := client.Get(context.Background(), srv.URL)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrResponseTooLarge)
				assert.Nil(t, body)
				return
			}
			require.NoError(t, err)
			assert.Len(t, body, 16)
		})
	}
}
