package httpclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/asset-librarian/internal/httpclient"
)

// newTestServer disables keep-alives so closing one server does not affect
// parallel tests sharing the transport
func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

func fastClient(tries uint) *httpclient.DefaultClient {
	return httpclient.NewDefaultClient(
		httpclient.WithTimeout(5*time.Second),
		httpclient.WithMaxTries(tries),
		httpclient.WithInitialInterval(time.Millisecond),
	)
}

func TestDefaultClient_Get(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "asset-librarian/"))
		_, _ = w.Write([]byte(`{"soundBanks": []}`))
	}))
	defer server.Close()

	body, err := fastClient(1).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.JSONEq(t, `{"soundBanks": []}`, string(body))
}

func TestDefaultClient_Retries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		statuses      []int
		tries         uint
		expectedCalls int32
		expectedCode  int
	}{
		{
			name:          "recovers after server errors",
			statuses:      []int{http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusOK},
			tries:         4,
			expectedCalls: 3,
		},
		{
			name:          "recovers after rate limiting",
			statuses:      []int{http.StatusTooManyRequests, http.StatusOK},
			tries:         4,
			expectedCalls: 2,
		},
		{
			name:          "gives up after max tries",
			statuses:      []int{http.StatusInternalServerError, http.StatusInternalServerError, http.StatusInternalServerError},
			tries:         2,
			expectedCalls: 2,
			expectedCode:  http.StatusInternalServerError,
		},
		{
			name:          "client errors are not retried",
			statuses:      []int{http.StatusNotFound, http.StatusOK},
			tries:         4,
			expectedCalls: 1,
			expectedCode:  http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				n := calls.Add(1)
				status := tt.statuses[min(int(n), len(tt.statuses))-1]
				w.WriteHeader(status)
				if status == http.StatusOK {
					_, _ = w.Write([]byte(`{}`))
				}
			}))
			defer server.Close()

			body, err := fastClient(tt.tries).Get(context.Background(), server.URL)
			assert.Equal(t, tt.expectedCalls, calls.Load())

			if tt.expectedCode == 0 {
				require.NoError(t, err)
				assert.Equal(t, `{}`, string(body))
				return
			}

			require.Error(t, err)
			var httpErr *httpclient.HTTPError
			require.True(t, errors.As(err, &httpErr), "error should be an HTTPError: %v", err)
			assert.Equal(t, tt.expectedCode, httpErr.StatusCode)
			assert.Equal(t, server.URL, httpErr.URL)
		})
	}
}

func TestDefaultClient_CancelledContext(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastClient(3).Get(ctx, server.URL)
	assert.Error(t, err)
}

func TestDefaultClient_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := fastClient(3).Get(context.Background(), "://missing-scheme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create request")
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	err := httpclient.NewHTTPError(http.StatusNotFound, "http://example.com/catalog.json", "404 Not Found")
	assert.Equal(t, "HTTP 404 for URL http://example.com/catalog.json: 404 Not Found", err.Error())

	tests := []struct {
		status    int
		retryable bool
	}{
		{status: http.StatusBadRequest, retryable: false},
		{status: http.StatusNotFound, retryable: false},
		{status: http.StatusTooManyRequests, retryable: true},
		{status: http.StatusInternalServerError, retryable: true},
		{status: http.StatusGatewayTimeout, retryable: true},
	}
	for _, tt := range tests {
		e := &httpclient.HTTPError{StatusCode: tt.status}
		assert.Equal(t, tt.retryable, e.Retryable(), "status %d", tt.status)
	}
}
