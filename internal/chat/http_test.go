package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, baseURL string) *httpclient.Client {
	t.Helper()
	client, err := httpclient.New("chat", config.HTTPClientConfig{
		BaseURL: baseURL,
		Timeout: time.Second,
		Retry:   config.RetryConfig{MaxAttempts: 0, WaitMin: time.Millisecond, WaitMax: time.Millisecond},
		CircuitBreaker: config.CircuitBreakerConfig{
			ConsecutiveFailures: 5,
			OpenTimeout:         time.Second,
		},
	}, discard)
	require.NoError(t, err)
	return client
}

func Test_HTTPHistory_Fetch(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected []Message
	}{
		{
			name: "bare array",
			body: `[{"id":"1","author":"support","text":"Bonjour","sent_at":"2025-06-01T14:30:05Z"}]`,
			expected: []Message{
				{ID: "1", ConversationID: "c 1", Author: "support", Text: "Bonjour", SentAt: time.Date(2025, 6, 1, 14, 30, 5, 0, time.UTC)},
			},
		},
		{
			name: "envelope",
			body: `{"messages":[{"id":"2","conversation_id":"c 1","author":"client","text":"Merci"}]}`,
			expected: []Message{
				{ID: "2", ConversationID: "c 1", Author: "client", Text: "Merci"},
			},
		},
		{
			name:     "null",
			body:     `null`,
			expected: []Message{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/v1/chat/c%201/messages", r.URL.EscapedPath())
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(srv.Close)

			// when
			messages, err := NewHTTPHistory(newClient(t, srv.URL)).Fetch(context.Background(), "c 1")

			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expected, messages)
		})
	}
}

func Test_HTTPHistory_FetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such conversation", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := NewHTTPHistory(newClient(t, srv.URL)).Fetch(context.Background(), "missing")

	var statusErr *httpclient.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func Test_HTTPHistory_Send(t *testing.T) {
	// given
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/chat/c1/messages", r.URL.Path)
		var req sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "client", req.Author)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Message{ID: "42", Author: req.Author, Text: req.Text, SentAt: req.SentAt})
	}))
	t.Cleanup(srv.Close)
	conv := NewConversation("c1", NewHTTPHistory(newClient(t, srv.URL)))

	// when
	stored, err := conv.Send(context.Background(), "client", "Où est ma commande ?")

	// then
	require.NoError(t, err)
	assert.Equal(t, "42", stored.ID)
	assert.Equal(t, "c1", stored.ConversationID)
	messages := conv.Messages()
	require.Len(t, messages, 1)
	assert.False(t, messages[0].Pending)
}
