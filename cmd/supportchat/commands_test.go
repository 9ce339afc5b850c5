package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/abgdnv/storefront/internal/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatBackend struct {
	mu       sync.Mutex
	messages []map[string]any
}

func (b *chatBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r.URL.Path != "/api/v1/chat/42/messages" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"messages": b.messages})
	case http.MethodPost:
		var msg map[string]any
		_ = json.NewDecoder(r.Body).Decode(&msg)
		msg["id"] = "m" + string(rune('0'+len(b.messages)+1))
		b.messages = append(b.messages, msg)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(msg)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func Test_SendThenWatchOnce(t *testing.T) {
	// given
	backend := &chatBackend{messages: []map[string]any{
		{"id": "m0", "author": "support", "text": "Bonjour, comment puis-je aider ?", "sent_at": "2025-06-01T14:30:05Z"},
	}}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	// when
	sent, _, err := execute(t, "send", "--base-url", srv.URL, "-c", "42", "--author", "awa", "Où", "est", "ma", "commande ?")
	require.NoError(t, err)
	watched, _, err := execute(t, "watch", "--once", "--base-url", srv.URL, "-c", "42")
	require.NoError(t, err)

	// then
	assert.Equal(t, "sent m2\n", sent)
	lines := strings.Split(strings.TrimSpace(watched), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "support: Bonjour, comment puis-je aider ?")
	assert.Contains(t, lines[1], "awa: Où est ma commande ?")
}

func Test_Errors(t *testing.T) {
	srv := httptest.NewServer(&chatBackend{})
	t.Cleanup(srv.Close)

	testCases := []struct {
		name string
		args []string
	}{
		{name: "missing conversation", args: []string{"watch", "--once", "--base-url", srv.URL}},
		{name: "unknown conversation", args: []string{"watch", "--once", "--base-url", srv.URL, "-c", "7", "--retries", "0"}},
		{name: "blank message", args: []string{"send", "--base-url", srv.URL, "-c", "42", "  "}},
		{name: "invalid timeout", args: []string{"send", "--base-url", srv.URL, "-c", "42", "--timeout", "0s", "hi"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, tc.args...)
			assert.Error(t, err)
		})
	}
}

func Test_Printer_PrintsEachMessageOnce(t *testing.T) {
	// given
	var out bytes.Buffer
	p := newPrinter(&out)
	confirmed := chat.Message{ID: "1", Author: "support", Text: "Bonjour"}
	pending := chat.Message{ID: "local-1", Author: "client", Text: "Salut", Pending: true}

	// when
	p.print([]chat.Message{confirmed, pending})
	p.print([]chat.Message{confirmed, {ID: "2", Author: "client", Text: "Salut"}})

	// then
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "support: Bonjour")
	assert.Contains(t, lines[1], "client: Salut")
}
