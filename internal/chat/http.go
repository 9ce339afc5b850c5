package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// JSONClient is the subset of httpclient.Client used by HTTPHistory.
type JSONClient interface {
	GetJSON(ctx context.Context, path string, query url.Values, dst any) error
	PostJSON(ctx context.Context, path string, body, dst any) error
}

var _ History = (*HTTPHistory)(nil)

// HTTPHistory reads and writes messages through the backend chat endpoints.
type HTTPHistory struct {
	client JSONClient
}

func NewHTTPHistory(client JSONClient) *HTTPHistory {
	return &HTTPHistory{client: client}
}

type sendRequest struct {
	Author string    `json:"author"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

func messagesPath(conversationID string) string {
	return "/api/v1/chat/" + url.PathEscape(conversationID) + "/messages"
}

// Fetch returns the conversation history. The response is either a bare array or {"messages": [...]}.
func (h *HTTPHistory) Fetch(ctx context.Context, conversationID string) ([]Message, error) {
	var envelope messagesEnvelope
	if err := h.client.GetJSON(ctx, messagesPath(conversationID), nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to fetch conversation %s: %w", conversationID, err)
	}
	messages := envelope.Messages
	for i := range messages {
		if messages[i].ConversationID == "" {
			messages[i].ConversationID = conversationID
		}
	}
	return messages, nil
}

// Send posts msg and returns the message as stored by the backend.
func (h *HTTPHistory) Send(ctx context.Context, msg Message) (Message, error) {
	var stored Message
	req := sendRequest{Author: msg.Author, Text: msg.Text, SentAt: msg.SentAt}
	if err := h.client.PostJSON(ctx, messagesPath(msg.ConversationID), req, &stored); err != nil {
		return Message{}, fmt.Errorf("failed to send message: %w", err)
	}
	if stored.ConversationID == "" {
		stored.ConversationID = msg.ConversationID
	}
	return stored, nil
}

// messagesEnvelope accepts a bare array or an object with a "messages" field.
type messagesEnvelope struct {
	Messages []Message
}

func (e *messagesEnvelope) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Messages []Message `json:"messages"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		e.Messages = obj.Messages
	} else if err := json.Unmarshal(trimmed, &e.Messages); err != nil {
		return err
	}
	if e.Messages == nil {
		e.Messages = []Message{}
	}
	return nil
}
