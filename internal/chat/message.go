// Package chat implements the support chat client: a conversation kept in sync with the backend
// by polling, with messages shown optimistically before the backend confirms them.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyMessage is returned by Send for blank text.
var ErrEmptyMessage = errors.New("message text is empty")

// Message is one chat entry. Pending and Failed describe local state and are never sent.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Author         string    `json:"author"`
	Text           string    `json:"text"`
	SentAt         time.Time `json:"sent_at"`
	// Pending marks a local message the backend has not returned yet.
	Pending bool `json:"-"`
	// Failed marks a pending message whose send was rejected.
	Failed bool `json:"-"`
}

// correlationKey identifies a message by author, text and send time to the second.
// Two identical messages sent by one author within the same second share a key.
func (m Message) correlationKey() string {
	return fmt.Sprintf("%s\x00%s\x00%d", m.Author, m.Text, m.SentAt.Truncate(time.Second).Unix())
}

// History is the backend holding conversation messages.
type History interface {
	Fetch(ctx context.Context, conversationID string) ([]Message, error)
	Send(ctx context.Context, msg Message) (Message, error)
}
