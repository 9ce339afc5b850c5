package chat

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Conversation holds the messages confirmed by the backend plus the local ones still pending.
// It is safe for concurrent use by a sender and a poller.
type Conversation struct {
	mu        sync.Mutex
	id        string
	history   History
	confirmed []Message
	pending   []Message
	// unseen holds messages confirmed by Send that no fetched list has contained yet.
	unseen    []Message
	seq       int
	now       func() time.Time
}

// NewConversation returns an empty conversation backed by history.
func NewConversation(id string, history History) *Conversation {
	return &Conversation{id: id, history: history, now: time.Now}
}

// ID returns the conversation identifier used for history requests.
func (c *Conversation) ID() string {
	return c.id
}

// Send shows the message as pending right away and then posts it. On success the pending entry is
// replaced by the stored message. On failure it stays in the list marked Failed and the error is returned.
func (c *Conversation) Send(ctx context.Context, author, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	c.seq++
	local := Message{
		ID:             fmt.Sprintf("local-%d", c.seq),
		ConversationID: c.id,
		Author:         author,
		Text:           text,
		SentAt:         c.now(),
		Pending:        true,
	}
	c.pending = append(c.pending, local)
	c.mu.Unlock()

	stored, err := c.history.Send(ctx, local)

	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.pending, func(m Message) bool { return m.ID == local.ID })
	if err != nil {
		if i >= 0 {
			c.pending[i].Failed = true
		}
		return Message{}, err
	}
	if i >= 0 {
		c.pending = slices.Delete(c.pending, i, i+1)
	}
	if !slices.ContainsFunc(c.confirmed, func(m Message) bool { return m.ID == stored.ID }) {
		c.confirmed = append(c.confirmed, stored)
		c.unseen = append(c.unseen, stored)
	}
	return stored, nil
}

// Reconcile replaces the confirmed messages with the backend list and drops pending messages
// the list now contains. Pending and server messages are paired by correlation key, one to one.
// Messages already confirmed by Send stay visible until a list includes them, so a fetch that
// started before the post finished cannot hide them.
func (c *Conversation) Reconcile(server []Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	remaining := make(map[string]int, len(server))
	for _, m := range server {
		remaining[m.correlationKey()]++
	}
	kept := c.pending[:0:0]
	for _, m := range c.pending {
		key := m.correlationKey()
		if remaining[key] > 0 {
			remaining[key]--
			continue
		}
		kept = append(kept, m)
	}

	ids := make(map[string]struct{}, len(server))
	for _, m := range server {
		ids[m.ID] = struct{}{}
	}
	unseen := c.unseen[:0:0]
	for _, m := range c.unseen {
		if _, ok := ids[m.ID]; !ok {
			unseen = append(unseen, m)
		}
	}

	c.confirmed = slices.Clone(server)
	for i := range c.confirmed {
		c.confirmed[i].Pending = false
		c.confirmed[i].Failed = false
	}
	c.confirmed = append(c.confirmed, unseen...)
	c.unseen = unseen
	c.pending = kept
}

// Refresh fetches the history and reconciles it.
func (c *Conversation) Refresh(ctx context.Context) error {
	messages, err := c.history.Fetch(ctx, c.id)
	if err != nil {
		return err
	}
	c.Reconcile(messages)
	return nil
}

// Messages returns the confirmed messages followed by the pending ones.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, 0, len(c.confirmed)+len(c.pending))
	out = append(out, c.confirmed...)
	return append(out, c.pending...)
}
