package chat

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval is used when a Poller is created with a non-positive interval.
const DefaultPollInterval = 3 * time.Second

// Poller refreshes a conversation on a fixed interval until its context is cancelled.
type Poller struct {
	conversation *Conversation
	interval     time.Duration
	logger       *slog.Logger
	onError      func(error)
	onUpdate     func([]Message)
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithErrorHandler is called with every failed refresh.
func WithErrorHandler(fn func(error)) PollerOption {
	return func(p *Poller) { p.onError = fn }
}

// WithUpdateHandler is called with the message list after every successful refresh.
func WithUpdateHandler(fn func([]Message)) PollerOption {
	return func(p *Poller) { p.onUpdate = fn }
}

// NewPoller returns a poller that refreshes conversation every interval, or every
// DefaultPollInterval when interval is not positive.
func NewPoller(conversation *Conversation, interval time.Duration, logger *slog.Logger, opts ...PollerOption) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	p := &Poller{conversation: conversation, interval: interval, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run refreshes immediately and then on every tick. It returns ctx.Err() once ctx is done.
// A failed refresh is logged and reported; polling continues with the next tick.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.poll(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if err := p.conversation.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.WarnContext(ctx, "failed to refresh conversation", "conversation_id", p.conversation.ID(), "error", err)
		if p.onError != nil {
			p.onError(err)
		}
		return
	}
	if p.onUpdate != nil {
		p.onUpdate(p.conversation.Messages())
	}
}
