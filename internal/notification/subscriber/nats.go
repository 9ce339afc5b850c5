// Package subscriber turns product events from NATS JetStream into admin notifications.
package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/storefront/internal/notification"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownSubject is returned by Decode for subjects that carry no notification.
var ErrUnknownSubject = errors.New("unknown event subject")

// Merger receives decoded notifications. *notification.Inbox satisfies it.
type Merger interface {
	Merge(ctx context.Context, incoming ...notification.Notification) ([]notification.Notification, error)
}

// ackableMsg is the part of jetstream.Msg the handler needs.
type ackableMsg interface {
	Data() []byte
	Subject() string
	Ack() error
	Nak() error
}

// Start initializes the NATS JetStream consumer and starts multiple worker goroutines to process messages.
// It blocks until ctx is cancelled or a worker fails.
func Start(ctx context.Context, js jetstream.JetStream, subscriberCfg config.SubscriberConfig, inbox Merger, logger *slog.Logger) error {
	cfg := jetstream.ConsumerConfig{
		FilterSubject: subscriberCfg.Subject,
		Durable:       subscriberCfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}
	consumer, err := js.CreateOrUpdateConsumer(ctx, subscriberCfg.Stream, cfg)
	if err != nil {
		return fmt.Errorf("failed to create consumer %s: %w", subscriberCfg.Consumer, err)
	}
	merged, err := otel.Meter("notifier/subscriber").Int64Counter("notifications_merged",
		metric.WithDescription("Product events merged into the notification list"))
	if err != nil {
		return fmt.Errorf("failed to create counter: %w", err)
	}
	w := worker{
		merged:   merged,
		consumer: consumer,
		inbox:    inbox,
		batch:    subscriberCfg.Batch,
		timeout:  subscriberCfg.Timeout,
		interval: subscriberCfg.Interval,
		logger:   logger,
	}
	g, gCtx := errgroup.WithContext(ctx)
	for range subscriberCfg.Workers {
		g.Go(func() error {
			return w.run(gCtx)
		})
	}
	return g.Wait()
}

type worker struct {
	consumer jetstream.Consumer
	inbox    Merger
	batch    int
	timeout  time.Duration
	interval time.Duration
	merged   metric.Int64Counter
	logger   *slog.Logger
}

// run fetches messages until ctx is done. Fetch errors other than timeouts are retried after interval.
func (w worker) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := w.consumer.Fetch(max(w.batch, 1), jetstream.FetchMaxWait(w.timeout))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			w.logger.ErrorContext(ctx, "failed to fetch messages", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.interval):
			}
			continue
		}
		for msg := range batch.Messages() {
			if kind, ok := handleMessage(ctx, msg, w.inbox, w.logger); ok {
				w.merged.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
			}
		}
		if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
			w.logger.WarnContext(ctx, "batch ended with error", "error", err)
		}
	}
}

// handleMessage merges the notification carried by msg and reports its kind.
// Messages that cannot be decoded or persisted are nacked.
func handleMessage(ctx context.Context, msg ackableMsg, inbox Merger, logger *slog.Logger) (string, bool) {
	if msg == nil {
		logger.ErrorContext(ctx, "received nil message")
		return "", false
	}
	subject := msg.Subject()
	n, err := Decode(subject, msg.Data())
	if err != nil {
		logger.ErrorContext(ctx, "failed to decode message", "error", err, "subject", subject)
		nak(ctx, msg, logger)
		return "", false
	}
	if _, err := inbox.Merge(ctx, n); err != nil {
		logger.ErrorContext(ctx, "failed to merge notification", "error", err, "notification_id", n.ID)
		nak(ctx, msg, logger)
		return "", false
	}

	logger.InfoContext(ctx, "notification merged",
		slog.String("subject", subject),
		slog.String("notification_id", n.ID),
		slog.String("kind", n.Kind))

	if err := msg.Ack(); err != nil {
		logger.ErrorContext(ctx, "failed to ack message", "error", err)
	}
	return n.Kind, true
}

func nak(ctx context.Context, msg ackableMsg, logger *slog.Logger) {
	if err := msg.Nak(); err != nil {
		logger.ErrorContext(ctx, "failed to nack message", "error", err)
	}
}

// Decode builds the notification for a product event. Notification ids are derived from the event,
// so a redelivered event replaces its earlier notification instead of adding a new one.
func Decode(subject string, data []byte) (notification.Notification, error) {
	switch subject {
	case messaging.ProductsCreatedSubject:
		var e events.ProductCreatedEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return notification.Notification{}, fmt.Errorf("decode %s: %w", subject, err)
		}
		return notification.Notification{
			ID:        "product-created-" + e.ProductID.String(),
			Kind:      notification.KindProductCreated,
			Title:     "New product: " + e.Name,
			Body:      createdBody(e),
			CreatedAt: e.CreatedAt,
		}, nil
	case messaging.ProductsOutOfStockSubject:
		var e events.ProductOutOfStockEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return notification.Notification{}, fmt.Errorf("decode %s: %w", subject, err)
		}
		return notification.Notification{
			ID:        fmt.Sprintf("out-of-stock-%s-v%d", e.ProductID, e.Version),
			Kind:      notification.KindOutOfStock,
			Title:     "Out of stock: " + e.Name,
			CreatedAt: e.OccurredAt,
		}, nil
	default:
		return notification.Notification{}, fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
}

func createdBody(e events.ProductCreatedEvent) string {
	if e.Category == "" {
		return fmt.Sprintf("%s listed at %d GNF", e.Name, e.Price)
	}
	return fmt.Sprintf("%s listed in %s at %d GNF", e.Name, e.Category, e.Price)
}
