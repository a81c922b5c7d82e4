package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"cart-engine/internal/usecase/shared"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       Channel
	exchange string
	logger   *slog.Logger
}

// NewRabbitPublisher dials the broker and declares a durable topic exchange.
func NewRabbitPublisher(url, exchange string, logger *slog.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	p := NewRabbitPublisherWithChannel(ch, exchange, logger)
	p.conn = conn
	return p, nil
}

func NewRabbitPublisherWithChannel(ch Channel, exchange string, logger *slog.Logger) *RabbitPublisher {
	return &RabbitPublisher{
		ch:       ch,
		exchange: exchange,
		logger:   logger,
	}
}

func (r *RabbitPublisher) Publish(ctx context.Context, e shared.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", e.Type, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    MessageID(e),
		Timestamp:    e.OccurredAt,
		Type:         string(e.Type),
		Headers: amqp.Table{
			"cart_id": e.CartID.String(),
			"version": e.Version,
		},
		Body: body,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ch.PublishWithContext(ctx, r.exchange, RoutingKey(e), false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Type, err)
	}
	r.logger.DebugContext(ctx, "event published",
		slog.String("event_type", string(e.Type)),
		slog.String("message_id", msg.MessageId))
	return nil
}

func (r *RabbitPublisher) Close() {
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}
