package messaging

import (
	"context"
	"log/slog"
	"sync"

	"cart-engine/internal/usecase/shared"
)

// LogPublisher writes events to the structured log. Used when no broker is
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e shared.Event) error {
	p.logger.InfoContext(ctx, "cart event",
		slog.String("event_id", e.ID.String()),
		slog.String("event_type", string(e.Type)),
		slog.String("cart_id", e.CartID.String()),
		slog.Int64("version", e.Version),
		slog.Any("attributes", e.Attributes))
	return nil
}

// RecordingPublisher keeps every published event in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(_ context.Context, e shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *RecordingPublisher) Events() []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]shared.Event(nil), p.events...)
}

// Types lists the recorded event types in publish order.
func (p *RecordingPublisher) Types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
