package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStreams(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeDatasetLoaded delivers every new DatasetLoaded event to handler.
// The consumer is ephemeral so each API instance sees every event.
func (s *Subscriber) SubscribeDatasetLoaded(ctx context.Context, handler func(ctx context.Context, event domain.DatasetLoaded) error) error {
	sub, err := s.js.Subscribe(SubjectDatasetLoaded, func(msg *nats.Msg) {
		if err := dispatch(ctx, msg.Data, handler); err != nil {
			slog.WarnContext(ctx, "dataset event handler failed", "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func dispatch(ctx context.Context, data []byte, handler func(ctx context.Context, event domain.DatasetLoaded) error) error {
	var event domain.DatasetLoaded
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("decode dataset event: %w", err)
	}
	return handler(ctx, event)
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
