// Package nats implements the broadcast port over NATS JetStream, giving
// external consumers (exporters, chat assistants, dashboards) a durable
// side-channel of notification and audit events.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/rmess/messd/internal/resilience"
)

const streamName = "MESS"

// Publisher publishes mess events to JetStream subjects under "mess.>".
// A circuit breaker stops publish attempts while the broker is unreachable.
type Publisher struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	breaker *resilience.Breaker
}

// Connect dials NATS and ensures the MESS stream exists.
func Connect(ctx context.Context, url string) (*Publisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"mess.>"},
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream stream create: %w", err)
	}

	slog.Info("nats connected", "url", url, "stream", streamName)
	return &Publisher{
		nc:      nc,
		js:      js,
		breaker: resilience.NewBreaker(5, 30*time.Second),
	}, nil
}

// BroadcastEvent implements broadcast.Broadcaster. The event type maps to a
// subject: "notification.sent" becomes "mess.notification.sent". Publish
// failures are logged, not surfaced, matching the best-effort contract.
func (p *Publisher) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("nats payload marshal failed", "type", eventType, "error", err)
		return
	}
	subject := "mess." + strings.ReplaceAll(eventType, "/", ".")
	err = p.breaker.Execute(func() error {
		_, perr := p.js.Publish(ctx, subject, data)
		return perr
	})
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		slog.Debug("nats publish skipped, circuit open", "subject", subject)
	case err != nil:
		slog.Warn("nats publish failed", "subject", subject, "error", err)
	}
}

// Close drains and closes the connection.
func (p *Publisher) Close() error {
	return p.nc.Drain()
}
