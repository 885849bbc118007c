package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const queueName = "order.events"

// Publisher sends OrderEvents to a durable RabbitMQ queue. A zero-value or
// nil Publisher is a no-op, so the service runs fine without a broker.
type Publisher struct {
	url string
}

// NewPublisher returns nil when url is empty, which disables publishing.
func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url}
}

// Publish declares the queue and sends one persistent JSON message. Every
// error path logs and returns; callers may ignore the error.
func (p *Publisher) Publish(ctx context.Context, ev OrderEvent) error {
	if p == nil {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		slog.Error("notify: dial failed", "err", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		slog.Error("notify: channel open failed", "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		slog.Error("notify: queue declare failed", "err", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		slog.Error("notify: marshal failed", "err", err)
		return err
	}

	err = ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		slog.Error("notify: publish failed", "err", err)
	}
	return err
}
