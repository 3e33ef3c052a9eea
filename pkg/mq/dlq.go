package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const DLQExchangeName = ExchangeName + ".dlq"

// DeclareDLQExchange declares the dead letter exchange.
func DeclareDLQExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(
		DLQExchangeName,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}

// DeclareDLQQueue declares "<queueName>.dlq" and binds it to routingKey on
// the dead letter exchange.
func DeclareDLQQueue(ch *amqp091.Channel, queueName, routingKey string) (amqp091.Queue, error) {
	q, err := ch.QueueDeclare(queueName+".dlq", true, false, false, false, nil)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, routingKey, DLQExchangeName, false, nil); err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to bind DLQ queue: %w", err)
	}
	return q, nil
}

// deadLetter parks a message the handler gave up on, keeping its headers and
// recording why.
func (c *Consumer) deadLetter(ctx context.Context, msg amqp091.Delivery, reason string) error {
	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["x-original-error"] = reason
	headers["x-failed-queue"] = c.queue.Name
	headers["x-failed-at"] = time.Now().UTC().Format(time.RFC3339)

	return c.channel.PublishWithContext(ctx, DLQExchangeName, c.routingKey, false, false,
		amqp091.Publishing{
			ContentType:  msg.ContentType,
			Body:         msg.Body,
			DeliveryMode: amqp091.Persistent,
			Headers:      headers,
		},
	)
}
