package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"grantpilot/pkg/otel"
	"grantpilot/pkg/trace"
)

// MessageHandler processes one delivery body. A returned error requeues it
// unless it wraps ErrDrop.
type MessageHandler func(ctx context.Context, data json.RawMessage) error

// ErrDrop tells the consumer to move a message it will never be able to
// handle to the dead letter queue.
var ErrDrop = errors.New("drop message")

type Consumer struct {
	channel    *amqp091.Channel
	queue      amqp091.Queue
	routingKey string
	handler    MessageHandler
	conn       *amqp091.Connection
	logger     *zap.Logger
}

// NewConsumer creates a consumer for a specific routing key.
func NewConsumer(url, queueName, routingKey string, logger *zap.Logger) (*Consumer, error) {
	conn, ch, err := openChannel(url, "grantpilot-consumer-"+queueName)
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, routingKey, ExchangeName, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	if err := DeclareDLQExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}
	if _, err := DeclareDLQQueue(ch, queueName, routingKey); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("Consumer initialized",
		zap.String("routing_key", routingKey),
		zap.String("queue", queueName),
		zap.String("exchange", ExchangeName),
	)

	return &Consumer{
		conn:       conn,
		channel:    ch,
		queue:      q,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

// IsConnected reports whether the underlying connection is still open.
func (c *Consumer) IsConnected() bool {
	return c.conn != nil && !c.conn.IsClosed()
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// StartConsuming blocks until ctx is done or the delivery channel closes.
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	deliveries, err := c.channel.Consume(c.queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started consuming messages",
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, msg)
		}
	}
}

// every delivery is acked or nacked exactly once
func (c *Consumer) handle(parent context.Context, msg amqp091.Delivery) {
	ctx, span := otel.MQConsumeSpan(parent, msg.Headers, c.routingKey, c.queue.Name)
	defer span.End()
	if traceID, ok := msg.Headers["trace_id"].(string); ok && traceID != "" {
		ctx = trace.WithContext(ctx, traceID)
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Handler panic recovered",
				zap.String("routing_key", c.routingKey),
				zap.Any("panic", r),
			)
			c.drop(ctx, msg, fmt.Sprintf("panic: %v", r))
		}
	}()

	err := c.handler(ctx, msg.Body)
	otel.RecordError(span, err)
	switch {
	case err == nil:
		if err := msg.Ack(false); err != nil {
			c.logger.Error("Failed to ack message", zap.String("routing_key", c.routingKey), zap.Error(err))
		}
	case errors.Is(err, ErrDrop):
		c.logger.Warn("Dropping message",
			zap.String("routing_key", c.routingKey),
			zap.Error(err),
		)
		c.drop(ctx, msg, err.Error())
	default:
		c.logger.Error("Handler error, requeueing",
			zap.String("routing_key", c.routingKey),
			zap.String("queue", c.queue.Name),
			zap.Error(err),
		)
		if err := msg.Nack(false, true); err != nil {
			c.logger.Error("Failed to nack message", zap.String("routing_key", c.routingKey), zap.Error(err))
		}
	}
}

// drop dead-letters msg and acks it. If the dead letter publish fails the
// message is nacked without requeue so the broker discards it.
func (c *Consumer) drop(ctx context.Context, msg amqp091.Delivery, reason string) {
	if err := c.deadLetter(ctx, msg, reason); err != nil {
		c.logger.Error("Failed to dead-letter message",
			zap.String("routing_key", c.routingKey),
			zap.Error(err),
		)
		if err := msg.Nack(false, false); err != nil {
			c.logger.Error("Failed to nack message", zap.Error(err))
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		c.logger.Error("Failed to ack dropped message", zap.Error(err))
	}
}
