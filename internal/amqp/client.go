// Package amqp connects the local write path to the sync worker. Messages
// are persistent JSON on a durable queue bound to a direct exchange; a small
// circuit breaker keeps a flapping broker from stalling request handling.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures = 5
	openTimeout = 60 * time.Second
)

type Client struct {
	url          string
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string

	failureCount int64
	state        int32
	mu           sync.Mutex
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		url:          url,
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key mirrors the queue name on a direct exchange
	err = c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishTransactionSync queues a locally saved transaction for replay to
// the remote store.
func (c *Client) PublishTransactionSync(ctx context.Context, id int64) error {
	msg := NewTransactionSyncMessage(id)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published transaction sync message",
		"id", id,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// PublishTransactionDelete queues the removal of a transaction from the
// remote store.
func (c *Client) PublishTransactionDelete(ctx context.Context, msg *TransactionDeleteMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published transaction delete message",
		"id", msg.ID,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

func (c *Client) publish(ctx context.Context, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("publish message: circuit breaker is open")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()
	return nil
}

// Handler receives decoded queue messages. Exactly one of the arguments is
// non-nil per call.
type Handler interface {
	HandleSyncMessage(ctx context.Context, msg *TransactionSyncMessage) error
	HandleDeleteMessage(ctx context.Context, msg *TransactionDeleteMessage) error
}

// Consume delivers queue messages to handler until ctx is done. Handler
// errors nack with requeue; undecodable payloads are dropped.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack off, we ack manually
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming sync messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			if err := c.dispatch(ctx, delivery.Body, handler); err != nil {
				slog.ErrorContext(ctx, "Failed to handle message", "error", err)
				delivery.Nack(false, !isMalformed(err))
				continue
			}
			delivery.Ack(false)
		}
	}
}

// ConsumeWithRetry runs Consume and redials the broker on connection
// failures. Retry delays grow exponentially and reset after a successful
// reconnect.
func (c *Client) ConsumeWithRetry(ctx context.Context, handler Handler) error {
	attempt := 0
	for {
		err := c.Consume(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnectionError(err) {
			return err
		}

		delay := exponentialBackoff(attempt)
		attempt++
		slog.WarnContext(ctx, "Lost broker connection, retrying",
			"error", err,
			"attempt", attempt,
			"delay", delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		if err := c.reconnect(); err != nil {
			slog.ErrorContext(ctx, "Reconnect failed", "error", err, "attempt", attempt)
			continue
		}
		attempt = 0
	}
}

func (c *Client) reconnect() error {
	c.Close()

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.conn = conn
	c.channel = channel
	if err := c.setup(); err != nil {
		c.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	return nil
}

type malformedError struct{ err error }

func (e malformedError) Error() string { return e.err.Error() }
func (e malformedError) Unwrap() error { return e.err }

func isMalformed(err error) bool {
	_, ok := err.(malformedError)
	return ok
}

func (c *Client) dispatch(ctx context.Context, body []byte, handler Handler) error {
	var peek struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(body, &peek); err != nil {
		return malformedError{fmt.Errorf("unmarshal message: %w", err)}
	}

	switch peek.Kind {
	case KindUpsert:
		msg, err := TransactionSyncMessageFromJSON(body)
		if err != nil {
			return malformedError{fmt.Errorf("unmarshal sync message: %w", err)}
		}
		return handler.HandleSyncMessage(ctx, msg)
	case KindDelete:
		msg, err := TransactionDeleteMessageFromJSON(body)
		if err != nil {
			return malformedError{fmt.Errorf("unmarshal delete message: %w", err)}
		}
		return handler.HandleDeleteMessage(ctx, msg)
	default:
		return malformedError{fmt.Errorf("unknown message kind %q", peek.Kind)}
	}
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateClosed, StateHalfOpen:
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.StoreInt32(&c.state, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// exponentialBackoff returns the reconnect delay for a retry attempt,
// capped at 30 seconds.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := time.Second << uint(attempt)
	if d > 30*time.Second || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{
		"connection refused",
		"connection closed",
		"connection reset",
		"EOF",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
