package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// LogFileName is the file, inside the consumer's log directory, that
// served queries are appended to.
const LogFileName = "query.log"

// Consumer reads QueryServedEvents from a durable queue and appends one
// line per event to <dir>/query.log.
type Consumer struct {
	url   string
	queue string
	dir   string
	log   zerolog.Logger
}

// NewConsumer returns a Consumer for queue on the broker at url.
func NewConsumer(url, queue, dir string, log zerolog.Logger) *Consumer {
	return &Consumer{
		url:   url,
		queue: queue,
		dir:   dir,
		log:   log.With().Str("component", "audit-consumer").Logger(),
	}
}

// Run consumes until ctx is cancelled.  It reconnects with exponential
// backoff and rejects, without requeueing, messages it cannot handle so
// a poison message cannot spin the loop.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			if !sleep(ctx, backoff) {
				return nil
			}
			backoff = min(backoff*2, 30*time.Second)
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.log.Warn().Err(err).Msg("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("set QoS failed")
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.handleMessage(d.Body); err != nil {
			c.log.Error().Err(err).Msg("handle message failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *Consumer) handleMessage(body []byte) error {
	var ev QueryServedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.dir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.dir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatEvent(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// formatEvent renders one log line, newline terminated.
func formatEvent(ev QueryServedEvent) string {
	target := ev.Path
	if ev.Query != "" {
		target += "?" + ev.Query
	}
	return fmt.Sprintf("[%s] Query served | request_id=%s | %s %s | route=%q | status=%d | latency=%dms | ip=%s\n",
		ev.ServedAt, ev.RequestID, ev.Method, target, ev.Route, ev.Status, ev.LatencyMS, ev.ClientIP)
}
