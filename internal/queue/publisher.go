package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher forwards QueryServedEvents to a durable RabbitMQ queue.
// Requests hand events over through Enqueue, which never blocks; a single
// goroutine started with Run owns the broker connection.
type Publisher struct {
	url    string
	queue  string
	events chan QueryServedEvent
	log    zerolog.Logger
}

// NewPublisher returns a Publisher buffering up to buffer events.
func NewPublisher(url, queue string, buffer int, log zerolog.Logger) *Publisher {
	return &Publisher{
		url:    url,
		queue:  queue,
		events: make(chan QueryServedEvent, buffer),
		log:    log.With().Str("component", "audit-publisher").Logger(),
	}
}

// Enqueue hands ev to the publishing goroutine.  It returns false and
// drops the event when the buffer is full.
func (p *Publisher) Enqueue(ev QueryServedEvent) bool {
	select {
	case p.events <- ev:
		return true
	default:
		return false
	}
}

// Run publishes buffered events until ctx is cancelled, reconnecting
// with exponential backoff when the broker goes away.  An event whose
// publish fails is logged and dropped.
func (p *Publisher) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			p.log.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			if !sleep(ctx, backoff) {
				return nil
			}
			backoff = min(backoff*2, 30*time.Second)
			continue
		}
		backoff = time.Second

		err = p.publishLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		p.log.Warn().Err(err).Msg("publish loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (p *Publisher) publishLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			return fmt.Errorf("connection closed: %v", amqpErr)
		case ev := <-p.events:
			if err := p.publish(ctx, ch, ev); err != nil {
				p.log.Error().Err(err).Str("request_id", ev.RequestID).Msg("publish failed")
				return err
			}
		}
	}
}

func (p *Publisher) publish(ctx context.Context, ch *amqp.Channel, ev QueryServedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.RequestID,
		Body:         body,
	})
}

// sleep waits for d or until ctx is done.  It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
