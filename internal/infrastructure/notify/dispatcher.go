// Package notify implements fire-and-forget owner notifications on top of a
// sharded worker pool.
package notify

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/marketsquare/identity-service/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Message is a single owner-facing notification.
type Message struct {
	Template  string
	Recipient string
	Args      []string
}

// Mailer renders and delivers a notification. Implementations own templating
// and transport; the dispatcher owns queueing and failure logging.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher routes notifications to a fixed set of workers using consistent
// hashing on the recipient, guaranteeing per-recipient delivery ordering.
// Notify never blocks: when a shard's buffer is full the message is dropped
// and logged. Delivery failures are logged and counted, never surfaced.
type Dispatcher struct {
	workers []chan Message
	mailer  Mailer
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan Message, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan Message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Notify implements ports.Notifier.
func (d *Dispatcher) Notify(templateKey, recipient string, args ...string) {
	msg := Message{Template: templateKey, Recipient: recipient, Args: args}
	select {
	case d.workers[d.shardIndex(recipient)] <- msg:
	default:
		metrics.NotificationsDroppedTotal.Inc()
		d.log.Warn().
			Str("template", templateKey).
			Str("recipient", recipient).
			Msg("notification dropped, worker queue full")
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := d.mailer.Send(ctx, msg); err != nil {
				metrics.NotificationsFailedTotal.WithLabelValues(msg.Template).Inc()
				d.log.Error().Err(err).
					Str("template", msg.Template).
					Str("recipient", msg.Recipient).
					Int("worker_id", id).
					Msg("notification delivery failed")
			}
		}
	}
}
