package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/99minutos/parcel-portal/internal/core/domain"
	"github.com/99minutos/parcel-portal/internal/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

var ErrQueueFull = errors.New("outbox: queue full")

// Mailer delivers one message.
type Mailer interface {
	Send(ctx context.Context, msg domain.Email) error
}

// Dispatcher routes outgoing e-mail to a fixed set of workers using
// consistent hashing on the recipient, so messages to one address keep their
// order.
type Dispatcher struct {
	workers []chan domain.Email
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
		workers: make([]chan domain.Email, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Email, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands msg to the worker responsible for its recipient. It never
// blocks: a full worker channel yields ErrQueueFull.
func (d *Dispatcher) Enqueue(msg domain.Email) error {
	idx := d.shardIndex(msg.To)
	select {
	case d.workers[idx] <- msg:
		metrics.OutboxQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		return ErrQueueFull
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Email) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.OutboxQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.mailer.Send(ctx, msg); err != nil {
				metrics.VerificationEmailsTotal.WithLabelValues("send_failed").Inc()
				d.log.Error().Err(err).
					Str("to", msg.To).
					Int("worker_id", id).
					Msg("email delivery failed")
				continue
			}
			metrics.VerificationEmailsTotal.WithLabelValues("sent").Inc()
		}
	}
}
