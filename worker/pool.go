package worker

import (
	"context"
	"log"

	"payment-gateway/ingress"
	"payment-gateway/models"
)

// Processor runs the full routing attempt for one payment. Implemented by
// router.Router.
type Processor interface {
	Process(ctx context.Context, payment models.PaymentRequest) error
}

// Pool continuously drains the ingress queue while holding no more than
// MaxInFlight concurrently-executing routing attempts. There is no priority
// among queued items: first available capacity, first served.
type Pool struct {
	queue       *ingress.Queue
	proc        Processor
	maxInFlight int
}

func NewPool(queue *ingress.Queue, proc Processor, maxInFlight int) *Pool {
	return &Pool{queue: queue, proc: proc, maxInFlight: maxInFlight}
}

// Run is the scheduling loop. Three events race on every iteration: a new
// item is dequeued (only while spare capacity exists, so the capacity check
// is atomic with the dequeue), an in-flight attempt completes, or shutdown
// is requested. Shutdown stops intake of new work; attempts already running
// finish on their own timeouts. Run returns once in-flight work has drained.
func (p *Pool) Run(ctx context.Context) {
	done := make(chan error)
	inFlight := 0

	for {
		var dequeue <-chan models.PaymentRequest
		if inFlight < p.maxInFlight {
			dequeue = p.queue.Dequeue()
		}

		select {
		case payment, ok := <-dequeue:
			if !ok {
				p.drain(done, inFlight)
				return
			}
			inFlight++
			go func() {
				// Attempts deliberately outlive ctx: shutdown must not
				// cancel a payment already in flight.
				done <- p.proc.Process(context.Background(), payment)
			}()

		case err := <-done:
			inFlight--
			if err != nil {
				log.Printf("worker: %v", err)
			}

		case <-ctx.Done():
			p.drain(done, inFlight)
			log.Println("worker: shut down gracefully")
			return
		}
	}
}

func (p *Pool) drain(done chan error, inFlight int) {
	for ; inFlight > 0; inFlight-- {
		if err := <-done; err != nil {
			log.Printf("worker: %v", err)
		}
	}
}
