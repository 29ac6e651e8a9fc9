package ingress

import (
	"errors"
	"sync"

	"payment-gateway/models"
)

var (
	// ErrFull is returned by a bounded queue whose buffer is exhausted.
	ErrFull = errors.New("ingress: queue full")
	// ErrClosed is returned once intake has been shut down.
	ErrClosed = errors.New("ingress: queue closed")
)

// Queue sits between the request-accepting boundary and the worker pool so
// acceptance latency never waits on processor-call latency. Any number of
// producers may enqueue and any number of consumers may receive from
// Dequeue.
//
// With capacity 0 the queue is unbounded: Enqueue always succeeds and memory
// grows with backlog. With a positive capacity, Enqueue reports ErrFull
// instead of blocking, and the caller decides how to shed the load.
type Queue struct {
	in  chan models.PaymentRequest
	out chan models.PaymentRequest

	mu      sync.RWMutex
	closed  bool
	bounded bool
}

func New(capacity int) *Queue {
	if capacity > 0 {
		ch := make(chan models.PaymentRequest, capacity)
		return &Queue{in: ch, out: ch, bounded: true}
	}
	q := &Queue{
		in:  make(chan models.PaymentRequest),
		out: make(chan models.PaymentRequest),
	}
	go q.pump()
	return q
}

// pump shuttles items from in to out through an elastic buffer, giving the
// unbounded queue its never-blocking enqueue.
func (q *Queue) pump() {
	var buf []models.PaymentRequest
	in := q.in
	for in != nil || len(buf) > 0 {
		var out chan models.PaymentRequest
		var head models.PaymentRequest
		if len(buf) > 0 {
			out = q.out
			head = buf[0]
		}
		select {
		case req, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			buf = append(buf, req)
		case out <- head:
			buf = buf[1:]
		}
	}
	close(q.out)
}

// Enqueue hands a payment to the queue. The payment is owned by the queue
// from this point until a consumer receives it.
func (q *Queue) Enqueue(req models.PaymentRequest) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	if q.bounded {
		select {
		case q.in <- req:
			return nil
		default:
			return ErrFull
		}
	}
	q.in <- req
	return nil
}

// Dequeue is the consumer side. The channel closes once the queue has been
// closed and fully drained.
func (q *Queue) Dequeue() <-chan models.PaymentRequest {
	return q.out
}

// Close stops intake. Items already queued remain receivable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.in)
}
