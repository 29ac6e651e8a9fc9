package ingress

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"payment-gateway/models"
)

func TestUnboundedQueueNeverBlocksProducers(t *testing.T) {
	q := New(0)

	// No consumer running: every enqueue still has to succeed.
	payments := make([]models.PaymentRequest, 10000)
	for i := range payments {
		payments[i] = models.PaymentRequest{CorrelationID: uuid.New(), Amount: float64(i)}
		if err := q.Enqueue(payments[i]); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	q.Close()
	i := 0
	for got := range q.Dequeue() {
		if got.CorrelationID != payments[i].CorrelationID {
			t.Fatalf("item %d out of order", i)
		}
		i++
	}
	if i != len(payments) {
		t.Errorf("expected %d items, got %d", len(payments), i)
	}
}

func TestBoundedQueueReportsFull(t *testing.T) {
	q := New(2)

	if err := q.Enqueue(models.PaymentRequest{}); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if err := q.Enqueue(models.PaymentRequest{}); err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	if err := q.Enqueue(models.PaymentRequest{}); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}

	<-q.Dequeue()
	if err := q.Enqueue(models.PaymentRequest{}); err != nil {
		t.Errorf("enqueue after dequeue: %v", err)
	}
}

func TestEnqueueAfterClose(t *testing.T) {
	for _, capacity := range []int{0, 4} {
		q := New(capacity)
		q.Close()
		if err := q.Enqueue(models.PaymentRequest{}); !errors.Is(err, ErrClosed) {
			t.Errorf("capacity %d: expected ErrClosed, got %v", capacity, err)
		}
	}
}

func TestCloseDrainsRemainingItems(t *testing.T) {
	q := New(0)
	for i := 0; i < 5; i++ {
		if err := q.Enqueue(models.PaymentRequest{Amount: float64(i)}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	q.Close()

	count := 0
	for range q.Dequeue() {
		count++
	}
	if count != 5 {
		t.Errorf("expected 5 drained items, got %d", count)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	q := New(0)
	q.Close()
	q.Close()
}

func TestConcurrentProducersAndConsumers(t *testing.T) {
	q := New(0)

	const producers, perProducer, consumers = 100, 10, 4

	produced := make(chan bool, producers)
	for i := 0; i < producers; i++ {
		go func() {
			for j := 0; j < perProducer; j++ {
				if err := q.Enqueue(models.PaymentRequest{CorrelationID: uuid.New()}); err != nil {
					t.Errorf("enqueue: %v", err)
				}
			}
			produced <- true
		}()
	}

	received := make(chan int, consumers)
	for i := 0; i < consumers; i++ {
		go func() {
			n := 0
			for range q.Dequeue() {
				n++
			}
			received <- n
		}()
	}

	for i := 0; i < producers; i++ {
		select {
		case <-produced:
		case <-time.After(5 * time.Second):
			t.Fatal("producers stalled")
		}
	}
	q.Close()

	total := 0
	for i := 0; i < consumers; i++ {
		select {
		case n := <-received:
			total += n
		case <-time.After(5 * time.Second):
			t.Fatal("consumers stalled")
		}
	}
	if total != producers*perProducer {
		t.Errorf("expected %d items, got %d", producers*perProducer, total)
	}
}
