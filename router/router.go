package router

import (
	"context"
	"fmt"
	"time"

	"payment-gateway/models"
	"payment-gateway/processor"
	"payment-gateway/store"
)

// Config tunes the retry loop against the default processor.
type Config struct {
	// RetryBudget is how many times a timed-out default call is retried
	// before diverting to the fallback.
	RetryBudget int
	// BackoffBase seeds the Fibonacci delay sequence between retries.
	BackoffBase time.Duration
	// BackoffCap bounds any single delay.
	BackoffCap time.Duration
}

// Router turns one accepted payment into a durable record in the right
// partition, or gives up without writing anything. The submitter was already
// acknowledged at ingress, so failures here are observable only in logs.
type Router struct {
	defaultProc  *processor.Client
	fallbackProc *processor.Client
	records      store.Store
	cfg          Config
}

func New(defaultProc, fallbackProc *processor.Client, records store.Store, cfg Config) *Router {
	return &Router{
		defaultProc:  defaultProc,
		fallbackProc: fallbackProc,
		records:      records,
		cfg:          cfg,
	}
}

// Process runs the full routing attempt for one payment.
//
// The default processor is retried on timeouts only: a definitive rejection
// arrives fast and repeating it wastes latency budget better spent on the
// fallback. The fallback gets a single shot, trading completeness for a
// bounded worst case. On double failure the payment is dropped with no
// record.
func (r *Router) Process(ctx context.Context, payment models.PaymentRequest) error {
	rec := models.NewProcessorRecord(payment)

	if r.tryDefault(ctx, rec) == processor.Accepted {
		return r.record(ctx, store.PartitionDefault, rec)
	}

	if r.fallbackProc.Submit(ctx, rec) == processor.Accepted {
		return r.record(ctx, store.PartitionFallback, rec)
	}

	return fmt.Errorf("router: payment %s dropped, both processors failed", rec.CorrelationID)
}

// tryDefault drives the bounded retry loop against the default processor.
// Delays grow along the Fibonacci sequence from BackoffBase, capped at
// BackoffCap.
func (r *Router) tryDefault(ctx context.Context, rec models.ProcessorRecord) processor.Outcome {
	delay, next := r.cfg.BackoffBase, r.cfg.BackoffBase
	for attempt := 0; ; attempt++ {
		outcome := r.defaultProc.Submit(ctx, rec)
		if outcome != processor.Timeout || attempt >= r.cfg.RetryBudget {
			return outcome
		}
		wait := delay
		if wait > r.cfg.BackoffCap {
			wait = r.cfg.BackoffCap
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return processor.Timeout
		}
		delay, next = next, delay+next
	}
}

func (r *Router) record(ctx context.Context, p store.Partition, rec models.ProcessorRecord) error {
	if err := r.records.Insert(ctx, p, rec); err != nil {
		// The processor has the money and the ledger does not have the
		// record. Accepted inconsistency window; surfaced in logs, not
		// auto-reconciled.
		return fmt.Errorf("router: payment %s accepted by %s but not recorded: %w", rec.CorrelationID, p, err)
	}
	return nil
}
