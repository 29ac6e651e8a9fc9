package store

import (
	"context"
	"time"

	"payment-gateway/models"
)

// Aggregator reduces both record partitions into per-processor totals over
// an optional time window.
type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Summarize reads both partitions as one snapshot and folds each into
// count/amount totals. Zero bounds mean an open range. Any read or decode
// error fails the whole summary; there are no partial results.
func (a *Aggregator) Summarize(ctx context.Context, from, to time.Time) (models.PaymentsSummary, error) {
	def, fb, err := a.store.RangeBoth(ctx, from, to)
	if err != nil {
		return models.PaymentsSummary{}, err
	}
	return models.PaymentsSummary{
		Default:  reduce(def),
		Fallback: reduce(fb),
	}, nil
}

func reduce(recs []models.ProcessorRecord) models.RequestMetric {
	var m models.RequestMetric
	for _, rec := range recs {
		m.TotalRequests++
		m.TotalAmount += rec.Amount
	}
	return m
}
