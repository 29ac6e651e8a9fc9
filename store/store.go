package store

import (
	"context"
	"time"

	"payment-gateway/models"
)

// Partition names one of the two record sets. Entries are append-only;
// the only destructive operation is a full purge of both partitions.
type Partition string

const (
	PartitionDefault  Partition = "default"
	PartitionFallback Partition = "fallback"
)

// Store is durable, time-ordered, per-processor record storage with range
// query by time. Implementations must be safe for concurrent use; all
// in-flight attempts share one store.
//
// A zero from or to means an open bound. Bounds are inclusive. A record that
// fails to deserialize fails the whole read: no partial results.
type Store interface {
	// Insert appends a record to the partition, keyed by its RequestedAt
	// score. The payment counts as recorded only once Insert returns nil.
	Insert(ctx context.Context, p Partition, rec models.ProcessorRecord) error

	// Range returns the partition's records with RequestedAt inside
	// [from, to], in score order.
	Range(ctx context.Context, p Partition, from, to time.Time) ([]models.ProcessorRecord, error)

	// RangeBoth reads both partitions over the same window as one atomic
	// snapshot, so a summary never observes one partition ahead of the
	// other.
	RangeBoth(ctx context.Context, from, to time.Time) (def, fb []models.ProcessorRecord, err error)

	// Purge removes every record from both partitions.
	Purge(ctx context.Context) error
}
