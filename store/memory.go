package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"payment-gateway/models"
)

// Memory is an in-process Store with the same semantics as the Redis
// implementation. It backs unit tests and local development without a Redis
// server; nothing about it is durable.
type Memory struct {
	mu         sync.RWMutex
	partitions map[Partition][]models.ProcessorRecord
}

func NewMemory() *Memory {
	return &Memory{
		partitions: map[Partition][]models.ProcessorRecord{
			PartitionDefault:  {},
			PartitionFallback: {},
		},
	}
}

func (s *Memory) Insert(_ context.Context, p Partition, rec models.ProcessorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partitions[p] = append(s.partitions[p], rec)
	return nil
}

func (s *Memory) Range(_ context.Context, p Partition, from, to time.Time) ([]models.ProcessorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rangeLocked(p, from, to), nil
}

func (s *Memory) RangeBoth(_ context.Context, from, to time.Time) ([]models.ProcessorRecord, []models.ProcessorRecord, error) {
	// One lock acquisition covers both partitions, same snapshot guarantee
	// as the pipelined Redis read.
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rangeLocked(PartitionDefault, from, to), s.rangeLocked(PartitionFallback, from, to), nil
}

func (s *Memory) Purge(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partitions[PartitionDefault] = s.partitions[PartitionDefault][:0]
	s.partitions[PartitionFallback] = s.partitions[PartitionFallback][:0]
	return nil
}

func (s *Memory) rangeLocked(p Partition, from, to time.Time) []models.ProcessorRecord {
	var min, max int64 = -1 << 62, 1<<62 - 1
	if !from.IsZero() {
		min = models.At(from).Score()
	}
	if !to.IsZero() {
		max = models.At(to).Score()
	}
	matched := make([]models.ProcessorRecord, 0, len(s.partitions[p]))
	for _, rec := range s.partitions[p] {
		score := rec.RequestedAt.Score()
		if score >= min && score <= max {
			matched = append(matched, rec)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].RequestedAt.Score() < matched[j].RequestedAt.Score()
	})
	return matched
}
