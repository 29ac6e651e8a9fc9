package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"

	"payment-gateway/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Redis backs the record store with one sorted set per partition: member =
// serialized record, score = RequestedAt in microseconds since epoch. The
// client multiplexes connections, so a single Redis value serves every
// in-flight attempt.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func recordKey(p Partition) string {
	return "payments:" + string(p)
}

func (s *Redis) Insert(ctx context.Context, p Partition, rec models.ProcessorRecord) error {
	member, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: encode record: %w", err)
	}
	err = s.client.ZAdd(ctx, recordKey(p), &redis.Z{
		Score:  float64(rec.RequestedAt.Score()),
		Member: string(member),
	}).Err()
	if err != nil {
		return fmt.Errorf("store: insert into %s: %w", p, err)
	}
	return nil
}

func (s *Redis) Range(ctx context.Context, p Partition, from, to time.Time) ([]models.ProcessorRecord, error) {
	vals, err := s.client.ZRangeByScore(ctx, recordKey(p), rangeBy(from, to)).Result()
	if err != nil {
		return nil, fmt.Errorf("store: range %s: %w", p, err)
	}
	return decodeAll(vals)
}

func (s *Redis) RangeBoth(ctx context.Context, from, to time.Time) ([]models.ProcessorRecord, []models.ProcessorRecord, error) {
	// MULTI/EXEC so both partitions come from one consistent snapshot.
	pipe := s.client.TxPipeline()
	defCmd := pipe.ZRangeByScore(ctx, recordKey(PartitionDefault), rangeBy(from, to))
	fbCmd := pipe.ZRangeByScore(ctx, recordKey(PartitionFallback), rangeBy(from, to))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, nil, fmt.Errorf("store: range both partitions: %w", err)
	}
	def, err := decodeAll(defCmd.Val())
	if err != nil {
		return nil, nil, err
	}
	fb, err := decodeAll(fbCmd.Val())
	if err != nil {
		return nil, nil, err
	}
	return def, fb, nil
}

func (s *Redis) Purge(ctx context.Context) error {
	if err := s.client.Del(ctx, recordKey(PartitionDefault), recordKey(PartitionFallback)).Err(); err != nil {
		return fmt.Errorf("store: purge: %w", err)
	}
	return nil
}

func rangeBy(from, to time.Time) *redis.ZRangeBy {
	zr := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if !from.IsZero() {
		zr.Min = strconv.FormatInt(models.At(from).Score(), 10)
	}
	if !to.IsZero() {
		zr.Max = strconv.FormatInt(models.At(to).Score(), 10)
	}
	return zr
}

func decodeAll(vals []string) ([]models.ProcessorRecord, error) {
	recs := make([]models.ProcessorRecord, 0, len(vals))
	for _, v := range vals {
		var rec models.ProcessorRecord
		if err := json.UnmarshalFromString(v, &rec); err != nil {
			return nil, fmt.Errorf("store: decode record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
