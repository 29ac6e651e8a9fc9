package gateway

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"payment-gateway/models"
)

// AuditLog asynchronously persists every accepted payment to Postgres. It is
// an operational trail, not the ledger: the record store remains the source
// of truth for summaries. The hot path stays non-blocking by buffering
// entries on a channel and flushing in batches, by size or by interval,
// whichever comes first. When the buffer is full, entries are dropped.
//
// A nil AuditLog is valid and does nothing, which is how the trail is
// disabled when no DSN is configured.
const (
	auditFlushInterval = 200 * time.Millisecond
	auditBatchSize     = 256
)

type auditEntry struct {
	correlationID uuid.UUID
	amount        float64
	acceptedAt    time.Time
}

type AuditLog struct {
	pool   *pgxpool.Pool
	ch     chan auditEntry
	ctx    context.Context
	cancel context.CancelFunc
}

// NewAuditLog connects to Postgres and ensures the audit table exists.
// Returns nil (audit disabled) when dsn is empty or the connection fails;
// payments flow regardless.
func NewAuditLog(dsn string) *AuditLog {
	if dsn == "" {
		return nil
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Printf("audit: invalid POSTGRES_DSN: %v", err)
		return nil
	}
	cfg.MinConns = 1
	cfg.MaxConns = 4
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		log.Printf("audit: could not connect to Postgres: %v", err)
		return nil
	}
	// No uniqueness constraint: duplicate submissions are recorded as-is.
	if _, err = pool.Exec(context.Background(), `CREATE TABLE IF NOT EXISTS payment_audit (
            correlation_id UUID NOT NULL,
            amount NUMERIC NOT NULL,
            accepted_at TIMESTAMPTZ NOT NULL
        )`); err != nil {
		log.Printf("audit: create table: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &AuditLog{
		pool:   pool,
		ch:     make(chan auditEntry, 4096),
		ctx:    ctx,
		cancel: cancel,
	}
	go a.loop()
	return a
}

// Record queues an accepted payment for the trail. Never blocks.
func (a *AuditLog) Record(payment models.PaymentRequest) {
	if a == nil {
		return
	}
	select {
	case a.ch <- auditEntry{
		correlationID: payment.CorrelationID,
		amount:        payment.Amount,
		acceptedAt:    time.Now().UTC(),
	}:
	default:
		// Buffer full; the trail loses this entry rather than stall intake.
	}
}

// Close flushes what is buffered and releases the pool.
func (a *AuditLog) Close() {
	if a == nil {
		return
	}
	a.cancel()
	a.pool.Close()
}

func (a *AuditLog) loop() {
	ticker := time.NewTicker(auditFlushInterval)
	defer ticker.Stop()

	entries := make([]auditEntry, 0, auditBatchSize)

	flush := func() {
		if len(entries) == 0 {
			return
		}
		batch := &pgx.Batch{}
		for _, e := range entries {
			batch.Queue(
				"INSERT INTO payment_audit (correlation_id, amount, accepted_at) VALUES ($1, $2, $3)",
				e.correlationID, e.amount, e.acceptedAt,
			)
		}
		if err := a.pool.SendBatch(context.Background(), batch).Close(); err != nil {
			log.Printf("audit: flush batch: %v", err)
		}
		entries = entries[:0]
	}

	for {
		select {
		case <-a.ctx.Done():
			flush()
			return
		case e := <-a.ch:
			entries = append(entries, e)
			if len(entries) >= auditBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
