package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentRequest is the unit accepted at ingress. It lives in memory only,
// for the duration of one routing attempt.
type PaymentRequest struct {
	CorrelationID uuid.UUID `json:"correlationId"`
	Amount        float64   `json:"amount"`
}

// ProcessorRecord is the durable unit written to the record store once a
// processor accepts a payment. RequestedAt doubles as the store's range key
// and must not change after the record is built.
type ProcessorRecord struct {
	CorrelationID uuid.UUID `json:"correlationId"`
	Amount        float64   `json:"amount"`
	RequestedAt   MicroTime `json:"requestedAt"`
}

// NewProcessorRecord stamps a payment with the current time, rounded to
// microsecond precision so the serialized form and the range key agree.
func NewProcessorRecord(p PaymentRequest) ProcessorRecord {
	return ProcessorRecord{
		CorrelationID: p.CorrelationID,
		Amount:        p.Amount,
		RequestedAt:   Now(),
	}
}

// RequestMetric is a reduction over one record partition. Derived only,
// never persisted.
type RequestMetric struct {
	TotalRequests uint64  `json:"totalRequests"`
	TotalAmount   float64 `json:"totalAmount"`
}

// PaymentsSummary is the response to a summary query. Both fields are always
// populated; an empty partition yields zero metrics, never an absent key.
type PaymentsSummary struct {
	Default  RequestMetric `json:"default"`
	Fallback RequestMetric `json:"fallback"`
}

// ServiceHealth is the body of a processor's service-health endpoint.
type ServiceHealth struct {
	Failing         bool `json:"failing"`
	MinResponseTime int  `json:"minResponseTime"`
}

// MicroTime is a UTC timestamp carried at microsecond precision. Rounding
// happens at construction and on both JSON directions, so a record
// serializes identically no matter how many times it round-trips.
type MicroTime struct {
	time.Time
}

const microLayout = "2006-01-02T15:04:05.000000Z07:00"

// Now returns the current wall-clock time rounded to microseconds.
func Now() MicroTime {
	return MicroTime{time.Now().UTC().Round(time.Microsecond)}
}

// At rounds an arbitrary time to microseconds.
func At(t time.Time) MicroTime {
	return MicroTime{t.UTC().Round(time.Microsecond)}
}

// Score is the sort/range key for the record store: microseconds since epoch.
func (t MicroTime) Score() int64 {
	return t.UnixMicro()
}

func (t MicroTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Round(time.Microsecond).Format(microLayout) + `"`), nil
}

func (t *MicroTime) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("models: invalid timestamp %q", b)
	}
	parsed, err := time.Parse(time.RFC3339Nano, string(b[1:len(b)-1]))
	if err != nil {
		return fmt.Errorf("models: invalid timestamp: %w", err)
	}
	t.Time = parsed.UTC().Round(time.Microsecond)
	return nil
}
