package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMicroTimeMarshalRoundsToMicroseconds(t *testing.T) {
	base := time.Date(2025, 7, 14, 12, 30, 45, 123456789, time.UTC)
	mt := At(base)

	b, err := json.Marshal(mt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(b)
	want := `"2025-07-14T12:30:45.123457Z"`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestMicroTimeRoundTrip(t *testing.T) {
	mt := Now()

	b, err := json.Marshal(mt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back MicroTime
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(mt.Time) {
		t.Errorf("round trip changed time: %v -> %v", mt.Time, back.Time)
	}
	if back.Score() != mt.Score() {
		t.Errorf("round trip changed score: %d -> %d", mt.Score(), back.Score())
	}
}

func TestMicroTimeUnmarshalRejectsGarbage(t *testing.T) {
	for _, raw := range []string{`"not-a-time"`, `42`, `""`} {
		var mt MicroTime
		if err := json.Unmarshal([]byte(raw), &mt); err == nil {
			t.Errorf("expected error for %s", raw)
		}
	}
}

func TestMicroTimeScoreIsMicroseconds(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mt := At(base)
	if mt.Score() != base.UnixMicro() {
		t.Errorf("expected score %d, got %d", base.UnixMicro(), mt.Score())
	}
}

func TestProcessorRecordJSONShape(t *testing.T) {
	rec := ProcessorRecord{
		CorrelationID: uuid.MustParse("4a7901b8-7d0d-4e1e-aa19-4dd4faf98a39"),
		Amount:        19.90,
		RequestedAt:   Now(),
	}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, key := range []string{`"correlationId"`, `"amount"`, `"requestedAt"`} {
		if !strings.Contains(s, key) {
			t.Errorf("expected key %s in %s", key, s)
		}
	}
}

func TestNewProcessorRecordStampsNow(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	rec := NewProcessorRecord(PaymentRequest{CorrelationID: uuid.New(), Amount: 5})
	after := time.Now().UTC().Add(time.Second)

	if rec.RequestedAt.Before(before) || rec.RequestedAt.After(after) {
		t.Errorf("requestedAt %v outside [%v, %v]", rec.RequestedAt.Time, before, after)
	}
}
