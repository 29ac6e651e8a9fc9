package processor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"payment-gateway/models"
)

func testRecord() models.ProcessorRecord {
	return models.ProcessorRecord{
		CorrelationID: uuid.New(),
		Amount:        10.50,
		RequestedAt:   models.Now(),
	}
}

func TestSubmitAccepted(t *testing.T) {
	var gotPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("default", srv.URL, time.Second, 0)
	if out := c.Submit(context.Background(), testRecord()); out != Accepted {
		t.Errorf("expected Accepted, got %v", out)
	}
	if gotPath.Load() != "/payments" {
		t.Errorf("expected POST /payments, got %v", gotPath.Load())
	}
}

func TestSubmitRejectedOnErrorStatus(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusUnprocessableEntity} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		c := NewClient("default", srv.URL, time.Second, 0)
		if out := c.Submit(context.Background(), testRecord()); out != Rejected {
			t.Errorf("status %d: expected Rejected, got %v", code, out)
		}
		srv.Close()
	}
}

func TestSubmitTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient("default", srv.URL, 20*time.Millisecond, 0)
	if out := c.Submit(context.Background(), testRecord()); out != Timeout {
		t.Errorf("expected Timeout, got %v", out)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("default", srv.URL, time.Second, 2)

	for i := 0; i < 2; i++ {
		if out := c.Submit(context.Background(), testRecord()); out != Rejected {
			t.Fatalf("attempt %d: expected Rejected, got %v", i, out)
		}
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 upstream hits, got %d", hits.Load())
	}

	// Circuit now open: attempts fail fast without reaching the processor.
	if out := c.Submit(context.Background(), testRecord()); out != Rejected {
		t.Errorf("expected Rejected with open circuit, got %v", out)
	}
	if hits.Load() != 2 {
		t.Errorf("open circuit still hit upstream: %d hits", hits.Load())
	}
}

func TestBreakerDisabledWithZeroThreshold(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("default", srv.URL, time.Second, 0)
	for i := 0; i < 20; i++ {
		c.Submit(context.Background(), testRecord())
	}
	if hits.Load() != 20 {
		t.Errorf("expected every attempt to reach upstream, got %d/20", hits.Load())
	}
}

func TestCheckHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments/service-health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"failing": true, "minResponseTime": 120}`))
	}))
	defer srv.Close()

	c := NewClient("default", srv.URL, time.Second, 0)
	health, err := c.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("check health: %v", err)
	}
	if !health.Failing || health.MinResponseTime != 120 {
		t.Errorf("unexpected health: %+v", health)
	}
}
