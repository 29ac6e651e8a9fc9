package gateway

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"payment-gateway/ingress"
	"payment-gateway/models"
	"payment-gateway/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server is the HTTP boundary. Payment submissions are acknowledged the
// moment they are queued; the outcome of routing is never reported back to
// the submitter.
type Server struct {
	queue     *ingress.Queue
	summaries *store.Aggregator
	records   store.Store
	audit     *AuditLog
	srv       *http.Server
}

func NewServer(port string, queue *ingress.Queue, summaries *store.Aggregator, records store.Store, audit *AuditLog) *Server {
	s := &Server{
		queue:     queue,
		summaries: summaries,
		records:   records,
		audit:     audit,
	}
	s.srv = &http.Server{
		Addr:    ":" + port,
		Handler: s.Handler(),
	}
	return s
}

// Handler builds the route table. Exposed separately so tests can drive the
// server without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/payments", s.handlePayments)
	mux.HandleFunc("/payments-summary", s.handlePaymentsSummary)
	mux.HandleFunc("/purge-payments", s.handlePurgePayments)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return mux
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops the listener and waits for in-progress handlers.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handlePayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var payment models.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&payment); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.queue.Enqueue(payment); err != nil {
		if errors.Is(err, ingress.ErrFull) || errors.Is(err, ingress.ErrClosed) {
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.audit.Record(payment)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handlePaymentsSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	from, ok := parseTimeParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := parseTimeParam(w, r, "to")
	if !ok {
		return
	}

	summary, err := s.summaries.Summarize(r.Context(), from, to)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		// The body stays fully populated with zero metrics; clients never
		// see a partial summary.
		log.Printf("gateway: summary failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.PaymentsSummary{})
		return
	}
	json.NewEncoder(w).Encode(summary)
}

func (s *Server) handlePurgePayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.records.Purge(r.Context()); err != nil {
		log.Printf("gateway: purge failed: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// parseTimeParam reads an optional RFC3339 query parameter. A missing
// parameter is a zero time, meaning an open bound.
func parseTimeParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		http.Error(w, "Invalid "+name+" timestamp", http.StatusBadRequest)
		return time.Time{}, false
	}
	return t, true
}
