package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sony/gobreaker"

	"payment-gateway/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Outcome classifies one submission attempt against a processor.
type Outcome int

const (
	// Accepted means the processor took the payment (2xx).
	Accepted Outcome = iota
	// Timeout means the call exceeded its deadline. Timeouts are the only
	// outcome worth retrying on the same processor.
	Timeout
	// Rejected covers every definitive failure: non-2xx status, transport
	// errors, an open circuit. Never retried on the same processor.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Timeout:
		return "timeout"
	default:
		return "rejected"
	}
}

// StatusError is a non-2xx reply from a processor.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("processor returned status %d", e.Code)
}

// Client is a thin caller to one downstream payment processor. It issues a
// single request with a timeout and classifies the result; routing decisions
// live with the caller. Safe for concurrent use by any number of in-flight
// attempts.
type Client struct {
	name       string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient builds a client for the processor at baseURL. Each call gets its
// own timeout. breakerThreshold is the number of consecutive failures that
// opens the circuit; 0 disables the breaker.
func NewClient(name, baseURL string, timeout time.Duration, breakerThreshold uint32) *Client {
	c := &Client{
		name:    name,
		baseURL: baseURL,
		timeout: timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        200,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return breakerThreshold > 0 && counts.ConsecutiveFailures >= breakerThreshold
		},
	})
	return c
}

// Name identifies the processor in logs and health keys.
func (c *Client) Name() string {
	return c.name
}

// Submit posts a record to the processor's payments endpoint. An open
// circuit counts as Rejected so the caller diverts without waiting out the
// timeout.
func (c *Client) Submit(ctx context.Context, rec models.ProcessorRecord) Outcome {
	body, err := json.Marshal(rec)
	if err != nil {
		return Rejected
	}
	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.post(ctx, body)
	})
	switch {
	case err == nil:
		return Accepted
	case isTimeout(err):
		return Timeout
	default:
		return Rejected
	}
}

func (c *Client) post(ctx context.Context, body []byte) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// CheckHealth probes the processor's service-health endpoint.
func (c *Client) CheckHealth(ctx context.Context) (models.ServiceHealth, error) {
	callCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.baseURL+"/payments/service-health", nil)
	if err != nil {
		return models.ServiceHealth{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.ServiceHealth{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ServiceHealth{}, &StatusError{Code: resp.StatusCode}
	}
	var health models.ServiceHealth
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return models.ServiceHealth{}, fmt.Errorf("decode service health: %w", err)
	}
	return health, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
