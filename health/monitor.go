package health

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"payment-gateway/processor"
)

// Monitor periodically probes each processor's service-health endpoint and
// caches the result in Redis for operational visibility. Routing never
// consults these keys; the router's own retry/fallback logic is the only
// admission path.
type Monitor struct {
	redis    *redis.Client
	interval time.Duration
	clients  []*processor.Client
}

func NewMonitor(redisClient *redis.Client, interval time.Duration, clients ...*processor.Client) *Monitor {
	return &Monitor{redis: redisClient, interval: interval, clients: clients}
}

// Run probes on the configured interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// Probe checks every processor once.
func (m *Monitor) Probe(ctx context.Context) {
	for _, c := range m.clients {
		healthy := false
		health, err := c.CheckHealth(ctx)
		if err != nil {
			log.Printf("health: %s check failed: %v", c.Name(), err)
		} else {
			healthy = !health.Failing
			if err := m.redis.Set(ctx, "health:"+c.Name()+":min_response_time", health.MinResponseTime, 0).Err(); err != nil {
				log.Printf("health: cache %s response time: %v", c.Name(), err)
			}
		}
		if err := m.redis.Set(ctx, "health:"+c.Name(), healthy, 0).Err(); err != nil {
			log.Printf("health: cache %s status: %v", c.Name(), err)
		}
	}
}
