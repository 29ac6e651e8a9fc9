package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"

	"payment-gateway/config"
	"payment-gateway/gateway"
	"payment-gateway/health"
	"payment-gateway/ingress"
	"payment-gateway/processor"
	"payment-gateway/router"
	"payment-gateway/store"
	"payment-gateway/worker"
)

func main() {
	cfg := config.Load()

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(opts)
	defer redisClient.Close()

	records := store.NewRedis(redisClient)
	summaries := store.NewAggregator(records)

	defaultProc := processor.NewClient("default", cfg.DefaultProcessorURL, cfg.RequestTimeout, cfg.BreakerThreshold)
	fallbackProc := processor.NewClient("fallback", cfg.FallbackProcessorURL, cfg.RequestTimeout, cfg.BreakerThreshold)

	paymentRouter := router.New(defaultProc, fallbackProc, records, router.Config{
		RetryBudget: cfg.RetryBudget,
		BackoffBase: cfg.BackoffBase,
		BackoffCap:  cfg.BackoffCap,
	})

	queue := ingress.New(cfg.QueueCapacity)
	pool := worker.NewPool(queue, paymentRouter, cfg.MaxInFlight)

	audit := gateway.NewAuditLog(cfg.PostgresDSN)
	server := gateway.NewServer(cfg.Port, queue, summaries, records, audit)
	monitor := health.NewMonitor(redisClient, cfg.HealthCheckInterval, defaultProc, fallbackProc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go monitor.Run(ctx)

	poolDone := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(poolDone)
	}()

	go func() {
		log.Printf("gateway listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("gateway: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutdown requested")

	graceCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := server.Shutdown(graceCtx); err != nil {
		log.Printf("gateway shutdown: %v", err)
	}
	queue.Close()

	select {
	case <-poolDone:
	case <-graceCtx.Done():
		log.Println("grace period elapsed; abandoning in-flight attempts")
	}
	audit.Close()
}
