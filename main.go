package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"nexus-chat/internal/bus"
	"nexus-chat/internal/cache"
	"nexus-chat/internal/config"
	"nexus-chat/internal/httpapi"
	"nexus-chat/internal/observability"
	"nexus-chat/internal/rabbitmq"
	"nexus-chat/internal/simulation"
	"nexus-chat/internal/telemetry"
	"nexus-chat/internal/token"
	"nexus-chat/internal/ws"
)

const sessionTTL = 24 * time.Hour

func main() {
	cfg := config.Load()

	shutdownTracing, err := observability.SetupTracing(context.Background(), cfg.OTLPEndpoint, "nexus-chat", cfg.Environment)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}

	slot, err := newSlot(cfg)
	if err != nil {
		log.Fatalf("failed to open message slot: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AuditExchange)
	audit := telemetry.NewAuditEmitter(publisher, "nexus.audit.operations", "nexus-chat", cfg.Environment)

	eventBus := bus.New()
	issuer := token.NewIssuer(cfg.AuthSecret, sessionTTL)

	svc, err := simulation.New(eventBus, slot, issuer, simulation.DefaultDelays().Scaled(cfg.DelayScale))
	if err != nil {
		log.Fatalf("failed to start simulation service: %v", err)
	}

	router := httpapi.NewRouter(httpapi.RouterOptions{
		Handler: httpapi.NewHandler(svc, audit),
		Tap:     ws.NewTap(eventBus),
		Issuer:  issuer,
		Audit:   audit,
		Debug:   cfg.DebugRoutes,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("listening on :%s (slot backend %s)", cfg.Port, cfg.SlotBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	if err := svc.Close(); err != nil {
		log.Printf("simulation close: %v", err)
	}
	if err := publisher.Close(); err != nil {
		log.Printf("publisher close: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Printf("tracing shutdown: %v", err)
	}
}

func newSlot(cfg *config.Config) (cache.Slot, error) {
	switch cfg.SlotBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return cache.NewRedisSlot(rdb, cache.SlotKey), nil
	case "postgres":
		return cache.NewPostgresSlot(cfg.PostgresDSN, cache.SlotKey)
	case "memory":
		return cache.NewMemorySlot(), nil
	default:
		return cache.NewFileSlot(cfg.SlotPath), nil
	}
}
