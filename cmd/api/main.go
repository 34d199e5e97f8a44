package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lostfound-notify/internal/config"
	"github.com/lostfound-notify/internal/infrastructure/dynamo"
	jwtinfra "github.com/lostfound-notify/internal/infrastructure/jwt"
	"github.com/lostfound-notify/internal/infrastructure/sns"
	"github.com/lostfound-notify/internal/infrastructure/webpush"
	"github.com/lostfound-notify/internal/observability/metrics"
	transporthttp "github.com/lostfound-notify/internal/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	awsCfg, err := cfg.AWS(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatalf("aws: %v", err)
	}
	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	deps := &transporthttp.Deps{
		Notifications: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		Subscriptions: dynamo.NewSubscriptionRepo(dynamoClient, cfg.DynamoTables.PushSubscriptions),
	}

	// Web Push sender (optional, missing VAPID keys means in-app records only).
	pushClient := &http.Client{Timeout: cfg.Push.SendTimeout}
	if sender, err := webpush.NewSender(cfg.Push, pushClient); err == nil {
		deps.Sender = sender
	} else {
		log.Printf("WARN: push disabled: %v", err)
	}

	// SNS dispatch summaries (optional).
	if publisher, err := sns.NewPublisher(ctx, cfg); err == nil {
		deps.Publisher = publisher
	} else {
		log.Printf("WARN: SNS publisher not available: %v", err)
	}

	// JWT verifier (optional, user routes answer 401 without it).
	if v, err := jwtinfra.NewVerifierFromFile(cfg.JWTPublicKeyPath); err == nil {
		deps.Verifier = v
	} else {
		log.Printf("WARN: JWT verifier not available: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dispatchMetrics, err := metrics.NewDispatchMetrics(registry)
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}
	deps.Metrics = dispatchMetrics
	deps.Gatherer = registry

	router := transporthttp.NewRouter(ctx, cfg, deps)

	// The trigger's push stage is capped by DispatchBudget, so the response
	// always fits inside WriteTimeout.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + cfg.Push.DispatchBudget,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
		os.Exit(1)
	}
	log.Println("Server stopped")
}
