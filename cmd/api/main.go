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
	"github.com/torn-watcher/internal/application/credential"
	"github.com/torn-watcher/internal/application/enroll"
	"github.com/torn-watcher/internal/application/market"
	"github.com/torn-watcher/internal/config"
	"github.com/torn-watcher/internal/infrastructure/dynamo"
	jwtinfra "github.com/torn-watcher/internal/infrastructure/jwt"
	"github.com/torn-watcher/internal/infrastructure/keycrypt"
	"github.com/torn-watcher/internal/infrastructure/postgres"
	"github.com/torn-watcher/internal/infrastructure/push"
	s3infra "github.com/torn-watcher/internal/infrastructure/s3"
	"github.com/torn-watcher/internal/infrastructure/torn"
	"github.com/torn-watcher/internal/infrastructure/yata"
	transporthttp "github.com/torn-watcher/internal/transport/http"
	appmiddleware "github.com/torn-watcher/internal/transport/http/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		log.Fatalf("dynamodb client: %v", err)
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)
	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	deviceRepo := dynamo.NewDeviceRepo(dynamoClient, cfg.DynamoTables.Devices)

	tornClient := torn.NewClient(cfg.TornBaseURL, cfg.TornTimeout)

	var creds credential.Source
	var enrollSvc enroll.Service
	switch cfg.CredentialSource {
	case config.CredentialSourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		creds = postgres.NewCredentialStore(pool)
	default:
		cipher, err := keycrypt.New(cfg.KeyEncryptionKey)
		if err != nil {
			log.Fatalf("KEY_ENCRYPTION_KEY: %v", err)
		}
		creds = credential.NewDynamoSource(userRepo, cipher)
		enrollSvc = enroll.NewService(enroll.ServiceDeps{
			UserRepo:   userRepo,
			DeviceRepo: deviceRepo,
			Torn:       tornClient,
			Cipher:     cipher,
		})
	}

	var gateway push.Gateway
	switch cfg.PushProvider {
	case config.PushProviderSNS:
		g, err := push.NewSNSGateway(ctx, cfg)
		if err != nil {
			log.Fatalf("sns gateway: %v", err)
		}
		gateway = g
	default:
		gateway = push.NewExpoGateway(cfg.PushGatewayURL, cfg.PushAccessToken, cfg.TornTimeout)
	}

	// Snapshot archiving is optional.
	var archiver market.Archiver
	if cfg.S3BucketName != "" {
		s3Client, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			log.Fatalf("s3 client: %v", err)
		}
		archiver = s3infra.NewStore(s3Client, cfg.S3BucketName)
	}

	// JWT verification is optional: without a public key the function routes are open.
	var verifier appmiddleware.TokenVerifier
	if p, err := jwtinfra.NewVerifier(cfg); err == nil {
		verifier = p
	} else {
		log.Printf("WARN: JWT verifier not available, function routes are unauthenticated: %v", err)
	}

	deps := &transporthttp.Deps{
		Credentials:      creds,
		UserRepo:         userRepo,
		DeviceRepo:       deviceRepo,
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		ChainTargetRepo:  dynamo.NewChainTargetRepo(dynamoClient, cfg.DynamoTables.ChainTargets),
		StockAlertRepo:   dynamo.NewStockAlertRepo(dynamoClient, cfg.DynamoTables.StockAlerts),
		ItemRepo:         dynamo.NewItemRepo(dynamoClient, cfg.DynamoTables.Items),
		StockRepo:        dynamo.NewStockRepo(dynamoClient, cfg.DynamoTables.Stocks),
		EventRepo:        dynamo.NewEventRepo(dynamoClient, cfg.DynamoTables.Events),
		Torn:             tornClient,
		StockFeed:        yata.NewClient(cfg.StockFeedURL, cfg.TornTimeout),
		Push:             gateway,
		Archiver:         archiver,
	}

	router := transporthttp.NewRouter(cfg, transporthttp.Routes{
		Runners:  transporthttp.Runners(cfg, deps),
		Enroll:   enrollSvc,
		Verifier: verifier,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RunTimeout + cfg.SendTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, credentials=%s, push=%s)", cfg.AppPort, cfg.AppEnv, cfg.CredentialSource, cfg.PushProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout+cfg.SendTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
