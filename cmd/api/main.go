package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgetbook.org/internal/auth"
	"budgetbook.org/internal/config"
	"budgetbook.org/internal/finance"
	"budgetbook.org/internal/httpapi"
	"budgetbook.org/internal/obs"
	"budgetbook.org/internal/store/pg"
	"budgetbook.org/internal/workspace"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	if cfg.UsingInsecureSecret() {
		obs.Emit(map[string]any{
			"ts":    time.Now().UTC().Format(time.RFC3339Nano),
			"level": "warn",
			"msg":   "BUDGETBOOK_JWT_SECRET is unset, using the insecure development secret",
		})
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("missing DSN: set BUDGETBOOK_PG_DSN")
	}

	store, err := pg.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	authSvc, err := auth.NewService(store, tokens, hasher)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	wsSvc, err := workspace.NewService(store)
	if err != nil {
		log.Fatalf("workspace service: %v", err)
	}
	finSvc, err := finance.NewService(store)
	if err != nil {
		log.Fatalf("finance service: %v", err)
	}

	api := httpapi.New(authSvc, wsSvc, finSvc, httpapi.ReadyProbe{DB: store.DB()}, httpapi.Options{
		Version:    version,
		RateBurst:  cfg.RateBurst,
		RatePerSec: cfg.RatePerSec,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting budgetbook-api %s on %s", version, srv.Addr)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
