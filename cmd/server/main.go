package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"littleforest/internal/app"
	"littleforest/internal/bootstrap"
	"littleforest/internal/config"
	"littleforest/internal/metrics"
	"littleforest/internal/ratelimit"
	"littleforest/internal/security"
	"littleforest/internal/server"
	"littleforest/internal/util"
	"littleforest/pkg/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	tokenTTL, err := config.ParseTokenTTL(cfg.AdminTokenTTL)
	if err != nil {
		log.Fatalf("failed to parse admin token TTL: %v", err)
	}
	leeway, err := config.ParseJWTLeeway(cfg.JWTLeeway)
	if err != nil {
		log.Fatalf("failed to parse JWT leeway: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	st, err := bootstrap.OpenStore(cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	if missing := bootstrap.ProbeTables(ctx, st); len(missing) > 0 {
		logger.Warn("tables unreachable at startup", "tables", missing)
	}

	rdb, err := bootstrap.OpenRedis(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	var (
		revoker store.TokenRevoker
		limiter ratelimit.Limiter
		alerter *security.AuditAlerter
	)
	if rdb != nil {
		defer rdb.Close()
		revoker = store.NewRedisTokenRevoker(rdb, "")
		l, err := ratelimit.NewRedisFixedWindowLimiter(rdb, "", cfg.LoginRateLimitPerMinute, time.Minute)
		if err != nil {
			log.Fatalf("failed to init login limiter: %v", err)
		}
		limiter = l
		alerter = security.NewRedisAuditAlerter(rdb, "")
	} else {
		logger.Warn("redis not configured; revocations and rate limits are per process")
		revoker = store.NewMemoryTokenRevoker()
		l, err := ratelimit.NewMemoryLimiter(cfg.LoginRateLimitPerMinute, time.Minute)
		if err != nil {
			log.Fatalf("failed to init login limiter: %v", err)
		}
		limiter = l
		alerter = security.NewMemoryAuditAlerter()
	}

	sessions, err := store.NewJWTSessionStore(cfg.AdminTokenSecret, tokenTTL, revoker, store.JWTOptions{
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Leeway:   leeway,
	})
	if err != nil {
		log.Fatalf("failed to init sessions: %v", err)
	}

	appCore, err := app.New(app.Config{
		Store:       st,
		Sessions:    sessions,
		AdminEmails: cfg.AdminEmails,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("invalid trusted proxy list: %v", err)
	}
	if !cfg.AdminTokenRequired() {
		logger.Warn("admin token enforcement disabled; privileged routes are open")
	}

	httpServer, err := server.New(server.Config{
		App:                appCore,
		Metrics:            metrics.New(),
		LoginLimiter:       limiter,
		Alerter:            alerter,
		TrustedProxies:     trusted,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RequireAdminToken:  cfg.AdminTokenRequired(),
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		slog.Info("server listening", "addr", addr, "backend", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
