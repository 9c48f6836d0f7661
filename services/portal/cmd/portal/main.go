package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"givelife/internal/util"
	"givelife/pkg/apiclient"
	"givelife/pkg/session"
	"givelife/services/portal/internal/app"
	"givelife/services/portal/internal/config"
	"givelife/services/portal/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseDuration("sessionTTL", cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}
	apiTimeout, err := config.ParseDuration("apiTimeout", cfg.APITimeout)
	if err != nil {
		log.Fatalf("failed to parse api timeout: %v", err)
	}
	sameSite, err := config.ParseSameSite(cfg.SessionCookieSameSite)
	if err != nil {
		log.Fatalf("failed to parse cookie SameSite: %v", err)
	}
	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatalf("failed to reach redis: %v", err)
	}
	cancel()

	sessions, err := session.NewRedisSessions(rdb, "givelife:portal:session", sessionTTL)
	if err != nil {
		log.Fatalf("failed to init sessions: %v", err)
	}
	api, err := apiclient.New(apiclient.Config{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    apiTimeout,
		RetryCount: cfg.APIRetryCount,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("failed to init api client: %v", err)
	}
	appCore, err := app.New(app.Config{
		API:                  api,
		Sessions:             sessions,
		AggregateConcurrency: cfg.AggregateConcurrency,
		DefaultPageSize:      cfg.DefaultPageSize,
		Logger:               logger,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                        appCore,
		Redis:                      rdb,
		CookieName:                 cfg.SessionCookieName,
		CookieSecure:               cfg.SessionCookieSecure,
		CookieSameSite:             sameSite,
		SessionTTL:                 sessionTTL,
		AllowedOrigins:             cfg.AllowedOrigins,
		TrustedProxies:             trusted,
		LoginRateLimitPerMinute:    cfg.LoginRateLimitPerMinute,
		RegisterRateLimitPerMinute: cfg.RegisterRateLimitPerMinute,
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "err", err)
		}
	}()

	logger.Info("portal listening", "addr", addr, "api", cfg.APIBaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
	}
}
