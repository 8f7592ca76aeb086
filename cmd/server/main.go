package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/avelesov/urlwords/internal/analyzer"
	"github.com/avelesov/urlwords/internal/config"
	"github.com/avelesov/urlwords/internal/events"
	"github.com/avelesov/urlwords/internal/httpserver"
	"github.com/avelesov/urlwords/internal/logging"
	"github.com/avelesov/urlwords/internal/middleware"
	"github.com/avelesov/urlwords/internal/repo"
	"github.com/avelesov/urlwords/internal/search"
	"github.com/avelesov/urlwords/internal/service"
	"github.com/avelesov/urlwords/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}

	codec, err := tokens.NewCodec([]byte(cfg.SecretKey))
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaAddress)

	var esClient *search.Client
	if cfg.ESURL != "" {
		esClient, err = search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch error: %v", err)
		}
	} else {
		logger.Warn("ES_URL not set, search endpoint disabled")
	}

	r := repo.New(db)
	authSvc := &service.AuthService{
		Repo:       r,
		Codec:      codec,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		BcryptCost: cfg.BcryptCost,
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))

	deps := httpserver.Deps{
		Auth: &httpserver.AuthHTTP{Svc: authSvc, Producer: producer},
		URLs: &httpserver.URLHTTP{
			Repo:     r,
			Analyzer: analyzer.New(cfg.RequestTimeout, cfg.MaxContentSize, cfg.UserAgent),
			ES:       esClient,
			Producer: producer,
		},
		Gate: middleware.NewAuthGate(codec, r),
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
