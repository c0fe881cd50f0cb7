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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/avolkov/streamtube/internal/config"
	"github.com/avolkov/streamtube/internal/events"
	"github.com/avolkov/streamtube/internal/httpserver"
	"github.com/avolkov/streamtube/internal/logging"
	"github.com/avolkov/streamtube/internal/middleware"
	"github.com/avolkov/streamtube/internal/repo"
	"github.com/avolkov/streamtube/internal/search"
	"github.com/avolkov/streamtube/internal/service"
	"github.com/avolkov/streamtube/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)

	ts := config.LoadTokenSettings()
	config.MustNonEmpty(string(ts.AccessSecret), "ACCESS_TOKEN_SECRET")
	config.MustNonEmpty(string(ts.RefreshSecret), "REFRESH_TOKEN_SECRET")

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	uploader, err := storage.NewS3Uploader(context.Background(), cfg)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.EventsTopic)

	var index *search.Index
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg)
		if err != nil {
			log.Fatalf("es init error: %v", err)
		}
		index = &search.Index{ES: esClient, Name: cfg.ESIndex}
	}

	userRepo := repo.GormRepo{DB: db}
	tokenSvc := &service.TokenService{Repo: userRepo}
	authSvc := &service.AuthService{
		Repo:    userRepo,
		Tokens:  tokenSvc,
		Storage: uploader,
		Events:  producer,
		Index:   index,
	}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: authSvc},
	}
	if index != nil {
		deps.SearchHandler = &httpserver.SearchHTTP{Index: index}
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	logger.Info("server started", "port", cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
