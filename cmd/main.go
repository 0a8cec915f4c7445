package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/api"
	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/httpclients/drive"
	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/httpclients/webhook"
	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/repository"
	"github.com/ai-shubham-mishra/Automated-Invoicing/internal/service"
	"github.com/ai-shubham-mishra/Automated-Invoicing/pkg/broker"
	"github.com/ai-shubham-mishra/Automated-Invoicing/pkg/config"
	"github.com/ai-shubham-mishra/Automated-Invoicing/pkg/logger"
	"github.com/ai-shubham-mishra/Automated-Invoicing/pkg/postgres"
)

const (
	ReadTimeout  = 20 * time.Second
	WriteTimeout = 20 * time.Second
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New(".env")
	panicOnErr("load config", err)

	l := logger.New()

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	panicOnErr("connect to postgres", err)
	defer pool.Close()

	err = postgres.UpMigrations(cfg.PostgresDSN)
	panicOnErr("up migrations", err)

	repo := repository.New(pool)

	resolver := drive.NewClient(cfg.Drive)
	webhookClient := webhook.NewClient(cfg)

	var publisher service.Publisher = broker.NewNop()

	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(l, cfg.Kafka.Brokers, cfg.Kafka.SubmissionsTopic)
		defer producer.Close()

		publisher = producer
	}

	s := service.New(repo, resolver, webhookClient, publisher)

	handler := api.NewHandler(s)
	mw := api.NewMiddleware(cfg)

	router := api.NewRouter(handler, mw)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
	}

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		slog.InfoContext(ctx, "http server started", "port", cfg.HTTPPort)

		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panicf("listen and serve: %s", err)
		}

		slog.DebugContext(ctx, "http server stopped")
	}()

	waitSignal(cancel, server)

	wg.Wait()
}

func waitSignal(cancel context.CancelFunc, server *http.Server) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	sig := <-ch

	slog.Info("got OS signal", "signal", sig.String())

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		slog.ErrorContext(shutdownCtx, "server shutdown", "error", err)
	}
}

func panicOnErr(msg string, err error) {
	if err != nil {
		log.Panicf("%s: %s", msg, err)
	}
}
