package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/loopper-ai/ticket-ingest/internal/backend"
	"github.com/loopper-ai/ticket-ingest/internal/config"
	"github.com/loopper-ai/ticket-ingest/internal/database"
	"github.com/loopper-ai/ticket-ingest/internal/forwarder"
	"github.com/loopper-ai/ticket-ingest/internal/freshdesk"
	"github.com/loopper-ai/ticket-ingest/internal/handler"
	"github.com/loopper-ai/ticket-ingest/internal/ingest"
	"github.com/loopper-ai/ticket-ingest/internal/queue"
	"github.com/loopper-ai/ticket-ingest/internal/router"
	"github.com/loopper-ai/ticket-ingest/internal/secrets"
	"github.com/loopper-ai/ticket-ingest/internal/store"
	"github.com/loopper-ai/ticket-ingest/internal/webhook"
)

// API — приложение режима api: приём вебхуков и постановка в очередь.
type API struct {
	cfg      *config.Config
	httpSrv  *http.Server
	producer *queue.Producer
}

// NewAPI собирает приложение режима api.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var db *gorm.DB
	if cfg.JournalEnabled() {
		if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		conn, err := database.Open(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		db = conn
	}

	deduper := queue.NewDeduper(cfg.RedisAddr, cfg.DedupWindow)
	producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, deduper)

	ticketRouter := &webhook.Router{
		Secrets: secrets.NewSource(cfg.SecretsFile),
		NewFetcher: func(creds freshdesk.Credentials) webhook.TicketFetcher {
			return freshdesk.NewClient(creds, cfg.APITimeout)
		},
	}
	svc := ingest.NewService(cfg, producer, ticketRouter, store.NewJournal(db))

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(handler.NewWebhookHandler(svc)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, httpSrv: httpSrv, producer: producer}, nil
}

// Run запускает HTTP-сервер, блокируется до отмены ctx.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", a.httpSrv.Addr)
	log.Printf("  Webhook:      %s/webhook/freshdesk", base)
	log.Printf("  Swagger UI:   %s/swagger", base)
	log.Printf("  Health:       %s/health", base)
	log.Printf("  Ready:        %s/ready", base)
	log.Printf("Queue topic %q, journal enabled: %v", a.cfg.KafkaTopic, a.cfg.JournalEnabled())

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return a.producer.Close()
}

// Forwarder — приложение режима forwarder: слив очереди на app-сервер.
type Forwarder struct {
	cfg      *config.Config
	consumer *queue.Consumer
	fwd      *forwarder.Forwarder
}

// NewForwarder собирает приложение режима forwarder.
func NewForwarder(cfg *config.Config) (*Forwarder, error) {
	if err := cfg.ValidateForwarder(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &Forwarder{
		cfg:      cfg,
		consumer: queue.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup),
		fwd:      forwarder.New(backend.NewClient(cfg.BackendURL, cfg.ForwardTimeout)),
	}, nil
}

// Run запускает цикл форвардера, блокируется до отмены ctx.
func (f *Forwarder) Run(ctx context.Context) error {
	log.Printf("forwarder: topic=%q group=%q backend=%s batch=%d",
		f.cfg.KafkaTopic, f.cfg.KafkaGroup, f.cfg.BackendURL, f.cfg.BatchSize)

	err := f.fwd.Run(ctx, f.consumer, f.cfg.BatchSize, f.cfg.BatchWait)
	if closeErr := f.consumer.Close(); closeErr != nil {
		log.Printf("forwarder: close consumer: %v", closeErr)
	}
	return err
}
