// Package letterissuer собирает основной сервис выдачи писем: кеш
// статусов, гейткипер, движок диалога и HTTP-сервер с чат-мостом,
// вебхуком платёжного провайдера и журналом отправок.
package letterissuer

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/grishankov/letter-issuer/internal/artifact"
	"github.com/grishankov/letter-issuer/internal/cache"
	"github.com/grishankov/letter-issuer/internal/config"
	"github.com/grishankov/letter-issuer/internal/lib/rabbitmq"
	"github.com/grishankov/letter-issuer/internal/lib/smtp"
	"github.com/grishankov/letter-issuer/internal/paymentprovider"
	"github.com/grishankov/letter-issuer/internal/renderer"
	activityservice "github.com/grishankov/letter-issuer/internal/services/activity"
	dispatchservice "github.com/grishankov/letter-issuer/internal/services/dispatch"
	"github.com/grishankov/letter-issuer/internal/services/engine"
	gatekeeperservice "github.com/grishankov/letter-issuer/internal/services/gatekeeper"
	statusservice "github.com/grishankov/letter-issuer/internal/services/status"
	"github.com/grishankov/letter-issuer/internal/sheets"
	"github.com/grishankov/letter-issuer/internal/storage/repository"
)

// App представляет основной сервис выдачи писем.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создает новый экземпляр приложения выдачи писем.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	cacheRedis, err := cache.New(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		cacheRedis.Close()
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		closeResources(nil, nil, cacheRedis, db, logger)
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		closeResources(nil, conn, cacheRedis, db, logger)
		return nil, err
	}

	directory := sheets.New(cfg.Sheets, logger)
	statusCache := statusservice.New(cacheRedis, logger)
	gatekeeper := gatekeeperservice.New(directory, statusCache, logger)

	overlay := &renderer.ExecOverlay{StampBin: cfg.Letters.StampBin, PreviewBin: cfg.Letters.PreviewBin}
	renderService := renderer.New(overlay, cfg.Letters.TemplatesDir, cfg.Letters.OutputDir, logger)
	artifacts := artifact.New(renderService, logger)

	defaultTransport := smtp.NewTransport(cfg.SMTP.Default, logger)
	hrTransport := smtp.NewTransport(cfg.SMTP.HR, logger)
	dispatcher := dispatchservice.New(defaultTransport, hrTransport, logger)

	recorder := activityservice.NewRecorder(&activityservice.ChannelPublisher{Ch: ch}, logger)
	payments := paymentprovider.NewClient(cfg.Payments)

	eng := engine.New(gatekeeper, directory, artifacts, dispatcher, recorder, payments, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, eng, gatekeeper, db, cfg.Payments.WebhookSecret)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, cacheRedis *cache.Cache, db *repository.Storage, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
	if cacheRedis != nil {
		if err := cacheRedis.Close(); err != nil {
			logger.Error("failed to close cache", "error", err)
		}
	}
	if db != nil {
		db.DB.Close()
	}
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		closeResources(a.ch, a.conn, a.cache, a.db, a.logger)
		return err
	}
}
