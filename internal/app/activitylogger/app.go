// Package activitylogger собирает сервис журнала активности: потребитель
// очереди зеркалирует записи об отправленных письмах в локальную таблицу
// и дописывает их в журнал удалённого справочника.
package activitylogger

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/grishankov/letter-issuer/internal/config"
	"github.com/grishankov/letter-issuer/internal/lib/rabbitmq"
	"github.com/grishankov/letter-issuer/internal/migrations"
	journalservice "github.com/grishankov/letter-issuer/internal/services/journal"
	"github.com/grishankov/letter-issuer/internal/sheets"
	"github.com/grishankov/letter-issuer/internal/storage/repository"
)

// App представляет сервис журнала активности.
type App struct {
	conn           *amqp.Connection
	ch             *amqp.Channel
	journalService *journalservice.Service
	db             *repository.Storage
	logger         *slog.Logger
}

// New создает новый экземпляр сервиса журнала активности.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		db.DB.Close()
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		db.DB.Close()
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		conn.Close()
		db.DB.Close()
		return nil, err
	}

	directory := sheets.New(cfg.Sheets, logger)
	journalService := journalservice.New(db, directory, logger)

	return &App{
		conn:           conn,
		ch:             ch,
		journalService: journalService,
		db:             db,
		logger:         logger,
	}, nil
}

// Run запускает потребление очереди активности до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	if err := rabbitmq.ConsumeMessages(ctx, a.ch, rabbitmq.ActivityQueue, a.journalService.HandleMessage); err != nil {
		return err
	}

	<-ctx.Done()

	a.logger.Info("shutting down activity logger")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	a.db.DB.Close()

	return nil
}
