// Package journal реализует обработчик очереди активности: каждая запись
// зеркалируется в локальную таблицу и дописывается в журнал удалённого
// справочника. Обе записи выполняются по возможности: сбой одной из них
// не отменяет другую и не приводит к повторной доставке.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/grishankov/letter-issuer/internal/lib/sl"
	"github.com/grishankov/letter-issuer/internal/models"
)

// Journal локальное хранилище записей активности.
type Journal interface {
	InsertActivity(ctx context.Context, rec models.ActivityRecord) (int, error)
}

// DirectoryLog журнальная поверхность удалённого справочника.
type DirectoryLog interface {
	LogActivity(ctx context.Context, rec models.ActivityRecord) error
}

// Service сервис разбора очереди активности.
type Service struct {
	journal   Journal
	directory DirectoryLog
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(journal Journal, directory DirectoryLog, log *slog.Logger) *Service {
	return &Service{journal: journal, directory: directory, log: log}
}

// HandleMessage обрабатывает одно сообщение очереди активности.
// Ошибка возвращается только на нечитаемом сообщении; сбои записи
// логируются и не требуют повторной доставки.
func (s *Service) HandleMessage(body []byte) error {
	const op = "journal.HandleMessage"
	ctx := context.Background()

	var rec models.ActivityRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		s.log.Error("failed to unmarshal activity record", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.journal.InsertActivity(ctx, rec); err != nil {
		s.log.Warn("failed to mirror activity record locally",
			slog.String("letter_type", rec.LetterType), sl.Err(err))
	}

	if err := s.directory.LogActivity(ctx, rec); err != nil {
		s.log.Warn("failed to append activity record to directory",
			slog.String("letter_type", rec.LetterType), sl.Err(err))
	}

	return nil
}
