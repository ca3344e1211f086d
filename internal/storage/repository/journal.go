// Package repository реализует локальный журнал активности на основе
// PostgreSQL: зеркало записей об отправленных письмах, доступное для
// чтения даже когда удалённый справочник недоступен.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/grishankov/letter-issuer/internal/models"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "repository.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// InsertActivity добавляет запись в журнал и возвращает её ID.
func (s *Storage) InsertActivity(ctx context.Context, rec models.ActivityRecord) (int, error) {
	const op = "repository.InsertActivity"

	var id int
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO activity_journal
		 (recorded_at, letter_type, recipient_name, recipient_email, sent_by, outcome)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		rec.Timestamp, rec.LetterType, rec.RecipientName, rec.RecipientEmail,
		rec.SentBy, rec.Outcome,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListActivities возвращает последние записи журнала, новые первыми.
func (s *Storage) ListActivities(ctx context.Context, limit int) ([]*models.ActivityRecord, error) {
	const op = "repository.ListActivities"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT recorded_at, letter_type, recipient_name, recipient_email, sent_by, outcome
		 FROM activity_journal
		 ORDER BY recorded_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var records []*models.ActivityRecord
	for rows.Next() {
		var rec models.ActivityRecord
		if err := rows.Scan(&rec.Timestamp, &rec.LetterType, &rec.RecipientName,
			&rec.RecipientEmail, &rec.SentBy, &rec.Outcome); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}
