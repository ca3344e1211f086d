// Package status реализует локальный слой кеша статусов подписки.
// Кеш зеркалирует удалённый справочник: снимки кладутся без TTL и
// переживают перезапуск сервиса. При чтении применяется локальная
// проверка истечения: активная запись с прошедшей датой переводится
// в expired и сразу же сохраняется обратно, без обращения к справочнику.
package status

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/grishankov/letter-issuer/internal/lib/sl"
	"github.com/grishankov/letter-issuer/internal/models"
)

// Cache описывает методы хранилища ключ-значение.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш; нулевое время жизни — без TTL.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Service слой работы со снимками статусов поверх кеша.
type Service struct {
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// New создает новый экземпляр Service.
func New(cache Cache, log *slog.Logger) *Service {
	return &Service{cache: cache, log: log, now: time.Now}
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("user_status:%d", userID)
}

// Get возвращает снимок статуса пользователя из кеша.
// Повреждённая запись (ошибка чтения, мусор вместо JSON, нечитаемая дата)
// инвалидируется и трактуется как промах — это не фатальная ситуация.
// Если дата истечения в прошлом, а статус ещё не expired, запись
// переводится в expired и сохраняется обратно до возврата.
func (s *Service) Get(userID int64) (*models.UserRecord, bool) {
	key := cacheKey(userID)

	var entry models.CacheEntry
	found, err := s.cache.Get(key, &entry)
	if err != nil {
		s.log.Warn("corrupt cache entry, treating as miss", slog.String("key", key), sl.Err(err))
		if invErr := s.cache.Invalidate(key); invErr != nil {
			s.log.Warn("failed to drop corrupt cache entry", slog.String("key", key), sl.Err(invErr))
		}
		return nil, false
	}
	if !found {
		return nil, false
	}

	expiry, err := entry.ExpiryTime()
	if err != nil {
		s.log.Warn("corrupt expiry date in cache, treating as miss", slog.String("key", key), sl.Err(err))
		if invErr := s.cache.Invalidate(key); invErr != nil {
			s.log.Warn("failed to drop corrupt cache entry", slog.String("key", key), sl.Err(invErr))
		}
		return nil, false
	}

	if s.now().After(expiry) && entry.Status != models.StatusExpired {
		entry.Status = models.StatusExpired
		if err := s.cache.Set(key, entry, 0); err != nil {
			s.log.Warn("failed to persist expiry flip", slog.String("key", key), sl.Err(err))
		}
	}

	return &models.UserRecord{
		UserID:     userID,
		Status:     entry.Status,
		ExpiryDate: expiry,
	}, true
}

// Put сохраняет снимок статуса пользователя в кеш без TTL.
func (s *Service) Put(userID int64, rec models.UserRecord) error {
	return s.cache.Set(cacheKey(userID), models.NewCacheEntry(rec), 0)
}

// Invalidate удаляет снимок статуса пользователя, вынуждая следующий
// запрос идти в справочник.
func (s *Service) Invalidate(userID int64) error {
	return s.cache.Invalidate(cacheKey(userID))
}
