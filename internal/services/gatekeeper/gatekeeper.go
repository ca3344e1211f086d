// Package gatekeeper реализует проверку права пользователя на работу
// с сервисом. Гейткипер объединяет локальный кеш статусов и удалённый
// справочник в одно решение: пропустить или отказать с причиной.
// Проверка выполняется дважды на каждое письмо — при входе в диалог
// и непосредственно перед отправкой; вторая проверка главнее первой.
package gatekeeper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/grishankov/letter-issuer/internal/lib/sl"
	"github.com/grishankov/letter-issuer/internal/models"
	"github.com/grishankov/letter-issuer/internal/sheets"
)

// TrialDays длительность засеиваемого пробного периода.
// Пробный период засеивается при регистрации, но доступ по нему не
// выдаётся: новый пользователь сразу видит пейвол. Поведение исходной
// системы сохранено намеренно, см. DESIGN.md.
const TrialDays = 30

// Directory описывает операции удалённого справочника подписок.
type Directory interface {
	GetUserStatus(ctx context.Context, userID int64) (*models.UserRecord, error)
	RegisterNewUser(ctx context.Context, userID int64, username string) error
	UpdateSubscription(ctx context.Context, userID int64) error
}

// StatusCache описывает локальный слой кеша статусов.
type StatusCache interface {
	Get(userID int64) (*models.UserRecord, bool)
	Put(userID int64, rec models.UserRecord) error
	Invalidate(userID int64) error
}

// Gatekeeper принимает решение о допуске пользователя.
type Gatekeeper struct {
	directory Directory
	cache     StatusCache
	log       *slog.Logger
	now       func() time.Time
}

// New создает новый экземпляр Gatekeeper.
func New(directory Directory, cache StatusCache, log *slog.Logger) *Gatekeeper {
	return &Gatekeeper{
		directory: directory,
		cache:     cache,
		log:       log,
		now:       time.Now,
	}
}

// Check проверяет право пользователя на работу с сервисом.
//
// Сначала читается кеш (проверка истечения применяется при чтении).
// При промахе запись берётся из справочника; незнакомый пользователь
// регистрируется, получает локальную trial-запись на TrialDays дней и
// отказ с направлением на оплату. Ошибка справочника даёт отказ с
// временной причиной и ничего не кеширует.
func (g *Gatekeeper) Check(ctx context.Context, userID int64, username string) models.Decision {
	const op = "gatekeeper.Check"
	log := g.log.With(slog.String("op", op), slog.Int64("user_id", userID))

	rec, found := g.cache.Get(userID)
	if !found {
		fetched, err := g.directory.GetUserStatus(ctx, userID)
		switch {
		case errors.Is(err, sheets.ErrUserNotFound):
			return g.registerNewUser(ctx, userID, username)
		case err != nil:
			log.Error("failed to fetch user status", sl.Err(err))
			return models.Decision{Allow: false, Reason: models.DenyReasonTransient}
		}

		if err := g.cache.Put(userID, *fetched); err != nil {
			log.Warn("failed to cache user status", sl.Err(err))
		}

		// Перечитываем через кеш, чтобы применить проверку истечения.
		// При недоступном кеше решение принимается по свежей записи.
		if cached, ok := g.cache.Get(userID); ok {
			rec = cached
		} else {
			rec = fetched
		}
	}

	return g.decide(rec)
}

func (g *Gatekeeper) registerNewUser(ctx context.Context, userID int64, username string) models.Decision {
	const op = "gatekeeper.registerNewUser"
	log := g.log.With(slog.String("op", op), slog.Int64("user_id", userID))

	if err := g.directory.RegisterNewUser(ctx, userID, username); err != nil {
		log.Error("failed to register user", sl.Err(err))
		return models.Decision{Allow: false, Reason: models.DenyReasonTransient}
	}

	trial := models.UserRecord{
		UserID:     userID,
		Username:   username,
		Status:     models.StatusTrial,
		ExpiryDate: g.now().AddDate(0, 0, TrialDays).Truncate(24 * time.Hour),
	}
	if err := g.cache.Put(userID, trial); err != nil {
		log.Warn("failed to cache trial record", sl.Err(err))
	}
	log.Info("registered new user")

	return models.Decision{
		Allow:   false,
		Reason:  models.DenyReasonPaywall,
		Record:  &trial,
		NewUser: true,
	}
}

func (g *Gatekeeper) decide(rec *models.UserRecord) models.Decision {
	switch rec.Status {
	case models.StatusActive:
		return models.Decision{Allow: true, Record: rec}
	case models.StatusExpired:
		return models.Decision{Allow: false, Reason: models.DenyReasonPaywall, Record: rec}
	default:
		// Сюда попадает и засеянный trial: исходная система никогда не
		// выдавала доступ по пробному периоду автоматически.
		return models.Decision{Allow: false, Reason: models.DenyReasonTransient, Record: rec}
	}
}

// Refresh сбрасывает кешированный статус пользователя, вынуждая
// следующую проверку идти в справочник.
func (g *Gatekeeper) Refresh(userID int64) error {
	return g.cache.Invalidate(userID)
}

// ApplyPayment продлевает подписку в справочнике после подтверждённого
// платежа и инвалидирует устаревший снимок в кеше. Инвалидация
// обязательна: без неё следующая проверка вернула бы статус до оплаты.
func (g *Gatekeeper) ApplyPayment(ctx context.Context, userID int64) error {
	const op = "gatekeeper.ApplyPayment"

	if err := g.directory.UpdateSubscription(ctx, userID); err != nil {
		return err
	}
	if err := g.cache.Invalidate(userID); err != nil {
		g.log.Error("failed to invalidate cache after payment",
			slog.String("op", op), slog.Int64("user_id", userID), sl.Err(err))
		return err
	}
	g.log.Info("subscription updated after payment", slog.Int64("user_id", userID))
	return nil
}
