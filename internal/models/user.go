// Package models содержит доменные структуры сервиса выдачи писем:
// запись пользователя в удалённом справочнике, кешируемый снимок статуса,
// решение гейткипера, а также вспомогательные типы для писем и журнала.
package models

import "time"

// Status описывает статус подписки пользователя.
// Набор значений фиксирован протоколом удалённого справочника.
type Status string

const (
	StatusTrial    Status = "trial"     // Пробный период (засеивается локально при регистрации)
	StatusActive   Status = "active"    // Оплаченная подписка
	StatusExpired  Status = "expired"   // Подписка истекла
	StatusNotFound Status = "not_found" // Пользователь не найден в справочнике
	StatusError    Status = "error"     // Справочник вернул ошибку
)

// UserRecord представляет запись о пользователе и его подписке.
// ExpiryDate хранит календарную дату без компоненты времени.
type UserRecord struct {
	UserID          int64     // Идентификатор пользователя в чат-транспорте
	Username        string    // Отображаемое имя
	Status          Status    // Текущий статус подписки
	ExpiryDate      time.Time // Дата окончания подписки (полночь UTC)
	SubscriptionRef string    // Ссылка на подписку у платёжного провайдера, опционально
}

// ExpiryLayout формат календарной даты, используемый справочником и кешем.
const ExpiryLayout = "2006-01-02"

// CacheEntry снимок статуса пользователя в локальном кеше.
// Дата хранится строкой, чтобы формат совпадал с ответом справочника;
// запись с нечитаемой датой трактуется как повреждённая (промах кеша).
type CacheEntry struct {
	Status     Status `json:"status"`
	ExpiryDate string `json:"expiry_date"`
}

// NewCacheEntry строит снимок для кеша из записи пользователя.
func NewCacheEntry(rec UserRecord) CacheEntry {
	return CacheEntry{
		Status:     rec.Status,
		ExpiryDate: rec.ExpiryDate.Format(ExpiryLayout),
	}
}

// ExpiryTime парсит календарную дату снимка.
func (e CacheEntry) ExpiryTime() (time.Time, error) {
	return time.Parse(ExpiryLayout, e.ExpiryDate)
}

// DenyReason причина отказа гейткипера.
type DenyReason string

const (
	DenyReasonNone      DenyReason = ""
	DenyReasonPaywall   DenyReason = "paywall_required" // Нужна оплата: новый или истёкший пользователь
	DenyReasonTransient DenyReason = "transient_error"  // Справочник недоступен или вернул мусор
)

// Decision результат проверки гейткипера для одного входящего события.
type Decision struct {
	Allow   bool        // Пользователь может продолжать работу
	Reason  DenyReason  // Причина отказа, если Allow == false
	Record  *UserRecord // Запись, на основании которой принято решение (может быть nil)
	NewUser bool        // Пользователь только что зарегистрирован
}
