package models

import "time"

// Возможные исходы отправки письма в журнале активности.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// ActivityRecord неизменяемая запись журнала об одной попытке отправки письма.
// Записывается только на добавление: и в удалённый журнал справочника,
// и в локальную таблицу activity_journal.
type ActivityRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	LetterType     string    `json:"letter_type"`
	RecipientName  string    `json:"recipient_name"`
	RecipientEmail string    `json:"recipient_email"`
	SentBy         string    `json:"sent_by"`
	Outcome        string    `json:"outcome"`
}
