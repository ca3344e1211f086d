// Package activity реализует запись исходов отправки писем по принципу
// "отправил и забыл": запись публикуется в очередь, дальше её разбирает
// отдельный сервис activity-logger. Сбой записи никогда не влияет на
// видимый пользователю результат уже выполненной отправки.
package activity

import (
	"log/slog"
	"time"

	"github.com/grishankov/letter-issuer/internal/lib/rabbitmq"
	"github.com/grishankov/letter-issuer/internal/lib/sl"
	"github.com/grishankov/letter-issuer/internal/models"
	"github.com/streadway/amqp"
)

// Publisher публикует сообщение в брокер.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// ChannelPublisher реализует Publisher поверх канала amqp.
type ChannelPublisher struct {
	Ch *amqp.Channel
}

// Publish публикует сообщение через канал.
func (p *ChannelPublisher) Publish(exchange, routingKey string, message any) error {
	return rabbitmq.PublishMessage(p.Ch, exchange, routingKey, message)
}

// Recorder записывает исходы отправки писем.
type Recorder struct {
	pub Publisher
	log *slog.Logger
	now func() time.Time
}

// NewRecorder создает новый экземпляр Recorder.
func NewRecorder(pub Publisher, log *slog.Logger) *Recorder {
	return &Recorder{pub: pub, log: log, now: time.Now}
}

// Record публикует запись об исходе отправки. Возвращает false при сбое
// публикации; повторных попыток нет.
func (r *Recorder) Record(kind models.LetterKind, recipientName, recipientEmail, sentBy, outcome string) bool {
	rec := models.ActivityRecord{
		Timestamp:      r.now(),
		LetterType:     kind.Title(),
		RecipientName:  recipientName,
		RecipientEmail: recipientEmail,
		SentBy:         sentBy,
		Outcome:        outcome,
	}

	if err := r.pub.Publish(rabbitmq.ActivityExchange, rabbitmq.ActivityRoutingKey, rec); err != nil {
		r.log.Warn("failed to publish activity record",
			slog.String("letter_type", rec.LetterType), sl.Err(err))
		return false
	}
	return true
}
