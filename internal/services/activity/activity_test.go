package activity

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/grishankov/letter-issuer/internal/lib/rabbitmq"
	"github.com/grishankov/letter-issuer/internal/models"
)

// PublisherMock реализует интерфейс Publisher
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(exchange, routingKey string, message any) error {
	args := m.Called(exchange, routingKey, message)
	return args.Error(0)
}

var _ Publisher = (*PublisherMock)(nil)

func newTestRecorder(pub Publisher, now time.Time) *Recorder {
	rec := NewRecorder(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec.now = func() time.Time { return now }
	return rec
}

func TestRecord_PublishesToActivityQueue(t *testing.T) {
	pubMock := new(PublisherMock)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	want := models.ActivityRecord{
		Timestamp:      now,
		LetterType:     "Offer Letter",
		RecipientName:  "Jane Roe",
		RecipientEmail: "jane@example.com",
		SentBy:         "tester",
		Outcome:        models.OutcomeSent,
	}
	pubMock.On("Publish", rabbitmq.ActivityExchange, rabbitmq.ActivityRoutingKey, want).Return(nil)

	rec := newTestRecorder(pubMock, now)

	ok := rec.Record(models.LetterOffer, "Jane Roe", "jane@example.com", "tester", models.OutcomeSent)
	assert.True(t, ok)
	pubMock.AssertExpectations(t)
}

func TestRecord_PublishFailureReturnsFalse(t *testing.T) {
	pubMock := new(PublisherMock)
	pubMock.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("channel closed"))

	rec := newTestRecorder(pubMock, time.Now())

	// Сбой публикации не паникует и не ретраит, просто false
	ok := rec.Record(models.LetterCampusAmbassador, "John Doe", "john@example.com", "tester", models.OutcomeFailed)
	assert.False(t, ok)
	pubMock.AssertNumberOfCalls(t, "Publish", 1)
}
