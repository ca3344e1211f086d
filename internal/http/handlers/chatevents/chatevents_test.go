package chatevents

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/grishankov/letter-issuer/internal/services/engine"
)

// EngineMock реализует интерфейс Engine
type EngineMock struct {
	mock.Mock
}

func (m *EngineMock) Handle(ctx context.Context, userID int64, username string, ev engine.Event) []engine.Reply {
	args := m.Called(ctx, userID, username, ev)
	return args.Get(0).([]engine.Reply)
}

var _ Engine = (*EngineMock)(nil)

func TestChatEventsHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*EngineMock)
		expectedStatus int
		checkBody      func(*testing.T, string)
	}{
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			setupMock:      func(_ *EngineMock) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"status":"Error","error":"invalid request body"}`, body)
			},
		},
		{
			name: "ошибка валидации - отсутствуют обязательные поля",
			requestBody: Request{
				Event: "start",
			},
			setupMock:      func(_ *EngineMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "required field")
			},
		},
		{
			name: "неизвестное событие",
			requestBody: Request{
				UserID:   1,
				Username: "tester",
				Event:    "teleport",
			},
			setupMock:      func(_ *EngineMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "Event")
			},
		},
		{
			name: "событие передаётся движку",
			requestBody: Request{
				UserID:   1,
				Username: "tester",
				Event:    "text",
				Text:     "John Doe",
			},
			setupMock: func(m *EngineMock) {
				m.On("Handle", mock.Anything, int64(1), "tester",
					engine.Event{Kind: engine.EventText, Text: "John Doe"}).
					Return([]engine.Reply{{Kind: engine.ReplyText, Text: "Got it."}})
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"status":"OK"`)
				assert.Contains(t, body, "Got it.")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engineMock := new(EngineMock)
			tt.setupMock(engineMock)

			handler := New(logger, engineMock)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/events", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-id"))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.checkBody(t, w.Body.String())
			engineMock.AssertExpectations(t)
		})
	}
}
