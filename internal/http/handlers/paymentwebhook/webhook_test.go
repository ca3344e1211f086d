package paymentwebhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// ServiceMock реализует интерфейс Service
type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ApplyPayment(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

var _ Service = (*ServiceMock)(nil)

const testSecret = "webhook_secret"

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func paidPayload(userID string) []byte {
	return []byte(`{
		"event": "payment_link.paid",
		"payload": {"payment_link": {"entity": {
			"id": "plink_1",
			"status": "paid",
			"notes": {"chat_user_id": "` + userID + `"}
		}}}
	}`)
}

func TestWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           []byte
		signature      func([]byte) string
		setupMock      func(*ServiceMock)
		expectedStatus int
	}{
		{
			name:           "оплата продлевает подписку",
			body:           paidPayload("42"),
			signature:      sign,
			setupMock: func(m *ServiceMock) {
				m.On("ApplyPayment", mock.Anything, int64(42)).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "нет подписи",
			body:           paidPayload("42"),
			signature:      func([]byte) string { return "" },
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "неверная подпись",
			body:           paidPayload("42"),
			signature:      func([]byte) string { return "deadbeef" },
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "чужое событие игнорируется",
			body:           []byte(`{"event":"payment_link.expired","payload":{"payment_link":{"entity":{"id":"plink_1","notes":{"chat_user_id":"42"}}}}}`),
			signature:      sign,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "нет chat_user_id в notes",
			body:           []byte(`{"event":"payment_link.paid","payload":{"payment_link":{"entity":{"id":"plink_1","notes":{}}}}}`),
			signature:      sign,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "сбой применения платежа",
			body:      paidPayload("42"),
			signature: sign,
			setupMock: func(m *ServiceMock) {
				m.On("ApplyPayment", mock.Anything, int64(42)).Return(errors.New("directory down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			tt.setupMock(serviceMock)

			handler := New(logger, serviceMock, testSecret)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(tt.body))
			if sig := tt.signature(tt.body); sig != "" {
				req.Header.Set("X-Razorpay-Signature", sig)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			serviceMock.AssertExpectations(t)
		})
	}
}

func TestWebhookHandler_IgnoredEventDoesNotTouchService(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	serviceMock := new(ServiceMock)
	handler := New(logger, serviceMock, testSecret)

	body := []byte(`{"event":"payment_link.cancelled","payload":{"payment_link":{"entity":{"notes":{"chat_user_id":"42"}}}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", sign(body))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	serviceMock.AssertNotCalled(t, "ApplyPayment", mock.Anything, mock.Anything)
}
