// Package paymentwebhook реализует HTTP-обработчик вебхука платёжного
// провайдера. На событие об оплате ссылки продлевается подписка
// пользователя и сбрасывается кеш его статуса.
package paymentwebhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/grishankov/letter-issuer/internal/lib/sl"
	"github.com/grishankov/letter-issuer/internal/paymentprovider"
)

// Событие провайдера об успешной оплате платёжной ссылки.
const eventLinkPaid = "payment_link.paid"

// Service описывает интерфейс применения подтверждённого платежа.
type Service interface {
	ApplyPayment(ctx context.Context, userID int64) error
}

// Handler управляет HTTP-запросами вебхука провайдера.
type Handler struct {
	log           *slog.Logger // Логгер для записи информации и ошибок
	service       Service
	webhookSecret string // Секрет для проверки подписи
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

// Проверка подписи вебхука (X-Razorpay-Signature).
func (h *Handler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expectedSig := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.paymentwebhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Razorpay-Signature")
	if signature == "" || !h.verifySignature(body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var payload paymentprovider.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if payload.Event != eventLinkPaid {
		log.Info("ignored webhook event", slog.String("event", payload.Event))
		w.WriteHeader(http.StatusOK)
		return
	}

	userIDStr := payload.Payload.PaymentLink.Entity.Notes["chat_user_id"]
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		log.Error("webhook payload has no valid chat_user_id note",
			slog.String("chat_user_id", userIDStr), sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.service.ApplyPayment(r.Context(), userID); err != nil {
		log.Error("failed to apply payment", slog.Int64("user_id", userID), sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("webhook processed successfully",
		slog.String("event", payload.Event),
		slog.String("payment_link_id", payload.Payload.PaymentLink.Entity.ID),
		slog.Int64("user_id", userID))
	w.WriteHeader(http.StatusOK)
}
