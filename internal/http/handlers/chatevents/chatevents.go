// Package chatevents реализует HTTP-обработчик моста чат-транспорта.
//
// Handler принимает событие одного пользователя чата (команда, текст,
// нажатие кнопки), передаёт его движку диалога и возвращает список
// ответов, которые транспорт отрисовывает пользователю.
package chatevents

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/grishankov/letter-issuer/internal/http/response"
	"github.com/grishankov/letter-issuer/internal/lib/sl"
	"github.com/grishankov/letter-issuer/internal/services/engine"
)

// Engine описывает интерфейс движка диалога.
type Engine interface {
	Handle(ctx context.Context, userID int64, username string, ev engine.Event) []engine.Reply
}

// Request входящее событие чат-транспорта.
type Request struct {
	UserID   int64  `json:"user_id" validate:"required"`
	Username string `json:"username" validate:"required"`
	Event    string `json:"event" validate:"required,oneof=start refresh cancel menu_select text confirm_send cancel_final check_payment"`
	Text     string `json:"text"`
}

// Handler управляет HTTP-запросами чат-моста.
type Handler struct {
	log      *slog.Logger // Логгер для записи информации и ошибок
	engine   Engine       // Движок диалога
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и движком.
func New(log *slog.Logger, eng Engine) *Handler {
	return &Handler{
		log:      log,
		engine:   eng,
		validate: validator.New(),
	}
}

var eventKinds = map[string]engine.EventKind{
	"start":         engine.EventStart,
	"refresh":       engine.EventRefresh,
	"cancel":        engine.EventCancel,
	"menu_select":   engine.EventMenuSelect,
	"text":          engine.EventText,
	"confirm_send":  engine.EventConfirmSend,
	"cancel_final":  engine.EventCancelFinal,
	"check_payment": engine.EventCheckPayment,
}

// ServeHTTP godoc
// @Summary Обработать событие чата
// @Description Передает событие пользователя движку диалога и возвращает ответы для отрисовки.
// @Tags Chat
// @Accept  json
// @Produce  json
// @Param request body Request true "Событие пользователя"
// @Success 200 {object} map[string]any "Ответы движка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /chat/events [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chatevents"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	ev := engine.Event{Kind: eventKinds[req.Event], Text: req.Text}
	replies := h.engine.Handle(r.Context(), req.UserID, req.Username, ev)

	log.Info("chat event handled",
		slog.Int64("user_id", req.UserID),
		slog.String("event", req.Event),
		slog.Int("replies", len(replies)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"replies": replies,
	}))
}
