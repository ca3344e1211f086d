// Package activitylist реализует HTTP-обработчик чтения журнала отправок.
package activitylist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/grishankov/letter-issuer/internal/http/response"
	"github.com/grishankov/letter-issuer/internal/lib/sl"
	"github.com/grishankov/letter-issuer/internal/models"
)

// Journal описывает интерфейс чтения локального журнала активности.
type Journal interface {
	ListActivities(ctx context.Context, limit int) ([]*models.ActivityRecord, error)
}

// Handler управляет HTTP-запросами чтения журнала отправок.
type Handler struct {
	log     *slog.Logger
	journal Journal
}

// New создает новый Handler с переданными логгером и хранилищем.
func New(log *slog.Logger, journal Journal) *Handler {
	return &Handler{
		log:     log,
		journal: journal,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.activitylist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limitStr := r.URL.Query().Get("limit")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 50
	}

	res, err := h.journal.ListActivities(r.Context(), limit)
	if err != nil {
		log.Error("failed to list activity records", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list"))
		return
	}

	log.Info("list activity records", "count", len(res))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"list_count": len(res),
		"records":    res,
	}))
}
