// Package letterissuer предоставляет маршруты для основного приложения.
package letterissuer

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/grishankov/letter-issuer/internal/http/handlers/activitylist"
	"github.com/grishankov/letter-issuer/internal/http/handlers/chatevents"
	"github.com/grishankov/letter-issuer/internal/http/handlers/health"
	"github.com/grishankov/letter-issuer/internal/http/handlers/paymentwebhook"
	"github.com/grishankov/letter-issuer/internal/http/middlewarectx"
	"github.com/grishankov/letter-issuer/internal/services/engine"
	gatekeeperservice "github.com/grishankov/letter-issuer/internal/services/gatekeeper"
	"github.com/grishankov/letter-issuer/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, eng *engine.Engine,
	gatekeeper *gatekeeperservice.Gatekeeper, db *repository.Storage, webhookSecret string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/chat/events", chatevents.New(logger, eng).ServeHTTP)
			r.Get("/activity", activitylist.New(logger, db).ServeHTTP)
		})

		// Webhook endpoint (подпись проверяет сам обработчик)
		r.Post("/payments/webhook", paymentwebhook.New(logger, gatekeeper, webhookSecret).ServeHTTP)

		r.Get("/health", health.New(logger).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
