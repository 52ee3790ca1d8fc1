package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrilink/agrilink-backend/api/controllers"
	"github.com/agrilink/agrilink-backend/api/middleware"
	"github.com/agrilink/agrilink-backend/internal/notifications"
	"github.com/agrilink/agrilink-backend/internal/orderrequests"
	"github.com/agrilink/agrilink-backend/internal/reviewer"
	"github.com/agrilink/agrilink-backend/pkg/config"
	"github.com/agrilink/agrilink-backend/pkg/db"
	"github.com/agrilink/agrilink-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP db.Pinger,
	requestService orderrequests.Service,
	reviewerService reviewer.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/order-requests", func(r chi.Router) {
			r.Post("/", controllers.SubmitOrderRequest(requestService, logg))
			r.Get("/", controllers.ListOrderRequests(reviewerService, logg))
			r.With(middleware.RequireReviewer(logg)).
				Patch("/{requestId}/status", controllers.TransitionOrderRequest(reviewerService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Patch("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Patch("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
