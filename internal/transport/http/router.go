package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lostfound-notify/internal/application/dispatch"
	"github.com/lostfound-notify/internal/application/notification"
	"github.com/lostfound-notify/internal/application/subscription"
	"github.com/lostfound-notify/internal/config"
	"github.com/lostfound-notify/internal/transport/http/handler"
	appmiddleware "github.com/lostfound-notify/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

var triggerPaths = []string{"/v1/notify", "/notify-users"}

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of background work owned by the router, such as limiter cleanup.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(corsByPath(
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		// The trigger is called by other backends and browsers alike, so it
		// is open to any origin regardless of ALLOWED_ORIGINS.
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Client-Info", "Apikey"},
			MaxAge:         300,
		}),
		triggerPaths...,
	))

	authMw := appmiddleware.Deny
	if deps.Verifier != nil {
		authMw = appmiddleware.Auth(deps.Verifier)
	}

	notifyRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.NotifyRateLimit), cfg.NotifyRateBurst)

	dispatchDeps := dispatch.ServiceDeps{
		Notifications:   deps.Notifications,
		Subscriptions:   deps.Subscriptions,
		Sender:          deps.Sender,
		Publisher:       deps.Publisher,
		DefaultRadiusKm: cfg.DefaultRadiusKm,
		MaxConcurrency:  cfg.Push.MaxConcurrency,
		SendTimeout:     cfg.Push.SendTimeout,
		PushBudget:      cfg.Push.DispatchBudget,
	}
	if deps.Metrics != nil {
		dispatchDeps.Metrics = deps.Metrics
	}
	dispatchSvc := dispatch.NewService(dispatchDeps)
	notifSvc := notification.NewService(deps.Notifications)
	subSvc := subscription.NewService(deps.Subscriptions)

	vapidPublicKey := ""
	if deps.Sender != nil {
		vapidPublicKey = cfg.Push.VAPIDPublicKey
	}

	healthH := handler.NewHealthHandler()
	notifyH := handler.NewNotifyHandler(dispatchSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	subH := handler.NewSubscriptionHandler(subSvc, vapidPublicKey)

	r.With(notifyRL.Limit).Post("/notify-users", notifyH.Notify)

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(notifyRL.Limit).Post("/notify", notifyH.Notify)
		r.Get("/push/public-key", subH.PublicKey)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/notifications", notifH.List)
			r.Get("/notifications/{id}", notifH.Get)
			r.Put("/notifications/{id}/read", notifH.MarkAsRead)

			r.Get("/push/subscriptions", subH.List)
			r.Post("/push/subscriptions", subH.Subscribe)
			r.Put("/push/subscriptions/{id}/location", subH.UpdateLocation)
			r.Delete("/push/subscriptions/{id}", subH.Unsubscribe)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(appmiddleware.RoleAdmin))

				r.Get("/admin/users/{id}/push-subscriptions", subH.ListForUser)
				r.Delete("/admin/users/{id}/push-subscriptions", subH.PurgeUser)
			})
		})
	})

	return r
}

// corsByPath applies open to the listed paths and restricted to everything else.
func corsByPath(restricted, open func(http.Handler) http.Handler, openPaths ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		r, o := restricted(next), open(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			for _, p := range openPaths {
				if req.URL.Path == p {
					o.ServeHTTP(w, req)
					return
				}
			}
			r.ServeHTTP(w, req)
		})
	}
}
