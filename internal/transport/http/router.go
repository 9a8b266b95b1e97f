package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/torn-watcher/internal/application/chain"
	"github.com/torn-watcher/internal/application/enroll"
	"github.com/torn-watcher/internal/application/events"
	"github.com/torn-watcher/internal/application/market"
	"github.com/torn-watcher/internal/application/notify"
	"github.com/torn-watcher/internal/application/stockalert"
	"github.com/torn-watcher/internal/application/watcher"
	"github.com/torn-watcher/internal/config"
	"github.com/torn-watcher/internal/transport/http/handler"
	appmiddleware "github.com/torn-watcher/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Runners builds every scheduled function from deps, keyed by its route name.
func Runners(cfg *config.Config, deps *Deps) map[string]handler.Runner {
	dispatcher := notify.NewDispatcher(deps.DeviceRepo, deps.NotificationRepo, deps.Push)

	return map[string]handler.Runner{
		watcher.Name: watcher.NewService(watcher.ServiceDeps{
			Credentials: deps.Credentials,
			UserRepo:    deps.UserRepo,
			Torn:        deps.Torn,
			Notifier:    dispatcher,
			Concurrency: cfg.FetchConcurrency,
			SendTimeout: cfg.SendTimeout,
		}),
		chain.Name: chain.NewService(chain.ServiceDeps{
			Credentials: deps.Credentials,
			TargetRepo:  deps.ChainTargetRepo,
			Torn:        deps.Torn,
			BatchLimit:  cfg.ChainBatchLimit,
			CallSpacing: cfg.CallSpacing,
		}),
		stockalert.Name: stockalert.NewService(stockalert.ServiceDeps{
			AlertRepo:   deps.StockAlertRepo,
			Feed:        deps.StockFeed,
			Notifier:    dispatcher,
			Concurrency: cfg.FetchConcurrency,
			SendTimeout: cfg.SendTimeout,
		}),
		market.ItemSyncName: market.NewItemSync(market.ItemSyncDeps{
			Credentials: deps.Credentials,
			ItemRepo:    deps.ItemRepo,
			Torn:        deps.Torn,
			Archiver:    deps.Archiver,
			Concurrency: cfg.FetchConcurrency,
		}),
		market.BazaarSyncName: market.NewBazaarSync(market.BazaarSyncDeps{
			Credentials: deps.Credentials,
			ItemRepo:    deps.ItemRepo,
			Torn:        deps.Torn,
			BatchLimit:  cfg.BazaarBatchLimit,
			CallSpacing: cfg.CallSpacing,
		}),
		market.StockSyncName: market.NewStockSync(market.StockSyncDeps{
			Credentials: deps.Credentials,
			StockRepo:   deps.StockRepo,
			Torn:        deps.Torn,
			Archiver:    deps.Archiver,
		}),
		events.Name: events.NewService(events.ServiceDeps{
			Credentials: deps.Credentials,
			EventRepo:   deps.EventRepo,
			Torn:        deps.Torn,
			Concurrency: cfg.FetchConcurrency,
		}),
	}
}

// Routes are the services the router exposes.
type Routes struct {
	Runners map[string]handler.Runner
	// Enroll is nil when keys are managed outside DynamoDB; the route is then not mounted.
	Enroll enroll.Service
	// Verifier is nil when no public key is configured; function routes are then open.
	Verifier appmiddleware.TokenVerifier
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, routes Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := func(next http.Handler) http.Handler { return next }
	if routes.Verifier != nil {
		authMw = appmiddleware.Auth(routes.Verifier)
	}

	// one run per second per caller, burst of 10 for a cron firing every function at once
	functionsRL := appmiddleware.NewRateLimiter(rate.Limit(1), 10)
	// enrollment hits the Torn API, keep it slow
	enrollRL := appmiddleware.NewRateLimiter(rate.Limit(0.2), 3)

	healthH := handler.NewHealthHandler()
	functionH := handler.NewFunctionHandler(routes.Runners)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		if routes.Enroll != nil {
			r.With(enrollRL.Limit).Post("/users", handler.NewEnrollHandler(routes.Enroll).Enroll)
		}

		r.Group(func(r chi.Router) {
			r.Use(functionsRL.Limit)
			r.Use(authMw)
			r.Use(chimiddleware.Timeout(cfg.RunTimeout))

			r.Get("/functions", functionH.List)
			r.With(appmiddleware.RequireScope("name")).Post("/functions/{name}", functionH.Invoke)
		})
	})

	return r
}
