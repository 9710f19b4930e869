package rest

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frahmantamala/smartsupply/internal/auth"
	"github.com/frahmantamala/smartsupply/internal/transport/middleware"
	"github.com/frahmantamala/smartsupply/internal/transport/swagger"
	"github.com/frahmantamala/smartsupply/internal/user"
	"github.com/frahmantamala/smartsupply/internal/warehouse"
)

// Routes collects what RegisterAllRoutes mounts. Nil handlers are skipped.
type Routes struct {
	Health          *HealthHandler
	Auth            *auth.Handler
	RBAC            *auth.RBACAuthorization
	User            *user.Handler
	Warehouse       *warehouse.Handler
	HTTPMetrics     *middleware.HTTPMetrics
	MetricsGatherer prometheus.Gatherer
	MetricsPath     string
	AllowedOrigins  []string
	Logger          *slog.Logger
}

func RegisterAllRoutes(router chi.Router, routes Routes) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(routes.Logger))
	router.Use(middleware.LoggingMiddleware(routes.Logger))
	router.Use(middleware.CORS(routes.AllowedOrigins))
	if routes.HTTPMetrics != nil {
		router.Use(routes.HTTPMetrics.Middleware)
	}

	router.Get(swagger.SpecPath, swagger.SpecHandler().ServeHTTP)
	router.Handle("/swagger/*", swagger.Handler())

	if routes.MetricsGatherer != nil {
		path := routes.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, promhttp.HandlerFor(routes.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	if routes.Health != nil {
		router.Get("/health", routes.Health.Health)
		router.Get("/ping", routes.Health.Ping)
	}

	if routes.Auth == nil {
		return
	}

	router.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", routes.Auth.Register)
		ar.Post("/login", routes.Auth.Login)

		ar.Group(func(pr chi.Router) {
			pr.Use(routes.Auth.AuthMiddleware)
			if routes.User != nil {
				pr.Get("/profile", routes.User.GetCurrentUser)
			}
			pr.Get("/permissions", routes.Auth.Permissions)
		})
	})

	if routes.Warehouse != nil && routes.RBAC != nil {
		router.Route("/warehouses", func(wr chi.Router) {
			wr.Use(routes.Auth.AuthMiddleware)

			wr.With(routes.RBAC.RequireViewWarehouses()).Get("/", routes.Warehouse.ListWarehouses)
			wr.With(routes.RBAC.RequireViewWarehouses()).Get("/{id}", routes.Warehouse.GetWarehouse)
			wr.With(routes.RBAC.RequireManageWarehouses()).Post("/", routes.Warehouse.CreateWarehouse)
		})
	}
}
