package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/smartsupply/internal"
	"github.com/frahmantamala/smartsupply/internal/auth"
	"github.com/frahmantamala/smartsupply/internal/core/events"
	"github.com/frahmantamala/smartsupply/internal/transport"
	"github.com/frahmantamala/smartsupply/internal/transport/middleware"
	"github.com/frahmantamala/smartsupply/internal/transport/rest"
	"github.com/frahmantamala/smartsupply/internal/transport/swagger"
	"github.com/frahmantamala/smartsupply/internal/user"
	userPostgres "github.com/frahmantamala/smartsupply/internal/user/postgres"
	"github.com/frahmantamala/smartsupply/internal/warehouse"
	warehousePostgres "github.com/frahmantamala/smartsupply/internal/warehouse/postgres"
	"github.com/frahmantamala/smartsupply/pkg/logger"
	"github.com/frahmantamala/smartsupply/pkg/telemetry"
)

const sqlDriver = "pgx"

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return startHTTPServer(ctx)
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sql.DB
	Gorm     *gorm.DB
	SQLX     *sqlx.DB
	Registry *prometheus.Registry
	Events   *events.EventBus
	Router   *chi.Mux
	Logger   *slog.Logger
	Shutdown []func(context.Context) error
}

func startHTTPServer(ctx context.Context) error {
	deps, err := initializeDependencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.close()

	setupRoutes(deps)

	cfg := deps.Config.Server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           otelhttp.NewHandler(deps.Router, "smartsupply-http"),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Logger.Info("starting HTTP server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		deps.Logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	deps.Logger.Info("server stopped")
	return nil
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	lg := deps.Logger

	authMetrics := auth.NewMetrics(deps.Registry)
	users := userPostgres.NewUserRepository(deps.Gorm)
	authService := auth.NewService(
		users,
		auth.NewArgon2Hasher(auth.Argon2ParamsFromConfig(cfg.Security.Argon2)),
		auth.NewJWTTokenGeneratorFromConfig(cfg.Security),
		deps.Events,
		authMetrics,
	)

	warehouseService := warehouse.NewService(warehousePostgres.NewWarehouseRepository(deps.SQLX), lg)

	routes := rest.Routes{
		Health:         rest.NewHealthHandler(deps.DB, lg),
		Auth:           auth.NewHandler(authService),
		RBAC:           auth.NewRBACAuthorization(lg, authMetrics),
		User:           user.NewHandler(),
		Warehouse:      warehouse.NewHandler(transport.NewBaseHandler(lg), warehouseService),
		AllowedOrigins: cfg.Server.Origins(),
		Logger:         lg,
	}
	if cfg.Observability.Metrics.Enabled {
		routes.HTTPMetrics = middleware.NewHTTPMetrics(deps.Registry)
		routes.MetricsGatherer = deps.Registry
		routes.MetricsPath = cfg.Observability.Metrics.Path
	}

	rest.RegisterAllRoutes(deps.Router, routes)
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Setup(logger.Options{
		Env:    config.Env,
		Level:  config.Observability.Logging.Level,
		Format: config.Observability.Logging.Format,
	})
	lg := logger.LoggerWrapper()

	deps := &Dependencies{
		Config:   config,
		Logger:   lg,
		Router:   chi.NewRouter(),
		Registry: prometheus.NewRegistry(),
		Events:   events.NewEventBus(lg),
	}

	if _, err := swagger.LoadSpec(ctx); err != nil {
		return nil, err
	}

	tracing := config.Observability.Tracing
	shutdownTracing, err := telemetry.InitTracing(ctx, telemetry.TracingConfig{
		Enabled:      tracing.Enabled,
		ServiceName:  tracing.ServiceName,
		Endpoint:     tracing.Endpoint,
		Insecure:     tracing.Insecure,
		SamplingRate: tracing.SamplingRate,
	}, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	deps.Shutdown = append(deps.Shutdown, shutdownTracing)

	db, err := initDB(ctx, config.Database)
	if err != nil {
		deps.close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.DB = db
	deps.Shutdown = append(deps.Shutdown, func(context.Context) error { return db.Close() })

	deps.Gorm, err = gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		deps.close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}
	deps.SQLX = sqlx.NewDb(db, sqlDriver)

	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	events.RegisterAuditLog(deps.Events, lg)
	// hooks run in reverse, so pending audit records flush before the database closes
	deps.Shutdown = append(deps.Shutdown, deps.Events.Drain)

	return deps, nil
}

func (d *Dependencies) close() {
	ctx, cancel := context.WithTimeout(context.Background(), d.Config.Server.ShutdownTimeout)
	defer cancel()
	for i := len(d.Shutdown) - 1; i >= 0; i-- {
		if err := d.Shutdown[i](ctx); err != nil {
			d.Logger.Error("shutdown hook failed", "error", err)
		}
	}
	d.Shutdown = nil
}

// initDB opens one pool shared by gorm, sqlx and the health check.
func initDB(ctx context.Context, cfg internal.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(sqlDriver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
