// Package app wires the storefront together: configuration, storage, the CMS
// and auth clients, domain services, HTTP routes, and graceful shutdown.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/sentinel-sec/storefront/internal/contentful"
	"github.com/sentinel-sec/storefront/internal/domain/basket"
	"github.com/sentinel-sec/storefront/internal/domain/checkout"
	"github.com/sentinel-sec/storefront/internal/handler"
	"github.com/sentinel-sec/storefront/internal/storage/postgres"
	"github.com/sentinel-sec/storefront/internal/storage/sqlite"
	"github.com/sentinel-sec/storefront/internal/supabase"
	"github.com/sentinel-sec/storefront/pkg/health"
	"github.com/sentinel-sec/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// Order storage: Supabase Postgres pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Basket session state.
	sessions, err := sqlite.Open(cfg.SessionDB)
	if err != nil {
		return errors.Wrap(err, "open session store")
	}
	defer func() {
		_ = sessions.Close()
	}()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.DatabaseCheck(pool))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.SetReady(true)

	// Remote clients.
	cms := contentful.NewClient(contentful.Config{
		BaseURL:     cfg.Contentful.BaseURL,
		SpaceID:     cfg.Contentful.SpaceID,
		Environment: cfg.Contentful.Environment,
		AccessToken: cfg.Contentful.AccessToken,
	})
	auth := supabase.NewClient(supabase.Config{
		URL:     cfg.Supabase.URL,
		AnonKey: cfg.Supabase.AnonKey,
	})
	verifier := supabase.NewVerifier(cfg.Supabase.JWTSecret)

	// Domain services.
	orderRepo := postgres.NewOrderRepository(pool)
	baskets := basket.NewManager(sessions)
	checkoutSvc := checkout.NewService(baskets, orderRepo)

	// HTTP routes.
	h := handler.New(contentful.NewCatalog(cms), auth, verifier, baskets, checkoutSvc, orderRepo)
	mux := http.NewServeMux()
	healthSvc.RegisterRoutes(mux)
	h.RegisterRoutes(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(mux, "storefront",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
