package app

import (
	"context"
	"crypto/rand"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	authtoken "github.com/xenking/kicks-pos/internal/auth"
	"github.com/xenking/kicks-pos/internal/catalog"
	"github.com/xenking/kicks-pos/internal/domain/auth"
	"github.com/xenking/kicks-pos/internal/domain/checkout"
	"github.com/xenking/kicks-pos/internal/domain/report"
	"github.com/xenking/kicks-pos/internal/handler"
	"github.com/xenking/kicks-pos/pkg/health"
	"github.com/xenking/kicks-pos/pkg/httpmiddleware"
)

const (
	instrumentation = "github.com/xenking/kicks-pos"
	maxHeapBytes    = 1 << 30
)

// Run loads the catalog, wires the stores and services, serves the API and
// drains it on shutdown. It is the single wiring point for the server.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	cat, err := loadCatalog(cfg.SeedFile)
	if err != nil {
		return err
	}
	stores, err := cat.Open()
	if err != nil {
		return errors.Wrap(err, "open catalog")
	}
	lg.Info("Catalog loaded",
		zap.String("source", catalogSource(cfg.SeedFile)),
		zap.Int("products", len(cat.Products)),
		zap.Int("customers", len(cat.Customers)),
		zap.Int("operators", len(cat.Operators)),
	)

	secret, err := tokenSecret(lg, cfg.Auth.Secret)
	if err != nil {
		return err
	}
	tokens, err := authtoken.NewIssuer(secret, cfg.Auth.TokenTTL)
	if err != nil {
		return errors.Wrap(err, "create token issuer")
	}

	// Domain services.
	metrics, err := checkout.NewMetrics(m.MeterProvider().Meter(instrumentation + "/checkout"))
	if err != nil {
		return errors.Wrap(err, "create checkout metrics")
	}
	checkoutSvc := checkout.NewService(stores.Products, stores.Customers, stores.Tickets,
		checkout.WithMetrics(metrics),
		checkout.WithTracer(m.TracerProvider().Tracer(instrumentation+"/checkout")),
	)
	reports := report.NewService(stores.Products, stores.Tickets, stores.Customers)

	loginLimiter := httpmiddleware.NewLimiter(httpmiddleware.RateLimitConfig{
		Max:    cfg.RateLimit.Max,
		Window: cfg.RateLimit.Window,
	})

	api := handler.New(handler.Deps{
		Products:   stores.Products,
		Customers:  stores.Customers,
		Tickets:    stores.Tickets,
		Checkout:   checkoutSvc,
		Sessions:   checkout.NewSessions(),
		Reports:    reports,
		Directory:  auth.NewDirectory(stores.Operators),
		Tokens:     tokens,
		LoginLimit: loginLimiter.Middleware(),
	})

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("operators", time.Second, health.MinCount(stores.Operators.Count, 1))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("heap", time.Second, health.HeapCheck(maxHeapBytes))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// The logger is injected inside otelhttp so request logs carry the
	// trace id of the server span.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", otelhttp.NewHandler(
		httpmiddleware.Wrap(api,
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Recovery(),
			httpmiddleware.LogRequests(),
		),
		"pos-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.RequestID(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				ExposeHeaders:    []string{httpmiddleware.RequestIDHeader, "Retry-After"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
		),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loginLimiter.Run(gctx)
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	// Graceful shutdown: wait for cancellation, drain, then stop.
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})
	return g.Wait()
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	c, err := catalog.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "load seed file")
	}
	return c, nil
}

func catalogSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// tokenSecret returns the configured key, or a random one. Tokens signed
// with a random key do not survive a restart.
func tokenSecret(lg *zap.Logger, configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, errors.Wrap(err, "generate token secret")
	}
	lg.Warn("No auth secret configured, using a random key; sessions end on restart")
	return secret, nil
}
