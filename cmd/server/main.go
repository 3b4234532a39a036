// medgate server: staged multi-factor login for hospital staff and
// administrators, with an audit trail of every verification decision.
//
// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"medgate/internal/audit"
	auditHandler "medgate/internal/audit/handler"
	"medgate/internal/biometric"
	"medgate/internal/geofence"
	loginHandler "medgate/internal/login/handler"
	loginService "medgate/internal/login/service"
	"medgate/internal/password"
	"medgate/internal/platform/config"
	"medgate/internal/platform/database"
	"medgate/internal/platform/kafka/producer"
	"medgate/internal/platform/logger"
	"medgate/internal/platform/metrics"
	"medgate/internal/platform/middleware"
	"medgate/internal/platform/tracer"
	"medgate/internal/principal"
	"medgate/internal/seeder"
	"medgate/internal/token"
	"medgate/migrations"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log.Info("initializing medgate",
		"addr", cfg.Addr,
		"production", cfg.Production,
		"geofence_configured", cfg.Geofence.Reference != nil,
	)

	m := metrics.New()

	pool, err := database.New(databaseConfig(cfg))
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	var principalStore loginService.PrincipalStore
	var auditStore audit.Store
	if pool != nil {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := pool.Migrate(migrateCtx, migrations.FS); err != nil {
			cancel()
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		cancel()
		principalStore = principal.NewPostgres(pool.DB())
		auditStore = audit.NewPostgres(pool.DB())
		log.Info("using postgres stores")
	} else {
		principalStore = principal.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	recorderOpts := []audit.RecorderOption{
		audit.WithLogger(log),
		audit.WithMetrics(m),
	}
	var kafkaProducer *producer.Producer
	if cfg.KafkaBrokers != "" {
		kafkaProducer, err = producer.New(producer.Config{
			Brokers:         cfg.KafkaBrokers,
			Retries:         3,
			DeliveryTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			log.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		defer kafkaProducer.Close() //nolint:errcheck
		recorderOpts = append(recorderOpts, audit.WithPublisher(audit.NewKafkaPublisher(kafkaProducer, cfg.AuditTopic)))
		log.Info("audit events will be published to kafka", "topic", cfg.AuditTopic)
	}
	recorder := audit.NewRecorder(auditStore, recorderOpts...)

	hasher := password.NewHasher(cfg.BcryptCost)
	issuer := token.NewIssuer(cfg.JWTSigningKey, "medgate", cfg.StageTokenTTL, cfg.SessionTTL)

	svc := loginService.NewService(
		principalStore,
		hasher,
		biometric.NewMatcher(cfg.MatchThreshold),
		geofence.NewValidator(cfg.Geofence),
		issuer,
		recorder,
		loginService.WithLogger(log),
		loginService.WithMetrics(m),
		loginService.WithTracer(tracer.NewOTel()),
	)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelSeed()
	seed := seeder.New(principalStore, hasher, log)
	if err := seed.EnsureAdmin(seedCtx, cfg.SeedAdminEmail, cfg.SeedAdminPassword, cfg.SeedAdminName); err != nil {
		log.Error("admin seed failed", "error", err)
		os.Exit(1)
	}
	if cfg.SeedDemoData {
		if err := seed.SeedDemoData(seedCtx, cfg.Geofence.Reference); err != nil {
			log.Error("demo seed failed", "error", err)
			os.Exit(1)
		}
	}

	router := newRouter(cfg, log, m, svc, auditStore, issuer, pool, kafkaProducer)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		pool.Close() //nolint:errcheck
	}
	log.Info("server stopped")
}

func databaseConfig(cfg config.Server) database.Config {
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	return dbCfg
}

func newRouter(
	cfg config.Server,
	log *slog.Logger,
	m *metrics.Metrics,
	svc *loginService.Service,
	auditStore audit.Store,
	issuer *token.Issuer,
	pool *database.Pool,
	kafkaProducer *producer.Producer,
) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics(m))

	login := loginHandler.New(svc, log)
	login.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(issuer, token.ScopeStage, log))
		login.RegisterStaged(r)
	})

	activities := auditHandler.New(auditStore, log)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(issuer, token.ScopeSession, log))
		r.Use(middleware.RequireRole(principal.RoleAdmin, log))
		activities.Register(r)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler(pool, kafkaProducer))

	return r
}

// healthHandler reports liveness plus the state of optional backends.
func healthHandler(pool *database.Pool, kafkaProducer *producer.Producer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := `{"status":"ok"}`
		if pool != nil && pool.Health(ctx) != nil {
			status = http.StatusServiceUnavailable
			body = `{"status":"degraded","database":"unreachable"}`
		} else if kafkaProducer != nil && !kafkaProducer.Healthy(ctx) {
			status = http.StatusServiceUnavailable
			body = `{"status":"degraded","kafka":"unreachable"}`
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
