package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"mutuelle/internal/audit"
	auditHandler "mutuelle/internal/audit/handler"
	"mutuelle/internal/benefit"
	benefitHandler "mutuelle/internal/benefit/handler"
	benefitMetrics "mutuelle/internal/benefit/metrics"
	"mutuelle/internal/catalog"
	catalogHandler "mutuelle/internal/catalog/handler"
	"mutuelle/internal/family"
	familyHandler "mutuelle/internal/family/handler"
	familyMetrics "mutuelle/internal/family/metrics"
	"mutuelle/internal/platform/config"
	"mutuelle/internal/platform/httpserver"
	"mutuelle/internal/platform/logger"
	"mutuelle/internal/platform/metrics"
	platformredis "mutuelle/internal/platform/redis"
	"mutuelle/internal/token"
	httptransport "mutuelle/internal/transport/http"
	"mutuelle/pkg/domain"
)

const auditMirrorBuffer = 256

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("database unreachable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Audit pipeline: durable store plus a mirror channel drained by a
	// worker that writes structured audit logs.
	var auditStore audit.Store
	if db != nil {
		auditStore = audit.NewPostgresStore(db)
	} else {
		auditStore = audit.NewInMemoryStore()
	}
	mirror := make(chan audit.Entry, auditMirrorBuffer)
	recorder := audit.NewRecorder(auditStore,
		audit.WithLogger(log),
		audit.WithMirror(mirror),
	)

	// Catalog, optionally cached in Redis.
	var catalogStore catalog.Store
	if db != nil {
		catalogStore = catalog.NewPostgresStore(db)
	} else {
		catalogStore = catalog.NewInMemoryStore()
	}
	if redisClient != nil {
		catalogStore = catalog.NewCachedStore(catalogStore, redisClient, config.CatalogCacheTTL)
	}
	serviceCatalog := catalog.New(catalogStore,
		catalog.WithLogger(log),
		catalog.WithAuditRecorder(recorder),
	)
	if err := serviceCatalog.Seed(context.Background(), catalogDefaults(cfg)); err != nil {
		log.Error("failed to seed service catalog", "error", err)
		os.Exit(1)
	}

	// Family: store, per-owner transaction runner, service.
	var (
		famStore family.Store
		famTx    family.TxRunner
	)
	if db != nil {
		store := family.NewPostgresStore(db)
		famStore, famTx = store, newFamilyPostgresTx(db, store)
	} else {
		store := family.NewInMemoryStore()
		famStore, famTx = store, family.NewShardedTx(store)
	}
	familyService := family.NewService(famStore, famTx,
		family.WithLogger(log),
		family.WithAuditRecorder(recorder),
		family.WithMetrics(familyMetrics.New()),
	)

	// Benefit: store, per-request transaction runner, service.
	var (
		benStore benefit.Store
		benTx    benefit.TxRunner
	)
	if db != nil {
		store := benefit.NewPostgresStore(db)
		benStore, benTx = store, newBenefitPostgresTx(db, store)
	} else {
		store := benefit.NewInMemoryStore()
		benStore, benTx = store, benefit.NewShardedTx(store)
	}
	benefitService := benefit.NewService(benStore, benTx, serviceCatalog,
		benefit.WithLogger(log),
		benefit.WithAuditRecorder(recorder),
		benefit.WithMetrics(benefitMetrics.New()),
	)

	tokenService := token.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        metrics.New(),
		TokenValidator: token.NewMiddlewareAdapter(tokenService),
		Family:         familyHandler.New(familyService, log),
		Benefit:        benefitHandler.New(benefitService, log),
		Catalog:        catalogHandler.New(serviceCatalog, log),
		Audit:          auditHandler.New(auditStore, log),
		Health:         healthHandler(db, redisClient),
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return audit.NewWorker(log, mirror).Run(ctx)
	})

	group.Go(func() error {
		log.Info("starting mutuelle server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func catalogDefaults(cfg config.Server) []catalog.Service {
	return []catalog.Service{
		{Type: domain.BenefitMarriageAllowance, Label: "Marriage allowance", FixedAmount: cfg.MarriageAllowance, Enabled: true},
		{Type: domain.BenefitBirthAllowance, Label: "Birth allowance", FixedAmount: cfg.BirthAllowance, Enabled: true},
		{Type: domain.BenefitDeathAllowance, Label: "Death allowance", FixedAmount: cfg.DeathAllowance, Enabled: true},
		{Type: domain.BenefitSocialLoan, Label: "Social loan", Ceiling: cfg.SocialLoanCeiling, Enabled: true},
		{Type: domain.BenefitEconomicLoan, Label: "Economic loan", Ceiling: cfg.EconomicLoanCeiling, Enabled: true},
	}
}

func healthHandler(db *sql.DB, redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
