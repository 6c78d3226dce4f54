package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/trimbook/internal/audit"
	"github.com/BruksfildServices01/trimbook/internal/auth"
	"github.com/BruksfildServices01/trimbook/internal/billing"
	"github.com/BruksfildServices01/trimbook/internal/config"
	dbpkg "github.com/BruksfildServices01/trimbook/internal/db"
	"github.com/BruksfildServices01/trimbook/internal/domain/shop"
	"github.com/BruksfildServices01/trimbook/internal/events"
	"github.com/BruksfildServices01/trimbook/internal/guard"
	infraRepo "github.com/BruksfildServices01/trimbook/internal/infra/repository"
	"github.com/BruksfildServices01/trimbook/internal/logger"
	"github.com/BruksfildServices01/trimbook/internal/middleware"
	"github.com/BruksfildServices01/trimbook/internal/realtime"
	"github.com/BruksfildServices01/trimbook/internal/routes"
	ucIdentity "github.com/BruksfildServices01/trimbook/internal/usecase/identity"
	ucShop "github.com/BruksfildServices01/trimbook/internal/usecase/shop"
	"github.com/BruksfildServices01/trimbook/internal/validators"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zlog *zap.Logger) error {
	// ======================================================
	// 🔧 STORES
	// ======================================================
	db, shops, closeStores, err := openStores(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	defer closeStores()

	users := infraRepo.NewUserGormRepository(db)

	// ======================================================
	// 💳 BILLING
	// ======================================================
	ledger := billing.NewService(db)

	var checker billing.Checker = ledger
	if !cfg.BillingRequired {
		zlog.Warn("billing checks disabled")
		checker = billing.AlwaysActive{}
	}

	var mpSync *billing.MercadoPagoSync
	if cfg.MercadoPagoAccessToken != "" {
		client, err := billing.NewMercadoPagoClient(cfg.MercadoPagoAccessToken)
		if err != nil {
			return err
		}
		mpSync = billing.NewMercadoPagoSync(client, ledger, cfg.BillingPeriod, zlog)
	}

	// ======================================================
	// 📣 EVENTS + REALTIME
	// ======================================================
	auditLog := audit.New(db)

	var hub *realtime.Hub
	sinks := []events.Sink{auditLog}

	var redisBus *events.RedisBus
	if cfg.RedisAddr != "" {
		redisBus, err = events.NewRedisBus(ctx, events.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.EventsChannel,
		}, zlog)
		if err != nil {
			return err
		}
		defer redisBus.Close()
		sinks = append(sinks, redisBus)
	} else {
		// hub is assigned below, before any request can publish
		sinks = append(sinks, events.NewLocalBus(func(ev events.Event) { hub.Broadcast(ev) }))
	}

	dispatcher := events.NewDispatcher(zlog, cfg.EventQueue, sinks...)
	defer dispatcher.Close()

	hub = realtime.NewHub(dispatcher, zlog)
	if redisBus != nil {
		if err := redisBus.StartForwarder(ctx, hub.Broadcast); err != nil {
			return err
		}
	}

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	tokens := auth.NewJWT(cfg.JWTSecret, cfg.TokenTTL)
	shopService := ucShop.NewService(shops, guard.New(checker), dispatcher, cfg.StoreTimeout, zlog)

	var checkDomain func(string) bool
	if cfg.CheckEmailDomain {
		checkDomain = validators.IsEmailDomainValid
	}
	identityService := ucIdentity.NewService(users, tokens, shopService, checkDomain, zlog)

	// ======================================================
	// 🌐 HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Identity:    identityService,
		Shops:       shopService,
		AuditLogs:   auditLog,
		Billing:     mpSync,
		Hub:         hub,
		Tokens:      tokens,
		Limiter:     middleware.NewClientLimiter(cfg.PublicRateLimit, cfg.PublicRateBurst),
		CORSOrigins: cfg.CORSOrigins,
		Log:         zlog,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		zlog.Info("server running", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		zlog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStores returns the relational database (users, payments, audit) and
// the shop aggregate store selected by STORE_BACKEND.
func openStores(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (*gorm.DB, shop.Repository, func(), error) {
	noop := func() {}

	switch cfg.StoreBackend {
	case "memory":
		db, err := dbpkg.NewSQLite("file:trimbook?mode=memory&cache=shared")
		if err != nil {
			return nil, nil, noop, err
		}
		zlog.Warn("using in-memory stores, data is lost on restart")
		return db, infraRepo.NewShopMemoryRepository(), noop, nil

	case "mongo":
		db, err := dbpkg.NewDB(cfg)
		if err != nil {
			return nil, nil, noop, err
		}
		client, mdb, err := dbpkg.NewMongo(ctx, cfg, zlog)
		if err != nil {
			return nil, nil, noop, err
		}
		shops, err := infraRepo.NewShopMongoRepository(ctx, mdb)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, noop, err
		}
		return db, shops, func() { _ = client.Disconnect(context.Background()) }, nil

	case "postgres":
		db, err := dbpkg.NewDB(cfg)
		if err != nil {
			return nil, nil, noop, err
		}
		return db, infraRepo.NewShopGormRepository(db), noop, nil
	}

	return nil, nil, noop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
