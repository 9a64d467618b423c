package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	httpadp "credit-ledger/internal/adapter/http"
	idemp "credit-ledger/internal/adapter/middleware"
	"credit-ledger/internal/adapter/repository/mysql"
	"credit-ledger/internal/config"
	"credit-ledger/internal/infrastructure/cache"
	"credit-ledger/internal/infrastructure/db"
	"credit-ledger/internal/infrastructure/metrics"
	auditUC "credit-ledger/internal/usecase/audit"
	"credit-ledger/internal/usecase/collateral"
	"credit-ledger/internal/usecase/exposure"
	"credit-ledger/internal/usecase/facility"
	"credit-ledger/internal/usecase/loan"
	"credit-ledger/internal/usecase/utilization"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), db.LogLevel(cfg.LogLevel), log)
	if err != nil {
		log.Fatal("open mysql", zap.Error(err))
	}
	if err := mysql.Migrate(gdb); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	rdb, err := cache.OpenRedis(context.Background(), cfg.RedisAddr, cfg.RedisDB, log)
	if err != nil {
		log.Fatal("open redis", zap.Error(err))
	}
	defer rdb.Close()

	m := metrics.Ledger()
	quotes := cache.NewQuoteStore(rdb, cfg.QuoteTTL())
	recorder := auditUC.NewRecorder(log, m)

	// repositories
	loans := mysql.NewLoanRepository(gdb)
	facilities := mysql.NewFacilityRepository(gdb)
	snapshots := mysql.NewExposureRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	// usecases
	loanUC := loan.NewUsecase(loans, facilities, mysql.NewTransactionRepository(gdb), tx,
		loan.WithQuotes(quotes),
		loan.WithLogger(log.Named("loan")),
		loan.WithMetrics(m),
		loan.WithRecorder(recorder),
		loan.WithWeekendRule(cfg.Weekend()),
		loan.WithDueSoonDays(cfg.DueSoonDays),
	)
	facilityUC := facility.NewUsecase(facilities, tx,
		facility.WithLogger(log.Named("facility")),
		facility.WithRecorder(recorder),
	)
	collateralUC := collateral.NewUsecase(mysql.NewCollateralRepository(gdb), tx, log.Named("collateral"))
	exposureUC := exposure.NewUsecase(snapshots, tx, log.Named("exposure"), m)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("actor_id", c.Request().Header.Get(httpadp.HeaderActorID)),
			)
			return nil
		},
	}))

	// routes
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal("sql handle", zap.Error(err))
	}
	health := httpadp.NewHandler(
		httpadp.Check{Name: "mysql", Ping: sqlDB.PingContext},
		httpadp.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)

	httpadp.Register(e, httpadp.Handlers{
		Health:     health,
		Loans:      httpadp.NewLoanHandler(loanUC),
		Facilities: httpadp.NewFacilityHandler(facilityUC, utilization.NewUsecase(loans, facilities)),
		Collateral: httpadp.NewCollateralHandler(collateralUC),
		Exposure:   httpadp.NewExposureHandler(exposureUC),
		Rates:      httpadp.NewRateHandler(quotes),
	}, idemp.IdempotencyMiddleware(rdb, cfg.IdempTTL(), log.Named("idempotency")))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SnapshotEnabled {
		sched := exposure.NewScheduler(exposure.SchedulerConfig{
			Snapshots: exposureUC,
			Owners:    facilities,
			RunHour:   cfg.SnapshotRunHour,
			RunMinute: cfg.SnapshotRunMinute,
			Logger:    log.Named("snapshot"),
		})
		go sched.Start(ctx)
	}

	go func() {
		addr := ":" + cfg.AppPort
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
