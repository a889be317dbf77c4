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
	"go.uber.org/zap"

	httpadp "p2p-backoffice/internal/adapter/http"
	idemp "p2p-backoffice/internal/adapter/middleware"
	"p2p-backoffice/internal/adapter/repository/mysql"
	"p2p-backoffice/internal/app"
	"p2p-backoffice/internal/config"
	"p2p-backoffice/internal/infrastructure/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap", zap.Error(err))
	}
	defer a.Close()
	if err := mysql.Migrate(a.DB); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	var docs httpadp.SourceFunc
	if a.HasDocumentStore() {
		docs = a.MongoSource
	}
	health := httpadp.NewHandler().
		WithCheck("database", func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}).
		WithCheck("redis", func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() })

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Recover(), middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			log.Info("request", fields...)
			return nil
		},
	}))

	httpadp.Register(e, httpadp.Handlers{
		Health:        health,
		Config:        httpadp.NewConfigHandler(a.Configs, log),
		Applications:  httpadp.NewApplicationHandler(a.Applications, a.Disbursements, log),
		Disbursements: httpadp.NewDisbursementHandler(a.Disbursements, log),
		Sync:          httpadp.NewSyncHandler(a.Mirror, docs, a.ExportSource, log),
		Dashboard:     httpadp.NewDashboardHandler(a.Dashboard, log),
	}, idemp.Idempotency(a.Redis, cfg.IdempotencyTTL(), log))

	go func() {
		addr := ":" + cfg.AppPort
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdown); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
