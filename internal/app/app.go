// Package app wires configuration, storage and usecases for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"p2p-backoffice/internal/adapter/messaging/kafka"
	"p2p-backoffice/internal/adapter/mongo"
	"p2p-backoffice/internal/adapter/remote"
	"p2p-backoffice/internal/adapter/repository/mysql"
	"p2p-backoffice/internal/config"
	cfgDomain "p2p-backoffice/internal/domain/loanconfig"
	"p2p-backoffice/internal/domain/mirror"
	"p2p-backoffice/internal/infrastructure/cache"
	"p2p-backoffice/internal/infrastructure/db"
	"p2p-backoffice/internal/infrastructure/logger"
	"p2p-backoffice/internal/usecase/application"
	"p2p-backoffice/internal/usecase/dashboard"
	"p2p-backoffice/internal/usecase/disbursement"
	"p2p-backoffice/internal/usecase/loanconfig"
	mirrorUC "p2p-backoffice/internal/usecase/mirror"
)

// ErrNoDocumentStore is returned by MongoSource when MONGO_URI is unset.
var ErrNoDocumentStore = errors.New("document store not configured")

type App struct {
	Cfg    *config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	Remote *remote.Client

	Configs       *loanconfig.Provider
	Applications  *application.Usecase
	Disbursements *disbursement.Usecase
	Mirror        *mirrorUC.Service
	Dashboard     *dashboard.Usecase

	docs     *mongo.Source
	producer *kafka.Producer
}

// New opens every backing service named by cfg. Mongo and Kafka are optional.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	log = logger.OrNop(log)
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		if sqlDB, dbErr := gdb.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("open redis: %w", err)
	}

	var (
		events   disbursement.EventPublisher = kafka.Nop{}
		producer *kafka.Producer
	)
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		producer = kafka.NewProducer(brokers)
		events = kafka.NewDisbursementPublisher(producer, cfg.KafkaTopic)
	} else {
		log.Info("no kafka brokers configured, disbursement events are dropped")
	}
	a := Assemble(cfg, log, gdb, rdb, events)
	a.producer = producer

	if cfg.MongoURI != "" {
		a.docs, err = mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

// Assemble builds the usecases over already opened stores.
func Assemble(cfg *config.Config, log *zap.Logger, gdb *gorm.DB, rdb *redis.Client, events disbursement.EventPublisher) *App {
	a := &App{Cfg: cfg, Log: logger.OrNop(log), DB: gdb, Redis: rdb}
	a.Remote = remote.NewClient(a.Log)
	configs := mysql.NewConfigRepository(a.DB)
	apps := mysql.NewApplicationRepository(a.DB)
	tx := mysql.NewGormUoW(a.DB)

	a.Configs = loanconfig.NewProvider(configs, a.Remote, a.Log)
	a.Applications = application.NewUsecase(apps, configs, a.Configs, tx, a.Log)
	a.Disbursements = disbursement.NewUsecase(
		mysql.NewDisbursementRepository(a.DB), apps, a.Configs, tx, a.Remote, events, a.Log)
	a.Mirror = mirrorUC.NewService(
		mysql.NewMirrorStore(a.DB),
		mysql.NewMirrorLoanRepository(a.DB),
		mysql.NewPartyRepository(a.DB),
		apps,
		configs,
		cache.NewLocker(a.Redis, a.Cfg.SyncLockTTL()),
		a.Log,
	)
	a.Dashboard = dashboard.NewUsecase(mysql.NewMirrorLoanRepository(a.DB), a.Log)
	return a
}

func (a *App) MongoSource(context.Context) (mirror.Source, error) {
	if a.docs == nil {
		return nil, ErrNoDocumentStore
	}
	return a.docs, nil
}

// ExportSource targets the active configuration's server, falling back to
// REMOTE_API_URL and REMOTE_EXPORT_AUTH when the record leaves them empty.
func (a *App) ExportSource(ctx context.Context) (mirror.Source, error) {
	ep := cfgDomain.ServerEndpoint{URL: a.Cfg.RemoteAPIURL, APIKey: a.Cfg.RemoteExportAuth}
	c, err := a.Configs.Active(ctx)
	switch {
	case err == nil:
		if srv := c.Server(); srv.URL != "" {
			ep.URL = srv.URL
		}
		if ep.APIKey == "" {
			ep.APIKey = c.ServerAPIKey
		}
	case !errors.Is(err, cfgDomain.ErrNoActiveConfig):
		return nil, err
	}
	return remote.NewExportSource(a.Remote, ep), nil
}

// HasDocumentStore reports whether MongoSource can succeed.
func (a *App) HasDocumentStore() bool { return a.docs != nil }

func (a *App) Close() {
	ctx := context.Background()
	if a.docs != nil {
		if err := a.docs.Close(ctx); err != nil {
			a.Log.Warn("mongo disconnect", zap.Error(err))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.Log.Warn("kafka close", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
