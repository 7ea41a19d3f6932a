package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"scholarchat/internal/config"
	"scholarchat/internal/model"
	mysqlClient "scholarchat/internal/platform/mysql"
	rabbitmqClient "scholarchat/internal/platform/rabbitmq"
	redisClient "scholarchat/internal/platform/redis"
	"scholarchat/internal/repository"
	"scholarchat/internal/worker"
)

type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	MySQL        *gorm.DB
	Redis        *redis.Client
	MQConn       *amqp.Connection
	LedgerWorker *worker.LedgerWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger, err := newLogger(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.Paper{},
		&model.Passage{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.PointTransaction{},
		&model.Feedback{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	transactionRepo := repository.NewPointTransactionRepository(mysqlDB)
	ledgerWorker := worker.NewLedgerWorker(mqConn, transactionRepo, cfg.RabbitMQ.LedgerQueue, logger)
	if err := ledgerWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ledger worker failed: %w", err)
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		MySQL:        mysqlDB,
		Redis:        redisCli,
		MQConn:       mqConn,
		LedgerWorker: ledgerWorker,
		StartedAt:    time.Now(),
	}, nil
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" || env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.LedgerWorker != nil {
		a.LedgerWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}
