package bootstrap

import (
	"context"
	"time"

	"github.com/memodb-io/assetbucket/internal/config"
	"github.com/memodb-io/assetbucket/internal/infra/blob"
	"github.com/memodb-io/assetbucket/internal/infra/cache"
	"github.com/memodb-io/assetbucket/internal/infra/db"
	"github.com/memodb-io/assetbucket/internal/infra/logger"
	mq "github.com/memodb-io/assetbucket/internal/infra/queue"
	"github.com/memodb-io/assetbucket/internal/infra/scanner"
	"github.com/memodb-io/assetbucket/internal/modules/handler"
	"github.com/memodb-io/assetbucket/internal/modules/model"
	"github.com/memodb-io/assetbucket/internal/modules/repo"
	"github.com/memodb-io/assetbucket/internal/modules/service"
	"github.com/memodb-io/assetbucket/internal/pkg/media"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		d, err := db.New(cfg, log)
		if err != nil {
			return nil, err
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			if err := d.AutoMigrate(&model.Asset{}); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis, nil when redis.addr is empty
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cache.New(cfg)
	})

	// RabbitMQ DialFunc for connection and reconnection
	do.Provide(inj, func(i *do.Injector) (mq.DialFunc, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return mq.NewDialFunc(cfg), nil
	})

	// Asset events, disabled when rabbitmq.url is empty
	do.Provide(inj, func(i *do.Injector) (service.EventPublisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.RabbitMQ.URL == "" {
			return nil, nil
		}
		p, err := mq.NewPublisher(
			do.MustInvoke[*zap.Logger](i),
			cfg,
			do.MustInvoke[mq.DialFunc](i),
		)
		if err != nil {
			return nil, err
		}
		return p, nil
	})

	// Storage backend
	do.Provide(inj, func(i *do.Injector) (blob.Storage, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.Storage.Disk == blob.DiskS3 {
			return blob.NewS3(context.Background(), cfg)
		}
		return blob.NewLocal(cfg.Storage.Root)
	})
	do.Provide(inj, func(i *do.Injector) (media.StorageConfig, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return media.NewStorageConfig(cfg.Storage.Root, cfg.Storage.ServePrefix), nil
	})

	// Scanner
	do.Provide(inj, func(i *do.Injector) (scanner.Scanner, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.Scanner.Enabled {
			do.MustInvoke[*zap.Logger](i).Warn("virus scanning disabled")
			return scanner.Noop{}, nil
		}
		return scanner.NewClamd(cfg.Scanner.Addr(), cfg.Scanner.Timeout), nil
	})

	// Image worker pool
	do.Provide(inj, func(i *do.Injector) (*media.Pool, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return media.NewPool(cfg.Worker.ImageConcurrency), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.AssetRepo, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return repo.NewCachedAssetRepo(
			repo.NewAssetRepo(do.MustInvoke[*gorm.DB](i)),
			do.MustInvoke[*redis.Client](i),
			time.Duration(cfg.Redis.CacheTTLSec)*time.Second,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.AssetService, error) {
		return service.NewAssetService(
			do.MustInvoke[repo.AssetRepo](i),
			do.MustInvoke[blob.Storage](i),
			do.MustInvoke[scanner.Scanner](i),
			do.MustInvoke[*media.Pool](i),
			do.MustInvoke[media.StorageConfig](i),
			do.MustInvoke[service.EventPublisher](i),
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[*config.Config](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.AssetHandler, error) {
		return handler.NewAssetHandler(do.MustInvoke[service.AssetService](i)), nil
	})
	return inj
}
