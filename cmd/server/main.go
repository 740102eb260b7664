package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/memodb-io/assetbucket/internal/bootstrap"
	"github.com/memodb-io/assetbucket/internal/config"
	"github.com/memodb-io/assetbucket/internal/infra/cache"
	"github.com/memodb-io/assetbucket/internal/infra/db"
	"github.com/memodb-io/assetbucket/internal/modules/handler"
	"github.com/memodb-io/assetbucket/internal/modules/service"
	"github.com/memodb-io/assetbucket/internal/router"
	"github.com/memodb-io/assetbucket/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//	@title						Asset Bucket API
//	@version					1.0
//	@description				Upload, variant generation, serving and deletion of media assets.
//	@BasePath					/
//	@securityDefinitions.apikey	SecretToken
//	@in							header
//	@name						X-Secret-Token
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "assetbucket",
		Short:        "Serve the asset bucket HTTP API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	root.AddCommand(newHashSecretCmd())
	return root
}

func run() error {
	inj := bootstrap.BuildContainer()

	cfg, err := do.Invoke[*config.Config](inj)
	if err != nil {
		return err
	}
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.OtlpEndpoint != "" {
		if _, err := telemetry.SetupTracing(cfg); err != nil {
			log.Warn("tracing disabled", zap.Error(err))
		}
		if _, err := telemetry.SetupMetrics(cfg); err != nil {
			log.Warn("metrics disabled", zap.Error(err))
		}
	}
	if err := telemetry.InitAssetMetrics(); err != nil {
		log.Warn("asset metrics disabled", zap.Error(err))
	}

	gdb, err := do.Invoke[*gorm.DB](inj)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	rdb, err := do.Invoke[*redis.Client](inj)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if cfg.Telemetry.Enabled {
		if err := db.RegisterOpenTelemetryPlugin(gdb); err != nil {
			log.Warn("gorm tracing disabled", zap.Error(err))
		}
		if rdb != nil {
			if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
				log.Warn("redis tracing disabled", zap.Error(err))
			}
		}
	}
	pub, err := do.Invoke[service.EventPublisher](inj)
	if err != nil {
		return fmt.Errorf("rabbitmq: %w", err)
	}

	engine, err := router.NewRouter(router.RouterDeps{
		Config:       cfg,
		Log:          log,
		AssetHandler: do.MustInvoke[*handler.AssetHandler](inj),
	})
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server", zap.String("addr", addr), zap.String("disk", cfg.Storage.Disk))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http server shutdown", zap.Error(err))
	}

	if c, ok := pub.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn("close rabbitmq", zap.Error(err))
		}
	}
	if err := cache.Close(rdb); err != nil {
		log.Warn("close redis", zap.Error(err))
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := telemetry.ShutdownMetrics(ctx); err != nil {
		log.Warn("shutdown metrics", zap.Error(err))
	}
	if err := telemetry.Shutdown(ctx); err != nil {
		log.Warn("shutdown tracing", zap.Error(err))
	}
	return nil
}
