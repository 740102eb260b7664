package db

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/memodb-io/assetbucket/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

var sslmodeRegex = regexp.MustCompile(`(?i)\bsslmode\s*=\s*\w+`)

// New opens the metadata store. The database container usually starts slower
// than the service, so opening is retried with a linear backoff.
func New(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	dialector, err := dialector(cfg.Database)
	if err != nil {
		return nil, err
	}

	attempts := max(1, cfg.Database.InitRetries)
	var db *gorm.DB
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		if attempt == attempts {
			return nil, fmt.Errorf("open %s: %w", cfg.Database.Driver, err)
		}
		wait := time.Duration(attempt) * time.Second
		log.Warn("database not ready, retrying",
			zap.String("driver", cfg.Database.Driver),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
		time.Sleep(wait)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	return db, nil
}

func dialector(cfg config.DatabaseCfg) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(PostgresDSN(cfg.DSN, cfg.EnableTLS)), nil
	case "mysql":
		return mysql.Open(MySQLDSN(cfg.DSN, cfg.EnableTLS)), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// PostgresDSN forces sslmode=require when TLS is enabled.
func PostgresDSN(dsn string, enableTLS bool) string {
	if !enableTLS {
		return dsn
	}
	if sslmodeRegex.MatchString(dsn) {
		return sslmodeRegex.ReplaceAllString(dsn, "sslmode=require")
	}
	if !strings.HasSuffix(dsn, " ") {
		dsn += " "
	}
	return dsn + "sslmode=require"
}

// MySQLDSN makes sure timestamps scan into time.Time and adds tls=true when
// TLS is enabled.
func MySQLDSN(dsn string, enableTLS bool) string {
	params := map[string]string{"parseTime": "true"}
	if enableTLS {
		params["tls"] = "true"
	}
	for _, key := range []string{"parseTime", "tls"} {
		val, ok := params[key]
		if !ok || strings.Contains(dsn, key+"=") {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + key + "=" + val
	}
	return dsn
}

// RegisterOpenTelemetryPlugin registers the OpenTelemetry plugin for GORM.
// Call it after telemetry.SetupTracing so the global tracer provider is set.
func RegisterOpenTelemetryPlugin(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin())
}
