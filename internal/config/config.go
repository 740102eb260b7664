package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type AppCfg struct {
	Name          string `mapstructure:"name" validate:"required"`
	Env           string `mapstructure:"env"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port" validate:"min=1,max=65535"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	MaxUploadMB   int64  `mapstructure:"max_upload_mb" validate:"min=1"`

	// MaxImagePixels rejects images whose width*height is larger.
	MaxImagePixels int64 `mapstructure:"max_image_pixels" validate:"min=1"`
}

type LogCfg struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// RootCfg holds the shared secret guarding mutating endpoints. Either the plain
// token or an argon2id PHC string of token+pepper must be set.
type RootCfg struct {
	SecretToken    string `mapstructure:"secret_token" validate:"required_without=SecretTokenPHC"`
	SecretTokenPHC string `mapstructure:"secret_token_phc"`
	SecretPepper   string `mapstructure:"secret_pepper"`
}

type StorageCfg struct {
	Disk        string `mapstructure:"disk" validate:"oneof=local s3"`
	Root        string `mapstructure:"root" validate:"required"`
	TempDir     string `mapstructure:"temp_dir"`
	ServePrefix string `mapstructure:"serve_prefix" validate:"startswith=/"`
}

type ScannerCfg struct {
	Enabled bool          `mapstructure:"enabled"`
	Host    string        `mapstructure:"host" validate:"required_if=Enabled true"`
	Port    int           `mapstructure:"port"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// Addr returns the clamd host:port pair.
func (s ScannerCfg) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type WorkerCfg struct {
	ImageConcurrency int `mapstructure:"image_concurrency"`
}

type DatabaseCfg struct {
	Driver      string `mapstructure:"driver" validate:"oneof=postgres mysql"`
	DSN         string `mapstructure:"dsn" validate:"required"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxIdle     int    `mapstructure:"max_idle"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	EnableTLS   bool   `mapstructure:"enable_tls"`
	InitRetries int    `mapstructure:"init_retries"`
}

type RedisCfg struct {
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	PoolSize    int    `mapstructure:"pool_size"`
	EnableTLS   bool   `mapstructure:"enable_tls"`
	CacheTTLSec int    `mapstructure:"cache_ttl_sec"`
}

type RabbitMQCfg struct {
	URL       string `mapstructure:"url"`
	EnableTLS bool   `mapstructure:"enable_tls"`
	Exchange  string `mapstructure:"exchange"`
}

type S3Cfg struct {
	Endpoint     string `mapstructure:"endpoint"`
	Region       string `mapstructure:"region"`
	Bucket       string `mapstructure:"bucket"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type TelemetryCfg struct {
	Enabled      bool    `mapstructure:"enabled"`
	OtlpEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type Config struct {
	App       AppCfg       `mapstructure:"app"`
	Log       LogCfg       `mapstructure:"log"`
	Root      RootCfg      `mapstructure:"root"`
	Storage   StorageCfg   `mapstructure:"storage"`
	Scanner   ScannerCfg   `mapstructure:"scanner"`
	Worker    WorkerCfg    `mapstructure:"worker"`
	Database  DatabaseCfg  `mapstructure:"database"`
	Redis     RedisCfg     `mapstructure:"redis"`
	RabbitMQ  RabbitMQCfg  `mapstructure:"rabbitmq"`
	S3        S3Cfg        `mapstructure:"s3"`
	Telemetry TelemetryCfg `mapstructure:"telemetry"`
}

// legacyEnv maps config keys to the variable names used by earlier deployments.
var legacyEnv = map[string]string{
	"root.secret_token":   "SECRET_TOKEN",
	"storage.root":        "BASE_PATH",
	"app.public_base_url": "BASE_URL",
	"scanner.enabled":     "CLAMAV_ENABLED",
	"scanner.host":        "CLAMAV_HOST",
	"scanner.port":        "CLAMAV_PORT",
	"database.dsn":        "DATABASE_URL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "assetbucket")
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8088)
	v.SetDefault("app.public_base_url", "http://localhost:8088/files")
	v.SetDefault("app.max_upload_mb", 64)
	v.SetDefault("app.max_image_pixels", 89_478_485)

	v.SetDefault("log.level", "info")

	v.SetDefault("root.secret_token", "")
	v.SetDefault("root.secret_token_phc", "")
	v.SetDefault("root.secret_pepper", "")

	v.SetDefault("storage.disk", "local")
	v.SetDefault("storage.root", "/app/storage")
	v.SetDefault("storage.temp_dir", "")
	v.SetDefault("storage.serve_prefix", "/files")

	v.SetDefault("scanner.enabled", false)
	v.SetDefault("scanner.host", "clamav")
	v.SetDefault("scanner.port", 3310)
	v.SetDefault("scanner.timeout", "10s")

	v.SetDefault("worker.image_concurrency", 0)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=asset_user password=asset_pass dbname=assets_bucket port=5432 sslmode=disable")
	v.SetDefault("database.max_open", 20)
	v.SetDefault("database.max_idle", 5)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.enable_tls", false)
	v.SetDefault("database.init_retries", 10)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.enable_tls", false)
	v.SetDefault("redis.cache_ttl_sec", 300)

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.enable_tls", false)
	v.SetDefault("rabbitmq.exchange", "assets")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.use_path_style", true)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.sample_ratio", 1.0)
}

// Load reads defaults, an optional config.yaml and the environment, in that order
// of increasing precedence, and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		v.SetConfigFile(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), legacy); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.App.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.App.PublicBaseURL), "/")

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Storage.Disk == "s3" && cfg.S3.Bucket == "" {
		return nil, errors.New("invalid config: s3.bucket is required when storage.disk is s3")
	}
	return cfg, nil
}
