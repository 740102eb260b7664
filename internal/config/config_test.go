package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ROOT_SECRET_TOKEN", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "assetbucket", cfg.App.Name)
	assert.Equal(t, 8088, cfg.App.Port)
	assert.Equal(t, "s3cret", cfg.Root.SecretToken)
	assert.Equal(t, "local", cfg.Storage.Disk)
	assert.Equal(t, "/files", cfg.Storage.ServePrefix)
	assert.Equal(t, 10*time.Second, cfg.Scanner.Timeout)
	assert.False(t, cfg.Scanner.Enabled)
	assert.Equal(t, "clamav:3310", cfg.Scanner.Addr())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, int64(89_478_485), cfg.App.MaxImagePixels)
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Setenv("SECRET_TOKEN", "legacy-token")
	t.Setenv("BASE_PATH", "/srv/storage")
	t.Setenv("BASE_URL", " http://cdn.local/files/ ")
	t.Setenv("CLAMAV_ENABLED", "true")
	t.Setenv("CLAMAV_HOST", "scanner")
	t.Setenv("CLAMAV_PORT", "3311")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "legacy-token", cfg.Root.SecretToken)
	assert.Equal(t, "/srv/storage", cfg.Storage.Root)
	assert.Equal(t, "http://cdn.local/files", cfg.App.PublicBaseURL)
	assert.True(t, cfg.Scanner.Enabled)
	assert.Equal(t, "scanner:3311", cfg.Scanner.Addr())
}

func TestLoad_EnvOverridesLegacy(t *testing.T) {
	t.Setenv("SECRET_TOKEN", "legacy-token")
	t.Setenv("ROOT_SECRET_TOKEN", "new-token")
	t.Setenv("SCANNER_TIMEOUT", "3s")
	t.Setenv("APP_MAX_IMAGE_PIXELS", "1000000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(1_000_000), cfg.App.MaxImagePixels)
	assert.Equal(t, "new-token", cfg.Root.SecretToken)
	assert.Equal(t, 3*time.Second, cfg.Scanner.Timeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing secret token",
			env:  map[string]string{},
		},
		{
			name: "unknown disk",
			env:  map[string]string{"ROOT_SECRET_TOKEN": "x", "STORAGE_DISK": "ftp"},
		},
		{
			name: "s3 without bucket",
			env:  map[string]string{"ROOT_SECRET_TOKEN": "x", "STORAGE_DISK": "s3"},
		},
		{
			name: "unknown database driver",
			env:  map[string]string{"ROOT_SECRET_TOKEN": "x", "DATABASE_DRIVER": "oracle"},
		},
		{
			name: "zero pixel limit",
			env:  map[string]string{"ROOT_SECRET_TOKEN": "x", "APP_MAX_IMAGE_PIXELS": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SECRET_TOKEN", "")
			t.Setenv("ROOT_SECRET_TOKEN", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
