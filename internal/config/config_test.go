package config

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validKey = base64.URLEncoding.EncodeToString([]byte(strings.Repeat("s", 32)))

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", validKey)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 500, cfg.Shopware.PageSize)
	assert.Equal(t, 60*time.Second, cfg.Shopware.TokenMargin)
	assert.Equal(t, "b7d2554b0ce847cd82f3ac9bd1c0dfca", cfg.Shopware.CurrencyID)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, validKey, cfg.SecretKey)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DISCOUNT_SECRET_KEY", validKey)
	t.Setenv("DISCOUNT_HTTP_ADDR", ":9090")
	t.Setenv("DISCOUNT_ENGINE_WORKERS", "8")
	t.Setenv("DISCOUNT_HTTP_CORS_ORIGINS", "https://a.test, https://b.test")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 8, cfg.Engine.Workers)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 6543, cfg.DB.Port)
}

func TestLoadRequiresSecretKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("DISCOUNT_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret_key")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Log:       LogConfig{Level: "info", Format: "json"},
			Shopware:  ShopwareConfig{PageSize: 500, MaxPages: 1},
			Engine:    EngineConfig{Workers: 1},
			SecretKey: validKey,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad key", func(c *Config) { c.SecretKey = "abc" }, "secret_key"},
		{"no workers", func(c *Config) { c.Engine.Workers = 0 }, "engine.workers"},
		{"page size too large", func(c *Config) { c.Shopware.PageSize = 501 }, "page_size"},
		{"no pages", func(c *Config) { c.Shopware.MaxPages = 0 }, "max_pages"},
		{"bad port", func(c *Config) { c.DB.Port = 0 }, "db.port"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			cfg.DB.Port = 5432
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
