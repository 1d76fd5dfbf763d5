package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Cheertaboi/catalog-discount-service/internal/secret"
	"github.com/Cheertaboi/catalog-discount-service/pkg/db"
)

type Config struct {
	HTTP     HTTPConfig
	Log      LogConfig
	DB       db.PostgresConfig
	Shopware ShopwareConfig
	Engine   EngineConfig

	// SecretKey seals stored client secrets (32 bytes, url-safe base64).
	SecretKey string
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

type LogConfig struct {
	Level  string
	Format string
}

type ShopwareConfig struct {
	Timeout     time.Duration
	TokenMargin time.Duration
	PageSize    int
	MaxPages    int
	CurrencyID  string
}

type EngineConfig struct {
	Workers int
	Timeout time.Duration
}

// Load reads .env, an optional discount-service.yaml and the environment.
// Environment variables use the DISCOUNT_ prefix (DISCOUNT_HTTP_ADDR, ...);
// the database also honours DB_HOST, DB_PORT and friends.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("discount-service")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/discount-service")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DISCOUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindLegacyEnv(v); err != nil {
		return Config{}, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("http.cors_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "discounts")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", time.Hour)

	v.SetDefault("shopware.timeout", 30*time.Second)
	v.SetDefault("shopware.token_margin", 60*time.Second)
	v.SetDefault("shopware.page_size", 500)
	v.SetDefault("shopware.max_pages", 20)
	v.SetDefault("shopware.currency_id", "b7d2554b0ce847cd82f3ac9bd1c0dfca")

	v.SetDefault("engine.workers", 4)
	v.SetDefault("engine.timeout", 5*time.Minute)

	v.SetDefault("secret_key", "")
}

// bindLegacyEnv keeps the unprefixed variable names deployments already use.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"db.host":     {"DISCOUNT_DB_HOST", "DB_HOST"},
		"db.port":     {"DISCOUNT_DB_PORT", "DB_PORT"},
		"db.user":     {"DISCOUNT_DB_USER", "DB_USER"},
		"db.password": {"DISCOUNT_DB_PASSWORD", "DB_PASSWORD"},
		"db.name":     {"DISCOUNT_DB_NAME", "DB_NAME"},
		"db.sslmode":  {"DISCOUNT_DB_SSLMODE", "DB_SSLMODE"},
		"secret_key":  {"DISCOUNT_SECRET_KEY", "SECRET_KEY"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            v.GetString("http.addr"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			CORSOrigins:     splitList(v.GetStringSlice("http.cors_origins")),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		DB: db.PostgresConfig{
			Host:            v.GetString("db.host"),
			Port:            v.GetInt("db.port"),
			User:            v.GetString("db.user"),
			Password:        v.GetString("db.password"),
			DBName:          v.GetString("db.name"),
			SSLMode:         v.GetString("db.sslmode"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
		},
		Shopware: ShopwareConfig{
			Timeout:     v.GetDuration("shopware.timeout"),
			TokenMargin: v.GetDuration("shopware.token_margin"),
			PageSize:    v.GetInt("shopware.page_size"),
			MaxPages:    v.GetInt("shopware.max_pages"),
			CurrencyID:  v.GetString("shopware.currency_id"),
		},
		Engine: EngineConfig{
			Workers: v.GetInt("engine.workers"),
			Timeout: v.GetDuration("engine.timeout"),
		},
		SecretKey: strings.TrimSpace(v.GetString("secret_key")),
	}
}

// splitList accepts both a YAML list and a comma separated env value.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (c Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("config: secret_key is required")
	}
	if _, err := secret.ParseKey(c.SecretKey); err != nil {
		return fmt.Errorf("config: secret_key: %w", err)
	}
	if c.Engine.Workers < 1 {
		return errors.New("config: engine.workers must be at least 1")
	}
	if c.Shopware.PageSize < 1 || c.Shopware.PageSize > 500 {
		return errors.New("config: shopware.page_size must be between 1 and 500")
	}
	if c.Shopware.MaxPages < 1 {
		return errors.New("config: shopware.max_pages must be at least 1")
	}
	if c.DB.Port <= 0 {
		return errors.New("config: db.port must be positive")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	return nil
}
