package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all dashboard configuration.
type Config struct {
	Server       ServerConfig
	Backend      BackendConfig
	Session      SessionConfig
	Redis        RedisConfig
	Toast        ToastConfig
	Cache        CacheConfig
	Login        LoginConfig
	Locale       LocaleConfig
	Integrations IntegrationsConfig
	Log          LogConfig
}

type ServerConfig struct {
	Addr string
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	Store  string // "sqlite" or "redis"
	DBPath string
	TTL    time.Duration
	Secret string // JWT signing key; generated and stored in SQLite when empty, required with redis
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ToastConfig struct {
	TTL time.Duration
}

type CacheConfig struct {
	Size int
	TTL  time.Duration
}

type LoginConfig struct {
	RatePerMin int
}

type LocaleConfig struct {
	Default string
}

// IntegrationsConfig holds the browser-side widget keys handed to templates.
type IntegrationsConfig struct {
	TinyMCEAPIKey     string
	MapboxAccessToken string
	GoogleMapsAPIKey  string
}

type LogConfig struct {
	Path string
}

// Session store kinds.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Load loads configuration using Viper.
// When path is empty, config.yaml is searched in ./config, . and /etc/proplex-admin/.
// A missing config file is not an error; defaults and environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/proplex-admin/")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// The widget keys keep the names the browser build used.
	_ = v.BindEnv("integrations.tinymce_api_key", "INTEGRATIONS_TINYMCE_API_KEY", "NEXT_PUBLIC_TINYMCE_API_KEY")
	_ = v.BindEnv("integrations.mapbox_access_token", "INTEGRATIONS_MAPBOX_ACCESS_TOKEN", "NEXT_PUBLIC_MAPBOX_ACCESS_TOKEN")
	_ = v.BindEnv("integrations.google_maps_api_key", "INTEGRATIONS_GOOGLE_MAPS_API_KEY", "NEXT_PUBLIC_GOOGLE_MAPS_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	cfg.Server.Addr = v.GetString("server.addr")

	cfg.Backend.BaseURL = v.GetString("backend.base_url")
	cfg.Backend.Timeout = v.GetDuration("backend.timeout")

	cfg.Session.Store = strings.ToLower(v.GetString("session.store"))
	cfg.Session.DBPath = v.GetString("session.db_path")
	cfg.Session.TTL = v.GetDuration("session.ttl")
	cfg.Session.Secret = v.GetString("session.secret")

	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")

	cfg.Toast.TTL = v.GetDuration("toast.ttl")
	cfg.Cache.Size = v.GetInt("cache.size")
	cfg.Cache.TTL = v.GetDuration("cache.ttl")
	cfg.Login.RatePerMin = v.GetInt("login.rate_per_min")
	cfg.Locale.Default = v.GetString("locale.default")

	cfg.Integrations.TinyMCEAPIKey = v.GetString("integrations.tinymce_api_key")
	cfg.Integrations.MapboxAccessToken = v.GetString("integrations.mapbox_access_token")
	cfg.Integrations.GoogleMapsAPIKey = v.GetString("integrations.google_maps_api_key")

	cfg.Log.Path = v.GetString("log.path")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")

	v.SetDefault("backend.base_url", "http://localhost:8000/api/")
	v.SetDefault("backend.timeout", "15s")

	v.SetDefault("session.store", StoreSQLite)
	v.SetDefault("session.db_path", "proplex-admin.sqlite3")
	v.SetDefault("session.ttl", "168h")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("toast.ttl", "3s")
	v.SetDefault("cache.size", 256)
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("login.rate_per_min", 10)
	v.SetDefault("locale.default", "en")
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	switch c.Session.Store {
	case StoreSQLite:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required when session.store is %q", StoreRedis)
		}
		if c.Session.Secret == "" {
			return fmt.Errorf("session.secret is required when session.store is %q", StoreRedis)
		}
	default:
		return fmt.Errorf("session.store must be %q or %q, got %q", StoreSQLite, StoreRedis, c.Session.Store)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	return nil
}
