package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	SessionDriverRedis    = "redis"
	SessionDriverPostgres = "postgres"
	SessionDriverMemory   = "memory"

	minSessionSecretLen = 32

	// defaultSessionSecret is public; production must override it.
	defaultSessionSecret = "red-esperanza-development-secret"
)

// REDESPERANZA_SESSION_SECRET maps to session.secret.
var envKeyReplacer = strings.NewReplacer(".", "_")

type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	// TrustedProxies lists the proxy CIDRs whose X-Forwarded-For is believed.
	TrustedProxies []string
}

type LogConfig struct {
	Level  string
	Format string
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	Driver     string
	Secret     string
	CookieName string
	TTL        time.Duration
	DraftTTL   time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	// URL, when set, replaces Addr, Password and DB.
	URL      string
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type StorageConfig struct {
	Endpoint      string
	PublicBaseURL string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	Region        string
}

type UploadConfig struct {
	MaxBytes  int64
	OrphanTTL time.Duration
}

type GeocoderConfig struct {
	BaseURL     string
	UserAgent   string
	CountryCode string
	Limit       int
	CacheTTL    time.Duration
}

type WorkerConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
}

type AppConfig struct {
	Environment string
	Log         LogConfig
	HTTP        HTTPConfig
	API         APIConfig
	Session     SessionConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Upload      UploadConfig
	Geocoder    GeocoderConfig
	Worker      WorkerConfig
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("REDESPERANZA")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot run safely with.
func (c *AppConfig) Validate() error {
	switch c.Session.Driver {
	case SessionDriverRedis, SessionDriverMemory:
	case SessionDriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres session driver")
		}
	default:
		return fmt.Errorf("unknown session driver %q", c.Session.Driver)
	}

	if c.IsProduction() {
		if len(c.Session.Secret) < minSessionSecretLen {
			return fmt.Errorf("session.secret must be at least %d characters in production", minSessionSecretLen)
		}
		if c.Session.Secret == defaultSessionSecret {
			return errors.New("session.secret must be set in production, the development default is not allowed")
		}
		if c.Session.Driver == SessionDriverMemory {
			return errors.New("memory session driver is not allowed in production")
		}
	}

	if c.API.BaseURL == "" {
		return errors.New("api.baseurl is required")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("upload.maxbytes must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 3000)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "30s")
	v.SetDefault("http.idletimeout", "60s")
	v.SetDefault("http.shutdowntimeout", "10s")
	v.SetDefault("http.trustedproxies", []string{})

	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "")

	v.SetDefault("api.baseurl", "http://localhost:5000/api/v1")
	v.SetDefault("api.timeout", "15s")

	v.SetDefault("session.driver", SessionDriverRedis)
	v.SetDefault("session.secret", defaultSessionSecret)
	v.SetDefault("session.cookiename", "re_session")
	v.SetDefault("session.ttl", "720h")
	v.SetDefault("session.draftttl", "24h")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolsize", 0)

	v.SetDefault("storage.endpoint", "http://127.0.0.1:9000")
	v.SetDefault("storage.publicbaseurl", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucket", "case-images")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("upload.maxbytes", 5*1024*1024)
	v.SetDefault("upload.orphanttl", "24h")

	v.SetDefault("geocoder.baseurl", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.useragent", "RedEsperanza/1.0 (+https://redesperanza.co)")
	v.SetDefault("geocoder.countrycode", "co")
	v.SetDefault("geocoder.limit", 10)
	v.SetDefault("geocoder.cachettl", "24h")

	v.SetDefault("worker.stream", "web:maintenance")
	v.SetDefault("worker.group", "web-maintenance")
	v.SetDefault("worker.consumer", "worker-1")
	v.SetDefault("worker.claiminterval", "30s")
}
