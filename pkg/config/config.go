package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Poll         PollConfig
	Console      ConsoleConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AGRILINK_APP_ENV" default:"dev"`
	Port         string `envconfig:"AGRILINK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AGRILINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AGRILINK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AGRILINK_DB_DSN"`
	Driver string `envconfig:"AGRILINK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"AGRILINK_DB_HOST"`
	Port     int    `envconfig:"AGRILINK_DB_PORT" default:"5432"`
	User     string `envconfig:"AGRILINK_DB_USER"`
	Password string `envconfig:"AGRILINK_DB_PASSWORD"`
	Name     string `envconfig:"AGRILINK_DB_NAME"`
	SSLMode  string `envconfig:"AGRILINK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AGRILINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGRILINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGRILINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGRILINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database DSN or host/user/name settings are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"AGRILINK_REDIS_URL"`
	Address      string        `envconfig:"AGRILINK_REDIS_ADDR"`
	Password     string        `envconfig:"AGRILINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGRILINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGRILINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGRILINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGRILINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGRILINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGRILINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"AGRILINK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AGRILINK_JWT_ISSUER" default:"agrilink"`
	ExpirationMinutes int    `envconfig:"AGRILINK_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PollConfig struct {
	NotificationInterval time.Duration `envconfig:"AGRILINK_POLL_NOTIFICATION_INTERVAL" default:"30s"`
	RequestInterval      time.Duration `envconfig:"AGRILINK_POLL_REQUEST_INTERVAL" default:"60s"`
	EphemeralTTL         time.Duration `envconfig:"AGRILINK_POLL_EPHEMERAL_TTL" default:"5m"`
}

type ConsoleConfig struct {
	APIBaseURL  string        `envconfig:"AGRILINK_CONSOLE_API_BASE_URL" default:"http://localhost:8080"`
	APIToken    string        `envconfig:"AGRILINK_CONSOLE_API_TOKEN"`
	HTTPTimeout time.Duration `envconfig:"AGRILINK_CONSOLE_HTTP_TIMEOUT" default:"15s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AGRILINK_FEATURE_AUTO_MIGRATE" default:"true"`
}
