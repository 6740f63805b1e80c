package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Basket       BasketConfig
	Catalog      CatalogConfig
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
	Env          string `envconfig:"CARTBASE_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTBASE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARTBASE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTBASE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CARTBASE_DB_DSN"`
	Driver string `envconfig:"CARTBASE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARTBASE_DB_HOST"`
	LegacyPort     int    `envconfig:"CARTBASE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARTBASE_DB_USER"`
	LegacyPassword string `envconfig:"CARTBASE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARTBASE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARTBASE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARTBASE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTBASE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTBASE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTBASE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTBASE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CARTBASE_REDIS_ADDR"`
	Password     string        `envconfig:"CARTBASE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTBASE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTBASE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTBASE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTBASE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTBASE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTBASE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"CARTBASE_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"CARTBASE_JWT_ISSUER" required:"true"`
}

// BasketConfig tunes the cache-backed basket store and its write loop.
type BasketConfig struct {
	TTL          time.Duration `envconfig:"CARTBASE_BASKET_TTL" default:"720h"`
	MaxAttempts  int           `envconfig:"CARTBASE_BASKET_MAX_ATTEMPTS" default:"5"`
	RetryBackoff time.Duration `envconfig:"CARTBASE_BASKET_RETRY_BACKOFF" default:"20ms"`
}

// CatalogConfig tunes product lookups issued while adding basket items.
type CatalogConfig struct {
	// LookupBaseURL switches enrichment to the remote catalog API when set;
	// empty means the in-process catalog service is used.
	LookupBaseURL string        `envconfig:"CARTBASE_CATALOG_LOOKUP_BASE_URL"`
	LookupTimeout time.Duration `envconfig:"CARTBASE_CATALOG_LOOKUP_TIMEOUT" default:"3s"`
	LookupRetries int           `envconfig:"CARTBASE_CATALOG_LOOKUP_RETRIES" default:"2"`
	LookupBackoff time.Duration `envconfig:"CARTBASE_CATALOG_LOOKUP_BACKOFF" default:"150ms"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CARTBASE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
