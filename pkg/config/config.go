package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Pricing      PricingConfig
	Rollup       RollupConfig
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
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PLUME_APP_ENV" required:"true"`
	Port         string `envconfig:"PLUME_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PLUME_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PLUME_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PLUME_DB_DSN"`
	Driver string `envconfig:"PLUME_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PLUME_DB_HOST"`
	LegacyPort     int    `envconfig:"PLUME_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PLUME_DB_USER"`
	LegacyPassword string `envconfig:"PLUME_DB_PASSWORD"`
	LegacyName     string `envconfig:"PLUME_DB_NAME"`
	LegacySSLMode  string `envconfig:"PLUME_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PLUME_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PLUME_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PLUME_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PLUME_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PLUME_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PLUME_REDIS_ADDR"`
	Password     string        `envconfig:"PLUME_REDIS_PASSWORD"`
	DB           int           `envconfig:"PLUME_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PLUME_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PLUME_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PLUME_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PLUME_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PLUME_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PricingConfig drives the public price derivation defaults.
type PricingConfig struct {
	// DefaultVATRatePercent applies when a product carries no VAT rate of
	// its own. 20.00 is the standard French rate.
	DefaultVATRatePercent string `envconfig:"PLUME_PRICING_DEFAULT_VAT_RATE" default:"20.00"`
	// DegradeOnLinkFailure treats a failed EAN-sibling lookup as "no
	// additional offers" instead of failing the whole aggregation.
	DegradeOnLinkFailure bool `envconfig:"PLUME_PRICING_DEGRADE_ON_LINK_FAILURE" default:"false"`
	// RollupCacheTTL bounds how long a rollup read may be served from Redis.
	RollupCacheTTL time.Duration `envconfig:"PLUME_PRICING_ROLLUP_CACHE_TTL" default:"5m"`
}

func (p PricingConfig) validate() error {
	rate, err := decimal.NewFromString(p.DefaultVATRatePercent)
	if err != nil {
		return fmt.Errorf("invalid default VAT rate %q: %w", p.DefaultVATRatePercent, err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("default VAT rate must be >= 0, got %s", rate)
	}
	return nil
}

// DefaultVATRate returns the configured rate as a decimal. validate() runs at
// load time, so parsing here cannot fail.
func (p PricingConfig) DefaultVATRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(p.DefaultVATRatePercent)
	return rate
}

type RollupConfig struct {
	BatchSize      int           `envconfig:"PLUME_ROLLUP_BATCH_SIZE" default:"100"`
	InterPageDelay time.Duration `envconfig:"PLUME_ROLLUP_INTER_PAGE_DELAY" default:"250ms"`
	CronInterval   time.Duration `envconfig:"PLUME_ROLLUP_CRON_INTERVAL" default:"6h"`
	LockTTL        time.Duration `envconfig:"PLUME_ROLLUP_LOCK_TTL" default:"1h"`
	MetricsPort    string        `envconfig:"PLUME_ROLLUP_METRICS_PORT" default:"9090"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PLUME_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PLUME_AUTO_MIGRATE" default:"false"`
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
