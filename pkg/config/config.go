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
	Ledger       LedgerConfig
	OpenAI       OpenAIConfig
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
	if _, err := cfg.Ledger.IVARate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AVPRO_APP_ENV" required:"true"`
	Port         string `envconfig:"AVPRO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AVPRO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AVPRO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AVPRO_DB_DSN"`
	Driver string `envconfig:"AVPRO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AVPRO_DB_HOST"`
	LegacyPort     int    `envconfig:"AVPRO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AVPRO_DB_USER"`
	LegacyPassword string `envconfig:"AVPRO_DB_PASSWORD"`
	LegacyName     string `envconfig:"AVPRO_DB_NAME"`
	LegacySSLMode  string `envconfig:"AVPRO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AVPRO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AVPRO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AVPRO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AVPRO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AVPRO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AVPRO_REDIS_ADDR"`
	Password     string        `envconfig:"AVPRO_REDIS_PASSWORD"`
	DB           int           `envconfig:"AVPRO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AVPRO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AVPRO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AVPRO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AVPRO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AVPRO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// LedgerConfig holds the business constants of the inventory/event ledger.
type LedgerConfig struct {
	IVARateRaw        string `envconfig:"AVPRO_LEDGER_IVA_RATE" default:"0.19"`
	LowStockThreshold int    `envconfig:"AVPRO_LEDGER_LOW_STOCK_THRESHOLD" default:"5"`
	TopArticlesLimit  int    `envconfig:"AVPRO_LEDGER_TOP_ARTICLES_LIMIT" default:"5"`
}

// IVARate parses the configured tax rate. The rate applies to total_neto.
func (l LedgerConfig) IVARate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(l.IVARateRaw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s: %w", EnvLedgerIVARate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("%s must be between 0 and 1, got %s", EnvLedgerIVARate, rate)
	}
	return rate, nil
}

type OpenAIConfig struct {
	APIKey  string        `envconfig:"AVPRO_OPENAI_API_KEY"`
	Model   string        `envconfig:"AVPRO_OPENAI_MODEL" default:"gpt-4o-mini"`
	BaseURL string        `envconfig:"AVPRO_OPENAI_BASE_URL"`
	Timeout time.Duration `envconfig:"AVPRO_OPENAI_TIMEOUT" default:"20s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AVPRO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AVPRO_AUTO_MIGRATE" default:"false"`
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
