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
	App      AppConfig
	Store    StoreConfig
	DB       DBConfig
	Redis    RedisConfig
	Password PasswordConfig
	Users    UsersConfig
	OpenAI   OpenAIConfig
	Builder  BuilderConfig
	Catalog  CatalogConfig
	Pricing  PricingConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	if cfg.Store.Driver == StoreDriverPostgres {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PCFORGE_APP_ENV" default:"dev"`
	Port         string `envconfig:"PCFORGE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PCFORGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PCFORGE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"PCFORGE_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	out := []string{}
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

type StoreConfig struct {
	Driver      string `envconfig:"PCFORGE_STORE_DRIVER" default:"memory"`
	SQLitePath  string `envconfig:"PCFORGE_SQLITE_PATH" default:"file:pcforge.db?cache=shared"`
	AutoMigrate bool   `envconfig:"PCFORGE_AUTO_MIGRATE" default:"false"`
	SeedCatalog bool   `envconfig:"PCFORGE_SEED_CATALOG" default:"true"`
}

func (s *StoreConfig) validate() error {
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	switch s.Driver {
	case StoreDriverMemory, StoreDriverPostgres, StoreDriverSQLite:
		return nil
	default:
		return fmt.Errorf("%s must be one of %s, %s, %s (got %q)", EnvStoreDriver, StoreDriverMemory, StoreDriverPostgres, StoreDriverSQLite, s.Driver)
	}
}

type DBConfig struct {
	DSN string `envconfig:"PCFORGE_DB_DSN"`

	Host     string `envconfig:"PCFORGE_DB_HOST"`
	Port     int    `envconfig:"PCFORGE_DB_PORT" default:"5432"`
	User     string `envconfig:"PCFORGE_DB_USER"`
	Password string `envconfig:"PCFORGE_DB_PASSWORD"`
	Name     string `envconfig:"PCFORGE_DB_NAME"`
	SSLMode  string `envconfig:"PCFORGE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PCFORGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PCFORGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PCFORGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PCFORGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional: an empty URL and address disable rate limiting and
// checkout idempotency.
type RedisConfig struct {
	URL          string        `envconfig:"PCFORGE_REDIS_URL"`
	Address      string        `envconfig:"PCFORGE_REDIS_ADDR"`
	Password     string        `envconfig:"PCFORGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PCFORGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PCFORGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PCFORGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PCFORGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PCFORGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PCFORGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PCFORGE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PCFORGE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PCFORGE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PCFORGE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PCFORGE_ARGON_KEY_LEN" default:"32"`
}

// UsersConfig optionally seeds one account at startup.
type UsersConfig struct {
	SeedUsername string `envconfig:"PCFORGE_SEED_USERNAME"`
	SeedPassword string `envconfig:"PCFORGE_SEED_PASSWORD"`
}

type OpenAIConfig struct {
	APIKey  string        `envconfig:"PCFORGE_OPENAI_API_KEY"`
	Model   string        `envconfig:"PCFORGE_OPENAI_MODEL" default:"gpt-4o"`
	BaseURL string        `envconfig:"PCFORGE_OPENAI_BASE_URL"`
	Timeout time.Duration `envconfig:"PCFORGE_OPENAI_TIMEOUT" default:"30s"`
}

type BuilderConfig struct {
	FallbackPath    string        `envconfig:"PCFORGE_FALLBACK_BUILD_PATH"`
	RateLimitWindow time.Duration `envconfig:"PCFORGE_BUILDER_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimit       int           `envconfig:"PCFORGE_BUILDER_RATE_LIMIT" default:"10"`
}

type CatalogConfig struct {
	SeedPath string `envconfig:"PCFORGE_CATALOG_PATH"`
}

type PricingConfig struct {
	TaxRate          string `envconfig:"PCFORGE_TAX_RATE" default:"0.10"`
	ShippingFlat     string `envconfig:"PCFORGE_SHIPPING_FLAT" default:"10.00"`
	FreeShippingOver string `envconfig:"PCFORGE_FREE_SHIPPING_OVER" default:"100.00"`
}

// Decimals parses the pricing knobs; each must be a non-negative decimal.
func (p PricingConfig) Decimals() (tax, shipping, freeOver decimal.Decimal, err error) {
	values := []struct {
		env string
		raw string
		out *decimal.Decimal
	}{
		{EnvTaxRate, p.TaxRate, &tax},
		{EnvShippingFlat, p.ShippingFlat, &shipping},
		{EnvFreeShippingOver, p.FreeShippingOver, &freeOver},
	}
	for _, v := range values {
		d, parseErr := decimal.NewFromString(strings.TrimSpace(v.raw))
		if parseErr != nil {
			return tax, shipping, freeOver, fmt.Errorf("%s: %w", v.env, parseErr)
		}
		if d.IsNegative() {
			return tax, shipping, freeOver, fmt.Errorf("%s must not be negative", v.env)
		}
		*v.out = d
	}
	return tax, shipping, freeOver, nil
}

type GCPConfig struct {
	ProjectID       string `envconfig:"PCFORGE_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"PCFORGE_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"PCFORGE_PUBSUB_ORDERS_TOPIC"`
}

// Enabled reports whether order events should be published.
func (p PubSubConfig) Enabled(gcp GCPConfig) bool {
	return strings.TrimSpace(p.OrdersTopic) != "" && strings.TrimSpace(gcp.ProjectID) != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
