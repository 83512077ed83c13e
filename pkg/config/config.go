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
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Kafka        KafkaConfig
	Pricing      PricingConfig
	Idempotency  IdempotencyConfig
	RateLimit    RateLimitConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if _, err := cfg.Pricing.Fees(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"OVENLY_APP_ENV" required:"true"`
	Port         string `envconfig:"OVENLY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"OVENLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"OVENLY_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"OVENLY_LOG_FORMAT" default:"json"`

	CORSOrigins []string `envconfig:"OVENLY_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"OVENLY_DB_DSN"`
	SQLitePath string `envconfig:"OVENLY_SQLITE_PATH" default:"file:ovenly.db?cache=shared"`

	Host     string `envconfig:"OVENLY_DB_HOST"`
	Port     int    `envconfig:"OVENLY_DB_PORT" default:"5432"`
	User     string `envconfig:"OVENLY_DB_USER"`
	Password string `envconfig:"OVENLY_DB_PASSWORD"`
	Name     string `envconfig:"OVENLY_DB_NAME"`
	SSLMode  string `envconfig:"OVENLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OVENLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OVENLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OVENLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OVENLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"OVENLY_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

// RedisConfig is optional; an empty URL and address disables idempotency keys.
type RedisConfig struct {
	URL          string        `envconfig:"OVENLY_REDIS_URL"`
	Address      string        `envconfig:"OVENLY_REDIS_ADDR"`
	Password     string        `envconfig:"OVENLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"OVENLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OVENLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OVENLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OVENLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OVENLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OVENLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"OVENLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"OVENLY_JWT_ISSUER" default:"ovenly"`
	ExpirationMinutes int    `envconfig:"OVENLY_JWT_EXPIRATION_MINUTES" default:"60"`
}

func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"OVENLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"OVENLY_AUTO_MIGRATE" default:"false"`
}

// KafkaConfig enables mirroring order events to a topic when brokers are set.
type KafkaConfig struct {
	Brokers      []string      `envconfig:"OVENLY_KAFKA_BROKERS"`
	OrderTopic   string        `envconfig:"OVENLY_KAFKA_ORDER_TOPIC" default:"ovenly.order-events"`
	WriteTimeout time.Duration `envconfig:"OVENLY_KAFKA_WRITE_TIMEOUT" default:"5s"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && strings.TrimSpace(k.OrderTopic) != ""
}

// PricingConfig holds the flat fees applied at checkout. Values are decimal strings.
type PricingConfig struct {
	DeliveryFee string `envconfig:"OVENLY_DELIVERY_FEE" default:"0"`
	ServiceFee  string `envconfig:"OVENLY_SERVICE_FEE" default:"0"`
}

type Fees struct {
	Delivery decimal.Decimal
	Service  decimal.Decimal
}

func (p PricingConfig) Fees() (Fees, error) {
	delivery, err := decimal.NewFromString(orZero(p.DeliveryFee))
	if err != nil {
		return Fees{}, fmt.Errorf("parsing delivery fee: %w", err)
	}
	service, err := decimal.NewFromString(orZero(p.ServiceFee))
	if err != nil {
		return Fees{}, fmt.Errorf("parsing service fee: %w", err)
	}
	if delivery.IsNegative() || service.IsNegative() {
		return Fees{}, fmt.Errorf("fees must not be negative")
	}
	return Fees{Delivery: delivery, Service: service}, nil
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"OVENLY_IDEMPOTENCY_TTL" default:"24h"`
}

// RateLimitConfig bounds order creation per user. Enforced only when Redis is
// configured; a zero limit disables it.
type RateLimitConfig struct {
	OrdersPerWindow int64         `envconfig:"OVENLY_RATE_LIMIT_ORDERS" default:"10"`
	Window          time.Duration `envconfig:"OVENLY_RATE_LIMIT_WINDOW" default:"1m"`
}

// CronConfig drives cmd/cron-worker.
type CronConfig struct {
	Interval                  time.Duration `envconfig:"OVENLY_CRON_INTERVAL" default:"10m"`
	PendingOrderTTL           time.Duration `envconfig:"OVENLY_PENDING_ORDER_TTL" default:"2h"`
	NotificationRetentionDays int           `envconfig:"OVENLY_NOTIFICATION_RETENTION_DAYS" default:"30"`
}

func orZero(v string) string {
	if strings.TrimSpace(v) == "" {
		return "0"
	}
	return strings.TrimSpace(v)
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
		return nil
	}

	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	missing := []string{}
	for _, env := range legacyDBEnvVars {
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
