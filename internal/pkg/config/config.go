package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	Rabbit  RabbitConfig
	CORS    CORSConfig
	Log     LogConfig
	Cart    CartConfig
	Pricing PricingConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host          string `envconfig:"DB_HOST" default:"localhost"`
	Port          string `envconfig:"DB_PORT" default:"5432"`
	User          string `envconfig:"DB_USER" required:"true"`
	Password      string `envconfig:"DB_PASSWORD" required:"true"`
	DBName        string `envconfig:"DB_NAME" required:"true"`
	SSLMode       string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone      string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MigrateOnBoot bool   `envconfig:"DB_MIGRATE_ON_BOOT" default:"true"`
}

// Empty Addr disables Redis; the service falls back to in-process stores.
type RedisConfig struct {
	Addr           string        `envconfig:"REDIS_ADDR" default:""`
	Password       string        `envconfig:"REDIS_PASSWORD" default:""`
	DB             int           `envconfig:"REDIS_DB" default:"0"`
	SnapshotTTL    time.Duration `envconfig:"REDIS_SNAPSHOT_TTL" default:"10m"`
	IdempotencyTTL time.Duration `envconfig:"REDIS_IDEMPOTENCY_TTL" default:"24h"`
}

// Empty URL disables RabbitMQ; events are written to the log instead.
type RabbitConfig struct {
	URL      string `envconfig:"RABBITMQ_URL" default:""`
	Exchange string `envconfig:"RABBITMQ_EXCHANGE" default:"cart.events"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,If-Match,Idempotency-Key,X-User-ID,X-Session-ID"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,ETag"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type CartConfig struct {
	DefaultCurrency     string        `envconfig:"CART_DEFAULT_CURRENCY" default:"USD"`
	MaxLineQuantity     int           `envconfig:"CART_MAX_LINE_QUANTITY" default:"99"`
	MaxUnitPriceCents   int64         `envconfig:"CART_MAX_UNIT_PRICE_CENTS" default:"100000000"`
	AnonymousTTL        time.Duration `envconfig:"CART_ANONYMOUS_TTL" default:"168h"`
	UserTTL             time.Duration `envconfig:"CART_USER_TTL" default:"0"` // 0 = never expires
	CollaboratorTimeout time.Duration `envconfig:"CART_COLLABORATOR_TIMEOUT" default:"2s"`
	// Maximum age of a clean reprice accepted by checkout. 0 disables the age check.
	CheckoutRepriceWindow time.Duration `envconfig:"CART_CHECKOUT_REPRICE_WINDOW" default:"15m"`
}

type PricingConfig struct {
	// Basis points per ISO country code, e.g. "US:825,DE:1900".
	TaxRates                   map[string]int64 `envconfig:"PRICING_TAX_RATES" default:""`
	DefaultTaxRateBps          int64            `envconfig:"PRICING_DEFAULT_TAX_RATE_BPS" default:"0"`
	ShippingFlatCents          int64            `envconfig:"PRICING_SHIPPING_FLAT_CENTS" default:"0"`
	FreeShippingThresholdCents int64            `envconfig:"PRICING_FREE_SHIPPING_THRESHOLD_CENTS" default:"0"` // 0 = no threshold
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if cfg.Cart.MaxLineQuantity < 1 {
		return Config{}, fmt.Errorf("CART_MAX_LINE_QUANTITY must be >= 1, got %d", cfg.Cart.MaxLineQuantity)
	}
	if cfg.Cart.MaxUnitPriceCents < 1 {
		return Config{}, fmt.Errorf("CART_MAX_UNIT_PRICE_CENTS must be >= 1, got %d", cfg.Cart.MaxUnitPriceCents)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Redis: RedisConfig{
			SnapshotTTL:    10 * time.Minute,
			IdempotencyTTL: time.Hour,
		},
		Rabbit: RabbitConfig{
			Exchange: "cart.events.test",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		Cart: CartConfig{
			DefaultCurrency:       "USD",
			MaxLineQuantity:       99,
			MaxUnitPriceCents:     100_000_000,
			AnonymousTTL:          24 * time.Hour,
			UserTTL:               0,
			CollaboratorTimeout:   200 * time.Millisecond,
			CheckoutRepriceWindow: 15 * time.Minute,
		},
	}
}
