package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable read by Load.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Stripe       StripeConfig
	FX           FXConfig
	Pricing      PricingConfig
	Email        EmailConfig
	Webhook      WebhookConfig
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
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"STOREFRONT_DB_HOST"`
	Port     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	User     string `envconfig:"STOREFRONT_DB_USER"`
	Password string `envconfig:"STOREFRONT_DB_PASSWORD"`
	Name     string `envconfig:"STOREFRONT_DB_NAME"`
	SSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig covers verification of identity tokens minted by the auth
// provider. The backend never mints tokens itself.
type JWTConfig struct {
	Secret string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"STOREFRONT_JWT_ISSUER" required:"true"`
}

type StripeConfig struct {
	APIKey     string `envconfig:"STOREFRONT_STRIPE_API_KEY"`
	Secret     string `envconfig:"STOREFRONT_STRIPE_SECRET"`
	Env        string `envconfig:"STOREFRONT_STRIPE_ENV" default:"test"`
	SuccessURL string `envconfig:"STOREFRONT_STRIPE_SUCCESS_URL" default:"http://localhost:3000/success?session_id={CHECKOUT_SESSION_ID}"`
	CancelURL  string `envconfig:"STOREFRONT_STRIPE_CANCEL_URL" default:"http://localhost:3000/cart"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type FXConfig struct {
	BaseURL  string        `envconfig:"STOREFRONT_FX_BASE_URL" default:"https://open.er-api.com/v6"`
	CacheTTL time.Duration `envconfig:"STOREFRONT_FX_CACHE_TTL" default:"15m"`
	Timeout  time.Duration `envconfig:"STOREFRONT_FX_TIMEOUT" default:"5s"`
}

// PricingConfig is the externalized policy table for checkout pricing.
type PricingConfig struct {
	TaxRate          string `envconfig:"STOREFRONT_PRICING_TAX_RATE" default:"0.13"`
	CustomSizeFee    string `envconfig:"STOREFRONT_PRICING_CUSTOM_SIZE_FEE" default:"15"`
	ShippingFlatFee  string `envconfig:"STOREFRONT_PRICING_SHIPPING_FLAT_FEE" default:"5"`
	FreeZonePrefixes string `envconfig:"STOREFRONT_PRICING_FREE_ZONE_PREFIXES" default:""`
	FreeZoneLetter   string `envconfig:"STOREFRONT_PRICING_FREE_ZONE_LETTER" default:"M"`

	FirstOrderDiscountEnabled bool   `envconfig:"STOREFRONT_PRICING_FIRST_ORDER_DISCOUNT_ENABLED" default:"false"`
	FirstOrderDiscountPercent string `envconfig:"STOREFRONT_PRICING_FIRST_ORDER_DISCOUNT_PERCENT" default:"0.10"`
}

type EmailConfig struct {
	SendgridAPIKey string `envconfig:"STOREFRONT_SENDGRID_API_KEY"`
	FromName       string `envconfig:"STOREFRONT_EMAIL_FROM_NAME" default:"Shubh Avasar"`
	FromEmail      string `envconfig:"STOREFRONT_EMAIL_FROM"`
	BusinessTo     string `envconfig:"STOREFRONT_EMAIL_BUSINESS_TO"`
	OpsBCC         string `envconfig:"STOREFRONT_EMAIL_OPS_BCC"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"STOREFRONT_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		"STOREFRONT_DB_HOST": db.Host,
		"STOREFRONT_DB_USER": db.User,
		"STOREFRONT_DB_NAME": db.Name,
	}
	for _, env := range []string{"STOREFRONT_DB_HOST", "STOREFRONT_DB_USER", "STOREFRONT_DB_NAME"} {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either STOREFRONT_DB_DSN or %s are required", strings.Join(missing, ", "))
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
