package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "GATEPASS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Routes       RoutesConfig
	Client       ClientConfig
	Stripe       StripeConfig
	Sendgrid     SendgridConfig
	Mail         MailConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GATEPASS_APP_ENV" required:"true"`
	Port         string `envconfig:"GATEPASS_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"GATEPASS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GATEPASS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GATEPASS_DB_DSN" required:"true"`
	Driver string `envconfig:"GATEPASS_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"GATEPASS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GATEPASS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GATEPASS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GATEPASS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GATEPASS_REDIS_URL"`
	Address      string        `envconfig:"GATEPASS_REDIS_ADDR"`
	Password     string        `envconfig:"GATEPASS_REDIS_PASSWORD"`
	DB           int           `envconfig:"GATEPASS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GATEPASS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GATEPASS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GATEPASS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GATEPASS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GATEPASS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	Secret     string        `envconfig:"GATEPASS_SESSION_SECRET" required:"true"`
	CookieName string        `envconfig:"GATEPASS_SESSION_COOKIE_NAME" default:"gatepass_session"`
	TTL        time.Duration `envconfig:"GATEPASS_SESSION_TTL" default:"24h"`
	Secure     bool          `envconfig:"GATEPASS_SESSION_COOKIE_SECURE" default:"false"`
}

type RoutesConfig struct {
	PublicPrefix    string `envconfig:"GATEPASS_ROUTES_PUBLIC_PREFIX" default:"/public"`
	WebhookPrefix   string `envconfig:"GATEPASS_ROUTES_WEBHOOK_PREFIX" default:"/webhook"`
	ProtectedPrefix string `envconfig:"GATEPASS_ROUTES_PROTECTED_PREFIX" default:"/protected"`
}

type ClientConfig struct {
	BaseURL       string `envconfig:"GATEPASS_CLIENT_URL" default:"http://localhost:3000"`
	BaseURLWWW    string `envconfig:"GATEPASS_CLIENT_URL_WWW"`
	SuccessSuffix string `envconfig:"GATEPASS_CLIENT_SUCCESS_SUFFIX" default:"/payment-success"`
	CancelSuffix  string `envconfig:"GATEPASS_CLIENT_CANCEL_SUFFIX" default:"/"`
}

// SuccessURL returns the absolute redirect target for completed checkouts.
func (c ClientConfig) SuccessURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.SuccessSuffix
}

// CancelURL returns the absolute redirect target for abandoned checkouts.
func (c ClientConfig) CancelURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.CancelSuffix
}

// AllowedOrigins lists the CORS origins derived from the client URLs.
func (c ClientConfig) AllowedOrigins() []string {
	origins := []string{c.BaseURL}
	if c.BaseURLWWW != "" {
		origins = append(origins, c.BaseURLWWW)
	}
	return origins
}

type StripeConfig struct {
	APIKey        string `envconfig:"GATEPASS_STRIPE_API_KEY" required:"true"`
	WebhookSecret string `envconfig:"GATEPASS_STRIPE_WEBHOOK_SECRET" required:"true"`
	Env           string `envconfig:"GATEPASS_STRIPE_ENV" default:"test"`
	PriceID       string `envconfig:"GATEPASS_STRIPE_PRICE_ID" required:"true"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type SendgridConfig struct {
	APIKey string `envconfig:"GATEPASS_SENDGRID_API_KEY" required:"true"`
	From   string `envconfig:"GATEPASS_SENDGRID_FROM_EMAIL" required:"true"`
}

// MailConfig holds the named email templates. envconfig has no nested-map
// support, so each template is a flat field set materialized by Templates().
type MailConfig struct {
	AuthTokenSubject string `envconfig:"GATEPASS_MAIL_AUTH_TOKEN_SUBJECT" default:"Your access token"`
	AuthTokenText    string `envconfig:"GATEPASS_MAIL_AUTH_TOKEN_TEXT" default:"Sign in with your token: ${AUTH_TOKEN}"`
	AuthTokenHTML    string `envconfig:"GATEPASS_MAIL_AUTH_TOKEN_HTML"`
}

// TemplateNewAuthToken is sent after a confirmed payment, carrying the minted token.
const TemplateNewAuthToken = "new-auth-token"

type Template struct {
	Subject string
	Text    string
	HTML    string
}

// Templates returns the named templates configured for this deployment.
func (m MailConfig) Templates() map[string]Template {
	return map[string]Template{
		TemplateNewAuthToken: {
			Subject: m.AuthTokenSubject,
			Text:    m.AuthTokenText,
			HTML:    m.AuthTokenHTML,
		},
	}
}

type RateLimitConfig struct {
	PublicWindow  time.Duration `envconfig:"GATEPASS_RATE_LIMIT_PUBLIC_WINDOW" default:"1m"`
	PublicIPLimit int           `envconfig:"GATEPASS_RATE_LIMIT_PUBLIC_IP_LIMIT" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GATEPASS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GATEPASS_AUTO_MIGRATE" default:"false"`
}
