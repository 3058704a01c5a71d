package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/notify"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/service"
	"github.com/aussiebroadwan/adminusers/pkg/httpx"
	"github.com/aussiebroadwan/adminusers/pkg/otpx"
)

type Config struct {
	Env                 string        `env:"ENV"                   envDefault:"dev"`  // Environment (dev, staging, prod)
	LogLevel            string        `env:"LOG_LEVEL"             envDefault:"info"` // debug, info, warn, error
	LogFormat           string        `env:"LOG_FORMAT"            envDefault:"json"` // json, text
	Port                int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	DatabaseFile   string `env:"ADMINUSERS_DATABASE_FILE"   envDefault:"adminusers.db"`
	PepperFile     string `env:"ADMINUSERS_PEPPER_FILE"     envDefault:"pepper"`
	BaseURL        string `env:"ADMINUSERS_BASE_URL"        envDefault:"http://localhost:8080"`
	SelfServiceURL string `env:"ADMINUSERS_SELFSERVICE_URL" envDefault:"http://localhost:3000"`

	LoginAttemptCap      int           `env:"ADMINUSERS_LOGIN_ATTEMPT_CAP"`
	ForgottenPasswordTTL time.Duration `env:"ADMINUSERS_FORGOTTEN_PASSWORD_TTL"`
	InviteTTL            time.Duration `env:"ADMINUSERS_INVITE_TTL"`
	InviteDefaultRole    string        `env:"ADMINUSERS_INVITE_DEFAULT_ROLE"`
	OTPPeriod            time.Duration `env:"ADMINUSERS_OTP_PERIOD"`
	OTPSkew              uint          `env:"ADMINUSERS_OTP_SKEW"`

	// Optional: when set every API route requires an HS256 bearer token signed with it
	ServiceTokenSecret string `env:"ADMINUSERS_SERVICE_TOKEN_SECRET"`

	HousekeepingInterval  time.Duration `env:"HOUSEKEEPING_INTERVAL"  envDefault:"1h"`
	HousekeepingRetention time.Duration `env:"HOUSEKEEPING_RETENTION" envDefault:"168h"`

	Notify NotifyConfig

	// Optional: without it the throttle is disabled
	RedisURL       string        `env:"REDIS_URL"`
	ThrottleLimit  int           `env:"THROTTLE_LIMIT"  envDefault:"5"`
	ThrottleWindow time.Duration `env:"THROTTLE_WINDOW" envDefault:"15m"`

	StrictLimit   httpx.RateLimitConfig `envPrefix:"RATELIMIT_STRICT_"`
	ModerateLimit httpx.RateLimitConfig `envPrefix:"RATELIMIT_MODERATE_"`
	LenientLimit  httpx.RateLimitConfig `envPrefix:"RATELIMIT_LENIENT_"`
}

type NotifyConfig struct {
	Backend      string        `env:"NOTIFY_BACKEND" envDefault:"log"` // log, http, ses
	BaseURL      string        `env:"NOTIFY_BASE_URL"`
	APIKey       string        `env:"NOTIFY_API_KEY"`
	Timeout      time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
	SESRegion    string        `env:"NOTIFY_SES_REGION"`
	SESFromEmail string        `env:"NOTIFY_SES_FROM_ADDRESS"`

	Templates notify.Templates `envPrefix:"NOTIFY_TEMPLATE_"`
}

// LoadConfig reads the environment. Unset domain settings keep the service
// defaults and unset rate limits keep the httpx profiles.
func LoadConfig() (Config, error) {
	cfg := Config{
		LoginAttemptCap:      service.DefaultLoginAttemptCap,
		ForgottenPasswordTTL: service.DefaultForgottenPasswordTTL,
		InviteTTL:            service.DefaultInviteTTL,
		InviteDefaultRole:    service.DefaultInviteRole,
		OTPPeriod:            otpx.DefaultPeriod,
		OTPSkew:              otpx.DefaultSkew,
		StrictLimit:          httpx.StrictLimit,
		ModerateLimit:        httpx.ModerateLimit,
		LenientLimit:         httpx.LenientLimit,
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.LoginAttemptCap <= 0 {
		errs = append(errs, errors.New("ADMINUSERS_LOGIN_ATTEMPT_CAP must be positive"))
	}
	if c.ForgottenPasswordTTL <= 0 {
		errs = append(errs, errors.New("ADMINUSERS_FORGOTTEN_PASSWORD_TTL must be positive"))
	}
	if c.InviteTTL <= 0 {
		errs = append(errs, errors.New("ADMINUSERS_INVITE_TTL must be positive"))
	}
	if c.OTPPeriod < time.Second {
		errs = append(errs, errors.New("ADMINUSERS_OTP_PERIOD must be at least 1s"))
	}

	switch c.Notify.Backend {
	case "log":
	case "http":
		if c.Notify.BaseURL == "" {
			errs = append(errs, errors.New("NOTIFY_BASE_URL is required for the http backend"))
		}
	case "ses":
		if c.Notify.SESFromEmail == "" {
			errs = append(errs, errors.New("NOTIFY_SES_FROM_ADDRESS is required for the ses backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("NOTIFY_BACKEND %q is not one of log, http, ses", c.Notify.Backend))
	}
	return errors.Join(errs...)
}
