package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

type Config struct {
	AppName string
	AppPort string
	AppUrl  string
	Env     string

	// Database
	DBUrl       string
	AutoMigrate bool

	// Email / SMS
	SendGridAPIKey   string
	AdminEmail       string
	TwilioAccountSID string
	TwilioAuthToken  string
	AdminAlertPhone  string

	// HTTP surface
	AllowedOrigin   string
	InternalAPIURL  string
	ShutdownTimeout time.Duration

	// Used when the settings table has no override for a key.
	DefaultBusinessConfig models.BusinessConfig

	// LaunchDarkly flags (env fallbacks when LD_SDK_KEY is unset)
	LDFlag_SendgridFromEmail   string
	LDFlag_SendgridSandboxMode bool
	LDFlag_TwilioFromPhone     string
	LDFlag_SeedDbWithTestData  bool
	LDFlag_CORSHighSecurity    bool
	LDFlag_AutoExpireQuotes    bool
}

const (
	DefaultAppName       = "samedayramps-admin-api"
	DefaultAllowedOrigin = "https://www.samedayramps.com"
	DefaultAdminEmail    = "admin@samedayramps.com"
	DefaultFromEmail     = "quotes@samedayramps.com"
	LDConnectionTimeout  = 5 * time.Second
)

// LoadConfig reads .env (if present) and the process environment. Missing
// required values are fatal.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		utils.Logger.WithError(err).Warn("Failed to parse .env file; continuing with process environment")
	}

	var flags FlagSource = envFlags{getenv: os.Getenv}
	if key := os.Getenv("LD_SDK_KEY"); key != "" {
		ldFlags, err := newLDFlags(key, os.Getenv("LD_CONTEXT_KIND"), os.Getenv("LD_CONTEXT_KEY"))
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to initialize LaunchDarkly client")
		}
		defer ldFlags.Close()
		flags = ldFlags
	} else {
		utils.Logger.Info("LD_SDK_KEY not set; reading feature flags from the environment")
	}

	cfg, err := FromEnv(os.Getenv, flags)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}
	utils.Logger.Infof("Loaded config for app %s (env=%s, db=%s)", cfg.AppName, cfg.Env, utils.RedactDBURL(cfg.DBUrl))
	return cfg
}

// FromEnv assembles a Config from getenv and a flag source.
func FromEnv(getenv func(string) string, flags FlagSource) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	dbURL := get("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL env var is missing")
	}

	port := get("APP_PORT", get("PORT", "8080"))

	autoMigrate, err := parseBool(get("AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("AUTO_MIGRATE: %w", err)
	}

	shutdown, err := time.ParseDuration(get("SHUTDOWN_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	pricing := models.PricingSettings{}
	for _, p := range []struct {
		key string
		def float64
		dst *float64
	}{
		{"DEFAULT_PRICING_BASE_MONTHLY", 125, &pricing.BaseMonthly},
		{"DEFAULT_PRICING_PER_INCH_MONTHLY", 6, &pricing.PerInchMonthly},
		{"DEFAULT_PRICING_BASE_INSTALLATION", 75, &pricing.BaseInstallation},
		{"DEFAULT_PRICING_PER_INCH_INSTALLATION", 2, &pricing.PerInchInstallation},
	} {
		*p.dst = p.def
		if raw := getenv(p.key); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p.key, err)
			}
			*p.dst = v
		}
	}

	hours := models.BusinessHours{
		Start:    get("DEFAULT_BUSINESS_HOURS_START", "08:00"),
		End:      get("DEFAULT_BUSINESS_HOURS_END", "18:00"),
		Timezone: get("DEFAULT_TIMEZONE", "America/Chicago"),
	}
	if _, err := utils.ParseClock(hours.Start); err != nil {
		return nil, err
	}
	if _, err := utils.ParseClock(hours.End); err != nil {
		return nil, err
	}
	if _, err := time.LoadLocation(hours.Timezone); err != nil {
		return nil, fmt.Errorf("DEFAULT_TIMEZONE: %w", err)
	}

	fromEmail := flags.String("sendgrid_from_email", "")
	if fromEmail == "" {
		fromEmail = DefaultFromEmail
	}

	return &Config{
		AppName:          get("APP_NAME", DefaultAppName),
		AppPort:          port,
		AppUrl:           get("APP_URL", "http://localhost:"+port),
		Env:              get("ENV", "development"),
		DBUrl:            dbURL,
		AutoMigrate:      autoMigrate,
		SendGridAPIKey:   get("SENDGRID_API_KEY", ""),
		AdminEmail:       get("ADMIN_EMAIL", DefaultAdminEmail),
		TwilioAccountSID: get("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  get("TWILIO_AUTH_TOKEN", ""),
		AdminAlertPhone:  get("ADMIN_ALERT_PHONE", ""),
		AllowedOrigin:    get("CORS_ALLOWED_ORIGIN", DefaultAllowedOrigin),
		InternalAPIURL:   strings.TrimRight(get("INTERNAL_API_URL", "http://localhost:"+port), "/"),
		ShutdownTimeout:  shutdown,
		DefaultBusinessConfig: models.BusinessConfig{
			Pricing:       pricing,
			BusinessHours: hours,
			Company: models.CompanyInfo{
				Name:    get("COMPANY_NAME", "Same Day Ramps"),
				Phone:   get("COMPANY_PHONE", "(214) 555-0123"),
				Email:   get("COMPANY_EMAIL", "info@samedayramps.com"),
				Address: get("COMPANY_ADDRESS", "Dallas-Fort Worth, TX"),
			},
		},
		LDFlag_SendgridFromEmail:   fromEmail,
		LDFlag_SendgridSandboxMode: flags.Bool("sendgrid_sandbox_mode", false),
		LDFlag_TwilioFromPhone:     flags.String("twilio_from_phone", ""),
		LDFlag_SeedDbWithTestData:  flags.Bool("seed_db_with_test_data", false),
		LDFlag_CORSHighSecurity:    flags.Bool("cors_high_security", false),
		LDFlag_AutoExpireQuotes:    flags.Bool("auto_expire_quotes", true),
	}, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

/* ---------- feature flags ---------- */

// FlagSource resolves feature flags by their LaunchDarkly key.
type FlagSource interface {
	Bool(key string, def bool) bool
	String(key string, def string) string
}

// envFlags maps a flag key such as "cors_high_security" to the env var
// CORS_HIGH_SECURITY.
type envFlags struct {
	getenv func(string) string
}

func (e envFlags) Bool(key string, def bool) bool {
	raw := strings.TrimSpace(e.getenv(strings.ToUpper(key)))
	if raw == "" {
		return def
	}
	v, err := parseBool(raw)
	if err != nil {
		utils.Logger.Warnf("Invalid value %q for %s, using %t", raw, strings.ToUpper(key), def)
		return def
	}
	return v
}

func (e envFlags) String(key string, def string) string {
	if v := strings.TrimSpace(e.getenv(strings.ToUpper(key))); v != "" {
		return v
	}
	return def
}

// NewEnvFlags exposes the environment-backed flag source.
func NewEnvFlags(getenv func(string) string) FlagSource {
	return envFlags{getenv: getenv}
}

type ldFlags struct {
	client *ld.LDClient
	ctx    ldcontext.Context
}

func newLDFlags(sdkKey, kind, key string) (*ldFlags, error) {
	if kind == "" {
		kind = "service"
	}
	if key == "" {
		key = DefaultAppName
	}
	client, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		return nil, err
	}
	if !client.Initialized() {
		client.Close()
		return nil, fmt.Errorf("LaunchDarkly client failed to initialize")
	}
	return &ldFlags{
		client: client,
		ctx:    ldcontext.NewWithKind(ldcontext.Kind(kind), key),
	}, nil
}

func (l *ldFlags) Bool(key string, def bool) bool {
	v, err := l.client.BoolVariation(key, l.ctx, def)
	if err != nil {
		utils.Logger.WithError(err).Warnf("Error retrieving %s flag, using %t", key, def)
		return def
	}
	utils.Logger.Debugf("%s flag: %t", key, v)
	return v
}

func (l *ldFlags) String(key string, def string) string {
	v, err := l.client.StringVariation(key, l.ctx, def)
	if err != nil {
		utils.Logger.WithError(err).Warnf("Error retrieving %s flag, using %q", key, def)
		return def
	}
	utils.Logger.Debugf("%s flag: %s", key, v)
	return v
}

func (l *ldFlags) Close() { _ = l.client.Close() }
