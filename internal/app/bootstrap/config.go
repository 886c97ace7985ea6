// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const devJWTSecret = "dev-only-jwt-secret-change-me-0123456789"

// appConfigKeys defines the configuration keys for CampaignHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: CAMPAIGNHUB_MONGO_URI, CAMPAIGNHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "campaign_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "campaignhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_ttl", Default: "24h", Desc: "Session cookie lifetime"},

	// Bearer tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HMAC secret for bearer tokens (required outside dev)"},
	{Name: "jwt_expiry", Default: "24h", Desc: "Bearer token lifetime (e.g., 1h, 24h)"},

	// Redis (optional)
	{Name: "redis_addr", Default: "", Desc: "Redis address for shared rate limits (blank uses in-memory counters)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	// Rate limits
	{Name: "submit_rate_limit", Default: 30, Desc: "Public response submissions allowed per client IP per window"},
	{Name: "submit_rate_window", Default: "15m", Desc: "Window for the submission rate limit"},
	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts allowed per client IP and per email per window"},
	{Name: "login_rate_window", Default: "15m", Desc: "Window for the login rate limit"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_campaign", Default: "all", Desc: "Campaign event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Background work
	{Name: "scheduled_publish_spec", Default: workers.DefaultSpec, Desc: "Cron spec for the scheduled publish sweep"},
	{Name: "export_dir", Default: "./exports", Desc: "Directory export files are written to"},

	// SuperAdmin bootstrap
	{Name: "superadmin_email", Default: "", Desc: "Email of the superadmin user (promotes/creates on startup)"},
	{Name: "superadmin_password", Default: "", Desc: "Initial password when the superadmin account is created"},
	{Name: "superadmin_name", Default: "Super Admin", Desc: "Display name when the superadmin account is created"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, CAMPAIGNHUB_* for app) and
// flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CAMPAIGNHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionTTL:    appValues.Duration("session_ttl", 24*time.Hour),

		JWTSecret: appValues.String("jwt_secret"),
		JWTExpiry: appValues.Duration("jwt_expiry", 24*time.Hour),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		SubmitRateLimit:  appValues.Int("submit_rate_limit"),
		SubmitRateWindow: appValues.Duration("submit_rate_window", 15*time.Minute),
		LoginRateLimit:   appValues.Int("login_rate_limit"),
		LoginRateWindow:  appValues.Duration("login_rate_window", 15*time.Minute),

		AuditLogAuth:     appValues.String("audit_log_auth"),
		AuditLogCampaign: appValues.String("audit_log_campaign"),
		AuditLogAdmin:    appValues.String("audit_log_admin"),

		ScheduledPublishSpec: appValues.String("scheduled_publish_spec"),
		ExportDir:            appValues.String("export_dir"),

		SuperAdminEmail:    appValues.String("superadmin_email"),
		SuperAdminPassword: appValues.String("superadmin_password"),
		SuperAdminName:     appValues.String("superadmin_name"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(coreCfg.Env, appCfg)
}

func validateApp(env string, appCfg AppConfig) error {
	var problems []error

	if appCfg.JWTSecret == "" {
		problems = append(problems, errors.New("jwt_secret must be set"))
	} else if env != "dev" && appCfg.JWTSecret == devJWTSecret {
		problems = append(problems, errors.New("jwt_secret must be changed outside dev"))
	}
	if len(appCfg.JWTSecret) > 0 && len(appCfg.JWTSecret) < 32 {
		problems = append(problems, errors.New("jwt_secret must be at least 32 bytes"))
	}
	if appCfg.ExportDir == "" {
		problems = append(problems, errors.New("export_dir must be set"))
	}
	if appCfg.SubmitRateLimit <= 0 || appCfg.LoginRateLimit <= 0 {
		problems = append(problems, errors.New("rate limits must be positive"))
	}
	for name, v := range map[string]string{
		"audit_log_auth":     appCfg.AuditLogAuth,
		"audit_log_campaign": appCfg.AuditLogCampaign,
		"audit_log_admin":    appCfg.AuditLogAdmin,
	} {
		switch v {
		case "", "all", "db", "log", "off":
		default:
			problems = append(problems, fmt.Errorf("%s must be all, db, log or off (got %q)", name, v))
		}
	}
	if appCfg.ScheduledPublishSpec != "" {
		if _, err := cron.ParseStandard(appCfg.ScheduledPublishSpec); err != nil {
			problems = append(problems, fmt.Errorf("scheduled_publish_spec: %w", err))
		}
	}
	if appCfg.SuperAdminEmail != "" && appCfg.SuperAdminPassword != "" && len(appCfg.SuperAdminPassword) < 8 {
		problems = append(problems, errors.New("superadmin_password must be at least 8 characters"))
	}

	return errors.Join(problems...)
}
