// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for CampaignHub.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS, body limits).
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Cookie sessions
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string
	SessionDomain string // blank means current host
	SessionTTL    time.Duration

	// Bearer tokens issued at login
	JWTSecret string
	JWTExpiry time.Duration

	// Redis backs the rate limiters when set; blank means in-memory counters.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SubmitRateLimit  int
	SubmitRateWindow time.Duration
	LoginRateLimit   int
	LoginRateWindow  time.Duration

	// Audit logging: "all", "db", "log" or "off" per category
	AuditLogAuth     string
	AuditLogCampaign string
	AuditLogAdmin    string

	// Cron spec of the scheduled publish sweep (e.g. "@every 1m")
	ScheduledPublishSpec string

	// Directory export files are written to
	ExportDir string

	// SuperAdmin bootstrap account
	SuperAdminEmail    string
	SuperAdminPassword string
	SuperAdminName     string
}
