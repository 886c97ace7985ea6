package bootstrap

import (
	"strings"
	"testing"
	"time"

	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/campaignhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func seedConfig(email, password string) AppConfig {
	return AppConfig{SuperAdminEmail: email, SuperAdminPassword: password, SuperAdminName: "Super Admin"}
}

func TestEnsureSuperAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	if err := ensureSuperAdmin(ctx, deps, seedConfig(" Root@Test.com ", "s3cret-pass"), zap.NewNop()); err != nil {
		t.Fatalf("ensureSuperAdmin failed: %v", err)
	}

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"email": "root@test.com"}).Decode(&user); err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}
	if user.Role != models.RoleSuperAdmin || !user.Active {
		t.Errorf("expected active SUPER_ADMIN, got role=%q active=%v", user.Role, user.Active)
	}
	if !userstore.CheckPassword(user.PasswordHash, "s3cret-pass") {
		t.Error("password hash does not match the configured password")
	}
}

func TestEnsureSuperAdmin_PromotesExistingKeepsPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	existing := fx.CreateUser(ctx, "Ada", "ada@test.com", models.RoleAdmin)
	if _, err := db.Collection("users").UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{"$set": bson.M{"active": false}}); err != nil {
		t.Fatalf("disable user: %v", err)
	}
	var before models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&before); err != nil {
		t.Fatalf("load user: %v", err)
	}

	deps := DBDeps{MongoDatabase: db}
	if err := ensureSuperAdmin(ctx, deps, seedConfig("ada@test.com", ""), zap.NewNop()); err != nil {
		t.Fatalf("ensureSuperAdmin failed: %v", err)
	}

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user); err != nil {
		t.Fatalf("failed to find user: %v", err)
	}
	if user.Role != models.RoleSuperAdmin || !user.Active {
		t.Errorf("expected active SUPER_ADMIN after promotion, got role=%q active=%v", user.Role, user.Active)
	}
	if user.PasswordHash != before.PasswordHash || user.Name != "Ada" {
		t.Error("promotion must not touch name or password")
	}
	n, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": "ada@test.com"})
	if err != nil || n != 1 {
		t.Fatalf("expected exactly one account, got %d (err=%v)", n, err)
	}
}

func TestEnsureSuperAdmin_NoEmailIsNoop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := ensureSuperAdmin(ctx, DBDeps{MongoDatabase: db}, seedConfig("", ""), zap.NewNop()); err != nil {
		t.Fatalf("ensureSuperAdmin failed: %v", err)
	}
	n, _ := db.Collection("users").CountDocuments(ctx, bson.M{})
	if n != 0 {
		t.Errorf("expected no users, got %d", n)
	}
}

func TestEnsureSuperAdmin_MissingPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := ensureSuperAdmin(ctx, DBDeps{MongoDatabase: db}, seedConfig("new@test.com", ""), zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "superadmin_password") {
		t.Fatalf("expected superadmin_password error, got %v", err)
	}
}

func TestValidateApp(t *testing.T) {
	valid := AppConfig{
		JWTSecret:            strings.Repeat("k", 40),
		ExportDir:            "./exports",
		SubmitRateLimit:      30,
		SubmitRateWindow:     15 * time.Minute,
		LoginRateLimit:       10,
		LoginRateWindow:      15 * time.Minute,
		AuditLogAuth:         "all",
		AuditLogCampaign:     "db",
		AuditLogAdmin:        "off",
		ScheduledPublishSpec: "@every 1m",
	}

	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", "prod", func(*AppConfig) {}, ""},
		{"dev secret in dev", "dev", func(c *AppConfig) { c.JWTSecret = devJWTSecret }, ""},
		{"dev secret in prod", "prod", func(c *AppConfig) { c.JWTSecret = devJWTSecret }, "changed outside dev"},
		{"empty secret", "dev", func(c *AppConfig) { c.JWTSecret = "" }, "jwt_secret must be set"},
		{"short secret", "prod", func(c *AppConfig) { c.JWTSecret = "short" }, "at least 32 bytes"},
		{"no export dir", "prod", func(c *AppConfig) { c.ExportDir = "" }, "export_dir"},
		{"zero rate limit", "prod", func(c *AppConfig) { c.SubmitRateLimit = 0 }, "rate limits"},
		{"bad audit mode", "prod", func(c *AppConfig) { c.AuditLogCampaign = "verbose" }, "audit_log_campaign"},
		{"cron spec", "prod", func(c *AppConfig) { c.ScheduledPublishSpec = "*/5 * * * *" }, ""},
		{"bad cron spec", "prod", func(c *AppConfig) { c.ScheduledPublishSpec = "every minute" }, "scheduled_publish_spec"},
		{"short superadmin password", "prod", func(c *AppConfig) {
			c.SuperAdminEmail, c.SuperAdminPassword = "root@test.com", "abc"
		}, "superadmin_password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := validateApp(tt.env, cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
