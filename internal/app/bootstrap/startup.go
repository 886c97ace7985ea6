// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	auditstore "github.com/dalemusser/campaignhub/internal/app/store/audit"
	campaignstore "github.com/dalemusser/campaignhub/internal/app/store/campaigns"
	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/app/system/auditlog"
	"github.com/dalemusser/campaignhub/internal/app/system/normalize"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/app/system/workers"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment", zap.Int("overrides", n), zap.Any("timeouts", timeouts.Current()))
	}

	if err := ensureSuperAdmin(ctx, deps, appCfg, logger); err != nil {
		return err
	}

	auditLog := newAuditLogger(appCfg, deps, logger)
	w := workers.NewScheduledPublish(
		campaignstore.New(deps.MongoDatabase, logger),
		newEngine(deps.MongoDatabase, logger),
		func(ctx context.Context, actor models.Actor, c models.Campaign) {
			auditLog.CampaignPublished(ctx, nil, actor, c)
		},
		logger,
		appCfg.ScheduledPublishSpec,
	)
	if err := w.Start(); err != nil {
		return fmt.Errorf("start scheduled publish worker: %w", err)
	}
	if deps.Background != nil {
		deps.Background.ScheduledPublish = w
	}
	return nil
}

// ensureSuperAdmin promotes or creates the configured superadmin account.
// A blank email disables the seed. The password is only used when the
// account does not exist yet.
func ensureSuperAdmin(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	email := normalize.Email(appCfg.SuperAdminEmail)
	if email == "" {
		return nil
	}

	users := userstore.New(deps.MongoDatabase)
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup superadmin: %w", err)
	}
	if existing == nil && appCfg.SuperAdminPassword == "" {
		return fmt.Errorf("superadmin %s does not exist and superadmin_password is empty", email)
	}

	var hash string
	if existing == nil {
		if hash, err = userstore.HashPassword(appCfg.SuperAdminPassword); err != nil {
			return fmt.Errorf("hash superadmin password: %w", err)
		}
	}

	created, err := users.UpsertSuperAdmin(ctx, appCfg.SuperAdminName, email, hash)
	if err != nil {
		return err
	}
	if created {
		logger.Info("superadmin created", zap.String("email", email))
	} else if existing != nil && (existing.Role != models.RoleSuperAdmin || !existing.Active) {
		logger.Info("superadmin promoted", zap.String("email", email), zap.String("previous_role", string(existing.Role)))
	}
	return nil
}

func newAuditLogger(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *auditlog.Logger {
	return auditlog.New(auditstore.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:     appCfg.AuditLogAuth,
		Campaign: appCfg.AuditLogCampaign,
		Admin:    appCfg.AuditLogAdmin,
	})
}
