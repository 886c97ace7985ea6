// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountsfeature "github.com/dalemusser/campaignhub/internal/app/features/accounts"
	auditlogfeature "github.com/dalemusser/campaignhub/internal/app/features/auditlog"
	campaignsfeature "github.com/dalemusser/campaignhub/internal/app/features/campaigns"
	exportsfeature "github.com/dalemusser/campaignhub/internal/app/features/exports"
	healthfeature "github.com/dalemusser/campaignhub/internal/app/features/health"
	managersfeature "github.com/dalemusser/campaignhub/internal/app/features/managers"
	questionsfeature "github.com/dalemusser/campaignhub/internal/app/features/questions"
	responsesfeature "github.com/dalemusser/campaignhub/internal/app/features/responses"
	"github.com/dalemusser/campaignhub/internal/app/engine"
	campaignstore "github.com/dalemusser/campaignhub/internal/app/store/campaigns"
	managerstore "github.com/dalemusser/campaignhub/internal/app/store/managers"
	questionstore "github.com/dalemusser/campaignhub/internal/app/store/questions"
	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for CampaignHub.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Everything is served as JSON under /api.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionTTL, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh user data on each request, so role changes and disabled
	// accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	tokens, err := auth.NewTokenIssuer(appCfg.JWTSecret, appCfg.JWTExpiry)
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.SetTokenIssuer(tokens)

	db := deps.MongoDatabase
	eng := newEngine(db, logger)
	auditLog := newAuditLogger(appCfg, deps, logger)

	// A nil *redis.Client must not reach the limiters as a non-nil interface.
	var rdb redis.Cmdable
	if deps.Redis != nil {
		rdb = deps.Redis
	}
	submitLimiter := ratelimit.NewRedis(rdb, appCfg.SubmitRateLimit, appCfg.SubmitRateWindow, logger)
	submitLimiter.Prefix = "campaignhub:rl:submit:"
	loginByIP := ratelimit.NewRedis(rdb, appCfg.LoginRateLimit, appCfg.LoginRateWindow, logger)
	loginByIP.Prefix = "campaignhub:rl:login-ip:"
	loginByEmail := ratelimit.NewRedis(rdb, appCfg.LoginRateLimit, appCfg.LoginRateWindow, logger)
	loginByEmail.Prefix = "campaignhub:rl:login-email:"
	if deps.Background != nil {
		deps.Background.onStop(submitLimiter.Stop)
		deps.Background.onStop(loginByIP.Stop)
		deps.Background.onStop(loginByEmail.Stop)
	}

	r := chi.NewRouter()

	// Loads the SessionUser (cookie or bearer token) into context if present.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, rdb, logger)
	r.Mount("/api/health", healthfeature.Routes(healthHandler))

	// Accounts
	accountsHandler := accountsfeature.NewHandler(db, sessionMgr, auditLog, ratelimit.NewLoginLimiter(loginByIP, loginByEmail), logger)
	r.Mount("/api/auth", accountsfeature.AuthRoutes(accountsHandler, sessionMgr))

	managersHandler := managersfeature.NewHandler(db, eng, auditLog, logger)
	r.Route("/api/users", func(ur chi.Router) {
		accountsfeature.UserAdminRoutes(ur, accountsHandler, sessionMgr)
		managersfeature.InvitationRoutes(ur, managersHandler, sessionMgr)
	})

	// Campaigns and their sub-resources
	exportsHandler := exportsfeature.NewHandler(db, eng, appCfg.ExportDir, auditLog, logger)
	campaignsHandler := campaignsfeature.NewHandler(db, eng, exportsHandler.Service, auditLog, logger)
	questionsHandler := questionsfeature.NewHandler(db, eng, logger)
	responsesHandler := responsesfeature.NewHandler(db, eng, auditLog, submitLimiter, logger)
	auditHandler := auditlogfeature.NewHandler(db, eng, logger)

	r.Route("/api/campaigns", func(cr chi.Router) {
		campaignsfeature.MountRoutes(cr, campaignsHandler, sessionMgr)
		cr.Route("/{id}/questions", func(sr chi.Router) { questionsfeature.MountRoutes(sr, questionsHandler, sessionMgr) })
		cr.Route("/{id}/managers", func(sr chi.Router) { managersfeature.MountRoutes(sr, managersHandler, sessionMgr) })
		cr.Route("/{id}/responses", func(sr chi.Router) { responsesfeature.MountRoutes(sr, responsesHandler, sessionMgr) })
		cr.Route("/{id}/exports", func(sr chi.Router) { exportsfeature.CampaignRoutes(sr, exportsHandler, sessionMgr) })
		cr.Route("/{id}/audit-logs", func(sr chi.Router) { auditlogfeature.CampaignRoutes(sr, auditHandler, sessionMgr) })
	})

	r.Mount("/api/exports", exportsfeature.Routes(exportsHandler, sessionMgr))
	r.Mount("/api/audit-logs", auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}

// newEngine wires the campaign engine over the Mongo stores of db.
func newEngine(db *mongo.Database, logger *zap.Logger) *engine.Engine {
	return engine.New(
		campaignstore.New(db, logger),
		managerstore.New(db),
		questionstore.New(db, logger),
		userstore.New(db),
		logger,
	)
}
