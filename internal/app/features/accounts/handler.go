// Package accounts serves registration, sign-in and user administration
// under /api/auth and /api/users.
package accounts

import (
	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/app/system/auditlog"
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/app/system/ratelimit"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.LoginLimiter // nil disables login throttling
	Log        *zap.Logger
}

// NewHandler constructs the accounts handler over db.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, audit *auditlog.Logger, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		Limiter:    limiter,
		Log:        logger,
	}
}

func sessionUser(u models.User) *auth.SessionUser {
	return &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}
