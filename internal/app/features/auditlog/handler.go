// Package auditlog serves the audit trail: per campaign for admins under
// /api/campaigns/{id}/audit-logs, and across the whole system for super
// admins under /api/audit-logs.
package auditlog

import (
	"github.com/dalemusser/campaignhub/internal/app/engine"
	"github.com/dalemusser/campaignhub/internal/app/store/audit"
	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Events *audit.Store
	Users  *userstore.Store
	Engine *engine.Engine
	Log    *zap.Logger
}

// NewHandler constructs an audit log feature handler bound to the given
// Mongo database and logger.
func NewHandler(db *mongo.Database, eng *engine.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		Events: audit.New(db),
		Users:  userstore.New(db),
		Engine: eng,
		Log:    logger,
	}
}
