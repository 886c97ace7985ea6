// Package campaigns serves campaign CRUD, lifecycle transitions, the public
// shareable-link lookup and analytics under /api/campaigns.
package campaigns

import (
	"github.com/dalemusser/campaignhub/internal/app/engine"
	campaignstore "github.com/dalemusser/campaignhub/internal/app/store/campaigns"
	respondentstore "github.com/dalemusser/campaignhub/internal/app/store/respondents"
	"github.com/dalemusser/campaignhub/internal/app/system/auditlog"
	"github.com/dalemusser/campaignhub/internal/app/system/exporter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Campaigns   *campaignstore.Store
	Respondents *respondentstore.Store
	Engine      *engine.Engine
	Exports     *exporter.Service // nil skips export file cleanup on delete
	AuditLog    *auditlog.Logger
	Log         *zap.Logger
}

// NewHandler constructs the campaigns handler. The engine must be built over
// the same database.
func NewHandler(db *mongo.Database, eng *engine.Engine, exports *exporter.Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Campaigns:   campaignstore.New(db, logger),
		Respondents: respondentstore.New(db),
		Engine:      eng,
		Exports:     exports,
		AuditLog:    audit,
		Log:         logger,
	}
}
