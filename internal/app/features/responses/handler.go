// Package responses serves survey submissions and the respondent views of a
// campaign under /api/campaigns/{id}/responses.
package responses

import (
	"time"

	"github.com/dalemusser/campaignhub/internal/app/engine"
	respondentstore "github.com/dalemusser/campaignhub/internal/app/store/respondents"
	"github.com/dalemusser/campaignhub/internal/app/system/auditlog"
	"github.com/dalemusser/campaignhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Respondents *respondentstore.Store
	Engine      *engine.Engine
	AuditLog    *auditlog.Logger
	// SubmitLimiter caps anonymous submissions per client IP. Nil disables it.
	SubmitLimiter ratelimit.Backend
	Log           *zap.Logger
	Now           func() time.Time
}

func NewHandler(db *mongo.Database, eng *engine.Engine, audit *auditlog.Logger, limiter ratelimit.Backend, logger *zap.Logger) *Handler {
	return &Handler{
		Respondents:   respondentstore.New(db),
		Engine:        eng,
		AuditLog:      audit,
		SubmitLimiter: limiter,
		Log:           logger,
		Now:           time.Now,
	}
}
