// Package exports generates result exports of a campaign and serves the
// stored export records and files.
package exports

import (
	"context"

	"github.com/dalemusser/campaignhub/internal/app/engine"
	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	exportstore "github.com/dalemusser/campaignhub/internal/app/store/exports"
	respondentstore "github.com/dalemusser/campaignhub/internal/app/store/respondents"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/auditlog"
	"github.com/dalemusser/campaignhub/internal/app/system/exporter"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Exports     *exportstore.Store
	Respondents *respondentstore.Store
	Service     *exporter.Service
	Engine      *engine.Engine
	AuditLog    *auditlog.Logger
	Log         *zap.Logger
}

// NewHandler wires the handler. Export files are written under dir.
func NewHandler(db *mongo.Database, eng *engine.Engine, dir string, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	records := exportstore.New(db)
	return &Handler{
		Exports:     records,
		Respondents: respondentstore.New(db),
		Service:     exporter.New(dir, records, logger),
		Engine:      eng,
		AuditLog:    audit,
		Log:         logger,
	}
}

// authorizeRecord loads an export record and requires export_results on
// its campaign. A record that carries identifying columns additionally
// requires the caller to pass the respondent privacy gate today.
func (h *Handler) authorizeRecord(ctx context.Context, a models.Actor, id primitive.ObjectID) (models.ExportRecord, error) {
	rec, err := h.Exports.GetByID(ctx, id)
	if err != nil {
		return models.ExportRecord{}, err
	}
	c, _, err := h.Engine.Authorize(ctx, a, rec.CampaignID, campaignpolicy.ActionExportResults)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return models.ExportRecord{}, apperr.NotFound("export not found")
		}
		return models.ExportRecord{}, err
	}
	if rec.IncludesIdentifyingFields && !h.Engine.CanViewIdentifyingFields(a, c) {
		return models.ExportRecord{}, apperr.Forbidden("export contains respondent details you may not view")
	}
	return rec, nil
}
