package exports

import (
	"net/http"
	"strings"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/exporter"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

// HandleGenerate handles POST /api/campaigns/{id}/exports?format=csv|json.
// The format defaults to csv. The privacy gate is evaluated once and
// applies to every row of the export.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	campaignID, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	format := models.ExportFormat(strings.ToLower(strings.TrimSpace(query.Get(r, "format"))))
	if format == "" {
		format = models.ExportCSV
	}
	actor := authz.ActorFromRequest(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "generate export")
	defer cancel()

	c, _, err := h.Engine.Authorize(ctx, actor, campaignID, campaignpolicy.ActionExportResults)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	respondents, err := h.Respondents.AllSubmitted(ctx, campaignID)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	res, err := h.Service.Generate(ctx, actor.ID, format, exporter.Dataset{
		Campaign:           c,
		Respondents:        respondents,
		IncludeIdentifying: h.Engine.CanViewIdentifyingFields(actor, c),
	})
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.ResultsExported(ctx, r, actor, res.Record)
	apiresp.Created(w, res.Record)
}
