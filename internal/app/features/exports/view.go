package exports

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
)

// ServeList handles GET /api/campaigns/{id}/exports.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	campaignID, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list exports")
	defer cancel()

	if _, _, err := h.Engine.Authorize(ctx, authz.ActorFromRequest(r), campaignID, campaignpolicy.ActionExportResults); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	recs, err := h.Exports.ListByCampaign(ctx, campaignID)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.OK(w, recs)
}

// ServeExport handles GET /api/exports/{id}.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	id, err := apiresp.IDParam(r, "id", "export")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get export")
	defer cancel()

	rec, err := h.authorizeRecord(ctx, authz.ActorFromRequest(r), id)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.OK(w, rec)
}

// ServeDownload handles GET /api/exports/{id}/download with the stored file
// as an attachment.
func (h *Handler) ServeDownload(w http.ResponseWriter, r *http.Request) {
	id, err := apiresp.IDParam(r, "id", "export")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "download export")
	defer cancel()

	rec, err := h.authorizeRecord(ctx, authz.ActorFromRequest(r), id)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	content, err := h.Service.Open(rec)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	ctype := "text/csv; charset=utf-8"
	if rec.Format == models.ExportJSON {
		ctype = "application/json"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(rec.FilePath)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
