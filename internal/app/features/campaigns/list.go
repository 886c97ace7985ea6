package campaigns

import (
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	campaignstore "github.com/dalemusser/campaignhub/internal/app/store/campaigns"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/normalize"
	"github.com/dalemusser/campaignhub/internal/app/system/paging"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeList handles GET /api/campaigns?status=&search=&page=&limit=.
//
// The rows are scoped by global role. Callers limited to public campaigns get
// the public projection of each row.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromRequest(r)
	scope := campaignpolicy.ListScopeFor(actor)

	var f campaignstore.ListFilter
	if raw := query.Get(r, "status"); raw != "" {
		status, ok := normalize.Status(raw)
		if !ok {
			apiresp.Error(w, r, h.Log, apperr.InvalidInput("unknown status"))
			return
		}
		f.Status = status
	}
	f.Search = query.Get(r, "search")
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list campaigns")
	defer cancel()

	rows, total, err := h.Campaigns.List(ctx, scope, f, p)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	if scope.PublicOnly {
		public := make([]models.PublicCampaign, len(rows))
		for i, c := range rows {
			public[i] = c.Public()
		}
		apiresp.Paged(w, public, p.MetaFor(total))
		return
	}
	apiresp.Paged(w, rows, p.MetaFor(total))
}
