package managers

import (
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
)

// HandleUpdate handles PATCH /api/campaigns/{id}/managers/{managerId}. The
// permission set is replaced, not merged.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	campaignID, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	managerID, err := apiresp.IDParam(r, "managerId", "manager")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	var req updateRequest
	if err := apiresp.Decode(r, &req); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(req).Err(); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	actor := authz.ActorFromRequest(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update manager")
	defer cancel()

	m, err := h.Engine.UpdateManagerPermissions(ctx, actor, campaignID, managerID, req.Permissions)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.ManagerUpdated(ctx, r, actor, m)

	v, err := h.newUserLookup().view(ctx, m)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.OK(w, v)
}

// HandleRemove handles DELETE /api/campaigns/{id}/managers/{managerId}.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	campaignID, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	managerID, err := apiresp.IDParam(r, "managerId", "manager")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	actor := authz.ActorFromRequest(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "remove manager")
	defer cancel()

	m, err := h.Engine.RemoveManager(ctx, actor, campaignID, managerID)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.ManagerRemoved(ctx, r, actor, m)
	apiresp.NoContent(w)
}
