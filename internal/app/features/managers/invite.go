package managers

import (
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleInvite handles POST /api/campaigns/{id}/managers. The invitee must
// already have an account.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	campaignID, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	var req inviteRequest
	if err := apiresp.Decode(r, &req); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(req).Err(); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	actor := authz.ActorFromRequest(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "invite manager")
	defer cancel()

	m, err := h.Engine.Invite(ctx, actor, campaignID, req.Email, req.Permissions)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.ManagerInvited(ctx, r, actor, m)
	h.Log.Info("manager invited",
		zap.String("campaign_id", campaignID.Hex()),
		zap.String("user_id", m.UserID.Hex()))

	v, err := h.newUserLookup().view(ctx, m)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.Created(w, v)
}

// HandleAccept handles POST /api/campaigns/{id}/managers/accept on behalf of
// the invited user.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	campaignID, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	actor := authz.ActorFromRequest(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "accept invitation")
	defer cancel()

	m, err := h.Engine.Accept(ctx, actor, campaignID)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.ManagerAccepted(ctx, r, actor, m)
	apiresp.OK(w, m)
}
