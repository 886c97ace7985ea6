package accounts

import (
	"net/http"

	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
)

// ServeMe handles GET /api/auth/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromRequest(r)
	if actor.IsGuest() {
		apiresp.Error(w, r, h.Log, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "me")
	defer cancel()

	u, err := h.Users.GetByID(ctx, actor.ID)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.OK(w, u)
}

// HandleChangePassword handles POST /api/auth/change-password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromRequest(r)
	if actor.IsGuest() {
		apiresp.Error(w, r, h.Log, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}

	var req changePasswordRequest
	if err := apiresp.Decode(r, &req); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(req).Err(); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "change password")
	defer cancel()

	u, err := h.Users.GetByID(ctx, actor.ID)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if !userstore.CheckPassword(u.PasswordHash, req.CurrentPassword) {
		apiresp.Error(w, r, h.Log, apperr.New(apperr.KindUnauthorized, "current password is incorrect"))
		return
	}
	hash, err := userstore.HashPassword(req.NewPassword)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	h.AuditLog.PasswordChanged(ctx, r, u.ID)
	apiresp.OK(w, map[string]string{"message": "password changed"})
}
