package accounts

import (
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
)

// HandleLogout clears the session cookie. Bearer tokens expire on their own.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Logout(r.Context(), r, u.ID)
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.NoContent(w)
}
