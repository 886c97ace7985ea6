package accounts

import (
	"net/http"

	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/register                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleRegister creates a RESPONDENT account and signs it in. Other roles are
// assigned only through the user admin endpoint.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := apiresp.Decode(r, &req); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(req).Err(); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "register")
	defer cancel()

	hash, err := userstore.HashPassword(req.Password)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	u, err := h.Users.Create(ctx, models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleRespondent,
	})
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	h.AuditLog.UserRegistered(ctx, r, u.ID, u.Email)
	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))

	resp, err := h.startSession(w, r, u)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.Created(w, resp)
}
