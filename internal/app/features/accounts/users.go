package accounts

import (
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/paging"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeUsers handles GET /api/users. Optional ?role= filter.
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	var role models.Role
	if raw := query.Get(r, "role"); raw != "" {
		parsed, ok := models.ParseRole(raw)
		if !ok {
			apiresp.Error(w, r, h.Log, apperr.InvalidInput("unknown role"))
			return
		}
		role = parsed
	}
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list users")
	defer cancel()

	users, total, err := h.Users.List(ctx, role, p)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.Paged(w, users, p.MetaFor(total))
}

// HandleUpdateUser handles PATCH /api/auth/users/{id}: role and active flag.
// Super admins may not demote or disable themselves.
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromRequest(r)
	if !authz.IsSuperAdmin(actor) {
		apiresp.Error(w, r, h.Log, apperr.Forbidden("super admin required"))
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apiresp.Error(w, r, h.Log, apperr.NotFound("user not found"))
		return
	}

	var req updateUserRequest
	if err := apiresp.Decode(r, &req); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(req).Err(); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if req.Role == nil && req.Active == nil {
		apiresp.Error(w, r, h.Log, apperr.InvalidInput("nothing to update"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update user")
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	role := u.Role
	if req.Role != nil {
		role, _ = models.ParseRole(*req.Role)
	}
	if u.ID == actor.ID {
		if role != models.RoleSuperAdmin {
			apiresp.Error(w, r, h.Log, apperr.Precondition("cannot remove your own super admin role"))
			return
		}
		if req.Active != nil && !*req.Active {
			apiresp.Error(w, r, h.Log, apperr.Precondition("cannot disable your own account"))
			return
		}
	}

	if role != u.Role {
		if err := h.Users.UpdateRole(ctx, u.ID, role); err != nil {
			apiresp.Error(w, r, h.Log, err)
			return
		}
		h.AuditLog.UserRoleChanged(ctx, r, actor, u.ID, u.Role, role)
		u.Role = role
	}
	if req.Active != nil && *req.Active != u.Active {
		if err := h.Users.SetActive(ctx, u.ID, *req.Active); err != nil {
			apiresp.Error(w, r, h.Log, err)
			return
		}
		h.AuditLog.UserActiveChanged(ctx, r, actor, u.ID, *req.Active)
		u.Active = *req.Active
	}

	apiresp.OK(w, u)
}
