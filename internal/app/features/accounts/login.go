package accounts

import (
	"fmt"
	"net/http"

	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.uber.org/zap"
)

var errBadCredentials = apperr.New(apperr.KindUnauthorized, "invalid email or password")

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/login                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLogin verifies credentials, writes the session cookie and returns a
// bearer token when an issuer is configured.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := apiresp.Decode(r, &req); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(req).Err(); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(ctx, r, req.Email); !ok {
			h.AuditLog.LoginFailedRateLimit(ctx, r, req.Email)
			apiresp.Error(w, r, h.Log, apperr.New(apperr.KindRateLimited, reason))
			return
		}
	}

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if u == nil {
		h.AuditLog.LoginFailedUserNotFound(ctx, r, req.Email)
		apiresp.Error(w, r, h.Log, errBadCredentials)
		return
	}
	if !userstore.CheckPassword(u.PasswordHash, req.Password) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, u.Email)
		apiresp.Error(w, r, h.Log, errBadCredentials)
		return
	}
	// Checked after the password so a disabled account is not revealed to a
	// caller who does not know it.
	if !u.Active {
		h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID, u.Email)
		apiresp.Error(w, r, h.Log, apperr.Forbidden("account is disabled"))
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(ctx, u.Email)
	}

	resp, err := h.startSession(w, r, *u)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Email)
	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()), zap.String("role", string(u.Role)))
	apiresp.OK(w, resp)
}

// startSession writes the cookie and, when configured, issues a bearer token.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, u models.User) (sessionResponse, error) {
	su := sessionUser(u)
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		return sessionResponse{}, err
	}
	resp := sessionResponse{User: u}
	if issuer := h.SessionMgr.Tokens(); issuer != nil {
		token, exp, err := issuer.Issue(su)
		if err != nil {
			return sessionResponse{}, fmt.Errorf("issue token: %w", err)
		}
		resp.Token = token
		resp.ExpiresAt = &exp
	}
	return resp, nil
}
