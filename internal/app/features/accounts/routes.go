package accounts

import (
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// AuthRoutes is mounted at /api/auth.
func AuthRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/me", h.ServeMe)
		pr.Post("/change-password", h.HandleChangePassword)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(string(models.RoleSuperAdmin)))
		pr.Patch("/users/{id}", h.HandleUpdateUser)
	})
	return r
}

// UserAdminRoutes adds the super-admin user listing to the /api/users router.
func UserAdminRoutes(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.With(sm.RequireRole(string(models.RoleSuperAdmin))).Get("/", h.ServeUsers)
}
