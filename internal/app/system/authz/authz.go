// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActorFromRequest returns the actor for the current request.
// If no user is present in context, or the user ID or role is malformed, it
// returns the guest actor. Callers can trust that a non-guest actor carries a
// valid ObjectID and a known role.
func ActorFromRequest(r *http.Request) models.Actor {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return models.Guest()
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return models.Guest()
	}
	role, ok := models.ParseRole(user.Role)
	if !ok {
		return models.Guest()
	}
	return models.Actor{ID: id, Role: role}
}

// UserCtx returns the actor, display name and a found flag for the request.
func UserCtx(r *http.Request) (actor models.Actor, name string, ok bool) {
	actor = ActorFromRequest(r)
	if actor.IsGuest() {
		return actor, "", false
	}
	user, _ := auth.CurrentUser(r)
	return actor, user.Name, true
}
