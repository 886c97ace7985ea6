// Package managers serves manager invitations and permission changes under
// /api/campaigns/{id}/managers, and the caller's pending invitations under
// /api/users/invitations.
package managers

import (
	"context"

	"github.com/dalemusser/campaignhub/internal/app/engine"
	campaignstore "github.com/dalemusser/campaignhub/internal/app/store/campaigns"
	managerstore "github.com/dalemusser/campaignhub/internal/app/store/managers"
	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/app/system/auditlog"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Managers  *managerstore.Store
	Users     *userstore.Store
	Campaigns *campaignstore.Store
	Engine    *engine.Engine
	AuditLog  *auditlog.Logger
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, eng *engine.Engine, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Managers:  managerstore.New(db),
		Users:     userstore.New(db),
		Campaigns: campaignstore.New(db, logger),
		Engine:    eng,
		AuditLog:  audit,
		Log:       logger,
	}
}

// userLookup resolves user summaries for a batch of edges, loading each
// distinct user once. Users that no longer exist are left out.
type userLookup struct {
	users *userstore.Store
	cache map[primitive.ObjectID]*userSummary
}

func (h *Handler) newUserLookup() *userLookup {
	return &userLookup{users: h.Users, cache: map[primitive.ObjectID]*userSummary{}}
}

func (l *userLookup) get(ctx context.Context, id primitive.ObjectID) (*userSummary, error) {
	if s, ok := l.cache[id]; ok {
		return s, nil
	}
	u, err := l.users.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			l.cache[id] = nil
			return nil, nil
		}
		return nil, err
	}
	s := &userSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	l.cache[id] = s
	return s, nil
}

func (l *userLookup) view(ctx context.Context, m models.CampaignManager) (managerView, error) {
	v := managerView{CampaignManager: m}
	var err error
	if v.User, err = l.get(ctx, m.UserID); err != nil {
		return v, err
	}
	if v.InvitedBy, err = l.get(ctx, m.InvitedByID); err != nil {
		return v, err
	}
	return v, nil
}
