package engine

import (
	"context"
	"strings"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	"github.com/dalemusser/campaignhub/internal/app/policy/invitepolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invite creates an INVITED manager edge for the user registered under email.
func (e *Engine) Invite(ctx context.Context, a models.Actor, campaignID primitive.ObjectID, email string, perms []models.Permission) (models.CampaignManager, error) {
	c, err := e.Campaigns.LoadWithMembership(ctx, campaignID)
	if err != nil {
		return models.CampaignManager{}, err
	}
	// Authorization comes before any lookup that could reveal whether an
	// email is registered.
	if !invitepolicy.CanManageManagers(c, a) {
		_, err := invitepolicy.CheckInvite(c, a, nil, nil, perms)
		return models.CampaignManager{}, err
	}

	target, err := e.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return models.CampaignManager{}, err
	}
	var existing *models.CampaignManager
	if target != nil {
		if m, ok := c.ManagerFor(target.ID); ok {
			existing = &m
		}
	}
	normalized, err := invitepolicy.CheckInvite(c, a, target, existing, perms)
	if err != nil {
		return models.CampaignManager{}, err
	}

	now := e.Now()
	return e.Managers.Insert(ctx, models.CampaignManager{
		CampaignID:  c.ID,
		UserID:      target.ID,
		InvitedByID: a.ID,
		Permissions: normalized,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// Accept marks the actor's own invitation on the campaign as accepted.
// Accepting twice is an AlreadyAccepted error, not a no-op.
func (e *Engine) Accept(ctx context.Context, a models.Actor, campaignID primitive.ObjectID) (models.CampaignManager, error) {
	if a.IsGuest() {
		return models.CampaignManager{}, apperr.NotFound("invitation not found")
	}
	edge, err := e.Managers.GetByCampaignAndUser(ctx, campaignID, a.ID)
	if err != nil {
		return models.CampaignManager{}, err
	}
	if err := invitepolicy.CheckAccept(a, edge); err != nil {
		return models.CampaignManager{}, err
	}

	now := e.Now()
	ok, err := e.Managers.SetAccepted(ctx, edge.ID, now)
	if err != nil {
		return models.CampaignManager{}, err
	}
	if !ok {
		return models.CampaignManager{}, apperr.New(apperr.KindAlreadyAccepted, "invitation already accepted")
	}
	edge.AcceptedAt = &now
	edge.UpdatedAt = now
	return *edge, nil
}

// UpdateManagerPermissions replaces the permission set of an edge.
func (e *Engine) UpdateManagerPermissions(ctx context.Context, a models.Actor, campaignID, managerID primitive.ObjectID, perms []models.Permission) (models.CampaignManager, error) {
	_, edge, err := e.loadEdgeForManage(ctx, a, campaignID, managerID)
	if err != nil {
		return models.CampaignManager{}, err
	}
	normalized, err := invitepolicy.NormalizePermissions(perms)
	if err != nil {
		return models.CampaignManager{}, err
	}
	if err := e.Managers.UpdatePermissions(ctx, edge.ID, normalized); err != nil {
		return models.CampaignManager{}, err
	}
	edge.Permissions = normalized
	edge.UpdatedAt = e.Now()
	return *edge, nil
}

// RemoveManager deletes an edge, accepted or not, and returns it.
func (e *Engine) RemoveManager(ctx context.Context, a models.Actor, campaignID, managerID primitive.ObjectID) (models.CampaignManager, error) {
	_, edge, err := e.loadEdgeForManage(ctx, a, campaignID, managerID)
	if err != nil {
		return models.CampaignManager{}, err
	}
	if err := e.Managers.Delete(ctx, edge.ID); err != nil {
		return models.CampaignManager{}, err
	}
	return *edge, nil
}

func (e *Engine) loadEdgeForManage(ctx context.Context, a models.Actor, campaignID, managerID primitive.ObjectID) (models.Campaign, *models.CampaignManager, error) {
	c, err := e.Campaigns.LoadWithMembership(ctx, campaignID)
	if err != nil {
		return models.Campaign{}, nil, err
	}
	if !invitepolicy.CanManageManagers(c, a) {
		return c, nil, invitepolicy.CheckManage(c, a, nil)
	}
	edge, err := e.Managers.GetByID(ctx, managerID)
	if err != nil {
		return c, nil, err
	}
	if err := invitepolicy.CheckManage(c, a, edge); err != nil {
		return c, nil, err
	}
	return c, edge, nil
}

// SetRespondentDetailsVisibility flips the campaign flag that lets managers
// with MANAGE_RESPONDENTS see identifying fields. Admin only.
func (e *Engine) SetRespondentDetailsVisibility(ctx context.Context, a models.Actor, campaignID primitive.ObjectID, allow bool) (models.Campaign, error) {
	c, _, err := e.Authorize(ctx, a, campaignID, campaignpolicy.ActionSetRespondentDetailsVisibility)
	if err != nil {
		return models.Campaign{}, err
	}
	if err := e.Campaigns.SetAllowManagerViewRespondentDetails(ctx, campaignID, allow); err != nil {
		return models.Campaign{}, err
	}
	c.AllowManagerViewRespondentDetails = allow
	return c, nil
}
