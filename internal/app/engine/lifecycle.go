package engine

import (
	"context"

	"github.com/dalemusser/campaignhub/internal/app/policy/lifecyclepolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Publish moves a DRAFT campaign to PUBLISHED and assigns its shareable link.
// Link and status are written in the same conditional update, so a lost race
// surfaces as InvalidState and never assigns a second link.
func (e *Engine) Publish(ctx context.Context, a models.Actor, id primitive.ObjectID) (models.Campaign, error) {
	c, err := e.Campaigns.LoadWithMembership(ctx, id)
	if err != nil {
		return models.Campaign{}, err
	}
	if err := lifecyclepolicy.CheckPublish(c, a); err != nil {
		return models.Campaign{}, err
	}

	link := e.NewLink()
	now := e.Now()
	ok, err := e.Campaigns.TransitionStatus(ctx, id, models.StatusDraft, models.StatusPublished, models.StatusChange{
		ShareableLink: &link,
		UpdatedAt:     now,
	})
	if err != nil {
		return models.Campaign{}, err
	}
	if !ok {
		e.Log.Info("publish lost conditional update", zap.String("campaign_id", id.Hex()))
		return models.Campaign{}, apperr.InvalidState("campaign is no longer a draft")
	}

	c.Status = models.StatusPublished
	c.ShareableLink = &link
	c.UpdatedAt = now
	return c, nil
}

// Close moves a PUBLISHED campaign to CLOSED and stamps the closure time.
func (e *Engine) Close(ctx context.Context, a models.Actor, id primitive.ObjectID) (models.Campaign, error) {
	c, err := e.Campaigns.LoadWithMembership(ctx, id)
	if err != nil {
		return models.Campaign{}, err
	}
	if err := lifecyclepolicy.CheckClose(c, a); err != nil {
		return models.Campaign{}, err
	}

	now := e.Now()
	ok, err := e.Campaigns.TransitionStatus(ctx, id, models.StatusPublished, models.StatusClosed, models.StatusChange{
		ClosedAt:  &now,
		UpdatedAt: now,
	})
	if err != nil {
		return models.Campaign{}, err
	}
	if !ok {
		e.Log.Info("close lost conditional update", zap.String("campaign_id", id.Hex()))
		return models.Campaign{}, apperr.InvalidState("campaign is no longer published")
	}

	c.Status = models.StatusClosed
	c.ClosedAt = &now
	c.UpdatedAt = now
	return c, nil
}

// CheckAcceptingResponses guards response submission.
func (e *Engine) CheckAcceptingResponses(c models.Campaign) error {
	return lifecyclepolicy.CheckAcceptingResponses(c)
}
