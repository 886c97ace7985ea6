package engine

import (
	"context"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReorderQuestions rewrites the display order of the campaign's questions.
// Every id must belong to the campaign and appear once; otherwise nothing is
// written.
func (e *Engine) ReorderQuestions(ctx context.Context, a models.Actor, campaignID primitive.ObjectID, orders []models.QuestionOrder) error {
	c, _, err := e.Authorize(ctx, a, campaignID, campaignpolicy.ActionEditQuestions)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return apperr.InvalidInput("no questions to reorder")
	}

	owned := make(map[primitive.ObjectID]bool, len(c.Questions))
	for _, q := range c.Questions {
		owned[q.ID] = true
	}
	seen := make(map[primitive.ObjectID]bool, len(orders))
	for _, o := range orders {
		if !owned[o.ID] {
			return apperr.WithMetadata(apperr.KindNotFound, "question not found in campaign",
				map[string]string{"question_id": o.ID.Hex()})
		}
		if seen[o.ID] {
			return apperr.WithMetadata(apperr.KindInvalidInput, "question listed more than once",
				map[string]string{"question_id": o.ID.Hex()})
		}
		if o.Order < 0 {
			return apperr.InvalidInput("order must not be negative")
		}
		seen[o.ID] = true
	}

	return e.Questions.BatchSetOrder(ctx, campaignID, orders)
}
