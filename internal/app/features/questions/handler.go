// Package questions serves the question editor of a campaign under
// /api/campaigns/{id}/questions.
package questions

import (
	"context"

	"github.com/dalemusser/campaignhub/internal/app/engine"
	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	questionstore "github.com/dalemusser/campaignhub/internal/app/store/questions"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Questions *questionstore.Store
	Engine    *engine.Engine
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, eng *engine.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		Questions: questionstore.New(db, logger),
		Engine:    eng,
		Log:       logger,
	}
}

// loadOwned authorizes edit_questions on the campaign and loads the question,
// which must belong to it. A question of another campaign is reported as
// not found.
func (h *Handler) loadOwned(ctx context.Context, a models.Actor, campaignID, questionID primitive.ObjectID) (models.Question, error) {
	if _, _, err := h.Engine.Authorize(ctx, a, campaignID, campaignpolicy.ActionEditQuestions); err != nil {
		return models.Question{}, err
	}
	q, err := h.Questions.GetByID(ctx, questionID)
	if err != nil {
		return models.Question{}, err
	}
	if q.CampaignID != campaignID {
		return models.Question{}, apperr.NotFound("question not found")
	}
	return q, nil
}
