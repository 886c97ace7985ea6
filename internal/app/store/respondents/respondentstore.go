// internal/app/store/respondents/respondentstore.go
package respondentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/paging"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("respondents")}
}

var errNotFound = apperr.NotFound("response not found")

// submitted matches respondents that finished the campaign.
func submitted(campaignID primitive.ObjectID) bson.M {
	return bson.M{"campaign_id": campaignID, "submitted_at": bson.M{"$ne": nil}}
}

// Create stores a respondent. Anonymous is derived from the presence of
// identifiable fields and never changes afterwards.
func (s *Store) Create(ctx context.Context, r models.Respondent) (models.Respondent, error) {
	if r.RespondentToken == "" {
		return models.Respondent{}, errors.New("respondent token is required")
	}
	r.ID = primitive.NewObjectID()
	r.Anonymous = r.IdentifiableFields == nil
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	if r.Answers == nil {
		r.Answers = []models.Answer{}
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Respondent{}, apperr.Wrap(apperr.KindConflict, "respondent token collision", err)
		}
		return models.Respondent{}, fmt.Errorf("insert respondent: %w", err)
	}
	return r, nil
}

// GetByID loads one respondent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Respondent, error) {
	var r models.Respondent
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Respondent{}, errNotFound
		}
		return models.Respondent{}, fmt.Errorf("get respondent: %w", err)
	}
	return r, nil
}

// ListSubmitted returns one page of submitted respondents, newest first.
func (s *Store) ListSubmitted(ctx context.Context, campaignID primitive.ObjectID, p paging.Params) ([]models.Respondent, int64, error) {
	filter := submitted(campaignID)
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count respondents: %w", err)
	}
	out, err := s.find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(p.Take()))
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// AllSubmitted returns every submitted respondent, oldest first.
func (s *Store) AllSubmitted(ctx context.Context, campaignID primitive.ObjectID) ([]models.Respondent, error) {
	return s.find(ctx, submitted(campaignID), options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: 1}, {Key: "_id", Value: 1}}))
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Respondent, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list respondents: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.Respondent{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode respondents: %w", err)
	}
	return out, nil
}

// CountStarted counts every respondent of the campaign, submitted or not.
func (s *Store) CountStarted(ctx context.Context, campaignID primitive.ObjectID) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"campaign_id": campaignID})
	if err != nil {
		return 0, fmt.Errorf("count started: %w", err)
	}
	return n, nil
}

// CountSubmitted counts submitted respondents of the campaign.
func (s *Store) CountSubmitted(ctx context.Context, campaignID primitive.ObjectID) (int64, error) {
	n, err := s.c.CountDocuments(ctx, submitted(campaignID))
	if err != nil {
		return 0, fmt.Errorf("count submitted: %w", err)
	}
	return n, nil
}

// Delete removes one respondent and its answers.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete respondent: %w", err)
	}
	if res.DeletedCount == 0 {
		return errNotFound
	}
	return nil
}
