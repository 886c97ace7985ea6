// internal/app/store/questions/questionstore.go
package questionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/txn"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Store struct {
	db  *mongo.Database
	c   *mongo.Collection
	log *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, c: db.Collection("questions"), log: logger}
}

var errNotFound = apperr.NotFound("question not found")

// Create inserts q. A nil order appends after the current last question.
func (s *Store) Create(ctx context.Context, q models.Question, order *int) (models.Question, error) {
	if order != nil {
		q.Order = *order
	} else {
		next, err := s.nextOrder(ctx, q.CampaignID)
		if err != nil {
			return models.Question{}, err
		}
		q.Order = next
	}

	now := time.Now().UTC()
	q.ID = primitive.NewObjectID()
	q.CreatedAt = now
	q.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, q); err != nil {
		return models.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func (s *Store) nextOrder(ctx context.Context, campaignID primitive.ObjectID) (int, error) {
	var last models.Question
	err := s.c.FindOne(ctx, bson.M{"campaign_id": campaignID},
		options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}}).SetProjection(bson.M{"order": 1}),
	).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find last question: %w", err)
	}
	return last.Order + 1, nil
}

// GetByID loads one question.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Question, error) {
	var q models.Question
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Question{}, errNotFound
		}
		return models.Question{}, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

// ListByCampaign returns the campaign's questions in display order.
func (s *Store) ListByCampaign(ctx context.Context, campaignID primitive.ObjectID) ([]models.Question, error) {
	cur, err := s.c.Find(ctx, bson.M{"campaign_id": campaignID},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.Question{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return out, nil
}

// Update holds the editable question fields. Nil pointers are left as is.
type Update struct {
	Text     *string
	Type     *models.QuestionType
	Options  map[string]any
	Required *bool
	Order    *int
}

// Update applies u to the question.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u Update) (models.Question, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Text != nil {
		set["text"] = *u.Text
	}
	if u.Type != nil {
		set["type"] = *u.Type
	}
	if u.Options != nil {
		set["options"] = u.Options
	}
	if u.Required != nil {
		set["required"] = *u.Required
	}
	if u.Order != nil {
		set["order"] = *u.Order
	}

	var q models.Question
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&q)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Question{}, errNotFound
		}
		return models.Question{}, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}

// Delete removes one question.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if res.DeletedCount == 0 {
		return errNotFound
	}
	return nil
}

// BatchSetOrder writes every order in one ordered bulk write inside a
// transaction. If any id does not match a question of campaignID the
// transaction is aborted with NotFound.
func (s *Store) BatchSetOrder(ctx context.Context, campaignID primitive.ObjectID, orders []models.QuestionOrder) error {
	if len(orders) == 0 {
		return nil
	}
	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(orders))
	for _, o := range orders {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": o.ID, "campaign_id": campaignID}).
			SetUpdate(bson.M{"$set": bson.M{"order": o.Order, "updated_at": now}}))
	}

	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		res, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
		if err != nil {
			return fmt.Errorf("reorder questions: %w", err)
		}
		if res.MatchedCount != int64(len(orders)) {
			return apperr.NotFound("question not found in campaign")
		}
		return nil
	})
}
