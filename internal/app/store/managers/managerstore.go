// internal/app/store/managers/managerstore.go
package managerstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists campaign manager edges. One edge exists per
// (campaign, user); the unique index settles concurrent invites.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("campaign_managers")}
}

// ErrDuplicateManager is returned when the user already has an edge on the campaign.
var ErrDuplicateManager = apperr.Conflict("user is already a manager or has a pending invitation")

var errNotFound = apperr.NotFound("manager not found")

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.CampaignManager, error) {
	var m models.CampaignManager
	if err := s.c.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get manager: %w", err)
	}
	return &m, nil
}

// GetByCampaignAndUser returns (nil, nil) when no edge exists.
func (s *Store) GetByCampaignAndUser(ctx context.Context, campaignID, userID primitive.ObjectID) (*models.CampaignManager, error) {
	return s.findOne(ctx, bson.M{"campaign_id": campaignID, "user_id": userID})
}

// GetByID returns (nil, nil) when no edge exists.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.CampaignManager, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// Insert stores a new pending edge.
func (s *Store) Insert(ctx context.Context, m models.CampaignManager) (models.CampaignManager, error) {
	now := time.Now().UTC()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.CampaignManager{}, ErrDuplicateManager
		}
		return models.CampaignManager{}, fmt.Errorf("insert manager: %w", err)
	}
	return m, nil
}

// SetAccepted stamps AcceptedAt only if it is still unset. It reports false
// when another request accepted first.
func (s *Store) SetAccepted(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "accepted_at": nil},
		bson.M{"$set": bson.M{"accepted_at": at.UTC(), "updated_at": at.UTC()}},
	)
	if err != nil {
		return false, fmt.Errorf("accept invitation: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// UpdatePermissions replaces the edge's permission set.
func (s *Store) UpdatePermissions(ctx context.Context, id primitive.ObjectID, perms []models.Permission) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"permissions": perms,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update manager permissions: %w", err)
	}
	if res.MatchedCount == 0 {
		return errNotFound
	}
	return nil
}

// Delete removes an edge.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete manager: %w", err)
	}
	if res.DeletedCount == 0 {
		return errNotFound
	}
	return nil
}

// ListByCampaign returns every edge of a campaign, oldest invitation first.
func (s *Store) ListByCampaign(ctx context.Context, campaignID primitive.ObjectID) ([]models.CampaignManager, error) {
	return s.list(ctx, bson.M{"campaign_id": campaignID})
}

// ListPendingForUser returns the invitations userID has not accepted yet.
func (s *Store) ListPendingForUser(ctx context.Context, userID primitive.ObjectID) ([]models.CampaignManager, error) {
	return s.list(ctx, bson.M{"user_id": userID, "accepted_at": nil})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.CampaignManager, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.CampaignManager{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode managers: %w", err)
	}
	return out, nil
}
