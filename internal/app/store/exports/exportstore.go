// internal/app/store/exports/exportstore.go
package exportstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store records generated export files.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("exports")}
}

// Create stores an export record.
func (s *Store) Create(ctx context.Context, e models.ExportRecord) (models.ExportRecord, error) {
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.ExportRecord{}, fmt.Errorf("insert export: %w", err)
	}
	return e, nil
}

// GetByID loads one export record.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.ExportRecord, error) {
	var e models.ExportRecord
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ExportRecord{}, apperr.NotFound("export not found")
		}
		return models.ExportRecord{}, fmt.Errorf("get export: %w", err)
	}
	return e, nil
}

// ListByCampaign returns a campaign's exports, newest first.
func (s *Store) ListByCampaign(ctx context.Context, campaignID primitive.ObjectID) ([]models.ExportRecord, error) {
	cur, err := s.c.Find(ctx, bson.M{"campaign_id": campaignID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.ExportRecord{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode exports: %w", err)
	}
	return out, nil
}
