// internal/app/store/campaigns/campaignstore.go
package campaignstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/paging"
	"github.com/dalemusser/campaignhub/internal/app/system/txn"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Store persists campaigns and assembles the membership snapshot the engine
// evaluates.
type Store struct {
	db        *mongo.Database
	c         *mongo.Collection
	questions *mongo.Collection
	managers  *mongo.Collection
	log       *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:        db,
		c:         db.Collection("campaigns"),
		questions: db.Collection("questions"),
		managers:  db.Collection("campaign_managers"),
		log:       logger,
	}
}

var errNotFound = apperr.NotFound("campaign not found")

// Create inserts a new DRAFT campaign. Visibility defaults to PRIVATE.
func (s *Store) Create(ctx context.Context, c models.Campaign) (models.Campaign, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.TitleCI = text.Fold(c.Title)
	c.Status = models.StatusDraft
	if c.Visibility == "" {
		c.Visibility = models.VisibilityPrivate
	}
	c.ShareableLink = nil
	c.ClosedAt = nil
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Questions = nil
	c.Managers = nil

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Campaign{}, fmt.Errorf("insert campaign: %w", err)
	}
	return c, nil
}

// GetByID loads the campaign document alone.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Campaign, error) {
	var c models.Campaign
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Campaign{}, errNotFound
		}
		return models.Campaign{}, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

// LoadWithMembership loads the campaign with its questions in order and
// every manager edge, accepted or pending.
func (s *Store) LoadWithMembership(ctx context.Context, id primitive.ObjectID) (models.Campaign, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Campaign{}, err
	}
	if c.Questions, err = s.loadQuestions(ctx, id); err != nil {
		return models.Campaign{}, err
	}

	cur, err := s.managers.Find(ctx, bson.M{"campaign_id": id},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return models.Campaign{}, fmt.Errorf("load managers: %w", err)
	}
	defer cur.Close(ctx)
	c.Managers = []models.CampaignManager{}
	if err := cur.All(ctx, &c.Managers); err != nil {
		return models.Campaign{}, fmt.Errorf("decode managers: %w", err)
	}
	return c, nil
}

func (s *Store) loadQuestions(ctx context.Context, id primitive.ObjectID) ([]models.Question, error) {
	cur, err := s.questions.Find(ctx, bson.M{"campaign_id": id},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer cur.Close(ctx)
	qs := []models.Question{}
	if err := cur.All(ctx, &qs); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return qs, nil
}

// GetByShareableLink resolves a public link to its campaign with questions.
func (s *Store) GetByShareableLink(ctx context.Context, link string) (models.Campaign, error) {
	if link == "" {
		return models.Campaign{}, errNotFound
	}
	var c models.Campaign
	if err := s.c.FindOne(ctx, bson.M{"shareable_link": link}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Campaign{}, errNotFound
		}
		return models.Campaign{}, fmt.Errorf("get campaign by link: %w", err)
	}
	qs, err := s.loadQuestions(ctx, c.ID)
	if err != nil {
		return models.Campaign{}, err
	}
	c.Questions = qs
	return c, nil
}

// ListFilter narrows a scoped campaign list.
type ListFilter struct {
	Status models.CampaignStatus
	Search string
}

// List returns one page of campaigns visible under scope, newest first.
func (s *Store) List(ctx context.Context, scope campaignpolicy.ListScope, f ListFilter, p paging.Params) ([]models.Campaign, int64, error) {
	filter := bson.M{}
	switch {
	case scope.All:
	case !scope.CreatorID.IsZero():
		filter["creator_id"] = scope.CreatorID
	case !scope.ManagerUserID.IsZero():
		ids, err := s.managedCampaignIDs(ctx, scope.ManagerUserID)
		if err != nil {
			return nil, 0, err
		}
		if len(ids) == 0 {
			return []models.Campaign{}, 0, nil
		}
		filter["_id"] = bson.M{"$in": ids}
	default:
		filter["visibility"] = models.VisibilityPublic
		filter["status"] = models.StatusPublished
	}

	if f.Status != "" {
		if st, ok := filter["status"]; ok && st != f.Status {
			return []models.Campaign{}, 0, nil
		}
		filter["status"] = f.Status
	}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"title_ci": primitive.Regex{Pattern: regexp.QuoteMeta(text.Fold(f.Search))}},
			bson.M{"description": primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}},
		}
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(p.Take())
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Campaign{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode campaigns: %w", err)
	}
	return out, total, nil
}

func (s *Store) managedCampaignIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	vals, err := s.managers.Distinct(ctx, "campaign_id", bson.M{
		"user_id":     userID,
		"accepted_at": bson.M{"$ne": nil},
	})
	if err != nil {
		return nil, fmt.Errorf("managed campaigns: %w", err)
	}
	ids := make([]primitive.ObjectID, 0, len(vals))
	for _, v := range vals {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}
	return ids, nil
}

// Update holds the mutable descriptive fields. Nil pointers are left as is.
type Update struct {
	Title              *string
	Description        *string
	Visibility         *models.Visibility
	ScheduledPublishAt *time.Time
	ClearSchedule      bool
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Visibility == nil &&
		u.ScheduledPublishAt == nil && !u.ClearSchedule
}

// Update applies u to the campaign.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	update := bson.M{}
	if u.Title != nil {
		set["title"] = *u.Title
		set["title_ci"] = text.Fold(*u.Title)
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Visibility != nil {
		set["visibility"] = *u.Visibility
	}
	if u.ClearSchedule {
		update["$unset"] = bson.M{"scheduled_publish_at": ""}
	} else if u.ScheduledPublishAt != nil {
		set["scheduled_publish_at"] = u.ScheduledPublishAt.UTC()
	}
	update["$set"] = set

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if res.MatchedCount == 0 {
		return errNotFound
	}
	return nil
}

// TransitionStatus moves id from expected to next only if the stored status
// still equals expected. A shareable link is written only if none is stored
// yet, so a published campaign keeps its first link.
func (s *Store) TransitionStatus(ctx context.Context, id primitive.ObjectID, expected, next models.CampaignStatus, change models.StatusChange) (bool, error) {
	filter := bson.M{"_id": id, "status": expected}
	set := bson.M{"status": next, "updated_at": change.UpdatedAt}
	if change.UpdatedAt.IsZero() {
		set["updated_at"] = time.Now().UTC()
	}
	if change.ShareableLink != nil {
		filter["shareable_link"] = bson.M{"$exists": false}
		set["shareable_link"] = *change.ShareableLink
	}
	if change.ClosedAt != nil {
		set["closed_at"] = change.ClosedAt.UTC()
	}

	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return false, apperr.Wrap(apperr.KindConflict, "shareable link collision", err)
		}
		return false, fmt.Errorf("transition campaign: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// SetAllowManagerViewRespondentDetails writes the privacy flag.
func (s *Store) SetAllowManagerViewRespondentDetails(ctx context.Context, id primitive.ObjectID, allow bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"allow_manager_view_respondent_details": allow,
		"updated_at":                            time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("set respondent details flag: %w", err)
	}
	if res.MatchedCount == 0 {
		return errNotFound
	}
	return nil
}

// DeleteCascade removes the campaign with its questions, manager edges,
// respondents and export records.
func (s *Store) DeleteCascade(ctx context.Context, id primitive.ObjectID) error {
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		for _, coll := range []string{"questions", "campaign_managers", "respondents", "exports"} {
			if _, err := s.db.Collection(coll).DeleteMany(ctx, bson.M{"campaign_id": id}); err != nil {
				return fmt.Errorf("delete %s: %w", coll, err)
			}
		}
		res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("delete campaign: %w", err)
		}
		if res.DeletedCount == 0 {
			return errNotFound
		}
		return nil
	})
}

// ListDueForScheduledPublish returns DRAFT campaigns whose scheduled publish
// time has passed, oldest schedule first.
func (s *Store) ListDueForScheduledPublish(ctx context.Context, now time.Time, limit int64) ([]models.Campaign, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"status":               models.StatusDraft,
		"scheduled_publish_at": bson.M{"$lte": now.UTC()},
	}, options.Find().
		SetSort(bson.D{{Key: "scheduled_publish_at", Value: 1}}).
		SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list scheduled campaigns: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.Campaign{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode scheduled campaigns: %w", err)
	}
	return out, nil
}

// ClearSchedule removes the scheduled publish time, used once the sweep has
// handled a campaign it could not publish.
func (s *Store) ClearSchedule(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$unset": bson.M{"scheduled_publish_at": ""}})
	if err != nil {
		return fmt.Errorf("clear schedule: %w", err)
	}
	return nil
}
