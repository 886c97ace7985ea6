// internal/app/store/audit/store.go
package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth     = "auth"
	CategoryCampaign = "campaign"
	CategoryAdmin    = "admin"
)

// Auth event types
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailedUserNotFound  = "login_failed_user_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLoginFailedUserDisabled  = "login_failed_user_disabled"
	EventLoginFailedRateLimit     = "login_failed_rate_limit"
	EventLogout                   = "logout"
	EventPasswordChanged          = "password_changed"
	EventUserRegistered           = "user_registered"
)

// Campaign event types
const (
	EventCampaignCreated          = "campaign_created"
	EventCampaignUpdated          = "campaign_updated"
	EventCampaignDeleted          = "campaign_deleted"
	EventCampaignPublished        = "campaign_published"
	EventCampaignClosed           = "campaign_closed"
	EventManagerInvited           = "manager_invited"
	EventManagerAccepted          = "manager_accepted"
	EventManagerUpdated           = "manager_updated"
	EventManagerRemoved           = "manager_removed"
	EventRespondentDeleted        = "respondent_deleted"
	EventRespondentDetailsViewed  = "respondent_details_viewed"
	EventRespondentDetailsVisible = "respondent_details_visibility_changed"
	EventResultsExported          = "results_exported"
)

// Admin event types
const (
	EventUserRoleChanged = "user_role_changed"
	EventUserDisabled    = "user_disabled"
	EventUserEnabled     = "user_enabled"
)

// Target types name what an event acted on.
const (
	TargetUser       = "USER"
	TargetCampaign   = "CAMPAIGN"
	TargetQuestion   = "QUESTION"
	TargetRespondent = "RESPONDENT"
	TargetExport     = "EXPORT"
	TargetManager    = "MANAGER"
)

// Event represents an audit event.
type Event struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Timestamp  time.Time           `bson:"timestamp" json:"timestamp"`
	CampaignID *primitive.ObjectID `bson:"campaign_id,omitempty" json:"campaign_id,omitempty"`

	// Event classification
	Category   string `bson:"category" json:"category"`
	EventType  string `bson:"event_type" json:"event_type"`
	TargetType string `bson:"target_type,omitempty" json:"target_type,omitempty"`
	TargetID   string `bson:"target_id,omitempty" json:"target_id,omitempty"`

	// Who
	UserID  *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`   // affected user
	ActorID *primitive.ObjectID `bson:"actor_id,omitempty" json:"actor_id,omitempty"` // who performed action

	// Context
	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`

	// Outcome
	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	// Additional details (varies by event type)
	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	CampaignID *primitive.ObjectID
	UserID     *primitive.ObjectID
	ActorID    *primitive.ObjectID
	Category   string
	EventType  string
	TargetType string
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int64
	Offset     int64
}

func (f QueryFilter) bson() bson.M {
	query := bson.M{}
	if f.CampaignID != nil {
		query["campaign_id"] = *f.CampaignID
	}
	if f.UserID != nil {
		query["user_id"] = *f.UserID
	}
	if f.ActorID != nil {
		query["actor_id"] = *f.ActorID
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.EventType != "" {
		query["event_type"] = f.EventType
	}
	if f.TargetType != "" {
		query["target_type"] = f.TargetType
	}
	if f.StartTime != nil || f.EndTime != nil {
		timeQuery := bson.M{}
		if f.StartTime != nil {
			timeQuery["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			timeQuery["$lte"] = *f.EndTime
		}
		query["timestamp"] = timeQuery
	}
	return query
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Query retrieves audit events matching the given filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, filter.bson(), opts)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}
	return events, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	n, err := s.c.CountDocuments(ctx, filter.bson())
	if err != nil {
		return 0, fmt.Errorf("count audit events: %w", err)
	}
	return n, nil
}
