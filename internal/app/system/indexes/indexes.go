// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	steps := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"campaigns", ensureCampaigns},
		{"questions", ensureQuestions},
		{"campaign_managers", ensureCampaignManagers},
		{"respondents", ensureRespondents},
		{"exports", ensureExports},
		{"audit_events", ensureAuditEvents},
	}
	for _, s := range steps {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	return (a != nil && *a) == (b != nil && *b)
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

// ensureIndexSet creates each desired index. An existing index with the same
// keys is reused when its uniqueness and name match, and dropped and
// recreated otherwise.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		desiredSig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := listExisting(ctx, coll)[desiredSig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) && (desiredName == "" || ex.Name == desiredName) {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
			zap.L().Info("dropped index for recreation",
				zap.String("collection", coll.Name()),
				zap.String("from", ex.Name),
				zap.String("to", desiredName))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Error(err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_users_role_created"),
		},
	})
}

func ensureCampaigns(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("campaigns"), []mongo.IndexModel{
		// Links are only set on publish; the partial filter leaves drafts out.
		{
			Keys: bson.D{{Key: "shareable_link", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"shareable_link": bson.M{"$type": "string"}}).
				SetName("uniq_campaigns_link"),
		},
		{
			Keys:    bson.D{{Key: "creator_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_campaigns_creator_created"),
		},
		{
			Keys:    bson.D{{Key: "visibility", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_campaigns_vis_status_created"),
		},
		// Scheduled-publish sweep.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "scheduled_publish_at", Value: 1}},
			Options: options.Index().SetName("idx_campaigns_status_scheduled"),
		},
	})
}

func ensureQuestions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("questions"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "campaign_id", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index().SetName("idx_questions_campaign_order"),
		},
	})
}

func ensureCampaignManagers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("campaign_managers"), []mongo.IndexModel{
		// One edge per (campaign, user); concurrent invites lose with Conflict.
		{
			Keys:    bson.D{{Key: "campaign_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_cm_campaign_user"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "accepted_at", Value: 1}},
			Options: options.Index().SetName("idx_cm_user_accepted"),
		},
	})
}

func ensureRespondents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("respondents"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "respondent_token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_respondents_token"),
		},
		{
			Keys:    bson.D{{Key: "campaign_id", Value: 1}, {Key: "submitted_at", Value: -1}},
			Options: options.Index().SetName("idx_respondents_campaign_submitted"),
		},
	})
}

func ensureExports(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("exports"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "campaign_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_exports_campaign_created"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "campaign_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_campaign_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_timestamp"),
		},
	})
}
