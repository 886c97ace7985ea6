// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/campaignhub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("campaigns", campaignsSchema())
	ensure("questions", questionsSchema())
	ensure("campaign_managers", campaignManagersSchema())
	ensure("respondents", respondentsSchema())
	ensure("exports", exportsSchema())

	// Append-only; no validator.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func enumOf[T ~string](values ...T) bson.A {
	out := bson.A{}
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "password_hash", "role", "active"},
			"properties": bson.M{
				"name":          nonBlank,
				"email":         nonBlank,
				"password_hash": nonBlank,
				"role":          bson.M{"enum": enumOf(models.Roles...)},
				"active":        bson.M{"bsonType": "bool"},
			},
		},
	}
}

func campaignsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "title_ci", "creator_id", "status", "visibility"},
			"properties": bson.M{
				"title":      nonBlank,
				"title_ci":   nonBlank,
				"creator_id": bson.M{"bsonType": "objectId"},
				"status": bson.M{"enum": enumOf(
					models.StatusDraft, models.StatusPublished, models.StatusClosed, models.StatusArchived)},
				"visibility":     bson.M{"enum": enumOf(models.VisibilityPrivate, models.VisibilityPublic)},
				"shareable_link": bson.M{"bsonType": bson.A{"string", "null"}},
				"allow_manager_view_respondent_details": bson.M{"bsonType": "bool"},
				"scheduled_publish_at":                  bson.M{"bsonType": bson.A{"date", "null"}},
				"closed_at":                             bson.M{"bsonType": bson.A{"date", "null"}},
			},
		},
	}
}

func questionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"campaign_id", "text", "type", "order"},
			"properties": bson.M{
				"campaign_id": bson.M{"bsonType": "objectId"},
				"text":        nonBlank,
				"type": bson.M{"enum": enumOf(
					models.QuestionShortText, models.QuestionLongText, models.QuestionMultipleChoice,
					models.QuestionCheckbox, models.QuestionRating, models.QuestionDate,
					models.QuestionEmail, models.QuestionNumber)},
				"required": bson.M{"bsonType": "bool"},
				"order":    bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			},
		},
	}
}

func campaignManagersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"campaign_id", "user_id", "invited_by_id", "permissions"},
			"properties": bson.M{
				"campaign_id":   bson.M{"bsonType": "objectId"},
				"user_id":       bson.M{"bsonType": "objectId"},
				"invited_by_id": bson.M{"bsonType": "objectId"},
				"permissions": bson.M{
					"bsonType": "array",
					"minItems": 1,
					"items": bson.M{"enum": enumOf(
						models.PermViewResults, models.PermEditCampaign, models.PermManageRespondents)},
				},
				"accepted_at": bson.M{"bsonType": bson.A{"date", "null"}},
			},
		},
	}
}

func respondentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"campaign_id", "respondent_token", "anonymous", "answers", "started_at"},
			"properties": bson.M{
				"campaign_id":      bson.M{"bsonType": "objectId"},
				"respondent_token": nonBlank,
				"anonymous":        bson.M{"bsonType": "bool"},
				"consent_given":    bson.M{"bsonType": "bool"},
				"answers": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"question_id"},
						"properties": bson.M{
							"question_id": bson.M{"bsonType": "objectId"},
						},
					},
				},
				"started_at":   bson.M{"bsonType": "date"},
				"submitted_at": bson.M{"bsonType": bson.A{"date", "null"}},
			},
		},
	}
}

func exportsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"campaign_id", "format", "file_path", "generated_by", "record_count"},
			"properties": bson.M{
				"campaign_id":                 bson.M{"bsonType": "objectId"},
				"format":                      bson.M{"enum": enumOf(models.ExportCSV, models.ExportJSON)},
				"file_path":                   nonBlank,
				"generated_by":                bson.M{"bsonType": "objectId"},
				"record_count":                bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"includes_identifying_fields": bson.M{"bsonType": "bool"},
			},
		},
	}
}
