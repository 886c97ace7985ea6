package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/normalize"
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
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = apperr.Conflict("a user with this email already exists")
	errBadRole        = apperr.InvalidInput("unknown role")
	errNoPassword     = apperr.InvalidInput("password hash is required")
)

// GetByID loads a user by ObjectID. Returns an apperr NotFound if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns (nil, nil)
// when no user matches.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields. New users
// are active; an empty role defaults to RESPONDENT.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)
	if u.Role == "" {
		u.Role = models.RoleRespondent
	}
	if _, ok := models.ParseRole(string(u.Role)); !ok {
		return models.User{}, errBadRole
	}
	if u.PasswordHash == "" {
		return models.User{}, errNoPassword
	}
	u.Active = true

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// UpdatePassword replaces the stored bcrypt hash.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return s.set(ctx, id, bson.M{"password_hash": hash})
}

// UpdateRole changes a user's global role.
func (s *Store) UpdateRole(ctx context.Context, id primitive.ObjectID, role models.Role) error {
	if _, ok := models.ParseRole(string(role)); !ok {
		return errBadRole
	}
	return s.set(ctx, id, bson.M{"role": role})
}

// SetActive enables or disables sign-in for a user.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	return s.set(ctx, id, bson.M{"active": active})
}

func (s *Store) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// GetByIDs loads the users with the given ids. Unknown ids are skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return out, nil
}

// List returns users newest first, optionally filtered by role.
func (s *Store) List(ctx context.Context, role models.Role, p paging.Params) ([]models.User, int64, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(p.Take())
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}
	return out, total, nil
}

// UpsertSuperAdmin ensures a SUPER_ADMIN account exists for email. An
// existing account is promoted and reactivated but keeps its password.
// It reports whether a new account was created.
func (s *Store) UpsertSuperAdmin(ctx context.Context, name, email, hash string) (bool, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{
			"$set": bson.M{
				"role":       models.RoleSuperAdmin,
				"active":     true,
				"updated_at": now,
			},
			"$setOnInsert": bson.M{
				"_id":           primitive.NewObjectID(),
				"name":          normalize.Name(name),
				"password_hash": hash,
				"created_at":    now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("upsert super admin: %w", err)
	}
	return res.UpsertedCount > 0, nil
}
