package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts an active user with the given role. The password hash
// is left empty; tests that log in hash their own.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string, role models.Role) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateCreator is shorthand for a CAMPAIGN_CREATOR user.
func (f *Fixtures) CreateCreator(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleCampaignCreator)
}

// CreateCampaign inserts a campaign owned by creatorID.
func (f *Fixtures) CreateCampaign(ctx context.Context, title string, creatorID primitive.ObjectID, status models.CampaignStatus, vis models.Visibility) models.Campaign {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Campaign{
		ID:         primitive.NewObjectID(),
		Title:      title,
		TitleCI:    text.Fold(title),
		CreatorID:  creatorID,
		Status:     status,
		Visibility: vis,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if status == models.StatusPublished || status == models.StatusClosed {
		link := primitive.NewObjectID().Hex()[12:]
		c.ShareableLink = &link
	}
	if _, err := f.db.Collection("campaigns").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test campaign: %v", err)
	}
	return c
}

// CreateQuestion inserts a question at the given order.
func (f *Fixtures) CreateQuestion(ctx context.Context, campaignID primitive.ObjectID, text string, qType models.QuestionType, required bool, order int) models.Question {
	f.t.Helper()

	now := time.Now().UTC()
	q := models.Question{
		ID:         primitive.NewObjectID(),
		CampaignID: campaignID,
		Text:       text,
		Type:       qType,
		Required:   required,
		Order:      order,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("questions").InsertOne(ctx, q); err != nil {
		f.t.Fatalf("failed to create test question: %v", err)
	}
	return q
}

// CreateManager inserts a manager edge. accepted controls AcceptedAt.
func (f *Fixtures) CreateManager(ctx context.Context, campaignID, userID, invitedBy primitive.ObjectID, accepted bool, perms ...models.Permission) models.CampaignManager {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.CampaignManager{
		ID:          primitive.NewObjectID(),
		CampaignID:  campaignID,
		UserID:      userID,
		InvitedByID: invitedBy,
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if accepted {
		m.AcceptedAt = &now
	}
	if _, err := f.db.Collection("campaign_managers").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test manager: %v", err)
	}
	return m
}

// CreateRespondent inserts a submitted respondent. Pass nil fields for an
// anonymous submission.
func (f *Fixtures) CreateRespondent(ctx context.Context, campaignID primitive.ObjectID, fields *models.IdentifiableFields, answers ...models.Answer) models.Respondent {
	f.t.Helper()

	now := time.Now().UTC()
	r := models.Respondent{
		ID:                 primitive.NewObjectID(),
		CampaignID:         campaignID,
		RespondentToken:    primitive.NewObjectID().Hex(),
		Anonymous:          fields == nil,
		IdentifiableFields: fields,
		ConsentGiven:       true,
		Answers:            answers,
		StartedAt:          now,
		SubmittedAt:        &now,
	}
	if r.Answers == nil {
		r.Answers = []models.Answer{}
	}
	if _, err := f.db.Collection("respondents").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test respondent: %v", err)
	}
	return r
}

// CreateAbandonedRespondent inserts a respondent that started but never
// submitted.
func (f *Fixtures) CreateAbandonedRespondent(ctx context.Context, campaignID primitive.ObjectID) models.Respondent {
	f.t.Helper()

	r := models.Respondent{
		ID:              primitive.NewObjectID(),
		CampaignID:      campaignID,
		RespondentToken: primitive.NewObjectID().Hex(),
		Anonymous:       true,
		Answers:         []models.Answer{},
		StartedAt:       time.Now().UTC(),
	}
	if _, err := f.db.Collection("respondents").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create abandoned respondent: %v", err)
	}
	return r
}
