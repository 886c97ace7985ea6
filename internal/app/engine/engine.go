// Package engine applies the campaign access and lifecycle rules to stored
// state.
//
// Every operation follows the same shape: load one snapshot of the campaign
// with its questions and manager edges, evaluate the policy packages against
// that snapshot, then perform at most one conditional write. Races between
// concurrent requests are settled by the store's conditional updates; the
// engine never retries.
package engine

import (
	"context"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	"github.com/dalemusser/campaignhub/internal/app/policy/respondentpolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/tokens"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CampaignStore loads campaign snapshots and applies lifecycle writes.
type CampaignStore interface {
	// LoadWithMembership returns the campaign with Questions (ordered) and
	// Managers filled in, or an apperr NotFound.
	LoadWithMembership(ctx context.Context, id primitive.ObjectID) (models.Campaign, error)
	// TransitionStatus moves id from expected to next only if the stored
	// status still equals expected. It reports false when it did not.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, expected, next models.CampaignStatus, change models.StatusChange) (bool, error)
	SetAllowManagerViewRespondentDetails(ctx context.Context, id primitive.ObjectID, allow bool) error
}

// ManagerStore persists manager edges. Lookups return (nil, nil) when absent.
type ManagerStore interface {
	GetByCampaignAndUser(ctx context.Context, campaignID, userID primitive.ObjectID) (*models.CampaignManager, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.CampaignManager, error)
	// Insert returns an apperr Conflict when the (campaign, user) edge exists.
	Insert(ctx context.Context, m models.CampaignManager) (models.CampaignManager, error)
	// SetAccepted stamps AcceptedAt only if it is still unset.
	SetAccepted(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
	UpdatePermissions(ctx context.Context, id primitive.ObjectID, perms []models.Permission) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// QuestionStore applies question reorders as one all-or-nothing batch.
type QuestionStore interface {
	BatchSetOrder(ctx context.Context, campaignID primitive.ObjectID, orders []models.QuestionOrder) error
}

// UserStore resolves invitation targets. GetByEmail returns (nil, nil) when
// no user matches.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Engine is the campaign rules facade used by the HTTP features and workers.
type Engine struct {
	Campaigns CampaignStore
	Managers  ManagerStore
	Questions QuestionStore
	Users     UserStore
	Log       *zap.Logger

	// Now and NewLink are replaceable in tests.
	Now     func() time.Time
	NewLink func() string
}

// New constructs an Engine over the given stores.
func New(campaigns CampaignStore, managers ManagerStore, questions QuestionStore, users UserStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Campaigns: campaigns,
		Managers:  managers,
		Questions: questions,
		Users:     users,
		Log:       logger,
		Now:       func() time.Time { return time.Now().UTC() },
		NewLink:   tokens.ShareableLink,
	}
}

// Decide evaluates the access ladder against an already-loaded snapshot.
func (e *Engine) Decide(a models.Actor, c models.Campaign, action campaignpolicy.Action) campaignpolicy.Decision {
	return campaignpolicy.Decide(a, c, action)
}

// CanViewIdentifyingFields evaluates the respondent privacy gate.
func (e *Engine) CanViewIdentifyingFields(a models.Actor, c models.Campaign) bool {
	return respondentpolicy.CanViewIdentifyingFields(a, c)
}

// Load returns the campaign snapshot.
func (e *Engine) Load(ctx context.Context, id primitive.ObjectID) (models.Campaign, error) {
	return e.Campaigns.LoadWithMembership(ctx, id)
}

// Authorize loads the campaign and requires action. It returns the snapshot
// and the decision so callers can check Decision.PublicOnly.
func (e *Engine) Authorize(ctx context.Context, a models.Actor, id primitive.ObjectID, action campaignpolicy.Action) (models.Campaign, campaignpolicy.Decision, error) {
	c, err := e.Campaigns.LoadWithMembership(ctx, id)
	if err != nil {
		return models.Campaign{}, campaignpolicy.Decision{}, err
	}
	d := campaignpolicy.Decide(a, c, action)
	return c, d, d.Err(action)
}
