// internal/app/system/workers/scheduledpublish.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultSpec runs the sweep every minute.
const DefaultSpec = "@every 1m"

// DueCampaigns lists and clears scheduled publishes.
type DueCampaigns interface {
	ListDueForScheduledPublish(ctx context.Context, now time.Time, limit int64) ([]models.Campaign, error)
	ClearSchedule(ctx context.Context, id primitive.ObjectID) error
}

// Publisher performs the lifecycle transition.
type Publisher interface {
	Publish(ctx context.Context, a models.Actor, id primitive.ObjectID) (models.Campaign, error)
}

// PublishedHook is told about every campaign the sweep published.
type PublishedHook func(ctx context.Context, actor models.Actor, c models.Campaign)

// ScheduledPublish publishes DRAFT campaigns whose scheduled time has passed.
// Each campaign is published through the engine acting as its creator, so
// the usual lifecycle checks apply.
type ScheduledPublish struct {
	campaigns DueCampaigns
	publisher Publisher
	onPublish PublishedHook
	log       *zap.Logger
	spec      string
	batchSize int64
	now       func() time.Time

	cron    *cron.Cron
	mu      sync.Mutex // serializes sweeps
	started bool
}

// NewScheduledPublish creates the worker. An empty spec uses DefaultSpec.
func NewScheduledPublish(campaigns DueCampaigns, publisher Publisher, onPublish PublishedHook, logger *zap.Logger, spec string) *ScheduledPublish {
	if spec == "" {
		spec = DefaultSpec
	}
	return &ScheduledPublish{
		campaigns: campaigns,
		publisher: publisher,
		onPublish: onPublish,
		log:       logger,
		spec:      spec,
		batchSize: 100,
		now:       func() time.Time { return time.Now().UTC() },
		cron:      cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start registers the sweep with the cron scheduler and starts it.
func (w *ScheduledPublish) Start() error {
	if _, err := w.cron.AddFunc(w.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		w.Sweep(ctx)
	}); err != nil {
		return err
	}
	w.cron.Start()
	w.started = true
	w.log.Info("scheduled publish worker started", zap.String("spec", w.spec))
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (w *ScheduledPublish) Stop() {
	if !w.started {
		return
	}
	<-w.cron.Stop().Done()
	w.started = false
	w.log.Info("scheduled publish worker stopped")
}

// Sweep publishes every due campaign once and returns how many were published.
// Campaigns that cannot be published (no questions, no longer a draft) are
// logged and their schedule is cleared; infrastructure errors leave the
// schedule in place for the next sweep.
func (w *ScheduledPublish) Sweep(ctx context.Context) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	due, err := w.campaigns.ListDueForScheduledPublish(ctx, w.now(), w.batchSize)
	if err != nil {
		w.log.Error("list scheduled campaigns failed", zap.Error(err))
		return 0
	}

	published := 0
	for _, c := range due {
		actor := models.Actor{ID: c.CreatorID, Role: models.RoleCampaignCreator}
		got, err := w.publisher.Publish(ctx, actor, c.ID)
		switch {
		case err == nil:
			published++
			if w.onPublish != nil {
				w.onPublish(ctx, actor, got)
			}
			w.clear(ctx, c.ID)
		case apperr.KindOf(err) != "":
			w.log.Warn("scheduled publish skipped",
				zap.String("campaign_id", c.ID.Hex()),
				zap.String("kind", string(apperr.KindOf(err))),
				zap.Error(err))
			w.clear(ctx, c.ID)
		default:
			w.log.Error("scheduled publish failed",
				zap.String("campaign_id", c.ID.Hex()),
				zap.Error(err))
		}
	}

	if published > 0 {
		w.log.Info("scheduled campaigns published", zap.Int("count", published))
	}
	return published
}

func (w *ScheduledPublish) clear(ctx context.Context, id primitive.ObjectID) {
	if err := w.campaigns.ClearSchedule(ctx, id); err != nil {
		w.log.Error("clear schedule failed", zap.String("campaign_id", id.Hex()), zap.Error(err))
	}
}
