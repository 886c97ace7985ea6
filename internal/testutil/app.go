package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/engine"
	"github.com/dalemusser/campaignhub/internal/app/store/audit"
	campaignstore "github.com/dalemusser/campaignhub/internal/app/store/campaigns"
	managerstore "github.com/dalemusser/campaignhub/internal/app/store/managers"
	questionstore "github.com/dalemusser/campaignhub/internal/app/store/questions"
	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/app/system/auditlog"
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// NewEngine wires a campaign engine over the Mongo stores of db.
func NewEngine(db *mongo.Database) *engine.Engine {
	logger := zap.NewNop()
	return engine.New(
		campaignstore.New(db, logger),
		managerstore.New(db),
		questionstore.New(db, logger),
		userstore.New(db),
		logger,
	)
}

// NewAuditLogger returns an audit logger writing every category to db, and
// the store so tests can read the events back.
func NewAuditLogger(db *mongo.Database) (*auditlog.Logger, *audit.Store) {
	store := audit.New(db)
	return auditlog.New(store, zap.NewNop(), auditlog.Config{}), store
}

// CountEvents returns how many audit events of eventType were recorded.
func CountEvents(t *testing.T, store *audit.Store, eventType string) int64 {
	t.Helper()
	n, err := store.CountByFilter(context.Background(), audit.QueryFilter{EventType: eventType})
	if err != nil {
		t.Fatalf("count audit events: %v", err)
	}
	return n
}

// NewSessionManager returns a cookie session manager for handler tests.
func NewSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return sm
}
