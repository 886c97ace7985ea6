// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/campaignhub/internal/app/system/workers"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis is nil when redis_addr is blank.
	Redis *redis.Client

	// Background is filled in by Startup and torn down by Shutdown.
	Background *Background
}

// Background holds the long-running workers started at boot.
type Background struct {
	ScheduledPublish *workers.ScheduledPublish
	stoppers         []func()
}

func (b *Background) onStop(fn func()) {
	b.stoppers = append(b.stoppers, fn)
}

func (b *Background) stop() {
	if b == nil {
		return
	}
	if b.ScheduledPublish != nil {
		b.ScheduledPublish.Stop()
	}
	for _, fn := range b.stoppers {
		fn()
	}
	b.stoppers = nil
}
