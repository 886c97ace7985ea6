package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Redis  redis.Cmdable // nil when no Redis is configured
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. rdb may be nil.
func NewHandler(client *mongo.Client, rdb redis.Cmdable, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Redis:  rdb,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /api/health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "redis":"connected" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
//
// A Redis failure is reported as "degraded" with 200; rate limiting falls
// back to memory and the service keeps working.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			h.Log.Warn("health-check: redis ping failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Redis = "disconnected"
		} else {
			resp.Redis = "connected"
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
