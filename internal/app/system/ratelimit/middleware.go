package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Middleware limits requests per client IP under the given scope name.
// Limited requests get 429 with Retry-After.
func Middleware(b Backend, scope string, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := b.Take(r.Context(), scope+":"+ClientIP(r))
			SetHeaders(w, d)
			if !d.Allowed {
				log.Info("rate limited",
					zap.String("scope", scope),
					zap.String("ip", ClientIP(r)),
					zap.String("path", r.URL.Path))
				apiresp.Error(w, r, log, apperr.New(apperr.KindRateLimited, "too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetHeaders writes the X-RateLimit-* headers for d, plus Retry-After when
// the request was refused.
func SetHeaders(w http.ResponseWriter, d Decision) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	if !d.Allowed {
		secs := int(time.Until(d.ResetAt).Seconds() + 0.999)
		if secs < 1 {
			secs = 1
		}
		h.Set("Retry-After", strconv.Itoa(secs))
	}
}
