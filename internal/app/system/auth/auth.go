package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
	userName  = "user_name"
	userEmail = "user_email"
	userRole  = "user_role"
)

// SessionUser is the authenticated caller injected into r.Context().
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserFetcher reloads a user on every request so role changes and
// deactivations take effect without waiting for the session to expire.
// FetchUser returns nil when the user no longer exists or is inactive.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionManager owns the cookie store and, optionally, a bearer-token
// issuer. Both paths resolve to the same SessionUser.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	tokens  *TokenIssuer
	fetcher UserFetcher
	logger  *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure + SameSite=None.
// In local dev over http://localhost use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, ttl time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "campaignhub-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		MaxAge:   int(ttl.Seconds()),
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("ttl", ttl))

	return &SessionManager{store: store, name: name, logger: logger}, nil
}

// SetUserFetcher installs the per-request user loader.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// SetTokenIssuer enables Authorization: Bearer authentication.
func (sm *SessionManager) SetTokenIssuer(t *TokenIssuer) { sm.tokens = t }

// Tokens returns the configured issuer, or nil.
func (sm *SessionManager) Tokens() *TokenIssuer { return sm.tokens }

// SignIn writes u into the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userName] = u.Name
	sess.Values[userEmail] = u.Email
	sess.Values[userRole] = u.Role
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects u into the request context. Handler tests use it to
// bypass the session middleware.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// LoadSessionUser injects the user into context if they are logged in.
// A bearer token takes precedence over the cookie. Requests with neither
// continue as guests.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := sm.fromBearer(r)
		if u == nil {
			u = sm.fromCookie(r)
		}
		if u != nil && sm.fetcher != nil {
			u = sm.fetcher.FetchUser(r.Context(), u.ID)
		}
		if u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

func (sm *SessionManager) fromBearer(r *http.Request) *SessionUser {
	if sm.tokens == nil {
		return nil
	}
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return nil
	}
	u, err := sm.tokens.Parse(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
	if err != nil {
		sm.logger.Debug("rejected bearer token", zap.Error(err))
		return nil
	}
	return u
}

func (sm *SessionManager) fromCookie(r *http.Request) *SessionUser {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		// A cookie signed with a rotated key or tampered with is treated
		// as signed out.
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			sm.logger.Debug("session cookie could not be decoded", zap.Error(err))
		} else {
			sm.logger.Warn("session load failed", zap.Error(err))
		}
		return nil
	}
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return nil
	}
	return &SessionUser{
		ID:    getString(sess, userIDKey),
		Name:  getString(sess, userName),
		Email: getString(sess, userEmail),
		Role:  getString(sess, userRole),
	}
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures there is a user with one of the allowed roles in
// context. Role comparison is case-insensitive.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

// writeError mirrors the apiresp envelope; auth sits below apiresp and
// cannot import it.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": msg},
	})
}
