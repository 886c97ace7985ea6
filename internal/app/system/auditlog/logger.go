// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/campaignhub/internal/app/store/audit"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration. Each category takes one of
// "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled).
type Config struct {
	// Auth covers login, logout, registration and password events.
	Auth string
	// Campaign covers lifecycle, manager, respondent and export events.
	Campaign string
	// Admin covers user administration.
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request. Background jobs pass
// a nil request.
func getClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func userAgent(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.UserAgent()
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.CampaignID != nil {
		fields = append(fields, zap.String("campaign_id", event.CampaignID.Hex()))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.TargetType != "" {
		fields = append(fields, zap.String("target_type", event.TargetType), zap.String("target_id", event.TargetID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryCampaign:
		setting = l.config.Campaign
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

func (l *Logger) auth(ctx context.Context, r *http.Request, eventType string, userID *primitive.ObjectID, success bool, reason string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		UserID:        userID,
		ActorID:       userID,
		TargetType:    audit.TargetUser,
		TargetID:      hexOrEmpty(userID),
		IP:            getClientIP(r),
		UserAgent:     userAgent(r),
		Success:       success,
		FailureReason: reason,
		Details:       details,
	})
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.auth(ctx, r, audit.EventLoginSuccess, &userID, true, "", map[string]string{"email": email})
}

// LoginFailedUserNotFound logs a failed login due to user not found.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.auth(ctx, r, audit.EventLoginFailedUserNotFound, nil, false, "user not found",
		map[string]string{"attempted_email": attemptedEmail})
}

// LoginFailedWrongPassword logs a failed login due to wrong password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.auth(ctx, r, audit.EventLoginFailedWrongPassword, &userID, false, "wrong password", map[string]string{"email": email})
}

// LoginFailedUserDisabled logs a failed login due to an inactive account.
func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.auth(ctx, r, audit.EventLoginFailedUserDisabled, &userID, false, "user disabled", map[string]string{"email": email})
}

// LoginFailedRateLimit logs a login rejected by the rate limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	l.auth(ctx, r, audit.EventLoginFailedRateLimit, nil, false, "rate limit exceeded", map[string]string{"email": email})
}

// Logout logs a user logout. It accepts the string ID from SessionUser.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var userID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}
	l.auth(ctx, r, audit.EventLogout, userID, true, "", nil)
}

// PasswordChanged logs a password change.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.auth(ctx, r, audit.EventPasswordChanged, &userID, true, "", nil)
}

// UserRegistered logs a self-service registration.
func (l *Logger) UserRegistered(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.auth(ctx, r, audit.EventUserRegistered, &userID, true, "", map[string]string{"email": email})
}

// --- Campaign Events ---

// Campaign logs a successful campaign-scoped action by actor.
func (l *Logger) Campaign(ctx context.Context, r *http.Request, actor models.Actor, campaignID primitive.ObjectID, eventType, targetType, targetID string, details map[string]string) {
	e := audit.Event{
		Category:   audit.CategoryCampaign,
		EventType:  eventType,
		CampaignID: &campaignID,
		TargetType: targetType,
		TargetID:   targetID,
		IP:         getClientIP(r),
		UserAgent:  userAgent(r),
		Success:    true,
		Details:    details,
	}
	if !actor.IsGuest() {
		id := actor.ID
		e.ActorID = &id
	}
	l.Log(ctx, e)
}

// CampaignCreated logs creation of a campaign.
func (l *Logger) CampaignCreated(ctx context.Context, r *http.Request, actor models.Actor, c models.Campaign) {
	l.Campaign(ctx, r, actor, c.ID, audit.EventCampaignCreated, audit.TargetCampaign, c.ID.Hex(),
		map[string]string{"title": c.Title})
}

// CampaignUpdated logs an edit; fields lists the changed attributes.
func (l *Logger) CampaignUpdated(ctx context.Context, r *http.Request, actor models.Actor, campaignID primitive.ObjectID, fields []string) {
	l.Campaign(ctx, r, actor, campaignID, audit.EventCampaignUpdated, audit.TargetCampaign, campaignID.Hex(),
		map[string]string{"fields": strings.Join(fields, ",")})
}

// CampaignDeleted logs deletion of a campaign.
func (l *Logger) CampaignDeleted(ctx context.Context, r *http.Request, actor models.Actor, campaignID primitive.ObjectID, title string) {
	l.Campaign(ctx, r, actor, campaignID, audit.EventCampaignDeleted, audit.TargetCampaign, campaignID.Hex(),
		map[string]string{"title": title})
}

// CampaignPublished logs a publish with the link it received.
func (l *Logger) CampaignPublished(ctx context.Context, r *http.Request, actor models.Actor, c models.Campaign) {
	details := map[string]string{}
	if c.ShareableLink != nil {
		details["shareable_link"] = *c.ShareableLink
	}
	if r == nil {
		details["trigger"] = "schedule"
	}
	l.Campaign(ctx, r, actor, c.ID, audit.EventCampaignPublished, audit.TargetCampaign, c.ID.Hex(), details)
}

// CampaignClosed logs a close.
func (l *Logger) CampaignClosed(ctx context.Context, r *http.Request, actor models.Actor, campaignID primitive.ObjectID) {
	l.Campaign(ctx, r, actor, campaignID, audit.EventCampaignClosed, audit.TargetCampaign, campaignID.Hex(), nil)
}

// ManagerInvited logs an invitation.
func (l *Logger) ManagerInvited(ctx context.Context, r *http.Request, actor models.Actor, m models.CampaignManager) {
	l.manager(ctx, r, actor, m, audit.EventManagerInvited)
}

// ManagerAccepted logs acceptance of an invitation.
func (l *Logger) ManagerAccepted(ctx context.Context, r *http.Request, actor models.Actor, m models.CampaignManager) {
	l.manager(ctx, r, actor, m, audit.EventManagerAccepted)
}

// ManagerUpdated logs a permission change.
func (l *Logger) ManagerUpdated(ctx context.Context, r *http.Request, actor models.Actor, m models.CampaignManager) {
	l.manager(ctx, r, actor, m, audit.EventManagerUpdated)
}

// ManagerRemoved logs removal of a manager edge.
func (l *Logger) ManagerRemoved(ctx context.Context, r *http.Request, actor models.Actor, m models.CampaignManager) {
	l.manager(ctx, r, actor, m, audit.EventManagerRemoved)
}

func (l *Logger) manager(ctx context.Context, r *http.Request, actor models.Actor, m models.CampaignManager, eventType string) {
	perms := make([]string, len(m.Permissions))
	for i, p := range m.Permissions {
		perms[i] = string(p)
	}
	l.Campaign(ctx, r, actor, m.CampaignID, eventType, audit.TargetManager, m.ID.Hex(), map[string]string{
		"user_id":     m.UserID.Hex(),
		"permissions": strings.Join(perms, ","),
	})
}

// RespondentDeleted logs deletion of a response.
func (l *Logger) RespondentDeleted(ctx context.Context, r *http.Request, actor models.Actor, campaignID, respondentID primitive.ObjectID) {
	l.Campaign(ctx, r, actor, campaignID, audit.EventRespondentDeleted, audit.TargetRespondent, respondentID.Hex(), nil)
}

// RespondentDetailsViewed logs that identifying fields were disclosed.
func (l *Logger) RespondentDetailsViewed(ctx context.Context, r *http.Request, actor models.Actor, campaignID primitive.ObjectID, count int) {
	l.Campaign(ctx, r, actor, campaignID, audit.EventRespondentDetailsViewed, audit.TargetRespondent, "",
		map[string]string{"count": strconv.Itoa(count)})
}

// RespondentDetailsVisibility logs a change of the manager privacy flag.
func (l *Logger) RespondentDetailsVisibility(ctx context.Context, r *http.Request, actor models.Actor, campaignID primitive.ObjectID, allow bool) {
	l.Campaign(ctx, r, actor, campaignID, audit.EventRespondentDetailsVisible, audit.TargetCampaign, campaignID.Hex(),
		map[string]string{"allow": strconv.FormatBool(allow)})
}

// ResultsExported logs a generated export.
func (l *Logger) ResultsExported(ctx context.Context, r *http.Request, actor models.Actor, e models.ExportRecord) {
	l.Campaign(ctx, r, actor, e.CampaignID, audit.EventResultsExported, audit.TargetExport, e.ID.Hex(), map[string]string{
		"format":                      string(e.Format),
		"record_count":                strconv.Itoa(e.RecordCount),
		"includes_identifying_fields": strconv.FormatBool(e.IncludesIdentifyingFields),
	})
}

// --- Admin Events ---

// UserRoleChanged logs a global role change.
func (l *Logger) UserRoleChanged(ctx context.Context, r *http.Request, actor models.Actor, userID primitive.ObjectID, from, to models.Role) {
	actorID := actor.ID
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventUserRoleChanged,
		UserID:     &userID,
		ActorID:    &actorID,
		TargetType: audit.TargetUser,
		TargetID:   userID.Hex(),
		IP:         getClientIP(r),
		UserAgent:  userAgent(r),
		Success:    true,
		Details:    map[string]string{"from": string(from), "to": string(to)},
	})
}

// UserActiveChanged logs enabling or disabling an account.
func (l *Logger) UserActiveChanged(ctx context.Context, r *http.Request, actor models.Actor, userID primitive.ObjectID, active bool) {
	eventType := audit.EventUserDisabled
	if active {
		eventType = audit.EventUserEnabled
	}
	actorID := actor.ID
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  eventType,
		UserID:     &userID,
		ActorID:    &actorID,
		TargetType: audit.TargetUser,
		TargetID:   userID.Hex(),
		IP:         getClientIP(r),
		UserAgent:  userAgent(r),
		Success:    true,
	})
}

func hexOrEmpty(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}
