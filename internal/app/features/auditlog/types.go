package auditlog

import (
	"time"

	"github.com/dalemusser/campaignhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listItem is one audit event with the actor and affected user resolved to
// display names where they still exist.
type listItem struct {
	audit.Event
	ActorName  string `json:"actor_name,omitempty"`
	TargetName string `json:"target_name,omitempty"`
}

// categories lists the filterable categories in display order.
var categories = []string{audit.CategoryAuth, audit.CategoryCampaign, audit.CategoryAdmin}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedUserDisabled,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
		audit.EventPasswordChanged,
		audit.EventUserRegistered,
	}

	campaignEvents := []string{
		audit.EventCampaignCreated,
		audit.EventCampaignUpdated,
		audit.EventCampaignDeleted,
		audit.EventCampaignPublished,
		audit.EventCampaignClosed,
		audit.EventManagerInvited,
		audit.EventManagerAccepted,
		audit.EventManagerUpdated,
		audit.EventManagerRemoved,
		audit.EventRespondentDeleted,
		audit.EventRespondentDetailsViewed,
		audit.EventRespondentDetailsVisible,
		audit.EventResultsExported,
	}

	adminEvents := []string{
		audit.EventUserRoleChanged,
		audit.EventUserDisabled,
		audit.EventUserEnabled,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryCampaign:
		return campaignEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(campaignEvents)+len(adminEvents))
		all = append(all, authEvents...)
		all = append(all, campaignEvents...)
		all = append(all, adminEvents...)
		return all
	default:
		return nil
	}
}

func knownCategory(c string) bool {
	for _, k := range categories {
		if k == c {
			return true
		}
	}
	return false
}

func knownEventType(category, eventType string) bool {
	for _, e := range eventTypesForCategory(category) {
		if e == eventType {
			return true
		}
	}
	return false
}

// dayRange turns YYYY-MM-DD bounds into an inclusive UTC time range.
func dayRange(start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return nil, nil, err
		}
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		to = &endOfDay
	}
	return from, to, nil
}

func collectUserIDs(events []audit.Event) []primitive.ObjectID {
	seen := map[primitive.ObjectID]struct{}{}
	var ids []primitive.ObjectID
	add := func(id *primitive.ObjectID) {
		if id == nil {
			return
		}
		if _, ok := seen[*id]; ok {
			return
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}
	for _, e := range events {
		add(e.ActorID)
		add(e.UserID)
	}
	return ids
}
