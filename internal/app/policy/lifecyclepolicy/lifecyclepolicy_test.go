package lifecyclepolicy_test

import (
	"testing"

	"github.com/dalemusser/campaignhub/internal/app/policy/lifecyclepolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var allStatuses = []models.CampaignStatus{
	models.StatusDraft, models.StatusPublished, models.StatusClosed, models.StatusArchived,
}

func newActor(role models.Role) models.Actor {
	return models.Actor{ID: primitive.NewObjectID(), Role: role}
}

func campaignWithQuestions(creator models.Actor, status models.CampaignStatus, n int) models.Campaign {
	c := models.Campaign{
		ID:        primitive.NewObjectID(),
		CreatorID: creator.ID,
		Status:    status,
	}
	for i := 0; i < n; i++ {
		c.Questions = append(c.Questions, models.Question{ID: primitive.NewObjectID(), Order: i})
	}
	return c
}

func TestCanTransition_Table(t *testing.T) {
	legal := map[[2]models.CampaignStatus]bool{
		{models.StatusDraft, models.StatusPublished}:  true,
		{models.StatusPublished, models.StatusClosed}: true,
	}
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := legal[[2]models.CampaignStatus{from, to}]
			if got := lifecyclepolicy.CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s): got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransition_NoBackwardOrReopen(t *testing.T) {
	for _, to := range allStatuses {
		if lifecyclepolicy.CanTransition(models.StatusClosed, to) {
			t.Errorf("CLOSED must not transition to %s", to)
		}
		if lifecyclepolicy.CanTransition(models.StatusArchived, to) {
			t.Errorf("ARCHIVED must not transition to %s", to)
		}
	}
}

func TestCheckPublish(t *testing.T) {
	creator := newActor(models.RoleCampaignCreator)
	admin := newActor(models.RoleAdmin)
	manager := newActor(models.RoleCampaignManager)

	tests := []struct {
		name     string
		actor    models.Actor
		campaign models.Campaign
		want     apperr.Kind
	}{
		{"creator draft with questions", creator, campaignWithQuestions(creator, models.StatusDraft, 2), ""},
		{"admin draft with questions", admin, campaignWithQuestions(creator, models.StatusDraft, 1), ""},
		{"manager is forbidden", manager, campaignWithQuestions(creator, models.StatusDraft, 1), apperr.KindForbidden},
		{"guest is forbidden", models.Guest(), campaignWithQuestions(creator, models.StatusDraft, 1), apperr.KindForbidden},
		{"already published", creator, campaignWithQuestions(creator, models.StatusPublished, 1), apperr.KindInvalidState},
		{"closed", creator, campaignWithQuestions(creator, models.StatusClosed, 1), apperr.KindInvalidState},
		{"archived", admin, campaignWithQuestions(creator, models.StatusArchived, 1), apperr.KindInvalidState},
		{"zero questions", creator, campaignWithQuestions(creator, models.StatusDraft, 0), apperr.KindPrecondition},
		// forbidden is reported before state and questions
		{"forbidden beats invalid state", manager, campaignWithQuestions(creator, models.StatusClosed, 0), apperr.KindForbidden},
		// state is reported before questions
		{"state beats precondition", creator, campaignWithQuestions(creator, models.StatusPublished, 0), apperr.KindInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := lifecyclepolicy.CheckPublish(tt.campaign, tt.actor)
			if got := apperr.KindOf(err); got != tt.want {
				t.Errorf("CheckPublish kind: got %q, want %q (err=%v)", got, tt.want, err)
			}
		})
	}
}

func TestCheckClose(t *testing.T) {
	creator := newActor(models.RoleCampaignCreator)
	super := newActor(models.RoleSuperAdmin)
	other := newActor(models.RoleCampaignCreator)

	tests := []struct {
		name   string
		actor  models.Actor
		status models.CampaignStatus
		want   apperr.Kind
	}{
		{"creator closes published", creator, models.StatusPublished, ""},
		{"super admin closes published", super, models.StatusPublished, ""},
		{"other creator forbidden", other, models.StatusPublished, apperr.KindForbidden},
		{"draft cannot close", creator, models.StatusDraft, apperr.KindInvalidState},
		{"closed cannot close", creator, models.StatusClosed, apperr.KindInvalidState},
		{"archived cannot close", creator, models.StatusArchived, apperr.KindInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := campaignWithQuestions(creator, tt.status, 1)
			err := lifecyclepolicy.CheckClose(c, tt.actor)
			if got := apperr.KindOf(err); got != tt.want {
				t.Errorf("CheckClose kind: got %q, want %q (err=%v)", got, tt.want, err)
			}
		})
	}
}

func TestCheckAcceptingResponses(t *testing.T) {
	for _, s := range allStatuses {
		err := lifecyclepolicy.CheckAcceptingResponses(models.Campaign{Status: s})
		if s == models.StatusPublished {
			if err != nil {
				t.Errorf("PUBLISHED should accept responses, got %v", err)
			}
			continue
		}
		if !apperr.Is(err, apperr.KindNotAcceptingResponses) {
			t.Errorf("%s: expected NOT_ACCEPTING_RESPONSES, got %v", s, err)
		}
	}
}

func TestIsClosed(t *testing.T) {
	if !lifecyclepolicy.IsClosed(models.StatusArchived) || !lifecyclepolicy.IsClosed(models.StatusClosed) {
		t.Error("CLOSED and ARCHIVED should both be closed")
	}
	if lifecyclepolicy.IsClosed(models.StatusPublished) || lifecyclepolicy.IsClosed(models.StatusDraft) {
		t.Error("DRAFT and PUBLISHED should not be closed")
	}
}
