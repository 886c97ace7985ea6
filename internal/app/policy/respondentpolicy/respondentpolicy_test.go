package respondentpolicy_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/policy/respondentpolicy"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newActor(role models.Role) models.Actor {
	return models.Actor{ID: primitive.NewObjectID(), Role: role}
}

func campaignWithManager(creator, mgr models.Actor, accepted, allowFlag bool, perms ...models.Permission) models.Campaign {
	c := models.Campaign{
		ID:                                primitive.NewObjectID(),
		CreatorID:                         creator.ID,
		Status:                            models.StatusPublished,
		AllowManagerViewRespondentDetails: allowFlag,
	}
	m := models.CampaignManager{CampaignID: c.ID, UserID: mgr.ID, Permissions: perms}
	if accepted {
		now := time.Now().UTC()
		m.AcceptedAt = &now
	}
	c.Managers = []models.CampaignManager{m}
	return c
}

func TestCanViewIdentifyingFields(t *testing.T) {
	creator := newActor(models.RoleCampaignCreator)
	mgr := newActor(models.RoleCampaignManager)
	all := []models.Permission{models.PermViewResults, models.PermEditCampaign, models.PermManageRespondents}

	tests := []struct {
		name     string
		actor    models.Actor
		campaign models.Campaign
		want     bool
	}{
		{"admin flag off", newActor(models.RoleAdmin), campaignWithManager(creator, mgr, true, false), true},
		{"super admin flag off", newActor(models.RoleSuperAdmin), campaignWithManager(creator, mgr, true, false), true},
		{"creator flag off", creator, campaignWithManager(creator, mgr, true, false), true},
		{"creator flag on", creator, campaignWithManager(creator, mgr, true, true), true},
		{"manager MR and flag", mgr, campaignWithManager(creator, mgr, true, true, models.PermManageRespondents), true},
		{"manager MR without flag", mgr, campaignWithManager(creator, mgr, true, false, models.PermManageRespondents), false},
		{"manager full set without flag", mgr, campaignWithManager(creator, mgr, true, false, all...), false},
		{"manager flag without MR", mgr, campaignWithManager(creator, mgr, true, true, models.PermViewResults, models.PermEditCampaign), false},
		{"pending manager MR and flag", mgr, campaignWithManager(creator, mgr, false, true, models.PermManageRespondents), false},
		{"stranger", newActor(models.RoleCampaignCreator), campaignWithManager(creator, mgr, true, true, all...), false},
		{"guest", models.Guest(), campaignWithManager(creator, mgr, true, true, all...), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := respondentpolicy.CanViewIdentifyingFields(tt.actor, tt.campaign); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRedact(t *testing.T) {
	now := time.Now().UTC()
	r := models.Respondent{
		ID:                 primitive.NewObjectID(),
		Anonymous:          false,
		IdentifiableFields: &models.IdentifiableFields{Name: "Pat", Email: "pat@example.com", Phone: "555"},
		Answers:            []models.Answer{{QuestionID: primitive.NewObjectID(), Value: "yes"}},
		SubmittedAt:        &now,
	}

	kept := respondentpolicy.Redact(r, true)
	if kept.IdentifiableFields == nil {
		t.Fatal("allowed viewer should keep identifying fields")
	}

	red := respondentpolicy.Redact(r, false)
	if red.IdentifiableFields != nil {
		t.Error("expected identifying fields removed")
	}
	if len(red.Answers) != 1 || red.Answers[0].Value != "yes" {
		t.Errorf("answers must survive redaction, got %+v", red.Answers)
	}
	if red.Anonymous {
		t.Error("redaction must not flip the anonymous flag")
	}
	if r.IdentifiableFields == nil {
		t.Error("Redact must not mutate its input")
	}
}

func TestRedactAll(t *testing.T) {
	rs := []models.Respondent{
		{IdentifiableFields: &models.IdentifiableFields{Email: "a@example.com"}},
		{IdentifiableFields: &models.IdentifiableFields{Email: "b@example.com"}},
	}
	out := respondentpolicy.RedactAll(rs, false)
	for i, r := range out {
		if r.IdentifiableFields != nil {
			t.Errorf("row %d kept identifying fields", i)
		}
	}
	if rs[0].IdentifiableFields == nil {
		t.Error("RedactAll must not mutate input slice")
	}
}

func TestExportColumns(t *testing.T) {
	if got, want := respondentpolicy.ExportColumns(true),
		[]string{"respondentId", "submittedAt", "anonymous", "name", "email", "phone"}; !reflect.DeepEqual(got, want) {
		t.Errorf("allowed: got %v, want %v", got, want)
	}
	if got, want := respondentpolicy.ExportColumns(false),
		[]string{"respondentId", "submittedAt", "anonymous"}; !reflect.DeepEqual(got, want) {
		t.Errorf("denied: got %v, want %v", got, want)
	}
}
