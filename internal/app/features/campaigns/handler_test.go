package campaigns_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/features/campaigns"
	"github.com/dalemusser/campaignhub/internal/app/store/audit"
	"github.com/dalemusser/campaignhub/internal/app/system/analytics"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/campaignhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	db     *mongo.Database
	fx     *testutil.Fixtures
	router chi.Router
	audit  *audit.Store
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	auditLog, auditStore := testutil.NewAuditLogger(db)
	sm := testutil.NewSessionManager(t)

	h := campaigns.NewHandler(db, testutil.NewEngine(db), nil, auditLog, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/api/campaigns", func(cr chi.Router) { campaigns.MountRoutes(cr, h, sm) })

	return &env{db: db, fx: testutil.NewFixtures(t, db), router: r, audit: auditStore}
}

func (e *env) do(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func as(req *http.Request, u models.User) *http.Request {
	return testutil.WithUser(req, testutil.FromUser(u))
}

func TestCreate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	creator := e.fx.CreateCreator(ctx, "Casey", "casey@example.com")
	respondent := e.fx.CreateUser(ctx, "Robin", "robin@example.com", models.RoleRespondent)

	t.Run("creator", func(t *testing.T) {
		rec := e.do(as(testutil.NewJSONRequest("POST", "/api/campaigns", map[string]any{
			"title":       "<b>Spring</b> survey",
			"description": `<p>Hello</p><script>alert(1)</script>`,
		}), creator))
		rec.AssertStatus(t, http.StatusCreated)

		var c models.Campaign
		rec.DecodeJSON(t, &c)
		if c.Title != "Spring survey" {
			t.Errorf("title = %q, want markup stripped", c.Title)
		}
		if c.Description != "<p>Hello</p>" {
			t.Errorf("description = %q, want script removed", c.Description)
		}
		if c.Status != models.StatusDraft || c.Visibility != models.VisibilityPrivate || c.CreatorID != creator.ID {
			t.Errorf("unexpected campaign: %+v", c)
		}
		if c.ShareableLink != nil {
			t.Error("draft must not have a shareable link")
		}
		if n := testutil.CountEvents(t, e.audit, audit.EventCampaignCreated); n != 1 {
			t.Errorf("campaign_created events = %d, want 1", n)
		}
	})

	t.Run("respondent forbidden", func(t *testing.T) {
		rec := e.do(as(testutil.NewJSONRequest("POST", "/api/campaigns", map[string]any{"title": "Nope nope"}), respondent))
		rec.AssertStatus(t, http.StatusForbidden)
	})

	t.Run("guest unauthorized", func(t *testing.T) {
		rec := e.do(testutil.NewJSONRequest("POST", "/api/campaigns", map[string]any{"title": "Nope nope"}))
		rec.AssertStatus(t, http.StatusUnauthorized)
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name string
			body map[string]any
		}{
			{"short title", map[string]any{"title": "ab"}},
			{"bad visibility", map[string]any{"title": "Valid title", "visibility": "SECRET"}},
			{"past schedule", map[string]any{"title": "Valid title", "scheduledPublishAt": time.Now().Add(-time.Hour)}},
			{"status not accepted", map[string]any{"title": "Valid title", "status": "PUBLISHED"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := e.do(as(testutil.NewJSONRequest("POST", "/api/campaigns", tt.body), creator))
				rec.AssertStatus(t, http.StatusBadRequest)
			})
		}
	})
}

func TestGet(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	creator := e.fx.CreateCreator(ctx, "Casey", "casey@example.com")
	stranger := e.fx.CreateCreator(ctx, "Sam", "sam@example.com")
	private := e.fx.CreateCampaign(ctx, "Private one", creator.ID, models.StatusDraft, models.VisibilityPrivate)
	public := e.fx.CreateCampaign(ctx, "Public one", creator.ID, models.StatusPublished, models.VisibilityPublic)
	e.fx.CreateManager(ctx, public.ID, stranger.ID, creator.ID, false, models.PermViewResults)

	t.Run("creator sees members", func(t *testing.T) {
		rec := e.do(as(testutil.NewRequest("GET", "/api/campaigns/"+public.ID.Hex()), creator))
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, `"managers"`)
		rec.AssertContains(t, `"creator_id"`)
	})

	t.Run("guest gets public projection", func(t *testing.T) {
		rec := e.do(testutil.NewRequest("GET", "/api/campaigns/"+public.ID.Hex()))
		rec.AssertStatus(t, http.StatusOK)
		var body map[string]any
		rec.DecodeJSON(t, &body)
		for _, k := range []string{"creator_id", "managers", "allow_manager_view_respondent_details"} {
			if _, ok := body[k]; ok {
				t.Errorf("public projection leaks %q", k)
			}
		}
	})

	t.Run("pending invitee is a stranger", func(t *testing.T) {
		rec := e.do(as(testutil.NewRequest("GET", "/api/campaigns/"+private.ID.Hex()), stranger))
		rec.AssertStatus(t, http.StatusForbidden)
	})

	t.Run("guest on private", func(t *testing.T) {
		e.do(testutil.NewRequest("GET", "/api/campaigns/"+private.ID.Hex())).AssertStatus(t, http.StatusForbidden)
	})

	t.Run("unknown and malformed ids", func(t *testing.T) {
		e.do(as(testutil.NewRequest("GET", "/api/campaigns/"+primitive.NewObjectID().Hex()), creator)).AssertStatus(t, http.StatusNotFound)
		e.do(as(testutil.NewRequest("GET", "/api/campaigns/not-an-id"), creator)).AssertStatus(t, http.StatusNotFound)
	})
}

func TestList_Scoped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.fx.CreateCreator(ctx, "Alice", "alice@example.com")
	bob := e.fx.CreateCreator(ctx, "Bob", "bob@example.com")
	e.fx.CreateCampaign(ctx, "Alice draft", alice.ID, models.StatusDraft, models.VisibilityPublic)
	e.fx.CreateCampaign(ctx, "Alice live", alice.ID, models.StatusPublished, models.VisibilityPublic)
	e.fx.CreateCampaign(ctx, "Bob live", bob.ID, models.StatusPublished, models.VisibilityPrivate)

	type page struct {
		Data []struct {
			Title string `json:"title"`
		} `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}

	tests := []struct {
		name  string
		req   *http.Request
		total int64
	}{
		{"creator sees own", as(testutil.NewRequest("GET", "/api/campaigns"), alice), 2},
		{"creator status filter", as(testutil.NewRequest("GET", "/api/campaigns?status=draft"), alice), 1},
		{"creator search", as(testutil.NewRequest("GET", "/api/campaigns?search=LIVE"), alice), 1},
		{"admin sees all", testutil.WithUser(testutil.NewRequest("GET", "/api/campaigns"), testutil.AdminUser()), 3},
		{"guest sees public published", testutil.NewRequest("GET", "/api/campaigns"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(tt.req)
			rec.AssertStatus(t, http.StatusOK)
			var p page
			rec.DecodeJSON(t, &p)
			if p.Pagination.Total != tt.total || int64(len(p.Data)) != tt.total {
				t.Errorf("total = %d (rows %d), want %d", p.Pagination.Total, len(p.Data), tt.total)
			}
		})
	}

	rec := e.do(as(testutil.NewRequest("GET", "/api/campaigns?status=bogus"), alice))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	creator := e.fx.CreateCreator(ctx, "Casey", "casey@example.com")
	editor := e.fx.CreateUser(ctx, "Eddie", "eddie@example.com", models.RoleCampaignManager)
	viewer := e.fx.CreateUser(ctx, "Vic", "vic@example.com", models.RoleCampaignManager)
	c := e.fx.CreateCampaign(ctx, "Original title", creator.ID, models.StatusDraft, models.VisibilityPrivate)
	e.fx.CreateManager(ctx, c.ID, editor.ID, creator.ID, true, models.PermEditCampaign)
	e.fx.CreateManager(ctx, c.ID, viewer.ID, creator.ID, true, models.PermViewResults)
	path := "/api/campaigns/" + c.ID.Hex()

	t.Run("editor manager", func(t *testing.T) {
		rec := e.do(as(testutil.NewJSONRequest("PATCH", path, map[string]any{"title": "Edited title", "visibility": "PUBLIC"}), editor))
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, `"title":"Edited title"`)
		rec.AssertContains(t, `"visibility":"PUBLIC"`)
	})

	t.Run("viewer manager", func(t *testing.T) {
		rec := e.do(as(testutil.NewJSONRequest("PATCH", path, map[string]any{"title": "Nope title"}), viewer))
		rec.AssertStatus(t, http.StatusForbidden)
	})

	t.Run("creator cannot flip privacy flag", func(t *testing.T) {
		rec := e.do(as(testutil.NewJSONRequest("PATCH", path, map[string]any{
			"title":                             "Sneaky title",
			"allowManagerViewRespondentDetails": true,
		}), creator))
		rec.AssertStatus(t, http.StatusForbidden)

		var stored models.Campaign
		if err := e.db.Collection("campaigns").FindOne(ctx, bson.M{"_id": c.ID}).Decode(&stored); err != nil {
			t.Fatalf("reload: %v", err)
		}
		if stored.Title == "Sneaky title" || stored.AllowManagerViewRespondentDetails {
			t.Errorf("refused request still wrote: %+v", stored)
		}
	})

	t.Run("admin flips privacy flag", func(t *testing.T) {
		rec := e.do(testutil.WithUser(testutil.NewJSONRequest("PATCH", path, map[string]any{
			"allowManagerViewRespondentDetails": true,
		}), testutil.AdminUser()))
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, `"allow_manager_view_respondent_details":true`)
		if n := testutil.CountEvents(t, e.audit, audit.EventRespondentDetailsVisible); n != 1 {
			t.Errorf("visibility events = %d, want 1", n)
		}
	})

	t.Run("schedule draft", func(t *testing.T) {
		at := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)
		rec := e.do(as(testutil.NewJSONRequest("PATCH", path, map[string]any{"scheduledPublishAt": at}), creator))
		rec.AssertStatus(t, http.StatusOK)
		var got models.Campaign
		rec.DecodeJSON(t, &got)
		if got.ScheduledPublishAt == nil || !got.ScheduledPublishAt.Equal(at) {
			t.Errorf("scheduled = %v, want %v", got.ScheduledPublishAt, at)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		e.do(as(testutil.NewJSONRequest("PATCH", path, map[string]any{}), creator)).AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("schedule published", func(t *testing.T) {
		live := e.fx.CreateCampaign(ctx, "Live one", creator.ID, models.StatusPublished, models.VisibilityPublic)
		rec := e.do(as(testutil.NewJSONRequest("PATCH", "/api/campaigns/"+live.ID.Hex(), map[string]any{
			"scheduledPublishAt": time.Now().Add(time.Hour),
		}), creator))
		rec.AssertStatus(t, http.StatusConflict)
	})
}

func TestPublishClosePublicLookup(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	creator := e.fx.CreateCreator(ctx, "Casey", "casey@example.com")
	c := e.fx.CreateCampaign(ctx, "Lifecycle", creator.ID, models.StatusDraft, models.VisibilityPublic)
	e.fx.CreateQuestion(ctx, c.ID, "Second", models.QuestionShortText, false, 2)
	e.fx.CreateQuestion(ctx, c.ID, "First", models.QuestionShortText, true, 1)
	path := "/api/campaigns/" + c.ID.Hex()

	rec := e.do(as(testutil.NewRequest("POST", path+"/publish"), creator))
	rec.AssertStatus(t, http.StatusOK)
	var published models.Campaign
	rec.DecodeJSON(t, &published)
	if published.Status != models.StatusPublished || published.ShareableLink == nil || *published.ShareableLink == "" {
		t.Fatalf("publish result = %+v", published)
	}
	link := *published.ShareableLink

	e.do(as(testutil.NewRequest("POST", path+"/publish"), creator)).AssertStatus(t, http.StatusConflict)

	pub := e.do(testutil.NewRequest("GET", "/api/campaigns/public/"+link))
	pub.AssertStatus(t, http.StatusOK)
	var form models.PublicCampaign
	pub.DecodeJSON(t, &form)
	if len(form.Questions) != 2 || form.Questions[0].Text != "First" {
		t.Errorf("public questions = %+v, want ordered", form.Questions)
	}

	e.do(as(testutil.NewRequest("POST", path+"/close"), creator)).AssertStatus(t, http.StatusOK)
	e.do(as(testutil.NewRequest("POST", path+"/close"), creator)).AssertStatus(t, http.StatusConflict)

	closed := e.do(testutil.NewRequest("GET", "/api/campaigns/public/"+link))
	closed.AssertStatus(t, http.StatusConflict)
	closed.AssertContains(t, "NOT_ACCEPTING_RESPONSES")

	e.do(testutil.NewRequest("GET", "/api/campaigns/public/unknown-link")).AssertStatus(t, http.StatusNotFound)

	for _, ev := range []string{audit.EventCampaignPublished, audit.EventCampaignClosed} {
		if n := testutil.CountEvents(t, e.audit, ev); n != 1 {
			t.Errorf("%s events = %d, want 1", ev, n)
		}
	}
}

func TestDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	creator := e.fx.CreateCreator(ctx, "Casey", "casey@example.com")
	editor := e.fx.CreateUser(ctx, "Eddie", "eddie@example.com", models.RoleCampaignManager)
	c := e.fx.CreateCampaign(ctx, "Doomed", creator.ID, models.StatusPublished, models.VisibilityPrivate)
	e.fx.CreateManager(ctx, c.ID, editor.ID, creator.ID, true, models.PermEditCampaign)
	e.fx.CreateQuestion(ctx, c.ID, "Q", models.QuestionShortText, false, 0)
	e.fx.CreateRespondent(ctx, c.ID, nil)
	path := "/api/campaigns/" + c.ID.Hex()

	e.do(as(testutil.NewRequest("DELETE", path), editor)).AssertStatus(t, http.StatusForbidden)
	e.do(as(testutil.NewRequest("DELETE", path), creator)).AssertStatus(t, http.StatusNoContent)
	e.do(as(testutil.NewRequest("GET", path), creator)).AssertStatus(t, http.StatusNotFound)

	for _, coll := range []string{"questions", "campaign_managers", "respondents"} {
		n, err := e.db.Collection(coll).CountDocuments(ctx, bson.M{"campaign_id": c.ID})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("%s left behind: %d", coll, n)
		}
	}
}

func TestAnalytics(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	creator := e.fx.CreateCreator(ctx, "Casey", "casey@example.com")
	results := e.fx.CreateUser(ctx, "Rita", "rita@example.com", models.RoleCampaignManager)
	responses := e.fx.CreateUser(ctx, "Mo", "mo@example.com", models.RoleCampaignManager)
	c := e.fx.CreateCampaign(ctx, "Measured", creator.ID, models.StatusPublished, models.VisibilityPublic)
	e.fx.CreateManager(ctx, c.ID, results.ID, creator.ID, true, models.PermViewResults)
	e.fx.CreateManager(ctx, c.ID, responses.ID, creator.ID, true, models.PermManageRespondents)
	q := e.fx.CreateQuestion(ctx, c.ID, "Pick one", models.QuestionMultipleChoice, true, 0)

	e.fx.CreateRespondent(ctx, c.ID, nil, models.Answer{QuestionID: q.ID, Value: "A"})
	e.fx.CreateRespondent(ctx, c.ID, nil, models.Answer{QuestionID: q.ID, Value: "A"})
	e.fx.CreateRespondent(ctx, c.ID, nil, models.Answer{QuestionID: q.ID, Value: "B"})
	e.fx.CreateAbandonedRespondent(ctx, c.ID)
	path := "/api/campaigns/" + c.ID.Hex() + "/analytics"

	e.do(as(testutil.NewRequest("GET", path), responses)).AssertStatus(t, http.StatusForbidden)

	rec := e.do(as(testutil.NewRequest("GET", path), results))
	rec.AssertStatus(t, http.StatusOK)
	var report analytics.Report
	rec.DecodeJSON(t, &report)
	if report.TotalResponses != 3 || report.TotalStarted != 4 {
		t.Errorf("totals = %d/%d, want 3/4", report.TotalResponses, report.TotalStarted)
	}
	if report.CompletionRate != 75 {
		t.Errorf("completion rate = %v, want 75", report.CompletionRate)
	}
	if len(report.QuestionStats) != 1 || report.QuestionStats[0].Distribution["A"] != 2 {
		t.Errorf("question stats = %+v", report.QuestionStats)
	}
}
