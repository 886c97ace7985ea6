package responses_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/features/responses"
	"github.com/dalemusser/campaignhub/internal/app/store/audit"
	"github.com/dalemusser/campaignhub/internal/app/system/ratelimit"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/campaignhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	db     *mongo.Database
	fx     *testutil.Fixtures
	router chi.Router
	audit  *audit.Store
}

func newEnv(t *testing.T, limiter ratelimit.Backend) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	auditLog, auditStore := testutil.NewAuditLogger(db)

	h := responses.NewHandler(db, testutil.NewEngine(db), auditLog, limiter, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/api/campaigns/{id}/responses", func(rr chi.Router) {
		responses.MountRoutes(rr, h, testutil.NewSessionManager(t))
	})
	return &env{db: db, fx: testutil.NewFixtures(t, db), router: r, audit: auditStore}
}

func (e *env) do(req *http.Request, u *models.User) *testutil.ResponseRecorder {
	if u != nil {
		req = testutil.WithUser(req, testutil.FromUser(*u))
	}
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestSubmit(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	creator := e.fx.CreateCreator(ctx, "Casey", "casey@example.com")
	c := e.fx.CreateCampaign(ctx, "Open survey", creator.ID, models.StatusPublished, models.VisibilityPublic)
	must := e.fx.CreateQuestion(ctx, c.ID, "Your rating", models.QuestionRating, true, 1)
	opt := e.fx.CreateQuestion(ctx, c.ID, "Comments", models.QuestionLongText, false, 2)
	path := "/api/campaigns/" + c.ID.Hex() + "/responses"

	t.Run("anonymous", func(t *testing.T) {
		rec := e.do(testutil.NewJSONRequest("POST", path, map[string]any{
			"answers": []map[string]any{{"questionId": must.ID.Hex(), "answer": 4}},
		}), nil)
		rec.AssertStatus(t, http.StatusCreated)
		var body struct {
			RespondentToken string `json:"respondentToken"`
		}
		rec.DecodeJSON(t, &body)
		if body.RespondentToken == "" {
			t.Fatal("expected a respondent token")
		}

		var stored models.Respondent
		if err := e.db.Collection("respondents").FindOne(ctx, bson.M{"respondent_token": body.RespondentToken}).Decode(&stored); err != nil {
			t.Fatalf("load respondent: %v", err)
		}
		if !stored.Anonymous || stored.SubmittedAt == nil || len(stored.Answers) != 1 {
			t.Errorf("stored = %+v", stored)
		}
	})

	t.Run("identified", func(t *testing.T) {
		rec := e.do(testutil.NewJSONRequest("POST", path, map[string]any{
			"answers": []map[string]any{
				{"questionId": must.ID.Hex(), "answer": 5},
				{"questionId": opt.ID.Hex(), "answer": "great"},
			},
			"identifiableFields": map[string]any{"name": "Pat", "email": "Pat@Example.com"},
			"consentGiven":       true,
		}), nil)
		rec.AssertStatus(t, http.StatusCreated)

		n, err := e.db.Collection("respondents").CountDocuments(ctx, bson.M{"anonymous": false, "identifiable_fields.email": "pat@example.com"})
		if err != nil || n != 1 {
			t.Errorf("identified respondents = %d (%v), want 1", n, err)
		}
	})

	t.Run("required missing", func(t *testing.T) {
		rec := e.do(testutil.NewJSONRequest("POST", path, map[string]any{
			"answers": []map[string]any{{"questionId": opt.ID.Hex(), "answer": "only this"}},
		}), nil)
		rec.AssertStatus(t, http.StatusUnprocessableEntity)
		rec.AssertContains(t, `Question \"Your rating\" is required`)
	})

	t.Run("required blank", func(t *testing.T) {
		rec := e.do(testutil.NewJSONRequest("POST", path, map[string]any{
			"answers": []map[string]any{{"questionId": must.ID.Hex(), "answer": "  "}},
		}), nil)
		rec.AssertStatus(t, http.StatusUnprocessableEntity)
	})

	t.Run("foreign question", func(t *testing.T) {
		other := e.fx.CreateCampaign(ctx, "Other", creator.ID, models.StatusPublished, models.VisibilityPublic)
		q := e.fx.CreateQuestion(ctx, other.ID, "Elsewhere", models.QuestionShortText, false, 1)
		rec := e.do(testutil.NewJSONRequest("POST", path, map[string]any{
			"answers": []map[string]any{
				{"questionId": must.ID.Hex(), "answer": 3},
				{"questionId": q.ID.Hex(), "answer": "x"},
			},
		}), nil)
		rec.AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("no answers", func(t *testing.T) {
		e.do(testutil.NewJSONRequest("POST", path, map[string]any{"answers": []any{}}), nil).
			AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("not published", func(t *testing.T) {
		draft := e.fx.CreateCampaign(ctx, "Draft", creator.ID, models.StatusDraft, models.VisibilityPublic)
		q := e.fx.CreateQuestion(ctx, draft.ID, "Q", models.QuestionShortText, false, 1)
		rec := e.do(testutil.NewJSONRequest("POST", "/api/campaigns/"+draft.ID.Hex()+"/responses", map[string]any{
			"answers": []map[string]any{{"questionId": q.ID.Hex(), "answer": "x"}},
		}), nil)
		rec.AssertStatus(t, http.StatusConflict)
		rec.AssertContains(t, "NOT_ACCEPTING_RESPONSES")
	})
}

func TestSubmit_RateLimited(t *testing.T) {
	limiter := ratelimit.New(2, time.Minute)
	t.Cleanup(limiter.Stop)
	e := newEnv(t, limiter)
	ctx := context.Background()
	creator := e.fx.CreateCreator(ctx, "Casey", "casey@example.com")
	c := e.fx.CreateCampaign(ctx, "Open survey", creator.ID, models.StatusPublished, models.VisibilityPublic)
	q := e.fx.CreateQuestion(ctx, c.ID, "Anything", models.QuestionShortText, false, 1)
	path := "/api/campaigns/" + c.ID.Hex() + "/responses"
	body := map[string]any{"answers": []map[string]any{{"questionId": q.ID.Hex(), "answer": "x"}}}

	for i := 0; i < 2; i++ {
		e.do(testutil.NewJSONRequest("POST", path, body), nil).AssertStatus(t, http.StatusCreated)
	}
	rec := e.do(testutil.NewJSONRequest("POST", path, body), nil)
	rec.AssertStatus(t, http.StatusTooManyRequests)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

type listPage struct {
	Data []struct {
		IdentifiableFields *models.IdentifiableFields `json:"identifiable_fields"`
		Responses          []struct {
			QuestionText string `json:"question_text"`
		} `json:"responses"`
	} `json:"data"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func TestList_PrivacyGate(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	creator := e.fx.CreateCreator(ctx, "Casey", "casey@example.com")
	mgr := e.fx.CreateUser(ctx, "Mo", "mo@example.com", models.RoleCampaignManager)
	results := e.fx.CreateUser(ctx, "Rita", "rita@example.com", models.RoleCampaignManager)
	c := e.fx.CreateCampaign(ctx, "Survey", creator.ID, models.StatusPublished, models.VisibilityPrivate)
	e.fx.CreateManager(ctx, c.ID, mgr.ID, creator.ID, true, models.PermManageRespondents)
	e.fx.CreateManager(ctx, c.ID, results.ID, creator.ID, true, models.PermViewResults)
	q := e.fx.CreateQuestion(ctx, c.ID, "Name a colour", models.QuestionShortText, false, 1)
	e.fx.CreateRespondent(ctx, c.ID, &models.IdentifiableFields{Name: "Pat", Email: "pat@example.com"},
		models.Answer{QuestionID: q.ID, Value: "blue"})
	e.fx.CreateRespondent(ctx, c.ID, nil, models.Answer{QuestionID: q.ID, Value: "red"})
	e.fx.CreateAbandonedRespondent(ctx, c.ID)
	base := "/api/campaigns/" + c.ID.Hex() + "/responses"

	tests := []struct {
		name        string
		user        *models.User
		query       string
		wantStatus  int
		wantDetails bool
	}{
		{"creator with details", &creator, "?includeDetails=true", http.StatusOK, true},
		{"creator without flag", &creator, "", http.StatusOK, false},
		{"manager while flag off", &mgr, "?includeDetails=true", http.StatusOK, false},
		{"results-only manager", &results, "", http.StatusForbidden, false},
		{"guest", nil, "", http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(testutil.NewRequest("GET", base+tt.query), tt.user)
			rec.AssertStatus(t, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var p listPage
			rec.DecodeJSON(t, &p)
			if p.Pagination.Total != 2 || len(p.Data) != 2 {
				t.Fatalf("total = %d rows = %d, want 2 submitted", p.Pagination.Total, len(p.Data))
			}
			got := false
			for _, row := range p.Data {
				if row.IdentifiableFields != nil {
					got = true
				}
				if len(row.Responses) != 1 || row.Responses[0].QuestionText != "Name a colour" {
					t.Errorf("responses = %+v", row.Responses)
				}
			}
			if got != tt.wantDetails {
				t.Errorf("identifying fields present = %v, want %v", got, tt.wantDetails)
			}
		})
	}

	if n := testutil.CountEvents(t, e.audit, audit.EventRespondentDetailsViewed); n != 1 {
		t.Errorf("detail view events = %d, want 1", n)
	}

	if _, err := e.db.Collection("campaigns").UpdateOne(ctx, bson.M{"_id": c.ID},
		bson.M{"$set": bson.M{"allow_manager_view_respondent_details": true}}); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	rec := e.do(testutil.NewRequest("GET", base+"?includeDetails=1"), &mgr)
	rec.AssertStatus(t, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"email":"pat@example.com"`) {
		t.Error("manager should see identifying fields once the flag is set")
	}
}

func TestGetAndDeleteRespondent(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	creator := e.fx.CreateCreator(ctx, "Casey", "casey@example.com")
	mgr := e.fx.CreateUser(ctx, "Mo", "mo@example.com", models.RoleCampaignManager)
	results := e.fx.CreateUser(ctx, "Rita", "rita@example.com", models.RoleCampaignManager)
	c := e.fx.CreateCampaign(ctx, "Survey", creator.ID, models.StatusPublished, models.VisibilityPrivate)
	e.fx.CreateManager(ctx, c.ID, mgr.ID, creator.ID, true, models.PermManageRespondents)
	e.fx.CreateManager(ctx, c.ID, results.ID, creator.ID, true, models.PermViewResults)
	resp := e.fx.CreateRespondent(ctx, c.ID, &models.IdentifiableFields{Name: "Pat"})
	path := "/api/campaigns/" + c.ID.Hex() + "/responses/" + resp.ID.Hex()

	creatorView := e.do(testutil.NewRequest("GET", path), &creator)
	creatorView.AssertStatus(t, http.StatusOK)
	creatorView.AssertContains(t, `"name":"Pat"`)

	mgrView := e.do(testutil.NewRequest("GET", path), &mgr)
	mgrView.AssertStatus(t, http.StatusOK)
	mgrView.AssertContains(t, `"identifiable_fields":null`)

	other := e.fx.CreateCampaign(ctx, "Other", creator.ID, models.StatusPublished, models.VisibilityPrivate)
	e.do(testutil.NewRequest("GET", "/api/campaigns/"+other.ID.Hex()+"/responses/"+resp.ID.Hex()), &creator).
		AssertStatus(t, http.StatusNotFound)

	e.do(testutil.NewRequest("DELETE", path), &results).AssertStatus(t, http.StatusForbidden)
	e.do(testutil.NewRequest("DELETE", path), &mgr).AssertStatus(t, http.StatusNoContent)
	e.do(testutil.NewRequest("GET", path), &creator).AssertStatus(t, http.StatusNotFound)

	if n := testutil.CountEvents(t, e.audit, audit.EventRespondentDeleted); n != 1 {
		t.Errorf("respondent_deleted events = %d, want 1", n)
	}
}
