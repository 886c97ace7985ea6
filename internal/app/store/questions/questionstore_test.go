package questionstore_test

import (
	"testing"

	questionstore "github.com/dalemusser/campaignhub/internal/app/store/questions"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/campaignhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestStore_Create_DefaultOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := questionstore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cid := primitive.NewObjectID()

	first, err := store.Create(ctx, models.Question{CampaignID: cid, Text: "one", Type: models.QuestionShortText}, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if first.Order != 1 {
		t.Errorf("first order = %d, want 1", first.Order)
	}

	ten := 10
	if _, err := store.Create(ctx, models.Question{CampaignID: cid, Text: "ten", Type: models.QuestionShortText}, &ten); err != nil {
		t.Fatalf("Create with order failed: %v", err)
	}

	next, err := store.Create(ctx, models.Question{CampaignID: cid, Text: "next", Type: models.QuestionShortText}, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if next.Order != 11 {
		t.Errorf("appended order = %d, want 11", next.Order)
	}

	list, err := store.ListByCampaign(ctx, cid)
	if err != nil {
		t.Fatalf("ListByCampaign failed: %v", err)
	}
	if len(list) != 3 || list[0].Text != "one" || list[2].Text != "next" {
		t.Errorf("unexpected order: %+v", list)
	}
}

func TestStore_UpdateDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := questionstore.New(db, zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	q := fx.CreateQuestion(ctx, primitive.NewObjectID(), "Old", models.QuestionShortText, false, 1)

	text := "New"
	typ := models.QuestionRating
	req := true
	got, err := store.Update(ctx, q.ID, questionstore.Update{
		Text:     &text,
		Type:     &typ,
		Required: &req,
		Options:  map[string]any{"min": 1, "max": 5},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Text != "New" || got.Type != models.QuestionRating || !got.Required || got.Options == nil {
		t.Errorf("update not applied: %+v", got)
	}

	if err := store.Delete(ctx, q.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, q.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("GetByID after delete err = %v, want NotFound", err)
	}
	if err := store.Delete(ctx, q.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("second Delete err = %v, want NotFound", err)
	}
	if _, err := store.Update(ctx, q.ID, questionstore.Update{Text: &text}); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Update missing err = %v, want NotFound", err)
	}
}

func TestStore_BatchSetOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := questionstore.New(db, zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cid := primitive.NewObjectID()
	a := fx.CreateQuestion(ctx, cid, "a", models.QuestionShortText, false, 1)
	b := fx.CreateQuestion(ctx, cid, "b", models.QuestionShortText, false, 2)
	c := fx.CreateQuestion(ctx, cid, "c", models.QuestionShortText, false, 3)

	err := store.BatchSetOrder(ctx, cid, []models.QuestionOrder{
		{ID: a.ID, Order: 3},
		{ID: b.ID, Order: 1},
		{ID: c.ID, Order: 2},
	})
	if err != nil {
		t.Fatalf("BatchSetOrder failed: %v", err)
	}

	list, _ := store.ListByCampaign(ctx, cid)
	got := []string{list[0].Text, list[1].Text, list[2].Text}
	want := []string{"b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestStore_BatchSetOrder_ForeignID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := questionstore.New(db, zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cid := primitive.NewObjectID()
	a := fx.CreateQuestion(ctx, cid, "a", models.QuestionShortText, false, 1)
	foreign := fx.CreateQuestion(ctx, primitive.NewObjectID(), "x", models.QuestionShortText, false, 1)

	err := store.BatchSetOrder(ctx, cid, []models.QuestionOrder{
		{ID: a.ID, Order: 5},
		{ID: foreign.ID, Order: 6},
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}

	got, _ := store.GetByID(ctx, foreign.ID)
	if got.Order != 1 {
		t.Errorf("foreign question reordered to %d", got.Order)
	}
}
