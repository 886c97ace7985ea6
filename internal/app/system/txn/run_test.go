package txn_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/campaignhub/internal/app/system/txn"
	"github.com/dalemusser/campaignhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestRun_CommitsWrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := txn.Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		_, err := db.Collection("txn_probe").InsertOne(ctx, bson.M{"n": 1})
		return err
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	n, err := db.Collection("txn_probe").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 document, got %d", n)
	}
}

func TestRun_ReturnsCallbackError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	boom := errors.New("boom")
	err := txn.Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected callback error, got %v", err)
	}
}

func TestIsNotSupported(t *testing.T) {
	standalone := mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("connection refused"), false},
		{mongo.CommandError{Code: 11000, Message: "duplicate key"}, false},
		{standalone, true},
		{mongo.CommandError{Code: 51}, true},
		{mongo.CommandError{Code: 263}, true},
		{fmt.Errorf("publish campaign: %w", standalone), true},
		{errors.New("Transactions require a Replica Set"), true},
		{errors.New("sessions are not supported by this deployment"), true},
		{errors.New("Illegal Operation"), true},
	}
	for _, tc := range tests {
		name := "nil"
		if tc.err != nil {
			name = tc.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			if got := txn.IsNotSupported(tc.err); got != tc.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
