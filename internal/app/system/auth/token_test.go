package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/golang-jwt/jwt/v5"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, err := auth.NewTokenIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	want := &auth.SessionUser{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: "ADMIN"}

	tok, exp, err := issuer.Issue(want)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("expiry %v is not in the future", exp)
	}

	got, err := issuer.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if *got != *want {
		t.Errorf("got %+v, want %+v", *got, *want)
	}
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer, _ := auth.NewTokenIssuer("secret", time.Hour)
	other, _ := auth.NewTokenIssuer("other-secret", time.Hour)
	u := &auth.SessionUser{ID: "u1", Role: "ADMIN"}

	foreign, _, _ := other.Issue(u)

	expiredIssuer, _ := auth.NewTokenIssuer("secret", time.Minute)
	expiredIssuer.SetClock(func() time.Time { return time.Now().Add(-time.Hour) })
	expired, _, _ := expiredIssuer.Issue(u)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "u1", "iss": "campaignhub", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noSubject, _, _ := issuer.Issue(&auth.SessionUser{Role: "ADMIN"})

	tests := []struct {
		name string
		raw  string
	}{
		{"wrong secret", foreign},
		{"expired", expired},
		{"alg none", none},
		{"missing subject", noSubject},
		{"garbage", "abc.def.ghi"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := issuer.Parse(tc.raw)
			if !errors.Is(err, auth.ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNewTokenIssuer_EmptySecret(t *testing.T) {
	if _, err := auth.NewTokenIssuer("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
