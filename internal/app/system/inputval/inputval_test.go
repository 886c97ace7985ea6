package inputval

import (
	"errors"
	"testing"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"ivy@example.com",
		"first.last+survey@example.co.uk",
		" padded@example.com ",
		"ops@localhost",
	}
	invalid := []string{
		"", "   ", "ivy", "ivy@", "@example.com",
		".ivy@example.com", "ivy.@example.com", "i..vy@example.com",
		"ivy@.example.com", "ivy@example..com",
		"Ivy <ivy@example.com>",
		"i vy@example.com", "ivy@exam ple.com",
	}
	for _, s := range valid {
		if !IsValidEmail(s) {
			t.Errorf("IsValidEmail(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidEmail(s) {
			t.Errorf("IsValidEmail(%q) = true, want false", s)
		}
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) bool
		in   string
		want bool
	}{
		{"role upper", IsValidRole, "CAMPAIGN_CREATOR", true},
		{"role lower trimmed", IsValidRole, "  respondent ", true},
		{"role unknown", IsValidRole, "owner", false},
		{"role squashed", IsValidRole, "SUPERADMIN", false},
		{"qtype", IsValidQuestionType, "MULTIPLE_CHOICE", true},
		{"qtype mixed case", IsValidQuestionType, " Rating ", true},
		{"qtype unknown", IsValidQuestionType, "DROPDOWN", false},
		{"url https", IsValidHTTPURL, "https://example.com/s/abc", true},
		{"url no scheme", IsValidHTTPURL, "example.com", false},
		{"url ftp", IsValidHTTPURL, "ftp://example.com", false},
		{"url no host", IsValidHTTPURL, "http://", false},
		{"objectid", IsValidObjectID, "507f1f77bcf86cd799439011", true},
		{"objectid upper", IsValidObjectID, "507F1F77BCF86CD799439011", true},
		{"objectid short", IsValidObjectID, "507f1f77", false},
		{"objectid non hex", IsValidObjectID, "zzzzzzzzzzzzzzzzzzzzzzzz", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

type inviteInput struct {
	Email       string   `json:"email" validate:"required,email" label:"Email address"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

type questionInput struct {
	Text     string `json:"questionText" validate:"required,min=3,max=20" label:"Question text"`
	Type     string `json:"type" validate:"required,qtype" label:"Question type"`
	Campaign string `json:"campaignId" validate:"omitempty,objectid" label:"Campaign"`
}

type userInput struct {
	Role    string `json:"role" validate:"required,role" label:"Role"`
	Website string `json:"website" validate:"omitempty,httpurl" label:"Website"`
}

func TestValidate_Messages(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		wantFirst string
	}{
		{"valid invite", inviteInput{Email: "ivy@example.com", Permissions: []string{"VIEW_RESULTS"}}, ""},
		{"bad email", inviteInput{Email: "ivy", Permissions: []string{"VIEW_RESULTS"}}, "A valid email address is required."},
		{"no permissions", inviteInput{Email: "ivy@example.com"}, "permissions is required."},
		{"valid question", questionInput{Text: "Why?!", Type: "rating"}, ""},
		{"short question", questionInput{Text: "Hi", Type: "RATING"}, "Question text must be at least 3 characters."},
		{"long question", questionInput{Text: "This question is far too long", Type: "RATING"}, "Question text must be at most 20 characters."},
		{"bad type", questionInput{Text: "Why?!", Type: "SLIDER"}, "Question type must be a valid question type."},
		{"bad campaign id", questionInput{Text: "Why?!", Type: "DATE", Campaign: "nope"}, "Campaign must be a valid ID."},
		{"bad role", userInput{Role: "owner"}, "Role must be a valid role."},
		{"bad url", userInput{Role: "ADMIN", Website: "not-a-url"}, "Website must be a valid http or https URL."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.input)
			if tt.wantFirst == "" {
				if res.HasErrors() {
					t.Fatalf("unexpected errors: %s", res.All())
				}
				return
			}
			if res.First() != tt.wantFirst {
				t.Errorf("First() = %q, want %q", res.First(), tt.wantFirst)
			}
		})
	}
}

func TestResult_AllJoinsInFieldOrder(t *testing.T) {
	res := Validate(questionInput{})
	if got, want := res.All(), "Question text is required.; Question type is required."; got != want {
		t.Errorf("All() = %q, want %q", got, want)
	}
	if (&Result{}).All() != "" || (&Result{}).First() != "" {
		t.Error("an empty result has no messages")
	}
}

func TestResult_Err(t *testing.T) {
	if err := Validate(inviteInput{Email: "ivy@example.com", Permissions: []string{"x"}}).Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}

	err := Validate(inviteInput{Email: "ivy"}).Err()
	if !apperr.Is(err, apperr.KindInvalidInput) {
		t.Fatalf("Err() = %v, want INVALID_INPUT", err)
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatal("expected *apperr.Error")
	}
	if ae.Metadata["Email address"] != "A valid email address is required." || ae.Metadata["permissions"] != "permissions is required." {
		t.Errorf("metadata = %v", ae.Metadata)
	}
}
