// Package inputval validates decoded request bodies with struct tags.
//
// Fields declare rules with `validate:"..."` and a human label with
// `label:"..."`; messages are written for end users.
package inputval

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"strings"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Result collects the failures for one value.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns nil, or an INVALID_INPUT error carrying every message keyed by field.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	md := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, seen := md[e.Field]; !seen {
			md[e.Field] = e.Message
		}
	}
	return apperr.WithMetadata(apperr.KindInvalidInput, r.First(), md)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		if name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]; name != "" && name != "-" {
			return name
		}
		return f.Name
	})
	rules := map[string]func(string) bool{
		"email":    IsValidEmail,
		"httpurl":  IsValidHTTPURL,
		"objectid": IsValidObjectID,
		"role":     IsValidRole,
		"qtype":    IsValidQuestionType,
	}
	for tag, fn := range rules {
		fn := fn
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("inputval: register %q: %v", tag, err))
		}
	}
	return v
}

// Validate runs the struct's rules.
func Validate(v any) *Result {
	res := &Result{}
	err := validate.Struct(v)
	if err == nil {
		return res
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s items.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s items.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "email":
		return "A valid email address is required."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "httpurl":
		return label + " must be a valid http or https URL."
	case "objectid":
		return label + " must be a valid ID."
	case "role":
		return label + " must be a valid role."
	case "qtype":
		return label + " must be a valid question type."
	default:
		return label + " is invalid."
	}
}

// IsValidEmail reports whether s is a bare addr-spec (no display name).
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	local, domain := s[:at], s[at+1:]
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Name == "" && strings.EqualFold(addr.Address, s)
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidObjectID reports whether s is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.ToLower(strings.TrimSpace(s)))
	return err == nil
}

// IsValidRole reports whether s names a global role (case-insensitive).
func IsValidRole(s string) bool {
	_, ok := models.ParseRole(s)
	return ok
}

// IsValidQuestionType reports whether s names a question type (case-insensitive).
func IsValidQuestionType(s string) bool {
	return models.QuestionType(strings.ToUpper(strings.TrimSpace(s))).Valid()
}
