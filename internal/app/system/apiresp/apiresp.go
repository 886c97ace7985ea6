// Package apiresp writes the JSON envelopes used by every API handler.
//
// Success bodies are written as-is; paged lists use {"data":[...],"pagination":{...}}.
// Errors use {"error":{"code":KIND,"message":...,"metadata":{...}}}.
package apiresp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/paging"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MaxBodyBytes caps request bodies read by Decode.
const MaxBodyBytes = 1 << 20

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code     apperr.Kind       `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Page is a page of results with its pagination block.
type Page[T any] struct {
	Data       []T         `json:"data"`
	Pagination paging.Meta `json:"pagination"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) { JSON(w, http.StatusOK, v) }

// Created writes v with 201.
func Created(w http.ResponseWriter, v any) { JSON(w, http.StatusCreated, v) }

// NoContent writes 204.
func NoContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

// Paged writes a page of results. A nil slice is written as [].
func Paged[T any](w http.ResponseWriter, data []T, meta paging.Meta) {
	if data == nil {
		data = []T{}
	}
	OK(w, Page[T]{Data: data, Pagination: meta})
}

// Error maps err to its HTTP status and writes the error envelope.
// Errors without a kind are logged and answered with a generic 500.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) || apperr.HTTPStatus(ae.Kind) == http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed",
				zap.Error(err),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path))
		}
		JSON(w, http.StatusInternalServerError, errorBody{Error: errorPayload{
			Code:    "INTERNAL",
			Message: "internal server error",
		}})
		return
	}
	JSON(w, apperr.HTTPStatus(ae.Kind), errorBody{Error: errorPayload{
		Code:     ae.Kind,
		Message:  ae.Message,
		Metadata: ae.Metadata,
	}})
}

// Decode reads a JSON request body into v. Malformed bodies and unknown
// fields become INVALID_INPUT errors.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.InvalidInput("request body is required")
		}
		return apperr.Wrap(apperr.KindInvalidInput, "invalid request body: "+err.Error(), err)
	}
	return nil
}

// IDParam parses the chi URL parameter name as an ObjectID. A malformed id
// is reported as NOT_FOUND for what, the same as an unknown one.
func IDParam(r *http.Request, name, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(what + " not found")
	}
	return id, nil
}
