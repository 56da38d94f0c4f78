package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/huddlehq/huddle/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// TestCaller returns a verified caller with a fresh user id.
func TestCaller(name string) *auth.Caller {
	return &auth.Caller{
		ID:   primitive.NewObjectID().Hex(),
		Name: name,
	}
}

// NewRequest creates an HTTP request with an optional JSON body.
func NewRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewGroupRequest creates a request carrying a verified caller and the
// groupID path parameter, as the router would deliver it.
func NewGroupRequest(t *testing.T, method, target string, caller *auth.Caller, groupID primitive.ObjectID, body any) *http.Request {
	t.Helper()
	req := NewRequest(t, method, target, body)
	req = auth.WithTestCaller(req, caller)
	return WithChiURLParam(req, "groupID", groupID.Hex())
}

// DecodeJSON unmarshals the recorded response body into dst.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
