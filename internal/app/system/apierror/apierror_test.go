package apierror_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huddlehq/huddle/internal/app/system/apierror"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code apierror.Code
		want int
	}{
		{apierror.CodeUnauthenticated, http.StatusUnauthorized},
		{apierror.CodeInvalidArgument, http.StatusBadRequest},
		{apierror.CodeNotFound, http.StatusNotFound},
		{apierror.CodePermissionDenied, http.StatusForbidden},
		{apierror.CodeFailedPrecondition, http.StatusPreconditionFailed},
		{apierror.CodeAlreadyExists, http.StatusConflict},
		{apierror.CodeInternal, http.StatusInternalServerError},
		{apierror.Code("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := apierror.HTTPStatus(tt.code); got != tt.want {
			t.Errorf("HTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestWrite_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	apierror.Write(rec, apierror.CodePermissionDenied, "not a member of this group")

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var e apierror.Error
	if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if e.Code != apierror.CodePermissionDenied {
		t.Errorf("code = %q, want %q", e.Code, apierror.CodePermissionDenied)
	}
	if e.Message != "not a member of this group" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestError_String(t *testing.T) {
	e := apierror.New(apierror.CodeNotFound, "group not found")
	if e.Error() != "not-found: group not found" {
		t.Errorf("Error() = %q", e.Error())
	}
}
