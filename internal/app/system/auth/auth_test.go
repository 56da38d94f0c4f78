package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huddlehq/huddle/internal/app/system/auth"
	"go.uber.org/zap"
)

// staticVerifier accepts exactly one token string.
type staticVerifier struct {
	token  string
	caller *auth.Caller
}

func (v *staticVerifier) Verify(raw string) (*auth.Caller, error) {
	if raw == v.token {
		return v.caller, nil
	}
	return nil, errors.New("unknown token")
}

func newManager() *auth.Manager {
	return auth.NewManager(&staticVerifier{
		token:  "good-token",
		caller: &auth.Caller{ID: "user-1", Name: "Ada"},
	}, zap.NewNop())
}

// capture records the caller seen by the downstream handler.
func capture(got **auth.Caller) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, _ := auth.CurrentCaller(r)
		*got = c
	})
}

func TestLoadCaller_ValidToken(t *testing.T) {
	var got *auth.Caller
	h := newManager().LoadCaller(capture(&got))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected caller in context")
	}
	if got.ID != "user-1" {
		t.Errorf("caller ID = %q, want user-1", got.ID)
	}
}

func TestLoadCaller_NoToken(t *testing.T) {
	var got *auth.Caller
	h := newManager().LoadCaller(capture(&got))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if got != nil {
		t.Errorf("expected no caller, got %+v", got)
	}
}

func TestLoadCaller_BadToken(t *testing.T) {
	var got *auth.Caller
	h := newManager().LoadCaller(capture(&got))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != nil {
		t.Errorf("expected no caller for rejected token, got %+v", got)
	}
}

func TestRequireSignedIn(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := auth.RequireSignedIn(next)

	// Without a caller: unauthenticated envelope.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	// With a caller injected: passes through.
	rec = httptest.NewRecorder()
	req := auth.WithTestCaller(httptest.NewRequest("POST", "/", nil), &auth.Caller{ID: "user-1"})
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
