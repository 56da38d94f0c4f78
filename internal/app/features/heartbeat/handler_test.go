package heartbeat_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/huddlehq/huddle/internal/app/features/heartbeat"
	groupstore "github.com/huddlehq/huddle/internal/app/store/groups"
	livepresencestore "github.com/huddlehq/huddle/internal/app/store/livepresence"
	presencestore "github.com/huddlehq/huddle/internal/app/store/presence"
	"github.com/huddlehq/huddle/internal/app/system/apierror"
	"github.com/huddlehq/huddle/internal/app/system/auth"
	"github.com/huddlehq/huddle/internal/app/system/membercount"
	"github.com/huddlehq/huddle/internal/app/system/ratelimit"
	"github.com/huddlehq/huddle/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const testTTL = 2 * time.Minute

func newTestHandler(t *testing.T) (*heartbeat.Handler, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	groups := groupstore.New(db)
	presence := presencestore.New(db, testTTL)
	h := heartbeat.NewHandler(
		presence,
		livepresencestore.New(db, testTTL),
		membercount.New(groups, presence, time.Millisecond, zap.NewNop()),
		nil,
		zap.NewNop(),
	)
	return h, testutil.NewFixtures(t, db), db
}

func TestServeHeartbeat_UpsertsPresence(t *testing.T) {
	h, fx, db := newTestHandler(t)

	g := fx.CreateGroup("camping", time.Now().UTC())
	caller := testutil.TestCaller("Ana")

	rec := httptest.NewRecorder()
	h.ServeHeartbeat(rec, testutil.NewGroupRequest(t, http.MethodPost, "/", caller, g.ID,
		map[string]string{"name": "Ana", "photo": "a.jpg"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	active, err := presencestore.New(db, testTTL).IsActive(ctx, g.ID, caller.ID)
	if err != nil {
		t.Fatalf("IsActive() error: %v", err)
	}
	if !active {
		t.Error("heartbeat should leave the caller active")
	}
}

func TestServeHeartbeat_SanitizesDisplayFields(t *testing.T) {
	h, fx, db := newTestHandler(t)

	g := fx.CreateGroup("camping", time.Now().UTC())
	caller := testutil.TestCaller("Ana")

	rec := httptest.NewRecorder()
	h.ServeHeartbeat(rec, testutil.NewGroupRequest(t, http.MethodPost, "/", caller, g.ID,
		map[string]string{"name": `<script>alert(1)</script>Ana`}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	recs, err := presencestore.New(db, testTTL).ListActive(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListActive() error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0].Name != "Ana" {
		t.Errorf("stored name = %q, want markup stripped", recs[0].Name)
	}
}

func TestServeHeartbeat_RefreshesMemberCount(t *testing.T) {
	h, fx, db := newTestHandler(t)

	g := fx.CreateGroup("camping", time.Now().UTC())
	caller := testutil.TestCaller("Ana")

	rec := httptest.NewRecorder()
	h.ServeHeartbeat(rec, testutil.NewGroupRequest(t, http.MethodPost, "/", caller, g.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, err := groupstore.New(db).GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.MembersCount != 1 {
		t.Errorf("members_count = %d, want 1", got.MembersCount)
	}
}

func TestServeHeartbeat_InvalidGroupID(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := testutil.NewRequest(t, http.MethodPost, "/", nil)
	req = auth.WithTestCaller(req, testutil.TestCaller("Ana"))
	req = testutil.WithChiURLParam(req, "groupID", "not-an-objectid")

	rec := httptest.NewRecorder()
	h.ServeHeartbeat(rec, req)

	if rec.Code != apierror.HTTPStatus(apierror.CodeInvalidArgument) {
		t.Errorf("status = %d, want %d", rec.Code, apierror.HTTPStatus(apierror.CodeInvalidArgument))
	}
}

func TestServeHeartbeat_RateLimitSheds(t *testing.T) {
	h, fx, db := newTestHandler(t)
	h.Limiter = ratelimit.New(1, time.Minute)

	g := fx.CreateGroup("camping", time.Now().UTC())
	caller := testutil.TestCaller("Ana")

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHeartbeat(rec, testutil.NewGroupRequest(t, http.MethodPost, "/", caller, g.ID, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("beat %d: status = %d, shed beats still answer ok", i, rec.Code)
		}
	}

	// Only the first beat reached the store path; the rest were shed
	// silently. The record exists either way.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := presencestore.New(db, testTTL).CountActive(ctx, g.ID)
	if err != nil {
		t.Fatalf("CountActive() error: %v", err)
	}
	if n != 1 {
		t.Errorf("active records = %d, want 1", n)
	}
}

func TestServeLeave_RemovesRecords(t *testing.T) {
	h, fx, db := newTestHandler(t)

	now := time.Now().UTC()
	g := fx.CreateGroup("camping", now)
	caller := testutil.TestCaller("Ana")
	fx.CreatePresence(g.ID, caller.ID, now)
	fx.CreateLivePresence(g.ID, caller.ID, "host", now)

	rec := httptest.NewRecorder()
	h.ServeLeave(rec, testutil.NewGroupRequest(t, http.MethodDelete, "/", caller, g.ID, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	active, err := presencestore.New(db, testTTL).IsActive(ctx, g.ID, caller.ID)
	if err != nil {
		t.Fatalf("IsActive() error: %v", err)
	}
	if active {
		t.Error("presence record should be gone after leave")
	}

	isHost, err := livepresencestore.New(db, testTTL).IsActiveHost(ctx, g.ID, caller.ID)
	if err != nil {
		t.Fatalf("IsActiveHost() error: %v", err)
	}
	if isHost {
		t.Error("live-presence record should be gone after leave")
	}
}

func TestServeHeartbeat_Unauthenticated(t *testing.T) {
	h, fx, _ := newTestHandler(t)

	g := fx.CreateGroup("camping", time.Now().UTC())

	req := testutil.NewRequest(t, http.MethodPost, "/", nil)
	req = testutil.WithChiURLParam(req, "groupID", g.ID.Hex())

	rec := httptest.NewRecorder()
	h.ServeHeartbeat(rec, req)

	if rec.Code != apierror.HTTPStatus(apierror.CodeUnauthenticated) {
		t.Errorf("status = %d, want %d", rec.Code, apierror.HTTPStatus(apierror.CodeUnauthenticated))
	}
}
