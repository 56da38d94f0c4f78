package livepresencestore_test

import (
	"testing"
	"time"

	livepresencestore "github.com/huddlehq/huddle/internal/app/store/livepresence"
	"github.com/huddlehq/huddle/internal/domain/models"
	"github.com/huddlehq/huddle/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testTTL = 2 * time.Minute

func newTestStore(t *testing.T) (*livepresencestore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return livepresencestore.New(db, testTTL), testutil.NewFixtures(t, db)
}

func TestActiveHosts_FiltersRoleAndWindow(t *testing.T) {
	store, fx := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	now := time.Now().UTC()

	fx.CreateLivePresence(groupID, "host-fresh", models.RoleHost, now)
	fx.CreateLivePresence(groupID, "host-expired", models.RoleHost, now.Add(-testTTL).Add(-time.Second))
	fx.CreateLivePresence(groupID, "viewer", models.RoleViewer, now)

	hosts, err := store.ActiveHosts(ctx, groupID, "")
	if err != nil {
		t.Fatalf("ActiveHosts() error: %v", err)
	}
	if len(hosts) != 1 {
		t.Fatalf("hosts = %d, want 1", len(hosts))
	}
	if hosts[0].UserID != "host-fresh" {
		t.Errorf("host = %q, want host-fresh", hosts[0].UserID)
	}
}

func TestActiveHosts_Exclude(t *testing.T) {
	store, fx := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	now := time.Now().UTC()

	fx.CreateLivePresence(groupID, "host-1", models.RoleHost, now)
	fx.CreateLivePresence(groupID, "host-2", models.RoleHost, now)

	hosts, err := store.ActiveHosts(ctx, groupID, "host-1")
	if err != nil {
		t.Fatalf("ActiveHosts() error: %v", err)
	}
	if len(hosts) != 1 || hosts[0].UserID != "host-2" {
		t.Fatalf("excluded listing = %+v, want only host-2", hosts)
	}
}

func TestIsActiveHost(t *testing.T) {
	store, fx := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	now := time.Now().UTC()

	fx.CreateLivePresence(groupID, "host-1", models.RoleHost, now)
	fx.CreateLivePresence(groupID, "viewer-1", models.RoleViewer, now)
	fx.CreateLivePresence(groupID, "host-old", models.RoleHost, now.Add(-time.Hour))

	cases := []struct {
		userID string
		want   bool
	}{
		{"host-1", true},
		{"viewer-1", false},
		{"host-old", false},
		{"stranger", false},
	}
	for _, tc := range cases {
		got, err := store.IsActiveHost(ctx, groupID, tc.userID)
		if err != nil {
			t.Fatalf("IsActiveHost(%s) error: %v", tc.userID, err)
		}
		if got != tc.want {
			t.Errorf("IsActiveHost(%s) = %v, want %v", tc.userID, got, tc.want)
		}
	}
}

func TestHeartbeat_DefaultsToHostRole(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()

	if err := store.Heartbeat(ctx, groupID, "u1", "", "", ""); err != nil {
		t.Fatalf("Heartbeat() error: %v", err)
	}

	isHost, err := store.IsActiveHost(ctx, groupID, "u1")
	if err != nil {
		t.Fatalf("IsActiveHost() error: %v", err)
	}
	if !isHost {
		t.Error("empty role should default to host")
	}
}

func TestHeartbeat_RoleChangeOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()

	if err := store.Heartbeat(ctx, groupID, "u1", "", "", models.RoleHost); err != nil {
		t.Fatalf("Heartbeat() error: %v", err)
	}
	if err := store.Heartbeat(ctx, groupID, "u1", "", "", models.RoleViewer); err != nil {
		t.Fatalf("second Heartbeat() error: %v", err)
	}

	isHost, err := store.IsActiveHost(ctx, groupID, "u1")
	if err != nil {
		t.Fatalf("IsActiveHost() error: %v", err)
	}
	if isHost {
		t.Error("demoted participant should no longer count as host")
	}
}
