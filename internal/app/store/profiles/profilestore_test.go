package profilestore_test

import (
	"testing"

	profilestore "github.com/huddlehq/huddle/internal/app/store/profiles"
	"github.com/huddlehq/huddle/internal/testutil"
)

func TestGetByUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := profilestore.New(db)

	fx.CreateProfile("u1", "Ana", "a.jpg")

	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.GetByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByUserID() error: %v", err)
	}
	if p.DisplayName != "Ana" || p.Photo != "a.jpg" {
		t.Errorf("profile = %+v, want Ana/a.jpg", p)
	}

	if _, err := store.GetByUserID(ctx, "missing"); err != profilestore.ErrNotFound {
		t.Errorf("missing profile error = %v, want ErrNotFound", err)
	}
}
