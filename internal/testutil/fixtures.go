package testutil

import (
	"testing"
	"time"

	"github.com/huddlehq/huddle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateGroup inserts a group with no live session. updatedAt controls
// purge eligibility in lifecycle tests.
func (f *Fixtures) CreateGroup(name string, updatedAt time.Time) models.Group {
	f.t.Helper()
	ctx, cancel := TestContext()
	defer cancel()

	g := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("insert group: %v", err)
	}
	return g
}

// CreateLiveGroup inserts a group whose live session is active with the
// given host and start time.
func (f *Fixtures) CreateLiveGroup(name, hostID string, startedAt time.Time) models.Group {
	f.t.Helper()
	ctx, cancel := TestContext()
	defer cancel()

	g := models.Group{
		ID:   primitive.NewObjectID(),
		Name: name,
		Live: models.LiveSession{
			Active:    true,
			HostID:    hostID,
			StartedAt: &startedAt,
		},
		CreatedAt: startedAt,
		UpdatedAt: startedAt,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("insert live group: %v", err)
	}
	return g
}

// CreatePresence inserts a presence record with the given last-beat time.
func (f *Fixtures) CreatePresence(groupID primitive.ObjectID, userID string, activeAt time.Time) {
	f.t.Helper()
	ctx, cancel := TestContext()
	defer cancel()

	rec := models.PresenceRecord{
		GroupID:  groupID,
		UserID:   userID,
		ActiveAt: activeAt,
	}
	if _, err := f.db.Collection("presence").InsertOne(ctx, rec); err != nil {
		f.t.Fatalf("insert presence: %v", err)
	}
}

// CreateLivePresence inserts a live participation record.
func (f *Fixtures) CreateLivePresence(groupID primitive.ObjectID, userID, role string, activeAt time.Time) {
	f.t.Helper()
	ctx, cancel := TestContext()
	defer cancel()

	rec := models.LivePresenceRecord{
		GroupID:  groupID,
		UserID:   userID,
		ActiveAt: activeAt,
		Role:     role,
	}
	if _, err := f.db.Collection("live_presence").InsertOne(ctx, rec); err != nil {
		f.t.Fatalf("insert live presence: %v", err)
	}
}

// CreateProfile inserts a user profile.
func (f *Fixtures) CreateProfile(userID, displayName, photo string) {
	f.t.Helper()
	ctx, cancel := TestContext()
	defer cancel()

	p := models.Profile{
		UserID:      userID,
		DisplayName: displayName,
		Photo:       photo,
		UpdatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("insert profile: %v", err)
	}
}

// CreateChatMessage inserts a bare chat message for purge-cascade tests.
func (f *Fixtures) CreateChatMessage(groupID primitive.ObjectID, userID, body string) {
	f.t.Helper()
	ctx, cancel := TestContext()
	defer cancel()

	doc := bson.M{
		"group_id":   groupID,
		"user_id":    userID,
		"body":       body,
		"created_at": time.Now().UTC(),
	}
	if _, err := f.db.Collection("messages").InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert message: %v", err)
	}
}

// CreateThread inserts a thread and one reply, returning the thread ID.
func (f *Fixtures) CreateThread(groupID primitive.ObjectID, userID string) primitive.ObjectID {
	f.t.Helper()
	ctx, cancel := TestContext()
	defer cancel()

	threadID := primitive.NewObjectID()
	thread := bson.M{
		"_id":        threadID,
		"group_id":   groupID,
		"user_id":    userID,
		"created_at": time.Now().UTC(),
	}
	if _, err := f.db.Collection("threads").InsertOne(ctx, thread); err != nil {
		f.t.Fatalf("insert thread: %v", err)
	}
	reply := bson.M{
		"thread_id":  threadID,
		"user_id":    userID,
		"body":       "reply",
		"created_at": time.Now().UTC(),
	}
	if _, err := f.db.Collection("thread_messages").InsertOne(ctx, reply); err != nil {
		f.t.Fatalf("insert thread message: %v", err)
	}
	return threadID
}

// Count returns the number of documents in a collection matching filter.
func (f *Fixtures) Count(collection string, filter bson.M) int64 {
	f.t.Helper()
	ctx, cancel := TestContext()
	defer cancel()

	n, err := f.db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		f.t.Fatalf("count %s: %v", collection, err)
	}
	return n
}
