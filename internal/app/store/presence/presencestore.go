// internal/app/store/presence/presencestore.go
package presencestore

import (
	"context"
	"time"

	"github.com/huddlehq/huddle/internal/app/system/liveness"
	"github.com/huddlehq/huddle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages group-membership presence records. One record per
// (group, user); heartbeats overwrite in place. Records are never deleted
// on expiry — "active" is a query-time predicate over active_at.
type Store struct {
	c   *mongo.Collection
	ttl time.Duration
}

// New creates a presence Store with the given activity window. A zero
// ttl uses liveness.DefaultTTL.
func New(db *mongo.Database, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = liveness.DefaultTTL
	}
	return &Store{c: db.Collection("presence"), ttl: ttl}
}

// Heartbeat upserts the caller's presence record, refreshing active_at
// and the display fields. Lost or out-of-order heartbeats are harmless;
// the record simply reflects the latest write to land.
func (s *Store) Heartbeat(ctx context.Context, groupID primitive.ObjectID, userID, name, photo string) error {
	now := time.Now().UTC()

	set := bson.M{"active_at": now}
	if name != "" {
		set["name"] = name
	}
	if photo != "" {
		set["photo"] = photo
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx,
		bson.M{"group_id": groupID, "user_id": userID},
		bson.M{"$set": set},
		opts,
	)
	return err
}

// IsActive reports whether the user has a presence record inside the
// activity window. This is the membership check behind every RPC.
func (s *Store) IsActive(ctx context.Context, groupID primitive.ObjectID, userID string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"group_id":  groupID,
		"user_id":   userID,
		"active_at": bson.M{"$gte": liveness.Cutoff(time.Now().UTC(), s.ttl)},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountActive returns the number of live presence records in the group.
// Feeds the members_count cache; never used for authorization.
func (s *Store) CountActive(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"group_id":  groupID,
		"active_at": bson.M{"$gte": liveness.Cutoff(time.Now().UTC(), s.ttl)},
	})
}

// AnyActiveSince reports whether the group has seen any heartbeat inside
// the given window. The lifecycle sweep uses this as its guard: a stale
// updated_at is not trusted while recent presence exists.
func (s *Store) AnyActiveSince(ctx context.Context, groupID primitive.ObjectID, window time.Duration) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"group_id":  groupID,
		"active_at": bson.M{"$gte": time.Now().UTC().Add(-window)},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListActive returns the live presence records for a group, most recent
// heartbeat first.
func (s *Store) ListActive(ctx context.Context, groupID primitive.ObjectID) ([]models.PresenceRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "active_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{
		"group_id":  groupID,
		"active_at": bson.M{"$gte": liveness.Cutoff(time.Now().UTC(), s.ttl)},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.PresenceRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Remove deletes the user's presence record (explicit leave). Best
// effort: a missed delete just ages out of the activity window.
func (s *Store) Remove(ctx context.Context, groupID primitive.ObjectID, userID string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
	return err
}

// PurgeGroup deletes every presence record for a group, as part of the
// lifecycle sweep's cascade.
func (s *Store) PurgeGroup(ctx context.Context, groupID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	return err
}

// EnsureIndexes creates the presence indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// One record per (group, user); heartbeats upsert against this.
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_presence_group_user").SetUnique(true),
		},
		// Active-window queries
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "active_at", Value: -1}},
			Options: options.Index().SetName("idx_presence_group_active"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
