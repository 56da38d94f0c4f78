// internal/app/store/livepresence/livepresencestore.go
package livepresencestore

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

// Store manages live-session participation records. The currently active
// host set for a group is always derived here with a recency filter — it
// is deliberately never cached anywhere as a single field, so every
// authorization decision sees fresh truth.
type Store struct {
	c   *mongo.Collection
	ttl time.Duration
}

// New creates a live-presence Store with the given activity window. A
// zero ttl uses liveness.DefaultTTL.
func New(db *mongo.Database, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = liveness.DefaultTTL
	}
	return &Store{c: db.Collection("live_presence"), ttl: ttl}
}

// Heartbeat upserts the caller's live-participation record. An empty
// role defaults to host, matching the client's broadcast heartbeat.
func (s *Store) Heartbeat(ctx context.Context, groupID primitive.ObjectID, userID, name, photo, role string) error {
	if role == "" {
		role = models.RoleHost
	}
	now := time.Now().UTC()

	set := bson.M{"active_at": now, "role": role}
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

// ActiveHosts returns the derived active-host set: host-role records with
// a heartbeat inside the activity window. exclude, if non-empty, filters
// out that user (a stopping host asking "does anyone else remain?").
func (s *Store) ActiveHosts(ctx context.Context, groupID primitive.ObjectID, exclude string) ([]models.LivePresenceRecord, error) {
	filter := bson.M{
		"group_id":  groupID,
		"role":      models.RoleHost,
		"active_at": bson.M{"$gte": liveness.Cutoff(time.Now().UTC(), s.ttl)},
	}
	if exclude != "" {
		filter["user_id"] = bson.M{"$ne": exclude}
	}

	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var hosts []models.LivePresenceRecord
	if err := cur.All(ctx, &hosts); err != nil {
		return nil, err
	}
	return hosts, nil
}

// IsActiveHost reports whether the user currently holds an active
// host-role record. Having held it beyond the activity window does not
// count.
func (s *Store) IsActiveHost(ctx context.Context, groupID primitive.ObjectID, userID string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"group_id":  groupID,
		"user_id":   userID,
		"role":      models.RoleHost,
		"active_at": bson.M{"$gte": liveness.Cutoff(time.Now().UTC(), s.ttl)},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Remove deletes the user's live-participation record (explicit leave).
func (s *Store) Remove(ctx context.Context, groupID primitive.ObjectID, userID string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
	return err
}

// PurgeGroup deletes every live-presence record for a group.
func (s *Store) PurgeGroup(ctx context.Context, groupID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	return err
}

// EnsureIndexes creates the live-presence indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_live_presence_group_user").SetUnique(true),
		},
		// Host-set derivation
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "role", Value: 1}, {Key: "active_at", Value: -1}},
			Options: options.Index().SetName("idx_live_presence_hosts"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
