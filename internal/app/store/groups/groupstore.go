// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/huddlehq/huddle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a group document does not exist.
var ErrNotFound = errors.New("group not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Group{}, ErrNotFound
		}
		return models.Group{}, err
	}
	return g, nil
}

// ActivateLive flips the group's live session on, recording the caller as
// the most recent host. The whole transition is a single atomic update on
// the group document so that two concurrent starters cannot both stamp
// started_at: if the session is already active the existing started_at is
// preserved and only the host display fields change (idempotent re-join).
// Residue from a previous session (ended_at, ended_reason) is cleared.
//
// Returns the session state as it was before the update, so the caller
// can tell a fresh start from a re-join. ErrNotFound if the group does
// not exist.
func (s *Store) ActivateLive(ctx context.Context, id primitive.ObjectID, hostID, hostName, hostPhoto string) (models.LiveSession, error) {
	now := time.Now().UTC()

	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"live.active":     true,
			"live.host_id":    hostID,
			"live.host_name":  hostName,
			"live.host_photo": hostPhoto,
			// Keep the running session's start time; stamp only on a
			// genuine inactive -> active transition.
			"live.started_at": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$live.active", true}},
				"$live.started_at",
				now,
			}},
			"live.ended_at":     "$$REMOVE",
			"live.ended_reason": "$$REMOVE",
			"updated_at":        now,
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before models.Group
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&before)
	if err == mongo.ErrNoDocuments {
		return models.LiveSession{}, ErrNotFound
	}
	if err != nil {
		return models.LiveSession{}, err
	}
	return before.Live, nil
}

// EndLive flips the group's live session off. An empty reason records a
// deliberate stop; models.LiveSessionEndedStale records a sweep or
// self-heal correction. The update is conditioned on live.active so a
// session that already ended is left untouched (racing enders converge
// on the same state).
func (s *Store) EndLive(ctx context.Context, id primitive.ObjectID, reason string) error {
	now := time.Now().UTC()

	set := bson.M{
		"live.active":   false,
		"live.ended_at": now,
		"updated_at":    now,
	}
	update := bson.M{"$set": set}
	if reason != "" {
		set["live.ended_reason"] = reason
	} else {
		update["$unset"] = bson.M{"live.ended_reason": ""}
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "live.active": true}, update)
	return err
}

// ListLiveActive returns every group whose stored live flag is on. The
// flag can run ahead of the derived host set, so callers re-check the
// host set before acting on it.
func (s *Store) ListLiveActive(ctx context.Context) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{"live.active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListIdleSince returns groups whose updated_at is older than cutoff,
// i.e. purge candidates. updated_at alone is a weak signal; the lifecycle
// sweep re-checks recent presence before deleting anything.
func (s *Store) ListIdleSince(ctx context.Context, cutoff time.Time) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{"updated_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// SetMembersCount writes the cached active-member count and its refresh
// stamp. The write also bumps updated_at: a refresh happens only on
// heartbeat traffic, so it doubles as the group's liveness signal for the
// lifecycle sweep.
func (s *Store) SetMembersCount(ctx context.Context, id primitive.ObjectID, count int) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"members_count":    count,
		"members_count_at": now,
		"updated_at":       now,
	}})
	return err
}

// MembersCountRefreshedAt returns the cache stamp of the member-count
// field without loading the whole document. Zero when never refreshed.
func (s *Store) MembersCountRefreshedAt(ctx context.Context, id primitive.ObjectID) (time.Time, error) {
	opts := options.FindOne().SetProjection(bson.M{"members_count_at": 1})

	var doc struct {
		MembersCountAt time.Time `bson:"members_count_at"`
	}
	err := s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return doc.MembersCountAt, nil
}

// SetMembersCountIfStale writes the count only if the cache stamp is
// still older than staleBefore, so concurrent refreshers elect a single
// writer instead of stampeding. Reports whether this call won the write.
func (s *Store) SetMembersCountIfStale(ctx context.Context, id primitive.ObjectID, count int, staleBefore time.Time) (bool, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id": id,
			// Missing stamp means never refreshed, which counts as stale.
			"$or": bson.A{
				bson.M{"members_count_at": bson.M{"$exists": false}},
				bson.M{"members_count_at": bson.M{"$lt": staleBefore}},
			},
		},
		bson.M{"$set": bson.M{
			"members_count":    count,
			"members_count_at": now,
			"updated_at":       now,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// Delete removes the group document itself. Callers must purge the
// group's nested collections first; the document is always deleted last
// so a partially purged group is still found by the next sweep.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// EnsureIndexes creates the indexes the coordinator queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Stale-session sweep scan
		{
			Keys:    bson.D{{Key: "live.active", Value: 1}},
			Options: options.Index().SetName("idx_groups_live_active"),
		},
		// Lifecycle sweep scan
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetName("idx_groups_updated"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
