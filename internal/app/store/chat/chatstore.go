// internal/app/store/chat/chatstore.go
package chatstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store handles the chat-side collections of a group. Message CRUD lives
// in the messaging backend; this service only needs the purge fan-out
// when a group is reclaimed.
type Store struct {
	messages       *mongo.Collection
	liveMessages   *mongo.Collection
	threads        *mongo.Collection
	threadMessages *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		messages:       db.Collection("messages"),
		liveMessages:   db.Collection("live_messages"),
		threads:        db.Collection("threads"),
		threadMessages: db.Collection("thread_messages"),
	}
}

// PurgeGroup deletes a group's chat fan-out: messages, live-session
// messages, private threads and their nested messages. Not atomic across
// collections — the lifecycle sweep deletes the group document last, so
// a crash mid-purge leaves a group the next sweep finds and finishes.
func (s *Store) PurgeGroup(ctx context.Context, groupID primitive.ObjectID) error {
	if _, err := s.messages.DeleteMany(ctx, bson.M{"group_id": groupID}); err != nil {
		return err
	}
	if _, err := s.liveMessages.DeleteMany(ctx, bson.M{"group_id": groupID}); err != nil {
		return err
	}

	// Thread messages hang off thread ids, so collect those first.
	threadIDs, err := s.threadIDs(ctx, groupID)
	if err != nil {
		return err
	}
	if len(threadIDs) > 0 {
		if _, err := s.threadMessages.DeleteMany(ctx, bson.M{"thread_id": bson.M{"$in": threadIDs}}); err != nil {
			return err
		}
	}
	if _, err := s.threads.DeleteMany(ctx, bson.M{"group_id": groupID}); err != nil {
		return err
	}
	return nil
}

func (s *Store) threadIDs(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.threads.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// EnsureIndexes creates the indexes the purge fan-out scans by.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	byGroup := bson.D{{Key: "group_id", Value: 1}}

	if _, err := s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: byGroup, Options: options.Index().SetName("idx_messages_group"),
	}); err != nil {
		return err
	}
	if _, err := s.liveMessages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: byGroup, Options: options.Index().SetName("idx_live_messages_group"),
	}); err != nil {
		return err
	}
	if _, err := s.threads.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: byGroup, Options: options.Index().SetName("idx_threads_group"),
	}); err != nil {
		return err
	}
	if _, err := s.threadMessages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "thread_id", Value: 1}},
		Options: options.Index().SetName("idx_thread_messages_thread"),
	}); err != nil {
		return err
	}
	return nil
}
