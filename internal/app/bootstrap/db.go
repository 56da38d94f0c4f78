// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	chatstore "github.com/huddlehq/huddle/internal/app/store/chat"
	groupstore "github.com/huddlehq/huddle/internal/app/store/groups"
	livepresencestore "github.com/huddlehq/huddle/internal/app/store/livepresence"
	presencestore "github.com/huddlehq/huddle/internal/app/store/presence"
	profilestore "github.com/huddlehq/huddle/internal/app/store/profiles"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and builds the stores.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Groups:        groupstore.New(db),
		Presence:      presencestore.New(db, appCfg.PresenceTTL),
		LivePresence:  livepresencestore.New(db, appCfg.PresenceTTL),
		Profiles:      profilestore.New(db),
		Chat:          chatstore.New(db),
	}, nil
}

// EnsureSchema creates the indexes every store relies on. Index builds
// are idempotent, so this runs on every startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := deps.Groups.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("groups indexes: %w", err)
	}
	if err := deps.Presence.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("presence indexes: %w", err)
	}
	if err := deps.LivePresence.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("live presence indexes: %w", err)
	}
	if err := deps.Chat.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("chat indexes: %w", err)
	}
	logger.Info("mongo indexes ensured")
	return nil
}
