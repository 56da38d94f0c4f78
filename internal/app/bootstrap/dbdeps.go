// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	chatstore "github.com/huddlehq/huddle/internal/app/store/chat"
	groupstore "github.com/huddlehq/huddle/internal/app/store/groups"
	livepresencestore "github.com/huddlehq/huddle/internal/app/store/livepresence"
	presencestore "github.com/huddlehq/huddle/internal/app/store/presence"
	profilestore "github.com/huddlehq/huddle/internal/app/store/profiles"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// The stores are built once in ConnectDB and shared by the HTTP
// handlers and the background reapers.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Groups       *groupstore.Store
	Presence     *presencestore.Store
	LivePresence *livepresencestore.Store
	Profiles     *profilestore.Store
	Chat         *chatstore.Store
}
