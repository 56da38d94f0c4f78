// internal/domain/models/presence.go
package models

// Terminology: Identifiers
//   - GroupID: the MongoDB ObjectID (_id) of a group document
//   - UserID: the subject (sub) claim of the caller's verified identity
//     token; user identity is owned by the external auth subsystem

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Live-presence roles.
const (
	RoleHost   = "host"
	RoleViewer = "viewer"
)

// PresenceRecord is a user's group-membership liveness record, refreshed
// by the client's periodic heartbeat. A record counts as active only while
// its ActiveAt falls inside the activity window; expired records are left
// in place and simply excluded from active queries.
type PresenceRecord struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	GroupID  primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserID   string             `bson:"user_id" json:"user_id"`
	ActiveAt time.Time          `bson:"active_at" json:"active_at"`
	Name     string             `bson:"name,omitempty" json:"name,omitempty"`
	Photo    string             `bson:"photo,omitempty" json:"photo,omitempty"`
}

// LivePresenceRecord is a user's live-session participation record. The
// set of currently active hosts for a group is always the result of a
// recency-filtered query over these records with Role == RoleHost.
type LivePresenceRecord struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	GroupID  primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserID   string             `bson:"user_id" json:"user_id"`
	ActiveAt time.Time          `bson:"active_at" json:"active_at"`
	Name     string             `bson:"name,omitempty" json:"name,omitempty"`
	Photo    string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Role     string             `bson:"role" json:"role"`
}
