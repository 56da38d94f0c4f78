// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LiveSessionEndedStale marks a session ended by a sweep or a self-heal
// check because its host set silently expired. A deliberate stop leaves
// ended_reason unset.
const LiveSessionEndedStale = "stale"

// LiveSession is the embedded live-broadcast state on a group document.
//
// NOTE:
//   - HostID records the most recent starter for display purposes only.
//     The authoritative host set is always derived from live_presence
//     records within the activity window; it is never stored here.
type LiveSession struct {
	Active      bool       `bson:"active" json:"active"`
	HostID      string     `bson:"host_id,omitempty" json:"host_id,omitempty"`
	HostName    string     `bson:"host_name,omitempty" json:"host_name,omitempty"`
	HostPhoto   string     `bson:"host_photo,omitempty" json:"host_photo,omitempty"`
	StartedAt   *time.Time `bson:"started_at,omitempty" json:"started_at,omitempty"`
	EndedAt     *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
	EndedReason string     `bson:"ended_reason,omitempty" json:"ended_reason,omitempty"`
}

// Group represents a chat group and its embedded live-session state.
//
// MembersCount is a read-optimization cache of the active presence count.
// It may lag behind the presence collection between refreshes and must
// never be used for authorization decisions.
type Group struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Photo       string             `bson:"photo,omitempty" json:"photo,omitempty"`

	MembersCount   int       `bson:"members_count" json:"members_count"`
	MembersCountAt time.Time `bson:"members_count_at,omitempty" json:"-"`

	Live LiveSession `bson:"live" json:"live"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
