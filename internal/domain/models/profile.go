// internal/domain/models/profile.go
package models

import "time"

// Profile is the canonical display identity kept by the profile subsystem.
// This service only reads it, to resolve the display name and photo placed
// on minted media grants; the document is created and maintained elsewhere.
type Profile struct {
	UserID      string    `bson:"_id" json:"user_id"`
	DisplayName string    `bson:"display_name,omitempty" json:"display_name,omitempty"`
	Photo       string    `bson:"photo,omitempty" json:"photo,omitempty"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
