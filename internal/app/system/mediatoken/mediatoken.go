// internal/app/system/mediatoken/mediatoken.go

// Package mediatoken mints scoped credentials for the real-time media
// service. A grant authorizes one identity to join one room with explicit
// publish/subscribe rights; the client presents it to the media service
// out-of-band and this service never talks to that endpoint itself.
package mediatoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL bounds how long a minted grant stays presentable. Rejoining
// clients fetch a fresh grant, so this can stay short.
const DefaultTTL = 6 * time.Hour

// ErrConfigMissing is returned when the deployment lacks the media
// service key or secret.
var ErrConfigMissing = errors.New("media service credentials not configured")

// VideoGrant is the media service's room-scoped permission set.
type VideoGrant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   *bool  `json:"canPublish,omitempty"`
	CanSubscribe *bool  `json:"canSubscribe,omitempty"`
}

type grantClaims struct {
	jwt.RegisteredClaims
	Name  string     `json:"name,omitempty"`
	Video VideoGrant `json:"video"`
}

// Minter signs media grants with the deployment's API key pair.
type Minter struct {
	APIKey    string
	APISecret string
	TTL       time.Duration
}

// Mint returns a signed grant for identity to join room. canPublish
// distinguishes hosts from viewers; every grant can subscribe.
func (m Minter) Mint(room, identity, displayName string, canPublish bool) (string, error) {
	if m.APIKey == "" || m.APISecret == "" {
		return "", ErrConfigMissing
	}

	ttl := m.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now().UTC()
	subscribe := true

	claims := grantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.APIKey,
			Subject:   identity,
			ID:        uuid.NewString(),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name: displayName,
		Video: VideoGrant{
			Room:         room,
			RoomJoin:     true,
			CanPublish:   &canPublish,
			CanSubscribe: &subscribe,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.APISecret))
}
