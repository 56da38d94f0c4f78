package mediatoken_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/huddlehq/huddle/internal/app/system/mediatoken"
)

type parsedClaims struct {
	jwt.RegisteredClaims
	Name  string                `json:"name"`
	Video mediatoken.VideoGrant `json:"video"`
}

func mintAndParse(t *testing.T, m mediatoken.Minter, room, identity, name string, canPublish bool) parsedClaims {
	t.Helper()

	raw, err := m.Mint(room, identity, name, canPublish)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	claims := parsedClaims{}
	token, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (any, error) {
		return []byte(m.APISecret), nil
	})
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if !token.Valid {
		t.Fatal("minted token is not valid")
	}
	return claims
}

func TestMint_HostGrant(t *testing.T) {
	m := mediatoken.Minter{APIKey: "api-key", APISecret: "api-secret"}
	claims := mintAndParse(t, m, "group-1", "user-a", "Ada", true)

	if claims.Issuer != "api-key" {
		t.Errorf("iss = %q, want api-key", claims.Issuer)
	}
	if claims.Subject != "user-a" {
		t.Errorf("sub = %q, want user-a", claims.Subject)
	}
	if claims.ID == "" {
		t.Error("expected a jti")
	}
	if claims.Video.Room != "group-1" {
		t.Errorf("room = %q, want group-1", claims.Video.Room)
	}
	if !claims.Video.RoomJoin {
		t.Error("expected roomJoin=true")
	}
	if claims.Video.CanPublish == nil || !*claims.Video.CanPublish {
		t.Error("host grant must allow publish")
	}
	if claims.Video.CanSubscribe == nil || !*claims.Video.CanSubscribe {
		t.Error("every grant must allow subscribe")
	}
}

func TestMint_ViewerGrant(t *testing.T) {
	m := mediatoken.Minter{APIKey: "api-key", APISecret: "api-secret"}
	claims := mintAndParse(t, m, "group-1", "user-b", "Grace", false)

	if claims.Video.CanPublish == nil || *claims.Video.CanPublish {
		t.Error("viewer grant must not allow publish")
	}
	if claims.Video.CanSubscribe == nil || !*claims.Video.CanSubscribe {
		t.Error("viewer grant must allow subscribe")
	}
}

func TestMint_Expiry(t *testing.T) {
	m := mediatoken.Minter{APIKey: "api-key", APISecret: "api-secret", TTL: time.Hour}
	claims := mintAndParse(t, m, "group-1", "user-a", "", true)

	if claims.ExpiresAt == nil || claims.NotBefore == nil {
		t.Fatal("expected nbf and exp")
	}
	ttl := claims.ExpiresAt.Sub(claims.NotBefore.Time)
	if ttl != time.Hour {
		t.Errorf("grant lifetime = %v, want 1h", ttl)
	}
}

func TestMint_MissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		m    mediatoken.Minter
	}{
		{"no key", mediatoken.Minter{APISecret: "secret"}},
		{"no secret", mediatoken.Minter{APIKey: "key"}},
		{"neither", mediatoken.Minter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.m.Mint("room", "id", "", false); err != mediatoken.ErrConfigMissing {
				t.Errorf("expected ErrConfigMissing, got %v", err)
			}
		})
	}
}
