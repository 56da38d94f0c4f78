// internal/app/system/auth/verifier.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// idTokenClaims are the claims this service reads from the auth
// subsystem's ID tokens. Name and picture are optional display claims.
type idTokenClaims struct {
	jwt.RegisteredClaims
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// JWKSVerifier validates RS256 ID tokens against the auth subsystem's
// published JWKS, refreshing keys in the background.
type JWKSVerifier struct {
	jwks     *keyfunc.JWKS
	issuer   string
	audience string
}

// NewJWKSVerifier fetches the JWKS from jwksURL and returns a verifier
// pinned to the given issuer and, if non-empty, audience.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer, audience string, logger *zap.Logger) (*JWKSVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   5 * time.Minute,
		RefreshRateLimit:  1 * time.Minute,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("JWKS refresh failed", zap.Error(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch JWKS: %w", err)
	}

	logger.Info("JWKS verifier ready",
		zap.String("jwks_url", jwksURL),
		zap.String("issuer", issuer))

	return &JWKSVerifier{jwks: jwks, issuer: issuer, audience: audience}, nil
}

// Verify parses and validates a raw ID token, returning the caller it
// identifies.
func (v *JWKSVerifier) Verify(raw string) (*Caller, error) {
	claims := &idTokenClaims{}

	parseOpts := []jwt.ParserOption{
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		parseOpts = append(parseOpts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(raw, claims, v.jwks.Keyfunc, parseOpts...)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	return &Caller{
		ID:    claims.Subject,
		Name:  claims.Name,
		Photo: claims.Picture,
	}, nil
}

// Close stops the background JWKS refresh.
func (v *JWKSVerifier) Close() {
	v.jwks.EndBackground()
}
