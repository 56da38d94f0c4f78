// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP ports,
// TLS, logging level, and CORS. AppConfig is everything specific to the
// live-session coordinator: Mongo, identity verification, the media
// service key pair, and the presence/reaper timing knobs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max driver connection pool size
	MongoMinPoolSize uint64 // Min driver connection pool size

	// Identity-token verification (OIDC provider)
	AuthJWKSURL  string // JWKS endpoint of the identity provider
	AuthIssuer   string // Expected iss claim
	AuthAudience string // Expected aud claim (blank disables the check)

	// Media service grant minting
	MediaAPIKey    string        // Media service API key (grant issuer)
	MediaAPISecret string        // Media service API secret (grant signing key)
	MediaWSURL     string        // Media service endpoint handed to clients
	MediaTokenTTL  time.Duration // Lifetime of minted grants

	// Presence and caching
	PresenceTTL    time.Duration // Activity window for presence records
	MemberCountTTL time.Duration // Staleness bound for the cached member count

	// Background reapers
	StaleSweepInterval time.Duration // Stale-session sweep cadence
	PurgeHour          int           // Local hour of day for the lifecycle purge
	PurgeRetention     time.Duration // Idle time before a group is purge-eligible
	PurgeGuardWindow   time.Duration // Recent-presence window that vetoes a purge

	// Heartbeat shedding
	HeartbeatRateLimit  int           // Max heartbeats per caller per group per window
	HeartbeatRateWindow time.Duration // Rate-limit window
}
