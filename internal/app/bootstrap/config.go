// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/huddlehq/huddle/internal/app/system/liveness"
	"github.com/huddlehq/huddle/internal/app/system/mediatoken"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Huddle.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, auth_jwks_url, etc.
//   - Environment variables: HUDDLE_MONGO_URI, HUDDLE_AUTH_JWKS_URL, etc.
//   - Command-line flags: --mongo_uri, --auth_jwks_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "huddle", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Identity provider (bearer-token verification)
	{Name: "auth_jwks_url", Default: "", Desc: "JWKS endpoint of the identity provider"},
	{Name: "auth_issuer", Default: "", Desc: "Expected issuer of identity tokens"},
	{Name: "auth_audience", Default: "", Desc: "Expected audience of identity tokens (blank to skip)"},

	// Media service grant minting
	{Name: "media_api_key", Default: "", Desc: "Media service API key"},
	{Name: "media_api_secret", Default: "", Desc: "Media service API secret"},
	{Name: "media_ws_url", Default: "", Desc: "Media service URL handed to clients"},
	{Name: "media_token_ttl", Default: "6h", Desc: "Lifetime of minted media grants (e.g., 6h, 30m)"},

	// Presence and caching
	{Name: "presence_ttl", Default: "2m", Desc: "Heartbeat activity window (e.g., 2m, 90s)"},
	{Name: "member_count_ttl", Default: "30s", Desc: "Staleness bound for the cached member count"},

	// Background reapers
	{Name: "stale_sweep_interval", Default: "10m", Desc: "Stale live-session sweep cadence"},
	{Name: "purge_hour", Default: 4, Desc: "Local hour of day (0-23) for the daily group purge"},
	{Name: "purge_retention", Default: "1h", Desc: "Idle time before a group becomes purge-eligible"},
	{Name: "purge_guard_window", Default: "10m", Desc: "Recent-presence window that vetoes a purge"},

	// Heartbeat shedding
	{Name: "heartbeat_rate_limit", Default: 10, Desc: "Max heartbeats per caller per group per window"},
	{Name: "heartbeat_rate_window", Default: "1m", Desc: "Heartbeat rate-limit window"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, HUDDLE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "HUDDLE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		AuthJWKSURL:  appValues.String("auth_jwks_url"),
		AuthIssuer:   appValues.String("auth_issuer"),
		AuthAudience: appValues.String("auth_audience"),

		MediaAPIKey:    appValues.String("media_api_key"),
		MediaAPISecret: appValues.String("media_api_secret"),
		MediaWSURL:     appValues.String("media_ws_url"),
		MediaTokenTTL:  appValues.Duration("media_token_ttl", mediatoken.DefaultTTL),

		PresenceTTL:    appValues.Duration("presence_ttl", liveness.DefaultTTL),
		MemberCountTTL: appValues.Duration("member_count_ttl", 30*time.Second),

		StaleSweepInterval: appValues.Duration("stale_sweep_interval", 10*time.Minute),
		PurgeHour:          appValues.Int("purge_hour"),
		PurgeRetention:     appValues.Duration("purge_retention", time.Hour),
		PurgeGuardWindow:   appValues.Duration("purge_guard_window", 10*time.Minute),

		HeartbeatRateLimit:  appValues.Int("heartbeat_rate_limit"),
		HeartbeatRateWindow: appValues.Duration("heartbeat_rate_window", time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Huddle validates the MongoDB URI format and the required identity
// provider settings early, before attempting any connections. The media
// key pair is allowed to be absent: token minting then answers with a
// precondition failure instead of blocking the rest of the service.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.AuthJWKSURL == "" {
		return fmt.Errorf("auth_jwks_url is required")
	}
	if appCfg.AuthIssuer == "" {
		return fmt.Errorf("auth_issuer is required")
	}

	if appCfg.PurgeHour < 0 || appCfg.PurgeHour > 23 {
		return fmt.Errorf("purge_hour must be between 0 and 23, got %d", appCfg.PurgeHour)
	}
	if appCfg.PresenceTTL <= 0 {
		return fmt.Errorf("presence_ttl must be positive")
	}

	if appCfg.MediaAPIKey == "" || appCfg.MediaAPISecret == "" {
		logger.Warn("media service credentials not configured; token minting will be unavailable")
	}

	return nil
}
