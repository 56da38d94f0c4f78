// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	healthfeature "github.com/huddlehq/huddle/internal/app/features/health"
	heartbeatfeature "github.com/huddlehq/huddle/internal/app/features/heartbeat"
	livefeature "github.com/huddlehq/huddle/internal/app/features/live"
	"github.com/huddlehq/huddle/internal/app/system/auth"
	"github.com/huddlehq/huddle/internal/app/system/mediatoken"
	"github.com/huddlehq/huddle/internal/app/system/membercount"
	"github.com/huddlehq/huddle/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. The router is JSON-only: the
// health endpoint for orchestrators, the presence heartbeat loop, and
// the live-session RPCs, all keyed by the group ObjectID in the path.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	authMgr := auth.NewManager(runtime.verifier, logger)

	memberCount := membercount.New(deps.Groups, deps.Presence, appCfg.MemberCountTTL, logger)
	limiter := ratelimit.New(appCfg.HeartbeatRateLimit, appCfg.HeartbeatRateWindow)

	minter := mediatoken.Minter{
		APIKey:    appCfg.MediaAPIKey,
		APISecret: appCfg.MediaAPISecret,
		TTL:       appCfg.MediaTokenTTL,
	}

	r := chi.NewRouter()

	// Global auth middleware: loads the verified caller into context.
	// Routes that require a caller enforce it with RequireSignedIn.
	r.Use(authMgr.LoadCaller)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	heartbeatHandler := heartbeatfeature.NewHandler(
		deps.Presence, deps.LivePresence, memberCount, limiter, logger)
	r.Mount("/api/groups/{groupID}/presence", heartbeatfeature.Routes(heartbeatHandler))

	liveHandler := livefeature.NewHandler(
		deps.Groups, deps.Presence, deps.LivePresence, deps.Profiles,
		minter, appCfg.MediaWSURL, logger)
	r.Mount("/api/groups/{groupID}/live", livefeature.Routes(liveHandler))

	return r, nil
}
