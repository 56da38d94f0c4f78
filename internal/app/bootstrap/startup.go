// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/huddlehq/huddle/internal/app/system/auth"
	"github.com/huddlehq/huddle/internal/app/system/workers"
	"go.uber.org/zap"
)

// runtime holds state created in Startup that BuildHandler and Shutdown
// need later in the lifecycle.
var runtime struct {
	verifier   *auth.JWKSVerifier
	staleSweep *workers.StaleSessionReaper
	groupPurge *workers.GroupLifecycleReaper
}

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
//
// Huddle warms the JWKS cache for bearer-token verification and starts
// the two background reapers: the stale live-session sweep and the
// daily group lifecycle purge.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	verifier, err := auth.NewJWKSVerifier(ctx, appCfg.AuthJWKSURL, appCfg.AuthIssuer, appCfg.AuthAudience, logger)
	if err != nil {
		return fmt.Errorf("jwks verifier: %w", err)
	}
	runtime.verifier = verifier

	runtime.staleSweep = workers.NewStaleSessionReaper(
		deps.Groups, deps.LivePresence, logger, appCfg.StaleSweepInterval)
	runtime.staleSweep.Start()

	runtime.groupPurge = workers.NewGroupLifecycleReaper(
		deps.Groups, deps.Presence, deps.LivePresence, deps.Chat, logger,
		24*time.Hour, appCfg.PurgeRetention, appCfg.PurgeGuardWindow,
		untilNextHour(time.Now(), appCfg.PurgeHour))
	runtime.groupPurge.Start()

	return nil
}

// untilNextHour returns the wait until the next occurrence of the given
// local hour. A run at exactly that hour waits a full day.
func untilNextHour(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
