// internal/app/system/membercount/membercount.go

// Package membercount maintains the denormalized members_count cache on
// group documents.
//
// The cache is recomputed lazily on heartbeat traffic, guarded by a
// short refresh window, rather than on every presence write: large
// groups heartbeat constantly and a write-per-heartbeat recompute would
// amplify that load for no correctness gain. Authorization never reads
// this field — it always re-derives membership from the presence
// collection.
package membercount

import (
	"context"
	"time"

	groupstore "github.com/huddlehq/huddle/internal/app/store/groups"
	presencestore "github.com/huddlehq/huddle/internal/app/store/presence"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultCacheTTL is how long a recomputed count is trusted before the
// next heartbeat triggers another recompute.
const DefaultCacheTTL = 30 * time.Second

// Refresher recomputes the cached member count on demand.
type Refresher struct {
	groups   *groupstore.Store
	presence *presencestore.Store
	cacheTTL time.Duration
	log      *zap.Logger
}

func New(groups *groupstore.Store, presence *presencestore.Store, cacheTTL time.Duration, logger *zap.Logger) *Refresher {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Refresher{groups: groups, presence: presence, cacheTTL: cacheTTL, log: logger}
}

// Refresh recomputes members_count for the group if the cached value has
// aged out. Concurrent refreshers race benignly: the conditional write
// lets one win and the rest drop their counts.
func (r *Refresher) Refresh(ctx context.Context, groupID primitive.ObjectID) error {
	refreshedAt, err := r.groups.MembersCountRefreshedAt(ctx, groupID)
	if err != nil {
		return err
	}

	staleBefore := time.Now().UTC().Add(-r.cacheTTL)
	if refreshedAt.After(staleBefore) {
		return nil
	}

	count, err := r.presence.CountActive(ctx, groupID)
	if err != nil {
		return err
	}

	won, err := r.groups.SetMembersCountIfStale(ctx, groupID, int(count), staleBefore)
	if err != nil {
		return err
	}
	if won {
		r.log.Debug("refreshed member count",
			zap.String("group_id", groupID.Hex()),
			zap.Int64("count", count))
	}
	return nil
}

// ForceRefresh recomputes and writes the count unconditionally. Used on
// explicit leave, where the count is known to have just changed.
func (r *Refresher) ForceRefresh(ctx context.Context, groupID primitive.ObjectID) error {
	count, err := r.presence.CountActive(ctx, groupID)
	if err != nil {
		return err
	}
	return r.groups.SetMembersCount(ctx, groupID, int(count))
}
