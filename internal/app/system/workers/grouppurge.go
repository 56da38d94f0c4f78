// internal/app/system/workers/grouppurge.go
package workers

import (
	"context"
	"sync"
	"time"

	chatstore "github.com/huddlehq/huddle/internal/app/store/chat"
	groupstore "github.com/huddlehq/huddle/internal/app/store/groups"
	livepresencestore "github.com/huddlehq/huddle/internal/app/store/livepresence"
	presencestore "github.com/huddlehq/huddle/internal/app/store/presence"
	"github.com/huddlehq/huddle/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// GroupLifecycleReaper deletes groups that have gone quiet for the
// retention window, cascading through all nested chat and presence data.
//
// Two safeguards keep this conservative:
//   - a candidate's updated_at being stale is re-checked against recent
//     presence activity inside a shorter guard window before anything
//     is deleted, and
//   - the group document itself is deleted last, so a crashed or
//     partial purge leaves a candidate the next sweep finds again.
type GroupLifecycleReaper struct {
	groups       *groupstore.Store
	presence     *presencestore.Store
	livePresence *livepresencestore.Store
	chat         *chatstore.Store
	log          *zap.Logger

	interval    time.Duration
	retention   time.Duration
	guardWindow time.Duration
	firstDelay  time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewGroupLifecycleReaper creates the purge worker.
//
// Parameters:
//   - interval: how often to sweep (e.g. 24 hours)
//   - retention: how long a group may sit untouched before it becomes a
//     purge candidate (e.g. 1 hour of no updated_at movement)
//   - guardWindow: recent-presence window that vetoes deletion (e.g. 10
//     minutes)
//   - firstDelay: delay before the first sweep, used to pin the daily
//     run to a fixed local time
func NewGroupLifecycleReaper(
	groups *groupstore.Store,
	presence *presencestore.Store,
	livePresence *livepresencestore.Store,
	chat *chatstore.Store,
	logger *zap.Logger,
	interval, retention, guardWindow, firstDelay time.Duration,
) *GroupLifecycleReaper {
	return &GroupLifecycleReaper{
		groups:       groups,
		presence:     presence,
		livePresence: livePresence,
		chat:         chat,
		log:          logger,
		interval:     interval,
		retention:    retention,
		guardWindow:  guardWindow,
		firstDelay:   firstDelay,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the purge loop.
func (w *GroupLifecycleReaper) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("group lifecycle reaper started",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention),
		zap.Duration("guard_window", w.guardWindow),
		zap.Duration("first_delay", w.firstDelay))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *GroupLifecycleReaper) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("group lifecycle reaper stopped")
}

func (w *GroupLifecycleReaper) run() {
	defer w.wg.Done()

	first := time.NewTimer(w.firstDelay)
	defer first.Stop()

	select {
	case <-w.stopCh:
		return
	case <-first.C:
		w.sweep()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *GroupLifecycleReaper) sweep() {
	listCtx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	candidates, err := w.groups.ListIdleSince(listCtx, time.Now().UTC().Add(-w.retention))
	cancel()
	if err != nil {
		w.log.Error("lifecycle sweep: list idle groups failed", zap.Error(err))
		return
	}

	purged := 0
	for _, g := range candidates {
		select {
		case <-w.stopCh:
			return
		default:
		}

		ok, err := w.purgeGroup(g.ID)
		if err != nil {
			w.log.Warn("lifecycle sweep: purge failed",
				zap.String("group_id", g.ID.Hex()),
				zap.Error(err))
			continue
		}
		if ok {
			purged++
		}
	}

	if purged > 0 {
		w.log.Info("purged idle groups",
			zap.Int("count", purged),
			zap.Int("candidates", len(candidates)))
	}
}

// purgeGroup deletes one candidate after the guard re-check. Returns
// false when the guard vetoed the deletion.
func (w *GroupLifecycleReaper) purgeGroup(oid primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	// A stale updated_at is only a hint. Any heartbeat inside the guard
	// window means the group is alive and must be kept.
	alive, err := w.presence.AnyActiveSince(ctx, oid, w.guardWindow)
	if err != nil {
		return false, err
	}
	if alive {
		w.log.Debug("lifecycle sweep: group has recent presence, skipping",
			zap.String("group_id", oid.Hex()))
		return false, nil
	}

	if err := w.chat.PurgeGroup(ctx, oid); err != nil {
		return false, err
	}
	if err := w.presence.PurgeGroup(ctx, oid); err != nil {
		return false, err
	}
	if err := w.livePresence.PurgeGroup(ctx, oid); err != nil {
		return false, err
	}
	// Group document last: its survival is what makes a partial purge
	// retryable.
	if err := w.groups.Delete(ctx, oid); err != nil {
		return false, err
	}
	return true, nil
}
