// internal/app/system/workers/stalesweep.go
package workers

import (
	"context"
	"sync"
	"time"

	groupstore "github.com/huddlehq/huddle/internal/app/store/groups"
	livepresencestore "github.com/huddlehq/huddle/internal/app/store/livepresence"
	"github.com/huddlehq/huddle/internal/app/system/timeouts"
	"github.com/huddlehq/huddle/internal/domain/models"
	"go.uber.org/zap"
)

// StaleSessionReaper is a background worker that force-ends live sessions
// whose host set has silently expired. Hosts that crash or lose
// connectivity never call stop; their live-presence records just age out
// of the activity window, and this sweep is what eventually turns the
// stored flag off. The token handler performs the same correction
// on-demand for viewers, so this is the backstop, not the fast path.
type StaleSessionReaper struct {
	groups       *groupstore.Store
	livePresence *livepresencestore.Store
	log          *zap.Logger
	interval     time.Duration
	stopCh       chan struct{}
	wg           sync.WaitGroup
}

// NewStaleSessionReaper creates the sweep worker.
//
// Parameters:
//   - groups, livePresence: the stores the sweep reads and corrects
//   - logger: zap logger
//   - interval: how often to sweep (e.g. 10 minutes)
func NewStaleSessionReaper(groups *groupstore.Store, livePresence *livepresencestore.Store, logger *zap.Logger, interval time.Duration) *StaleSessionReaper {
	return &StaleSessionReaper{
		groups:       groups,
		livePresence: livePresence,
		log:          logger,
		interval:     interval,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the sweep loop.
func (w *StaleSessionReaper) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("stale session reaper started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *StaleSessionReaper) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("stale session reaper stopped")
}

func (w *StaleSessionReaper) run() {
	defer w.wg.Done()

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

func (w *StaleSessionReaper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	groups, err := w.groups.ListLiveActive(ctx)
	if err != nil {
		w.log.Error("stale sweep: list live groups failed", zap.Error(err))
		return
	}

	ended := 0
	for _, g := range groups {
		// Re-derive the host set fresh for each group; the stored flag
		// is exactly what this sweep does not trust.
		hosts, err := w.livePresence.ActiveHosts(ctx, g.ID, "")
		if err != nil {
			w.log.Warn("stale sweep: host query failed",
				zap.String("group_id", g.ID.Hex()),
				zap.Error(err))
			continue
		}
		if len(hosts) > 0 {
			continue
		}

		if err := w.groups.EndLive(ctx, g.ID, models.LiveSessionEndedStale); err != nil {
			w.log.Warn("stale sweep: end session failed",
				zap.String("group_id", g.ID.Hex()),
				zap.Error(err))
			continue
		}
		ended++
	}

	if ended > 0 {
		w.log.Info("ended stale live sessions",
			zap.Int("count", ended),
			zap.Int("scanned", len(groups)))
	}
}
