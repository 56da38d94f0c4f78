// internal/app/system/liveness/liveness.go

// Package liveness defines the shared activity-window predicate for
// presence records.
//
// Liveness is entirely TTL-driven: a record is active while its last
// heartbeat falls inside the window, and silently lapses once it falls
// outside. Nothing fires on expiry; expired records stay in their
// collections and are merely excluded from active queries until they are
// overwritten by a later heartbeat or removed by the lifecycle sweep.
package liveness

import "time"

// DefaultTTL is the activity window: the span after a heartbeat during
// which a presence record counts as live. Clients heartbeat roughly once
// a minute, so the window tolerates one lost beat.
const DefaultTTL = 2 * time.Minute

// Cutoff returns the oldest ActiveAt that still counts as active at the
// given instant. Records with ActiveAt >= Cutoff are live.
func Cutoff(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return now.Add(-ttl)
}

// IsActive reports whether a record heartbeated at activeAt is still live
// at now. The boundary is inclusive: a record exactly TTL old is active.
func IsActive(activeAt, now time.Time, ttl time.Duration) bool {
	return !activeAt.Before(Cutoff(now, ttl))
}
