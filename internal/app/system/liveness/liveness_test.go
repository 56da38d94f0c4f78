package liveness_test

import (
	"testing"
	"time"

	"github.com/huddlehq/huddle/internal/app/system/liveness"
)

func TestIsActive_Boundaries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 2 * time.Minute

	tests := []struct {
		name     string
		activeAt time.Time
		want     bool
	}{
		{
			name:     "fresh heartbeat",
			activeAt: now,
			want:     true,
		},
		{
			name:     "inside window",
			activeAt: now.Add(-time.Minute),
			want:     true,
		},
		{
			name:     "exactly at TTL",
			activeAt: now.Add(-ttl),
			want:     true,
		},
		{
			name:     "one second past TTL",
			activeAt: now.Add(-ttl - time.Second),
			want:     false,
		},
		{
			name:     "long expired",
			activeAt: now.Add(-time.Hour),
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := liveness.IsActive(tt.activeAt, now, ttl); got != tt.want {
				t.Errorf("IsActive(%v) = %v, want %v", now.Sub(tt.activeAt), got, tt.want)
			}
		})
	}
}

func TestCutoff_DefaultTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Zero and negative TTLs fall back to the default window.
	for _, ttl := range []time.Duration{0, -time.Minute} {
		got := liveness.Cutoff(now, ttl)
		want := now.Add(-liveness.DefaultTTL)
		if !got.Equal(want) {
			t.Errorf("Cutoff(ttl=%v) = %v, want %v", ttl, got, want)
		}
	}
}

func TestCutoff_ExplicitTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := liveness.Cutoff(now, 5*time.Minute)
	want := now.Add(-5 * time.Minute)
	if !got.Equal(want) {
		t.Errorf("Cutoff = %v, want %v", got, want)
	}
}
