package ratelimit_test

import (
	"testing"
	"time"

	"github.com/huddlehq/huddle/internal/app/system/ratelimit"
)

func TestAllow_WithinLimit(t *testing.T) {
	l := ratelimit.New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("user-1:group-1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("user-1:group-1") {
		t.Error("request over the limit should be rejected")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l := ratelimit.New(1, time.Minute)

	if !l.Allow("user-1:group-1") {
		t.Fatal("first key should be allowed")
	}
	if !l.Allow("user-2:group-1") {
		t.Error("a different key must not share the first key's window")
	}
	if l.Allow("user-1:group-1") {
		t.Error("exhausted key should be rejected")
	}
}

func TestAllow_WindowExpires(t *testing.T) {
	l := ratelimit.New(1, 20*time.Millisecond)

	if !l.Allow("user-1:group-1") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("user-1:group-1") {
		t.Fatal("second request in window should be rejected")
	}

	time.Sleep(30 * time.Millisecond)

	if !l.Allow("user-1:group-1") {
		t.Error("request after window expiry should be allowed")
	}
}
