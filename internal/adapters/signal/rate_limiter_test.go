package signal

import (
	"testing"
	"time"
)

func TestJoinRateLimiter(t *testing.T) {
	rl := NewJoinRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("attempt %d must be allowed", i+1)
		}
	}
	if rl.Allow("a") {
		t.Fatal("fourth attempt in the window must be blocked")
	}
	if !rl.Allow("b") {
		t.Fatal("sessions are limited independently")
	}
}

func TestJoinRateLimiterWindowExpiry(t *testing.T) {
	rl := NewJoinRateLimiter(1, 20*time.Millisecond)

	if !rl.Allow("a") {
		t.Fatal("first attempt must pass")
	}
	if rl.Allow("a") {
		t.Fatal("second immediate attempt must be blocked")
	}
	time.Sleep(30 * time.Millisecond)
	if !rl.Allow("a") {
		t.Fatal("attempt after the window must pass")
	}
}

func TestJoinRateLimiterDisabled(t *testing.T) {
	rl := NewJoinRateLimiter(0, time.Minute)
	for i := 0; i < 10; i++ {
		if !rl.Allow("a") {
			t.Fatal("zero limit disables limiting")
		}
	}
}
