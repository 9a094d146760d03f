package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(5, time.Second)

	// Full burst is available up front
	for i := 0; i < 5; i++ {
		if !tb.Allow() {
			t.Errorf("Expected token %d to be available", i+1)
		}
	}

	// Exhausted until the refill period passes
	if tb.Allow() {
		t.Error("Expected no more tokens to be available")
	}

	time.Sleep(time.Second + 100*time.Millisecond)
	if !tb.Allow() {
		t.Error("Expected tokens to be refilled after waiting")
	}

	tb.tokens = 0
	tb.Reset()
	if tb.tokens != tb.capacity {
		t.Error("Expected tokens to be reset to capacity")
	}
}

func TestTokenBucketWait(t *testing.T) {
	tb := NewTokenBucket(1, 200*time.Millisecond)

	if !tb.Allow() {
		t.Fatal("Expected the first token to be available")
	}

	start := time.Now()
	tb.Wait()
	elapsed := time.Since(start)

	if elapsed < 100*time.Millisecond {
		t.Errorf("Expected Wait to block until refill, returned after %v", elapsed)
	}
}

func TestTokenBucketPacing(t *testing.T) {
	// The scrape cadence: a burst of IDs back to back, then a pause
	tb := NewTokenBucket(10, 300*time.Millisecond)

	allowed := 0
	for i := 0; i < 15; i++ {
		if tb.Allow() {
			allowed++
		}
	}
	if allowed != 10 {
		t.Errorf("Expected exactly the burst capacity (10) allowed, got %d", allowed)
	}
}
