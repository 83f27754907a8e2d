package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLimiterAllowsBurst(t *testing.T) {
	l := New(1, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("burst wait %d: %v", i, err)
		}
	}
}

func TestLimiterRespectsCancellation(t *testing.T) {
	l := New(0.001, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// first token is free; the second would take ~1000s
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	err := l.Wait(ctx)
	if err == nil {
		t.Fatal("expected error when context expires before next token")
	}
}

func TestNewDefaults(t *testing.T) {
	l := New(0, 0)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("expected defaulted limiter to allow a request: %v", err)
	}
}

func TestUnlimitedNeverBlocks(t *testing.T) {
	var u Unlimited
	for i := 0; i < 1000; i++ {
		if err := u.Wait(context.Background()); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
}

func TestUnlimitedPropagatesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var u Unlimited
	if err := u.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
