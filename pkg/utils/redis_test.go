package utils

import (
	"context"
	"testing"
	"time"
)

func TestAcquireConcurrencyCapValidatesArgs(t *testing.T) {
	ctx := context.Background()
	if _, err := AcquireConcurrencyCap(ctx, nil, "k", 1, time.Second); err == nil {
		t.Fatalf("nil client accepted")
	}
}

func TestReleaseConcurrencyCapValidatesArgs(t *testing.T) {
	if err := ReleaseConcurrencyCap(context.Background(), nil, "k"); err == nil {
		t.Fatalf("nil client accepted")
	}
}

func TestRedisConfigDefaults(t *testing.T) {
	got := RedisConfig{Addr: "localhost:6379"}.withDefaults()
	if got.DialTimeout <= 0 || got.PoolSize <= 0 || got.PingTimeout <= 0 {
		t.Fatalf("defaults not applied: %+v", got)
	}
}
