package utils

import (
	"testing"
	"time"
)

func TestPoolConfigDefaults(t *testing.T) {
	got := PostgresPoolConfig{}.withDefaults()
	if got.MaxOpenConns <= 0 || got.MaxIdleConns <= 0 {
		t.Fatalf("conn defaults not applied: %+v", got)
	}
	if got.PingTimeout <= 0 || got.ConnMaxLifetime <= 0 {
		t.Fatalf("timeout defaults not applied: %+v", got)
	}
}

func TestPoolConfigKeepsExplicitValues(t *testing.T) {
	in := PostgresPoolConfig{MaxOpenConns: 5, PingTimeout: time.Second}
	got := in.withDefaults()
	if got.MaxOpenConns != 5 {
		t.Fatalf("MaxOpenConns = %d", got.MaxOpenConns)
	}
	if got.PingTimeout != time.Second {
		t.Fatalf("PingTimeout = %v", got.PingTimeout)
	}
}
