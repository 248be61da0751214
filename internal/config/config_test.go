package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "ledger")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "ledger")
	t.Setenv("DB_SSLMODE", "disable")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadHappyPath(t *testing.T) {
	setBaseEnv(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HTTPAddr() != ":8080" {
		t.Fatalf("http addr = %q", c.HTTPAddr())
	}
	if !strings.Contains(c.PostgresDSN(), "dbname=ledger") {
		t.Fatalf("dsn = %q", c.PostgresDSN())
	}
	if c.RedisAddr() != "localhost:6379" {
		t.Fatalf("redis addr = %q", c.RedisAddr())
	}
}

func TestOptionalDefaultsSurviveLoad(t *testing.T) {
	// DB_SSLMODE and the JWT TTLs are optional outside production; the
	// defaults filled in by Validate must be visible on the returned Config.
	setBaseEnv(t)
	t.Setenv("DB_SSLMODE", "")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("access ttl = %v, want 15m", c.Auth.AccessTokenTTL)
	}
	if c.Auth.RefreshTokenTTL != 30*24*time.Hour {
		t.Fatalf("refresh ttl = %v, want 720h", c.Auth.RefreshTokenTTL)
	}
	if !strings.Contains(c.PostgresDSN(), "sslmode=disable") {
		t.Fatalf("dsn = %q, want sslmode=disable default", c.PostgresDSN())
	}
}

func TestFeeDefaults(t *testing.T) {
	setBaseEnv(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Fees.CommissionBps != 2000 {
		t.Fatalf("commission bps = %d", c.Fees.CommissionBps)
	}
	if c.Fees.WithdrawalFeeBps != 300 {
		t.Fatalf("withdrawal fee bps = %d", c.Fees.WithdrawalFeeBps)
	}
	if c.Fees.VerificationFee != 5_000 {
		t.Fatalf("verification fee = %d", c.Fees.VerificationFee)
	}
}

func TestFeeOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("COMMISSION_BPS", "1500")
	t.Setenv("MIN_WITHDRAWAL", "2500")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Fees.CommissionBps != 1500 {
		t.Fatalf("commission bps = %d", c.Fees.CommissionBps)
	}
	if c.Fees.MinWithdrawal != 2500 {
		t.Fatalf("min withdrawal = %d", c.Fees.MinWithdrawal)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	setBaseEnv(t)

	cases := map[string]string{
		"APP_ENV":        "weird",
		"COMMISSION_BPS": "10000",
		"DB_SSLMODE":     "maybe",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}

func TestMissingRequiredEnvFails(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing JWT_SECRET")
	}
}
