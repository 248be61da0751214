package audit

import (
	"context"
	"testing"
)

func TestAppendFillsDefaults(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	err := svc.LogRequestDecision(context.Background(), "admin-1", "admin", "w-1", "r-1", "withdrawal approved")
	if err != nil {
		t.Fatalf("log: %v", err)
	}

	events := repo.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d", len(events))
	}
	e := events[0]
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("defaults not filled: %+v", e)
	}
	if e.Type != EventTypeRequestDecision || e.WalletID != "w-1" || e.RequestID != "r-1" {
		t.Fatalf("event = %+v", e)
	}
}

func TestAppendRejectsMissingType(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.Append(context.Background(), Event{}); err == nil {
		t.Fatalf("expected error for missing type")
	}
}

func TestFreezeEvent(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogFreeze(context.Background(), "admin-1", "admin", "w-1", "frozen: fraud review"); err != nil {
		t.Fatalf("log: %v", err)
	}
	if e := repo.Events()[0]; e.Type != EventTypeWalletFreeze {
		t.Fatalf("type = %s", e.Type)
	}
}
