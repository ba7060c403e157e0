package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegistryCreateGetDelete(t *testing.T) {
	registry := NewRegistry(func() *Orchestrator { return New(Deps{}) }, time.Minute, 10)

	id, created, err := registry.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == "" || created == nil {
		t.Fatalf("Create() = %q, %v", id, created)
	}

	got, err := registry.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != created {
		t.Fatal("Get() returned a different orchestrator")
	}

	if !registry.Delete(id) {
		t.Fatal("Delete() = false")
	}
	if registry.Delete(id) {
		t.Fatal("second Delete() = true")
	}
	if _, err := registry.Get(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get() after delete error = %v", err)
	}
}

func TestRegistryExpiresIdleSessions(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	registry := NewRegistry(func() *Orchestrator { return New(Deps{}) }, 10*time.Minute, 0)
	registry.now = func() time.Time { return now }

	idle, _, _ := registry.Create()
	active, _, _ := registry.Create()

	now = now.Add(6 * time.Minute)
	if _, err := registry.Get(active); err != nil {
		t.Fatalf("Get(active) error = %v", err)
	}

	now = now.Add(6 * time.Minute)
	if removed := registry.Sweep(); removed != 1 {
		t.Fatalf("Sweep() = %d, want 1", removed)
	}
	if _, err := registry.Get(idle); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get(idle) error = %v", err)
	}
	if registry.Len() != 1 {
		t.Fatalf("Len() = %d", registry.Len())
	}
}

func TestRegistryLimitsSessions(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	registry := NewRegistry(func() *Orchestrator { return New(Deps{}) }, time.Minute, 2)
	registry.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if _, _, err := registry.Create(); err != nil {
			t.Fatalf("Create() #%d error = %v", i+1, err)
		}
	}
	if _, _, err := registry.Create(); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("Create() error = %v, want ErrTooManySessions", err)
	}

	now = now.Add(2 * time.Minute)
	if _, _, err := registry.Create(); err != nil {
		t.Fatalf("Create() after expiry error = %v", err)
	}
}

func TestRegistryRunStopsWithContext(t *testing.T) {
	registry := NewRegistry(func() *Orchestrator { return New(Deps{}) }, time.Minute, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		registry.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
