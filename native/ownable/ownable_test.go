package ownable

import (
	"errors"
	"testing"

	"synthpool/storage"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(storage.NewState(storage.NewMemDB()))
}

func TestAssertOwner(t *testing.T) {
	registry := newRegistry(t)
	if err := registry.Initialize("alice"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := registry.AssertOwner("alice"); err != nil {
		t.Fatalf("expected owner to pass: %v", err)
	}
	if err := registry.AssertOwner("mallory"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTwoPhaseTransfer(t *testing.T) {
	registry := newRegistry(t)
	if err := registry.Initialize("alice"); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if err := registry.TransferOwnership("mallory", "bob"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-owner transfer should fail, got %v", err)
	}
	if err := registry.TransferOwnership("alice", "bob"); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	// Ownership does not change until the nominee accepts.
	owner, err := registry.Owner()
	if err != nil || owner != "alice" {
		t.Fatalf("owner = %q err = %v, want alice", owner, err)
	}

	if err := registry.AcceptOwnership("carol"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("wrong nominee should fail, got %v", err)
	}
	if err := registry.AcceptOwnership("bob"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	owner, err = registry.Owner()
	if err != nil || owner != "bob" {
		t.Fatalf("owner = %q err = %v, want bob", owner, err)
	}

	// A second accept must not re-trigger: pending was cleared.
	if err := registry.AcceptOwnership("bob"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("stale accept should fail, got %v", err)
	}
}

func TestUninitialisedRegistry(t *testing.T) {
	registry := newRegistry(t)
	if _, err := registry.Owner(); !errors.Is(err, ErrNotInitialised) {
		t.Fatalf("expected ErrNotInitialised, got %v", err)
	}
}
