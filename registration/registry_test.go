// FILE: registration/registry_test.go
package registration

import (
	"testing"
	"time"
)

func TestRegisterAccountAndStrategy(t *testing.T) {
	at := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	var events []AuditEvent
	r := NewRegistry(func(ev AuditEvent) { events = append(events, ev) }, nil)

	info, err := r.RegisterAccount("acct1", "INSTITUTIONAL", "Jane Doe", "jane@example.com", nil, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", info.Status)
	}

	if _, err := r.RegisterAccount("acct1", "INSTITUTIONAL", "Jane Doe", "jane@example.com", nil, at); err == nil {
		t.Fatalf("expected error re-registering an existing account")
	}

	reg, err := r.RegisterStrategy("acct1", "s1", "MOMENTUM", "", "", "", "codehash", 2, 1000, 50, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Version != "1.0.0" {
		t.Fatalf("expected default version 1.0.0, got %s", reg.Version)
	}

	if !r.IsStrategyActive("acct1", "s1") {
		t.Fatalf("expected strategy to be active")
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(events))
	}
}

func TestRegisterStrategyRequiresAccount(t *testing.T) {
	r := NewRegistry(nil, nil)
	at := time.Now()
	if _, err := r.RegisterStrategy("ghost", "s1", "MOMENTUM", "", "", "", "h", 1, 100, 10, at); err == nil {
		t.Fatalf("expected error registering a strategy under a nonexistent account")
	}
}

func TestUpdateRegistrationStatusImmutability(t *testing.T) {
	at := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	r := NewRegistry(nil, nil)
	orig, _ := r.RegisterAccount("acct1", "RETAIL", "John Doe", "john@example.com", nil, at)

	updated, err := r.UpdateRegistrationStatus("acct1", StatusApproved, "reviewed", "admin", at.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orig.Status != StatusPending {
		t.Fatalf("expected original value untouched, got %s", orig.Status)
	}
	if updated.Status != StatusApproved || updated.ApprovedAt.IsZero() {
		t.Fatalf("expected APPROVED with ApprovedAt set, got %+v", updated)
	}

	changes := r.GetChanges("acct1", 10)
	if len(changes) != 1 || changes[0].ChangeType != "STATUS_CHANGE" {
		t.Fatalf("expected one STATUS_CHANGE row, got %+v", changes)
	}
}

func TestPersisterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/registry.json"
	at := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	p1 := NewPersister(path)
	r1 := NewRegistry(nil, p1)
	if _, err := r1.RegisterAccount("acct1", "RETAIL", "John Doe", "john@example.com", nil, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p2 := NewPersister(path)
	r2 := NewRegistry(nil, p2)
	if _, ok := r2.GetRegistration("acct1"); !ok {
		t.Fatalf("expected reloaded registry to contain acct1")
	}
}
