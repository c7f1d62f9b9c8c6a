// ABOUTME: Tests for CRM data models
// ABOUTME: Validates name helpers and lookup display fallback
package models

import "testing"

func TestContactFullName(t *testing.T) {
	c := Contact{FirstName: "Ada", LastName: "Lovelace"}
	if c.FullName() != "Ada Lovelace" {
		t.Errorf("expected 'Ada Lovelace', got %q", c.FullName())
	}

	c = Contact{LastName: "Hopper"}
	if c.FullName() != "Hopper" {
		t.Errorf("expected 'Hopper', got %q", c.FullName())
	}
}

func TestLeadFullName(t *testing.T) {
	l := Lead{FirstName: "Grace"}
	if l.FullName() != "Grace" {
		t.Errorf("expected 'Grace', got %q", l.FullName())
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName(0, "Acme"); got != "" {
		t.Errorf("zero id should have no display name, got %q", got)
	}
	if got := DisplayName(7, "Acme"); got != "Acme" {
		t.Errorf("expected Acme, got %q", got)
	}
	if got := DisplayName(7, "", "Fallback"); got != "Fallback" {
		t.Errorf("expected Fallback, got %q", got)
	}
	if got := DisplayName(7); got != UnknownName {
		t.Errorf("expected %q, got %q", UnknownName, got)
	}
}

func TestOptionSets(t *testing.T) {
	if len(DealStages) != 4 || DealStages[0] != StageProspecting {
		t.Errorf("unexpected deal stages: %v", DealStages)
	}
	if len(TaskStatuses) != 4 || TaskStatuses[0] != TaskNotStarted {
		t.Errorf("unexpected task statuses: %v", TaskStatuses)
	}
}
