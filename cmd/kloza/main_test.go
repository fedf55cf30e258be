package main

import (
	"strings"
	"testing"

	"kloza/internal/domain"
)

func TestStatusFlag(t *testing.T) {
	got, err := statusFlag(false, "", domain.ParseIdeaStatus)
	if err != nil || got != nil {
		t.Fatalf("unset flag: got %v, %v", got, err)
	}
	got, err = statusFlag(true, "approved", domain.ParseIdeaStatus)
	if err != nil || got != "approved" {
		t.Fatalf("approved: got %v, %v", got, err)
	}
	got, err = statusFlag(true, "cancelled", domain.ParseKollabStatus)
	if err != nil || got != "cancelled" {
		t.Fatalf("cancelled: got %v, %v", got, err)
	}
	_, err = statusFlag(true, "active", domain.ParseIdeaStatus)
	if err == nil || !strings.Contains(err.Error(), "draft, approved, archived") {
		t.Fatalf("expected allowed values in error, got %v", err)
	}
	_, err = statusFlag(true, "", domain.ParseKollabStatus)
	if err == nil {
		t.Fatalf("expected error for an empty kollab status")
	}
}
