package services

import "testing"

func TestStaffInitials(t *testing.T) {
	if got := staffInitials("ada", "lovelace"); got != "AL" {
		t.Fatalf("expected AL, got %q", got)
	}
	if got := staffInitials("", "lovelace"); got != "?L" {
		t.Fatalf("expected ?L, got %q", got)
	}
	if got := staffInitials("", ""); got != "??" {
		t.Fatalf("expected ??, got %q", got)
	}
}
