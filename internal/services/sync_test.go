package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestRejectOp_MarksPermanentFailures(t *testing.T) {
	cause := fmt.Errorf("unknown entity")
	err := rejectOp(cause)
	if !isSyncRejection(err) {
		t.Fatalf("expected rejection to be detected")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected rejection to unwrap to cause")
	}
	if err.Error() != "unknown entity" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestIsSyncRejection_PlainErrorsPark(t *testing.T) {
	if isSyncRejection(fmt.Errorf("deadlock detected")) {
		t.Fatalf("transient errors must not be rejections")
	}
}
