package services

import (
	"testing"

	"github.com/PeeapDev/merchant-backend/internal/types"
)

func TestCanTransitionOrder_HappyPath(t *testing.T) {
	steps := [][2]string{
		{types.OrderStatusNew, types.OrderStatusPreparing},
		{types.OrderStatusPreparing, types.OrderStatusReady},
		{types.OrderStatusReady, types.OrderStatusCompleted},
	}
	for _, step := range steps {
		if !CanTransitionOrder(step[0], step[1]) {
			t.Fatalf("expected %s -> %s to be allowed", step[0], step[1])
		}
	}
}

func TestCanTransitionOrder_RecallFromReady(t *testing.T) {
	if !CanTransitionOrder(types.OrderStatusReady, types.OrderStatusPreparing) {
		t.Fatalf("expected ready -> preparing (recall) to be allowed")
	}
}

func TestCanTransitionOrder_CancelOnlyBeforeReady(t *testing.T) {
	for _, from := range []string{types.OrderStatusNew, types.OrderStatusPreparing} {
		if !CanTransitionOrder(from, types.OrderStatusCancelled) {
			t.Fatalf("expected %s -> cancelled to be allowed", from)
		}
	}
	if CanTransitionOrder(types.OrderStatusReady, types.OrderStatusCancelled) {
		t.Fatalf("ready orders must be recalled before cancelling")
	}
	if CanTransitionOrder(types.OrderStatusCompleted, types.OrderStatusCancelled) {
		t.Fatalf("completed orders must not be cancellable")
	}
}

func TestCanTransitionOrder_RejectsSkipsAndTerminalMoves(t *testing.T) {
	if CanTransitionOrder(types.OrderStatusNew, types.OrderStatusReady) {
		t.Fatalf("new -> ready must not skip preparing")
	}
	if CanTransitionOrder(types.OrderStatusNew, types.OrderStatusCompleted) {
		t.Fatalf("new -> completed must be rejected")
	}
	if CanTransitionOrder(types.OrderStatusCompleted, types.OrderStatusPreparing) {
		t.Fatalf("completed is terminal")
	}
	if CanTransitionOrder(types.OrderStatusCancelled, types.OrderStatusNew) {
		t.Fatalf("cancelled is terminal")
	}
	if CanTransitionOrder("bogus", types.OrderStatusNew) {
		t.Fatalf("unknown from-status must be rejected")
	}
}

func TestBumpNext_CoversEveryOpenStatus(t *testing.T) {
	for from, to := range bumpNext {
		if !CanTransitionOrder(from, to) {
			t.Fatalf("bump %s -> %s is not a legal transition", from, to)
		}
	}
	if _, ok := bumpNext[types.OrderStatusCompleted]; ok {
		t.Fatalf("completed orders must not bump")
	}
}
