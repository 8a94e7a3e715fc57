package services

import "testing"

func TestEarnedPoints_BasisPoints(t *testing.T) {
	// 200 bps on a 50.00 sale earns 100 points.
	if got := EarnedPoints(5000, 200); got != 100 {
		t.Fatalf("expected 100 points, got %d", got)
	}
}

func TestEarnedPoints_TruncatesFractions(t *testing.T) {
	// 150 bps on 9.99 is 14.985, truncated to 14.
	if got := EarnedPoints(999, 150); got != 14 {
		t.Fatalf("expected 14 points, got %d", got)
	}
}

func TestEarnedPoints_ZeroOrDisabledRate(t *testing.T) {
	if got := EarnedPoints(5000, 0); got != 0 {
		t.Fatalf("expected 0 points for zero rate, got %d", got)
	}
	if got := EarnedPoints(0, 200); got != 0 {
		t.Fatalf("expected 0 points for zero total, got %d", got)
	}
}

func TestRedeemValue_PointsToCents(t *testing.T) {
	// 50 points at 2 cents each is a 1.00 discount.
	if got := RedeemValue(50, 2); got != 100 {
		t.Fatalf("expected 100 cents, got %d", got)
	}
}

func TestRedeemValue_ZeroInputs(t *testing.T) {
	if got := RedeemValue(0, 2); got != 0 {
		t.Fatalf("expected 0 for zero points, got %d", got)
	}
	if got := RedeemValue(50, 0); got != 0 {
		t.Fatalf("expected 0 for zero redeem value, got %d", got)
	}
}
