package services

import "testing"

func TestExpectedCash_SumsDrawerMovements(t *testing.T) {
	// 100.00 float + 250.00 cash sales + 20.00 paid in - 30.00 paid out.
	if got := ExpectedCash(10000, 25000, 2000, 3000); got != 34000 {
		t.Fatalf("expected 34000, got %d", got)
	}
}

func TestExpectedCash_NoActivity(t *testing.T) {
	if got := ExpectedCash(5000, 0, 0, 0); got != 5000 {
		t.Fatalf("expected opening float back, got %d", got)
	}
}

func TestExpectedCash_PaidOutCanExceedSales(t *testing.T) {
	if got := ExpectedCash(1000, 500, 0, 2000); got != -500 {
		t.Fatalf("expected -500, got %d", got)
	}
}
