package services

import (
	"testing"

	"github.com/google/uuid"
)

func TestLineTax_TruncatesTowardZero(t *testing.T) {
	// 1500 * 12.5% = 187.5, truncated to 187.
	if got := LineTax(1500, 1250); got != 187 {
		t.Fatalf("expected 187, got %d", got)
	}
}

func TestLineTax_ZeroRateAndZeroAmount(t *testing.T) {
	if got := LineTax(1500, 0); got != 0 {
		t.Fatalf("expected 0 for zero rate, got %d", got)
	}
	if got := LineTax(0, 1250); got != 0 {
		t.Fatalf("expected 0 for zero amount, got %d", got)
	}
	if got := LineTax(-100, 1250); got != 0 {
		t.Fatalf("expected 0 for negative amount, got %d", got)
	}
}

func TestValidateCheckoutInput_RejectsEmptyCart(t *testing.T) {
	err := validateCheckoutInput(CheckoutInput{
		Payments: []CheckoutPayment{{Method: "cash", AmountCents: 100}},
	})
	if err == nil {
		t.Fatalf("expected error for empty cart")
	}
}

func TestValidateCheckoutInput_RejectsAmbiguousLine(t *testing.T) {
	productID := uuid.New()
	ticketTypeID := uuid.New()
	input := CheckoutInput{
		Lines: []CheckoutLine{
			{ProductID: &productID, TicketTypeID: &ticketTypeID, Quantity: 1},
		},
		Payments: []CheckoutPayment{{Method: "cash", AmountCents: 100}},
	}
	if err := validateCheckoutInput(input); err == nil {
		t.Fatalf("expected error for line with both product and ticket type")
	}
	input.Lines[0].TicketTypeID = nil
	input.Lines[0].ProductID = nil
	if err := validateCheckoutInput(input); err == nil {
		t.Fatalf("expected error for line with neither product nor ticket type")
	}
}

func TestValidateCheckoutInput_RejectsBadQuantityAndPayment(t *testing.T) {
	productID := uuid.New()
	input := CheckoutInput{
		Lines:    []CheckoutLine{{ProductID: &productID, Quantity: 0}},
		Payments: []CheckoutPayment{{Method: "cash", AmountCents: 100}},
	}
	if err := validateCheckoutInput(input); err == nil {
		t.Fatalf("expected error for zero quantity")
	}
	input.Lines[0].Quantity = 1
	input.Payments = nil
	if err := validateCheckoutInput(input); err == nil {
		t.Fatalf("expected error for missing payments")
	}
	input.Payments = []CheckoutPayment{{Method: "cash", AmountCents: 0}}
	if err := validateCheckoutInput(input); err == nil {
		t.Fatalf("expected error for non-positive payment amount")
	}
}

func TestValidateCheckoutInput_PriceOverrideRules(t *testing.T) {
	productID := uuid.New()
	ticketTypeID := uuid.New()
	override := int64(250)
	input := CheckoutInput{
		Lines:    []CheckoutLine{{ProductID: &productID, Quantity: 1, UnitPriceCents: &override}},
		Payments: []CheckoutPayment{{Method: "cash", AmountCents: 250}},
	}
	if err := validateCheckoutInput(input); err != nil {
		t.Fatalf("expected product override to be accepted, got %v", err)
	}
	negative := int64(-1)
	input.Lines[0].UnitPriceCents = &negative
	if err := validateCheckoutInput(input); err == nil {
		t.Fatalf("expected error for negative override")
	}
	input.Lines[0] = CheckoutLine{TicketTypeID: &ticketTypeID, Quantity: 1, UnitPriceCents: &override}
	if err := validateCheckoutInput(input); err == nil {
		t.Fatalf("expected error for ticket line override")
	}
}

func TestValidateCheckoutInput_AcceptsWellFormedCart(t *testing.T) {
	productID := uuid.New()
	ticketTypeID := uuid.New()
	input := CheckoutInput{
		Lines: []CheckoutLine{
			{ProductID: &productID, Quantity: 2},
			{TicketTypeID: &ticketTypeID, Quantity: 1},
		},
		Payments:     []CheckoutPayment{{Method: "cash", AmountCents: 500, TenderedCents: 1000}},
		RedeemPoints: 50,
	}
	if err := validateCheckoutInput(input); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}
