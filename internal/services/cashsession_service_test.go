package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/PeeapDev/merchant-backend/internal/types"
)

type cashFixture struct {
	merchantID uuid.UUID
	svc        CashSessionService

	sessions  *fakeCashSessionRepo
	registers *fakeRegisterRepo
	payments  *fakePaymentRepo
}

func newCashFixture(t *testing.T) *cashFixture {
	t.Helper()
	fx := &cashFixture{
		merchantID: uuid.New(),
		sessions:   newFakeCashSessionRepo(),
		registers:  newFakeRegisterRepo(),
		payments:   &fakePaymentRepo{},
	}
	fx.svc = NewCashSessionService(newTestDB(t), newTestLogger(t), fx.sessions, fx.registers, fx.payments, nil)
	return fx
}

func (fx *cashFixture) addRegister() *types.Register {
	r := &types.Register{ID: uuid.New(), MerchantID: fx.merchantID, Label: "Till 1"}
	fx.registers.add(r)
	return r
}

func TestOpenSession_OnePerRegister(t *testing.T) {
	fx := newCashFixture(t)
	ctx := authedCtx(fx.merchantID)
	register := fx.addRegister()

	if _, err := fx.svc.OpenSession(ctx, register.ID, 5000); err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	_, err := fx.svc.OpenSession(ctx, register.ID, 5000)
	if err == nil || !strings.Contains(err.Error(), "already has an open cash session") {
		t.Fatalf("expected second open to be rejected, got %v", err)
	}
}

func TestCloseSession_ComputesVarianceAndFreesRegister(t *testing.T) {
	fx := newCashFixture(t)
	ctx := authedCtx(fx.merchantID)
	register := fx.addRegister()

	session, err := fx.svc.OpenSession(ctx, register.ID, 5000)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	fx.payments.payments = append(fx.payments.payments, &types.Payment{
		ID:            uuid.New(),
		MerchantID:    fx.merchantID,
		Method:        types.PaymentMethodCash,
		AmountCents:   2500,
		CashSessionID: &session.ID,
	})

	closed, err := fx.svc.CloseSession(ctx, session.ID, 7400)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if closed.ExpectedCents != 7500 {
		t.Fatalf("expected cash = %d, want 7500", closed.ExpectedCents)
	}
	if closed.VarianceCents != -100 {
		t.Fatalf("variance = %d, want -100", closed.VarianceCents)
	}

	if _, err := fx.svc.OpenSession(ctx, register.ID, 5000); err != nil {
		t.Fatalf("register must reopen after close: %v", err)
	}
}
