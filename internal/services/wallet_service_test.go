package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/PeeapDev/merchant-backend/internal/types"
)

type walletFixture struct {
	merchantID uuid.UUID
	svc        WalletService

	wallets   *fakeWalletRepo
	customers *fakeCustomerRepo
}

func newWalletFixture(t *testing.T) *walletFixture {
	t.Helper()
	fx := &walletFixture{
		merchantID: uuid.New(),
		wallets:    newFakeWalletRepo(),
		customers:  newFakeCustomerRepo(),
	}
	fx.svc = NewWalletService(newTestDB(t), newTestLogger(t), fx.wallets, fx.customers, newFakeSchoolRepo())
	return fx
}

func (fx *walletFixture) merchantWallet(balance int64) *types.Wallet {
	w := &types.Wallet{
		ID:        uuid.New(),
		OwnerType: types.WalletOwnerMerchant,
		OwnerID:   fx.merchantID,
		Currency:  "SLE",
		Balance:   balance,
	}
	fx.wallets.add(w)
	return w
}

func (fx *walletFixture) customerWallet(merchantID uuid.UUID, balance int64) *types.Wallet {
	customerID := uuid.New()
	fx.customers.add(&types.Customer{ID: customerID, MerchantID: merchantID, Name: "Fatmata"})
	w := &types.Wallet{
		ID:        uuid.New(),
		OwnerType: types.WalletOwnerCustomer,
		OwnerID:   customerID,
		Currency:  "SLE",
		Balance:   balance,
	}
	fx.wallets.add(w)
	return w
}

func TestTransfer_RejectsInsufficientFunds(t *testing.T) {
	fx := newWalletFixture(t)
	ctx := authedCtx(fx.merchantID)
	from := fx.customerWallet(fx.merchantID, 100)
	to := fx.merchantWallet(0)

	_, err := fx.svc.Transfer(ctx, from.ID, to.ID, 500, types.WalletKindSale, "oversized sale")
	if err == nil || !strings.Contains(err.Error(), "insufficient funds") {
		t.Fatalf("expected insufficient funds error, got %v", err)
	}
	if from.Balance != 100 || to.Balance != 0 {
		t.Fatalf("balances must be untouched, got %d and %d", from.Balance, to.Balance)
	}
}

func TestTransfer_HidesForeignWallets(t *testing.T) {
	fx := newWalletFixture(t)
	ctx := authedCtx(fx.merchantID)
	foreign := fx.customerWallet(uuid.New(), 1000)
	mine := fx.merchantWallet(0)

	_, err := fx.svc.Transfer(ctx, foreign.ID, mine.ID, 500, types.WalletKindTransfer, "")
	if err == nil || !strings.Contains(err.Error(), "wallet not found") {
		t.Fatalf("expected foreign wallet to be hidden, got %v", err)
	}
	if foreign.Balance != 1000 {
		t.Fatalf("foreign balance must be untouched, got %d", foreign.Balance)
	}
}

func TestReverse_RestoresBalancesOnce(t *testing.T) {
	fx := newWalletFixture(t)
	ctx := authedCtx(fx.merchantID)
	from := fx.customerWallet(fx.merchantID, 1000)
	to := fx.merchantWallet(200)

	transferID, err := fx.svc.Transfer(ctx, from.ID, to.ID, 400, types.WalletKindSale, "sale")
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if from.Balance != 600 || to.Balance != 600 {
		t.Fatalf("post-transfer balances = %d and %d, want 600 and 600", from.Balance, to.Balance)
	}

	if _, err := fx.svc.Reverse(ctx, transferID, "cashier error"); err != nil {
		t.Fatalf("reverse failed: %v", err)
	}
	if from.Balance != 1000 || to.Balance != 200 {
		t.Fatalf("post-reversal balances = %d and %d, want 1000 and 200", from.Balance, to.Balance)
	}

	_, err = fx.svc.Reverse(ctx, transferID, "cashier error")
	if err == nil || !strings.Contains(err.Error(), "already reversed") {
		t.Fatalf("expected second reversal to be rejected, got %v", err)
	}
	if from.Balance != 1000 || to.Balance != 200 {
		t.Fatalf("balances moved on rejected reversal, got %d and %d", from.Balance, to.Balance)
	}
}
