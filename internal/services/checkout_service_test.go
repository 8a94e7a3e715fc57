package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/PeeapDev/merchant-backend/internal/types"
)

type checkoutFixture struct {
	merchantID uuid.UUID
	svc        CheckoutService

	products  *fakeProductRepo
	stock     *fakeStockRepo
	orders    *fakeOrderRepo
	items     *fakeOrderItemRepo
	payments  *fakePaymentRepo
	events    *fakeEventRepo
	tts       *fakeTicketTypeRepo
	tickets   *fakeTicketRepo
	loyalty   *fakeLoyaltyRepo
	wallets   *fakeWalletRepo
	customers *fakeCustomerRepo
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)

	fx := &checkoutFixture{
		merchantID: uuid.New(),
		products:   newFakeProductRepo(),
		stock:      &fakeStockRepo{},
		orders:     newFakeOrderRepo(),
		items:      &fakeOrderItemRepo{},
		payments:   &fakePaymentRepo{},
		events:     newFakeEventRepo(),
		tts:        newFakeTicketTypeRepo(),
		tickets:    newFakeTicketRepo(),
		loyalty:    newFakeLoyaltyRepo(),
		wallets:    newFakeWalletRepo(),
		customers:  newFakeCustomerRepo(),
	}

	loyaltySvc := NewLoyaltyService(db, log, fx.loyalty)
	walletSvc := NewWalletService(db, log, fx.wallets, fx.customers, newFakeSchoolRepo())
	fx.svc = NewCheckoutService(
		db,
		log,
		fx.orders,
		fx.items,
		fx.payments,
		fx.products,
		fx.stock,
		fx.events,
		fx.tts,
		fx.tickets,
		newFakeCashSessionRepo(),
		loyaltySvc,
		walletSvc,
		nil,
		NewOrderNotifier(nil),
		NewStockNotifier(nil),
	)
	return fx
}

func (fx *checkoutFixture) addProduct(priceCents int64, trackStock bool) *types.Product {
	p := &types.Product{
		ID:         uuid.New(),
		MerchantID: fx.merchantID,
		SKU:        "SKU-" + uuid.NewString()[:8],
		Name:       "Test product",
		PriceCents: priceCents,
		TrackStock: trackStock,
		Active:     true,
	}
	fx.products.add(p)
	return p
}

func (fx *checkoutFixture) receiveStock(productID uuid.UUID, qty int64) {
	fx.stock.movements = append(fx.stock.movements, &types.StockMovement{
		ID:         uuid.New(),
		MerchantID: fx.merchantID,
		ProductID:  productID,
		Kind:       types.StockKindPurchase,
		Quantity:   qty,
	})
}

func TestCheckout_ReplayByClientRefReturnsOriginalSale(t *testing.T) {
	fx := newCheckoutFixture(t)
	ctx := authedCtx(fx.merchantID)
	p := fx.addProduct(1000, false)

	ref := uuid.New()
	input := CheckoutInput{
		ClientRef: &ref,
		Lines:     []CheckoutLine{{ProductID: &p.ID, Quantity: 2}},
		Payments:  []CheckoutPayment{{Method: types.PaymentMethodCard, AmountCents: 2000}},
	}

	first, err := fx.svc.Checkout(ctx, input)
	if err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}
	if first.Replayed {
		t.Fatalf("first checkout must not report a replay")
	}

	second, err := fx.svc.Checkout(ctx, input)
	if err != nil {
		t.Fatalf("replayed checkout failed: %v", err)
	}
	if !second.Replayed {
		t.Fatalf("expected replay to be flagged")
	}
	if second.Order.ID != first.Order.ID {
		t.Fatalf("replay returned order %s, want %s", second.Order.ID, first.Order.ID)
	}
	if len(fx.orders.orders) != 1 {
		t.Fatalf("expected one stored order, got %d", len(fx.orders.orders))
	}
}

func TestCheckout_RejectsInsufficientStock(t *testing.T) {
	fx := newCheckoutFixture(t)
	ctx := authedCtx(fx.merchantID)
	p := fx.addProduct(500, true)
	fx.receiveStock(p.ID, 1)

	_, err := fx.svc.Checkout(ctx, CheckoutInput{
		Lines:    []CheckoutLine{{ProductID: &p.ID, Quantity: 2}},
		Payments: []CheckoutPayment{{Method: types.PaymentMethodCard, AmountCents: 1000}},
	})
	if err == nil || !strings.Contains(err.Error(), "insufficient stock") {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if len(fx.orders.orders) != 0 {
		t.Fatalf("no order must be created for an aborted sale")
	}
}

func TestCheckout_RejectsSoldOutTicketType(t *testing.T) {
	fx := newCheckoutFixture(t)
	ctx := authedCtx(fx.merchantID)
	event := &types.Event{
		ID:         uuid.New(),
		MerchantID: fx.merchantID,
		Name:       "Open mic",
		Status:     types.EventStatusPublished,
	}
	fx.events.add(event)
	tt := &types.TicketType{
		ID:         uuid.New(),
		MerchantID: fx.merchantID,
		EventID:    event.ID,
		Name:       "General",
		PriceCents: 1500,
		Capacity:   10,
		Issued:     10,
	}
	fx.tts.add(tt)

	_, err := fx.svc.Checkout(ctx, CheckoutInput{
		Lines:    []CheckoutLine{{TicketTypeID: &tt.ID, Quantity: 1}},
		Payments: []CheckoutPayment{{Method: types.PaymentMethodCard, AmountCents: 1500}},
	})
	if err == nil || !strings.Contains(err.Error(), "sold out") {
		t.Fatalf("expected sold out error, got %v", err)
	}
	if tt.Issued != 10 {
		t.Fatalf("issued count must not move past capacity, got %d", tt.Issued)
	}
}

func TestCheckout_RejectsRedeemWorthMoreThanTotal(t *testing.T) {
	fx := newCheckoutFixture(t)
	ctx := authedCtx(fx.merchantID)
	p := fx.addProduct(1000, false)

	customerID := uuid.New()
	fx.customers.add(&types.Customer{ID: customerID, MerchantID: fx.merchantID, Name: "Aminata"})
	fx.loyalty.settings[fx.merchantID] = &types.LoyaltySettings{
		ID:               uuid.New(),
		MerchantID:       fx.merchantID,
		Enabled:          true,
		RedeemValueCents: 100,
	}
	account := &types.LoyaltyAccount{
		ID:         uuid.New(),
		MerchantID: fx.merchantID,
		CustomerID: customerID,
		Balance:    100,
	}
	fx.loyalty.accounts[account.ID] = account

	// 50 points at 100 cents each is worth 5000 against a 1000 sale.
	_, err := fx.svc.Checkout(ctx, CheckoutInput{
		CustomerID:   &customerID,
		Lines:        []CheckoutLine{{ProductID: &p.ID, Quantity: 1}},
		Payments:     []CheckoutPayment{{Method: types.PaymentMethodCard, AmountCents: 1000}},
		RedeemPoints: 50,
	})
	if err == nil || !strings.Contains(err.Error(), "more than") {
		t.Fatalf("expected over-redemption to be rejected, got %v", err)
	}
	if len(fx.orders.orders) != 0 {
		t.Fatalf("no order must be created for a rejected redemption")
	}
}

func TestCheckout_WalletPaymentRejectsInsufficientFunds(t *testing.T) {
	fx := newCheckoutFixture(t)
	ctx := authedCtx(fx.merchantID)
	p := fx.addProduct(1000, false)

	customerID := uuid.New()
	fx.customers.add(&types.Customer{ID: customerID, MerchantID: fx.merchantID, Name: "Ibrahim"})
	fx.wallets.add(&types.Wallet{
		ID:        uuid.New(),
		OwnerType: types.WalletOwnerCustomer,
		OwnerID:   customerID,
		Currency:  "SLE",
		Balance:   200,
	})

	_, err := fx.svc.Checkout(ctx, CheckoutInput{
		CustomerID: &customerID,
		Lines:      []CheckoutLine{{ProductID: &p.ID, Quantity: 1}},
		Payments:   []CheckoutPayment{{Method: types.PaymentMethodWallet, AmountCents: 1000}},
	})
	if err == nil || !strings.Contains(err.Error(), "insufficient funds") {
		t.Fatalf("expected insufficient funds error, got %v", err)
	}
}
