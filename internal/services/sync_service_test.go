package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/jobs"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

// fakeJobsService records enqueued runs so tests can assert on the
// reconcile scheduling without a worker pool.
type fakeJobsService struct {
	enqueued []*types.JobRun
}

func (f *fakeJobsService) Enqueue(ctx context.Context, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error) {
	run := &types.JobRun{
		ID:         uuid.New(),
		JobType:    jobType,
		EntityType: entityType,
		EntityID:   entityID,
		Status:     types.JobStatusQueued,
		Stage:      "queued",
	}
	f.enqueued = append(f.enqueued, run)
	return run, nil
}

func (f *fakeJobsService) Get(ctx context.Context, jobID uuid.UUID) (*types.JobRun, error) {
	for _, r := range f.enqueued {
		if r.ID == jobID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeJobsService) GetLatestForEntity(ctx context.Context, entityType string, entityID uuid.UUID, jobType string) (*types.JobRun, error) {
	for i := len(f.enqueued) - 1; i >= 0; i-- {
		r := f.enqueued[i]
		if r.JobType == jobType && r.EntityType == entityType && r.EntityID != nil && *r.EntityID == entityID {
			return r, nil
		}
	}
	return nil, nil
}

var _ jobs.Service = (*fakeJobsService)(nil)

type syncFixture struct {
	merchantID uuid.UUID
	device     *types.SyncDevice
	svc        SyncService

	db       *gorm.DB
	devices  *fakeSyncDeviceRepo
	ops      *fakeSyncOpRepo
	drafts   *fakeCartDraftRepo
	products *fakeProductRepo
	jobs     *fakeJobsService
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)

	fx := &syncFixture{
		merchantID: uuid.New(),
		db:         db,
		devices:    newFakeSyncDeviceRepo(),
		ops:        newFakeSyncOpRepo(),
		drafts:     newFakeCartDraftRepo(),
		products:   newFakeProductRepo(),
		jobs:       &fakeJobsService{},
	}
	fx.device = &types.SyncDevice{ID: uuid.New(), MerchantID: fx.merchantID, Label: "Counter tablet"}
	fx.devices.add(fx.device)

	orderRepo := newFakeOrderRepo()
	orderItemRepo := &fakeOrderItemRepo{}
	loyaltyRepo := newFakeLoyaltyRepo()
	ttRepo := newFakeTicketTypeRepo()
	walletRepo := newFakeWalletRepo()
	customerRepo := newFakeCustomerRepo()

	loyaltySvc := NewLoyaltyService(db, log, loyaltyRepo)
	walletSvc := NewWalletService(db, log, walletRepo, customerRepo, newFakeSchoolRepo())
	checkoutSvc := NewCheckoutService(
		db, log,
		orderRepo, orderItemRepo, &fakePaymentRepo{},
		fx.products, &fakeStockRepo{},
		newFakeEventRepo(), ttRepo, newFakeTicketRepo(),
		newFakeCashSessionRepo(),
		loyaltySvc, walletSvc, nil,
		NewOrderNotifier(nil), NewStockNotifier(nil),
	)
	orderSvc := NewOrderService(db, log, orderRepo, orderItemRepo, NewOrderNotifier(nil))

	fx.svc = NewSyncService(
		db, log,
		fx.devices, fx.ops, fx.drafts,
		fx.products, ttRepo, orderRepo, loyaltyRepo,
		checkoutSvc, orderSvc, fx.jobs, nil,
	)
	return fx
}

func (fx *syncFixture) draftOp(t *testing.T, opID, draftID uuid.UUID, action string, clientTS time.Time) SyncPushOp {
	t.Helper()
	payload, err := json.Marshal(cartDraftPayload{ID: draftID, Cart: datatypes.JSON(`{"lines":[]}`)})
	if err != nil {
		t.Fatalf("failed to build payload: %v", err)
	}
	return SyncPushOp{
		ID:       opID,
		Seq:      clientTS.UnixNano(),
		Entity:   types.SyncEntityCartDraft,
		Action:   action,
		Payload:  payload,
		ClientTS: clientTS,
	}
}

func TestPush_DuplicateOpReportsStoredOutcome(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := authedCtx(fx.merchantID)
	op := fx.draftOp(t, uuid.New(), uuid.New(), "upsert", time.Now().UTC())

	first, err := fx.svc.Push(ctx, SyncPushInput{DeviceID: fx.device.ID, Ops: []SyncPushOp{op}})
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if first.Results[0].Status != types.SyncOpStatusApplied {
		t.Fatalf("first push status = %s, want %s", first.Results[0].Status, types.SyncOpStatusApplied)
	}

	second, err := fx.svc.Push(ctx, SyncPushInput{DeviceID: fx.device.ID, Ops: []SyncPushOp{op}})
	if err != nil {
		t.Fatalf("replayed push failed: %v", err)
	}
	if !second.Results[0].Duplicate {
		t.Fatalf("replayed op must be flagged as duplicate")
	}
	if second.Results[0].Status != types.SyncOpStatusApplied {
		t.Fatalf("replayed op status = %s, want the stored outcome", second.Results[0].Status)
	}
	if len(fx.drafts.drafts) != 1 {
		t.Fatalf("expected one stored draft, got %d", len(fx.drafts.drafts))
	}
}

func TestPush_CartDraftLastWriterWins(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := authedCtx(fx.merchantID)
	draftID := uuid.New()
	newer := time.Now().UTC()
	stale := newer.Add(-time.Minute)

	if _, err := fx.svc.Push(ctx, SyncPushInput{DeviceID: fx.device.ID, Ops: []SyncPushOp{
		fx.draftOp(t, uuid.New(), draftID, "upsert", newer),
	}}); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if _, err := fx.svc.Push(ctx, SyncPushInput{DeviceID: fx.device.ID, Ops: []SyncPushOp{
		fx.draftOp(t, uuid.New(), draftID, "upsert", stale),
	}}); err != nil {
		t.Fatalf("stale push failed: %v", err)
	}

	stored := fx.drafts.drafts[draftID]
	if stored == nil {
		t.Fatalf("draft disappeared")
	}
	if !stored.ClientTS.Equal(newer) {
		t.Fatalf("stored draft client_ts = %v, want the newer write at %v", stored.ClientTS, newer)
	}
}

func TestPush_RejectsForeignCartDraft(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := authedCtx(fx.merchantID)
	otherMerchant := uuid.New()
	draftID := uuid.New()
	fx.drafts.add(&types.CartDraft{
		ID:         draftID,
		MerchantID: otherMerchant,
		DeviceID:   uuid.New(),
		Payload:    datatypes.JSON(`{"lines":[{"sku":"X"}]}`),
		ClientTS:   time.Now().UTC().Add(-time.Hour),
	})

	for _, action := range []string{"upsert", "delete"} {
		result, err := fx.svc.Push(ctx, SyncPushInput{DeviceID: fx.device.ID, Ops: []SyncPushOp{
			fx.draftOp(t, uuid.New(), draftID, action, time.Now().UTC()),
		}})
		if err != nil {
			t.Fatalf("push failed: %v", err)
		}
		if result.Results[0].Status != types.SyncOpStatusRejected {
			t.Fatalf("%s of a foreign draft = %s, want %s", action, result.Results[0].Status, types.SyncOpStatusRejected)
		}
	}
	stored := fx.drafts.drafts[draftID]
	if stored == nil || stored.MerchantID != otherMerchant {
		t.Fatalf("foreign draft must be untouched")
	}
}

func TestPush_ParkedOpSchedulesOneReconcileRun(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := authedCtx(fx.merchantID)
	product := &types.Product{
		ID:         uuid.New(),
		MerchantID: fx.merchantID,
		SKU:        "SKU-PARK",
		Name:       "Bottled water",
		PriceCents: 1000,
		Active:     true,
	}
	fx.products.add(product)
	fx.products.lockErr = gorm.ErrInvalidTransaction

	checkoutOp := func() SyncPushOp {
		payload, err := json.Marshal(CheckoutInput{
			Lines:    []CheckoutLine{{ProductID: &product.ID, Quantity: 1}},
			Payments: []CheckoutPayment{{Method: types.PaymentMethodCard, AmountCents: 1000}},
		})
		if err != nil {
			t.Fatalf("failed to build payload: %v", err)
		}
		return SyncPushOp{
			ID:       uuid.New(),
			Seq:      time.Now().UnixNano(),
			Entity:   types.SyncEntityCheckout,
			Payload:  payload,
			ClientTS: time.Now().UTC(),
		}
	}

	result, err := fx.svc.Push(ctx, SyncPushInput{DeviceID: fx.device.ID, Ops: []SyncPushOp{checkoutOp()}})
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if result.Results[0].Status != types.SyncOpStatusParked {
		t.Fatalf("op status = %s, want %s", result.Results[0].Status, types.SyncOpStatusParked)
	}
	if len(fx.jobs.enqueued) != 1 || fx.jobs.enqueued[0].JobType != jobs.TypeSyncReconcile {
		t.Fatalf("expected one queued reconcile run, got %+v", fx.jobs.enqueued)
	}

	// A run is already waiting, so a second parked op must not queue
	// another one.
	if _, err := fx.svc.Push(ctx, SyncPushInput{DeviceID: fx.device.ID, Ops: []SyncPushOp{checkoutOp()}}); err != nil {
		t.Fatalf("second push failed: %v", err)
	}
	if len(fx.jobs.enqueued) != 1 {
		t.Fatalf("expected the queued run to cover new parked ops, got %d runs", len(fx.jobs.enqueued))
	}
}
