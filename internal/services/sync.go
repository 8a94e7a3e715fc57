package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/jobs"
	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/realtime"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

// syncMaxAttempts bounds retries on parked operations before they need
// manual review.
const syncMaxAttempts = 5

type SyncPushOp struct {
	ID       uuid.UUID      `json:"id"`
	Seq      int64          `json:"seq"`
	Entity   string         `json:"entity"`
	Action   string         `json:"action"`
	Payload  datatypes.JSON `json:"payload"`
	ClientTS time.Time      `json:"client_ts"`
}

type SyncPushInput struct {
	DeviceID uuid.UUID    `json:"device_id"`
	Ops      []SyncPushOp `json:"ops"`
}

type SyncOpResult struct {
	OpID      uuid.UUID `json:"op_id"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Duplicate bool      `json:"duplicate"`
}

type SyncPushResult struct {
	Results    []SyncOpResult `json:"results"`
	ServerTime time.Time      `json:"server_time"`
}

// SyncPullResult carries everything that changed since the device's
// last sync. ServerTime is the watermark for the next pull.
type SyncPullResult struct {
	Products        []*types.Product        `json:"products"`
	TicketTypes     []*types.TicketType     `json:"ticket_types"`
	Orders          []*types.Order          `json:"orders"`
	CartDrafts      []*types.CartDraft      `json:"cart_drafts"`
	LoyaltyAccounts []*types.LoyaltyAccount `json:"loyalty_accounts"`
	LoyaltySettings *types.LoyaltySettings  `json:"loyalty_settings,omitempty"`
	ServerTime      time.Time               `json:"server_time"`
}

type RegisterDeviceInput struct {
	Label      string     `json:"label"`
	RegisterID *uuid.UUID `json:"register_id,omitempty"`
}

// SyncService is the offline-first bridge for POS terminals: devices
// queue operations locally, push them in seq order and pull changed
// state back. Every op carries a client-generated id so a replay after
// a dropped response never applies twice.
type SyncService interface {
	RegisterDevice(ctx context.Context, input RegisterDeviceInput) (*types.SyncDevice, error)
	ListDevices(ctx context.Context) ([]*types.SyncDevice, error)
	Push(ctx context.Context, input SyncPushInput) (*SyncPushResult, error)
	Pull(ctx context.Context, deviceID uuid.UUID, since time.Time) (*SyncPullResult, error)
	// RetryParked reapplies parked operations that have attempts left.
	// The background worker calls this; it can also be triggered by hand.
	RetryParked(ctx context.Context, merchantID uuid.UUID, limit int) (int, error)
}

type syncService struct {
	db          *gorm.DB
	log         *logger.Logger
	deviceRepo  repos.SyncDeviceRepo
	opRepo      repos.SyncOpRepo
	draftRepo   repos.CartDraftRepo
	productRepo repos.ProductRepo
	ttRepo      repos.TicketTypeRepo
	orderRepo   repos.OrderRepo
	loyaltyRepo repos.LoyaltyRepo
	checkout    CheckoutService
	orders      OrderService
	jobs        jobs.Service
	emit        SSEEmitter
}

func NewSyncService(
	db *gorm.DB,
	log *logger.Logger,
	deviceRepo repos.SyncDeviceRepo,
	opRepo repos.SyncOpRepo,
	draftRepo repos.CartDraftRepo,
	productRepo repos.ProductRepo,
	ttRepo repos.TicketTypeRepo,
	orderRepo repos.OrderRepo,
	loyaltyRepo repos.LoyaltyRepo,
	checkout CheckoutService,
	orders OrderService,
	jobsService jobs.Service,
	emit SSEEmitter,
) SyncService {
	return &syncService{
		db:          db,
		log:         log.With("service", "SyncService"),
		deviceRepo:  deviceRepo,
		opRepo:      opRepo,
		draftRepo:   draftRepo,
		productRepo: productRepo,
		ttRepo:      ttRepo,
		orderRepo:   orderRepo,
		loyaltyRepo: loyaltyRepo,
		checkout:    checkout,
		orders:      orders,
		jobs:        jobsService,
		emit:        emit,
	}
}

func (ss *syncService) RegisterDevice(ctx context.Context, input RegisterDeviceInput) (*types.SyncDevice, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	input.Label = strings.TrimSpace(input.Label)
	if input.Label == "" {
		return nil, fmt.Errorf("device label required")
	}
	device := &types.SyncDevice{
		ID:         uuid.New(),
		MerchantID: rd.MerchantID,
		RegisterID: input.RegisterID,
		Label:      input.Label,
	}
	if _, err := ss.deviceRepo.Create(ctx, nil, device); err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}
	return device, nil
}

func (ss *syncService) ListDevices(ctx context.Context) ([]*types.SyncDevice, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return ss.deviceRepo.ListByMerchant(ctx, nil, rd.MerchantID)
}

func (ss *syncService) Push(ctx context.Context, input SyncPushInput) (*SyncPushResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	device, err := ss.ownedDevice(ctx, rd.MerchantID, input.DeviceID)
	if err != nil {
		return nil, err
	}

	// Ops apply in the order the device produced them.
	ops := make([]SyncPushOp, len(input.Ops))
	copy(ops, input.Ops)
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Seq < ops[j].Seq })

	result := &SyncPushResult{Results: make([]SyncOpResult, 0, len(ops))}
	for _, pushed := range ops {
		result.Results = append(result.Results, ss.pushOne(ctx, rd, device, pushed))
	}

	now := time.Now().UTC()
	if uErr := ss.deviceRepo.UpdateFields(ctx, nil, device.ID, map[string]interface{}{
		"last_seen_at": now,
		"updated_at":   now,
	}); uErr != nil {
		ss.log.Warn("Failed to update device last seen", "device_id", device.ID, "error", uErr)
	}
	result.ServerTime = now
	return result, nil
}

func (ss *syncService) pushOne(ctx context.Context, rd *requestdata.RequestData, device *types.SyncDevice, pushed SyncPushOp) SyncOpResult {
	if pushed.ID == uuid.Nil {
		return SyncOpResult{OpID: pushed.ID, Status: types.SyncOpStatusRejected, Error: "op id required"}
	}
	op := &types.SyncOperation{
		ID:         pushed.ID,
		MerchantID: rd.MerchantID,
		DeviceID:   device.ID,
		Seq:        pushed.Seq,
		Entity:     pushed.Entity,
		Action:     pushed.Action,
		Payload:    pushed.Payload,
		ClientTS:   pushed.ClientTS,
		Status:     types.SyncOpStatusPending,
	}
	created, err := ss.opRepo.Create(ctx, nil, op)
	if err != nil {
		return SyncOpResult{OpID: pushed.ID, Status: types.SyncOpStatusParked, Error: err.Error()}
	}
	if !created {
		// Replay of an op we already recorded: report the stored outcome.
		stored, gErr := ss.opRepo.GetByIDs(ctx, nil, []uuid.UUID{pushed.ID})
		if gErr != nil || len(stored) == 0 {
			return SyncOpResult{OpID: pushed.ID, Status: types.SyncOpStatusParked, Error: "failed to load stored op", Duplicate: true}
		}
		return SyncOpResult{OpID: pushed.ID, Status: stored[0].Status, Error: stored[0].Error, Duplicate: true}
	}

	return ss.applyAndRecord(ctx, op)
}

// applyAndRecord applies one recorded operation and persists the
// outcome. Validation failures are rejected for good; transient
// failures park the op for the retry sweep.
func (ss *syncService) applyAndRecord(ctx context.Context, op *types.SyncOperation) SyncOpResult {
	applyErr := ss.applyOp(ctx, op)
	now := time.Now().UTC()
	if applyErr == nil {
		if uErr := ss.opRepo.UpdateFields(ctx, nil, op.ID, map[string]interface{}{
			"status":     types.SyncOpStatusApplied,
			"applied_at": now,
			"attempts":   op.Attempts + 1,
			"error":      "",
		}); uErr != nil {
			ss.log.Error("Failed to mark op applied", "op_id", op.ID, "error", uErr)
		}
		ss.emitOp(op, realtime.SSEEventSyncOpApplied, "")
		return SyncOpResult{OpID: op.ID, Status: types.SyncOpStatusApplied}
	}

	status := types.SyncOpStatusParked
	if isSyncRejection(applyErr) {
		status = types.SyncOpStatusRejected
	}
	if uErr := ss.opRepo.UpdateFields(ctx, nil, op.ID, map[string]interface{}{
		"status":   status,
		"attempts": op.Attempts + 1,
		"error":    applyErr.Error(),
	}); uErr != nil {
		ss.log.Error("Failed to mark op failed", "op_id", op.ID, "error", uErr)
	}
	if status == types.SyncOpStatusParked {
		ss.emitOp(op, realtime.SSEEventSyncOpParked, applyErr.Error())
		ss.scheduleReconcile(ctx, op.MerchantID)
	}
	ss.log.Warn("Sync op failed", "op_id", op.ID, "entity", op.Entity, "status", status, "error", applyErr)
	return SyncOpResult{OpID: op.ID, Status: status, Error: applyErr.Error()}
}

// scheduleReconcile queues a pos.sync_reconcile run for the merchant so
// parked ops are retried without anyone pressing a button. A run that is
// already queued covers the new op, so at most one waits at a time.
func (ss *syncService) scheduleReconcile(ctx context.Context, merchantID uuid.UUID) {
	if ss.jobs == nil {
		return
	}
	latest, err := ss.jobs.GetLatestForEntity(ctx, "merchant", merchantID, jobs.TypeSyncReconcile)
	if err != nil {
		ss.log.Warn("Failed to check for a queued reconcile run", "merchant_id", merchantID, "error", err)
		return
	}
	if latest != nil && latest.Status == types.JobStatusQueued {
		return
	}
	entityID := merchantID
	if _, err := ss.jobs.Enqueue(ctx, jobs.TypeSyncReconcile, "merchant", &entityID, nil); err != nil {
		ss.log.Warn("Failed to enqueue reconcile run", "merchant_id", merchantID, "error", err)
	}
}

type syncRejection struct{ err error }

func (r syncRejection) Error() string { return r.err.Error() }
func (r syncRejection) Unwrap() error { return r.err }

func rejectOp(err error) error { return syncRejection{err: err} }

func isSyncRejection(err error) bool {
	_, ok := err.(syncRejection)
	return ok
}

type cartDraftPayload struct {
	ID         uuid.UUID      `json:"id"`
	RegisterID *uuid.UUID     `json:"register_id,omitempty"`
	Cart       datatypes.JSON `json:"cart"`
}

type orderStatusPayload struct {
	OrderID uuid.UUID `json:"order_id"`
	Status  string    `json:"status"`
}

func (ss *syncService) applyOp(ctx context.Context, op *types.SyncOperation) error {
	switch op.Entity {
	case types.SyncEntityCartDraft:
		return ss.applyCartDraft(ctx, op)
	case types.SyncEntityCheckout:
		return ss.applyCheckout(ctx, op)
	case types.SyncEntityOrderStatus:
		return ss.applyOrderStatus(ctx, op)
	default:
		return rejectOp(fmt.Errorf("unknown entity %q", op.Entity))
	}
}

func (ss *syncService) applyCartDraft(ctx context.Context, op *types.SyncOperation) error {
	var payload cartDraftPayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return rejectOp(fmt.Errorf("invalid cart draft payload: %w", err))
	}
	if payload.ID == uuid.Nil {
		return rejectOp(fmt.Errorf("cart draft id required"))
	}
	// A draft id colliding with another tenant's row is rejected, not
	// silently taken over.
	existing, gErr := ss.draftRepo.GetByIDs(ctx, nil, []uuid.UUID{payload.ID})
	if gErr != nil {
		return fmt.Errorf("failed to fetch cart draft: %w", gErr)
	}
	if len(existing) > 0 && existing[0].MerchantID != op.MerchantID {
		return rejectOp(fmt.Errorf("cart draft not found"))
	}
	switch op.Action {
	case "delete":
		if len(existing) == 0 {
			return nil
		}
		return ss.draftRepo.Delete(ctx, nil, op.MerchantID, payload.ID)
	case "upsert", "":
		return ss.draftRepo.Upsert(ctx, nil, &types.CartDraft{
			ID:         payload.ID,
			MerchantID: op.MerchantID,
			DeviceID:   op.DeviceID,
			RegisterID: payload.RegisterID,
			Payload:    payload.Cart,
			ClientTS:   op.ClientTS,
			UpdatedAt:  time.Now().UTC(),
		})
	default:
		return rejectOp(fmt.Errorf("unknown cart draft action %q", op.Action))
	}
}

func (ss *syncService) applyCheckout(ctx context.Context, op *types.SyncOperation) error {
	var input CheckoutInput
	if err := json.Unmarshal(op.Payload, &input); err != nil {
		return rejectOp(fmt.Errorf("invalid checkout payload: %w", err))
	}
	deviceID := op.DeviceID
	input.DeviceID = &deviceID
	if input.ClientRef == nil {
		// The op id doubles as the idempotency key when the terminal
		// did not set one.
		ref := op.ID
		input.ClientRef = &ref
	}
	_, err := ss.checkout.Checkout(ctx, input)
	return err
}

func (ss *syncService) applyOrderStatus(ctx context.Context, op *types.SyncOperation) error {
	var payload orderStatusPayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return rejectOp(fmt.Errorf("invalid order status payload: %w", err))
	}
	if payload.OrderID == uuid.Nil || payload.Status == "" {
		return rejectOp(fmt.Errorf("order id and status required"))
	}
	_, err := ss.orders.TransitionOrder(ctx, payload.OrderID, payload.Status)
	return err
}

func (ss *syncService) Pull(ctx context.Context, deviceID uuid.UUID, since time.Time) (*SyncPullResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if _, err := ss.ownedDevice(ctx, rd.MerchantID, deviceID); err != nil {
		return nil, err
	}

	// Capture the watermark before reading so nothing written during
	// the queries slips between this pull and the next.
	result := &SyncPullResult{ServerTime: time.Now().UTC()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := ss.productRepo.ChangedSince(gctx, nil, rd.MerchantID, since)
		if err != nil {
			return fmt.Errorf("failed to pull products: %w", err)
		}
		result.Products = products
		return nil
	})
	g.Go(func() error {
		ticketTypes, err := ss.ttRepo.ChangedSince(gctx, nil, rd.MerchantID, since)
		if err != nil {
			return fmt.Errorf("failed to pull ticket types: %w", err)
		}
		result.TicketTypes = ticketTypes
		return nil
	})
	g.Go(func() error {
		orders, err := ss.orderRepo.OpenChangedSince(gctx, nil, rd.MerchantID, since)
		if err != nil {
			return fmt.Errorf("failed to pull orders: %w", err)
		}
		result.Orders = orders
		return nil
	})
	g.Go(func() error {
		drafts, err := ss.draftRepo.ChangedSince(gctx, nil, rd.MerchantID, since)
		if err != nil {
			return fmt.Errorf("failed to pull cart drafts: %w", err)
		}
		result.CartDrafts = drafts
		return nil
	})
	g.Go(func() error {
		settings, err := ss.loyaltyRepo.GetSettings(gctx, nil, rd.MerchantID)
		if err != nil {
			return fmt.Errorf("failed to pull loyalty settings: %w", err)
		}
		result.LoyaltySettings = settings
		return nil
	})
	g.Go(func() error {
		accounts, err := ss.loyaltyRepo.AccountsChangedSince(gctx, nil, rd.MerchantID, since)
		if err != nil {
			return fmt.Errorf("failed to pull loyalty accounts: %w", err)
		}
		result.LoyaltyAccounts = accounts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (ss *syncService) RetryParked(ctx context.Context, merchantID uuid.UUID, limit int) (int, error) {
	ops, err := ss.opRepo.ListRetryable(ctx, nil, merchantID, syncMaxAttempts, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list parked ops: %w", err)
	}
	applied := 0
	for _, op := range ops {
		// Parked ops re-run under the op's own tenant, not whoever
		// triggered the sweep.
		opCtx := requestdata.WithRequestData(ctx, &requestdata.RequestData{MerchantID: op.MerchantID})
		res := ss.applyAndRecord(opCtx, op)
		if res.Status == types.SyncOpStatusApplied {
			applied++
		}
	}
	return applied, nil
}

func (ss *syncService) ownedDevice(ctx context.Context, merchantID, deviceID uuid.UUID) (*types.SyncDevice, error) {
	devices, err := ss.deviceRepo.GetByIDs(ctx, nil, []uuid.UUID{deviceID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device: %w", err)
	}
	if len(devices) == 0 || devices[0].MerchantID != merchantID {
		return nil, fmt.Errorf("device not found")
	}
	return devices[0], nil
}

func (ss *syncService) emitOp(op *types.SyncOperation, event realtime.SSEEvent, errMsg string) {
	if ss.emit == nil {
		return
	}
	data := map[string]any{"op_id": op.ID, "entity": op.Entity, "seq": op.Seq, "device_id": op.DeviceID}
	if errMsg != "" {
		data["error"] = errMsg
	}
	ss.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: op.MerchantID.String(),
		Event:   event,
		Data:    data,
	})
}
