package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

// orderTransitions is the full lifecycle table. Anything not listed is
// rejected, which keeps replayed or out-of-order taps from corrupting
// the kitchen queue.
var orderTransitions = map[string]map[string]bool{
	types.OrderStatusNew: {
		types.OrderStatusPreparing: true,
		types.OrderStatusCancelled: true,
	},
	types.OrderStatusPreparing: {
		types.OrderStatusReady:     true,
		types.OrderStatusCancelled: true,
	},
	types.OrderStatusReady: {
		types.OrderStatusCompleted: true,
		types.OrderStatusPreparing: true, // recall
	},
}

// bumpNext advances an order one stage on the kitchen display.
var bumpNext = map[string]string{
	types.OrderStatusNew:       types.OrderStatusPreparing,
	types.OrderStatusPreparing: types.OrderStatusReady,
	types.OrderStatusReady:     types.OrderStatusCompleted,
}

func CanTransitionOrder(from, to string) bool {
	allowed, ok := orderTransitions[from]
	return ok && allowed[to]
}

type OrderWithItems struct {
	*types.Order
	Items []*types.OrderItem `json:"items"`
}

type OrderService interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderWithItems, error)
	ListOrders(ctx context.Context, statuses []string, limit int) ([]*types.Order, error)
	// KitchenQueue returns open orders oldest-first, the way the
	// display shows them.
	KitchenQueue(ctx context.Context) ([]*OrderWithItems, error)
	TransitionOrder(ctx context.Context, orderID uuid.UUID, toStatus string) (*types.Order, error)
	BumpOrder(ctx context.Context, orderID uuid.UUID) (*types.Order, error)
	RecallOrder(ctx context.Context, orderID uuid.UUID) (*types.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID) (*types.Order, error)
}

type orderService struct {
	db            *gorm.DB
	log           *logger.Logger
	orderRepo     repos.OrderRepo
	orderItemRepo repos.OrderItemRepo
	notifier      OrderNotifier
}

func NewOrderService(db *gorm.DB, log *logger.Logger, orderRepo repos.OrderRepo, orderItemRepo repos.OrderItemRepo, notifier OrderNotifier) OrderService {
	return &orderService{
		db:            db,
		log:           log.With("service", "OrderService"),
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		notifier:      notifier,
	}
}

func (os *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderWithItems, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	found, err := os.orderRepo.GetByIDs(ctx, nil, []uuid.UUID{orderID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	if len(found) == 0 || found[0].MerchantID != rd.MerchantID {
		return nil, fmt.Errorf("order not found")
	}
	items, err := os.orderItemRepo.ListByOrders(ctx, nil, []uuid.UUID{orderID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order items: %w", err)
	}
	return &OrderWithItems{Order: found[0], Items: items}, nil
}

func (os *orderService) ListOrders(ctx context.Context, statuses []string, limit int) ([]*types.Order, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return os.orderRepo.ListByMerchant(ctx, nil, rd.MerchantID, statuses, limit)
}

func (os *orderService) KitchenQueue(ctx context.Context) ([]*OrderWithItems, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	open := []string{types.OrderStatusNew, types.OrderStatusPreparing, types.OrderStatusReady}
	orders, err := os.orderRepo.ListByMerchant(ctx, nil, rd.MerchantID, open, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list open orders: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	items, err := os.orderItemRepo.ListByOrders(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order items: %w", err)
	}
	byOrder := make(map[uuid.UUID][]*types.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	out := make([]*OrderWithItems, 0, len(orders))
	for _, o := range orders {
		out = append(out, &OrderWithItems{Order: o, Items: byOrder[o.ID]})
	}
	return out, nil
}

func (os *orderService) TransitionOrder(ctx context.Context, orderID uuid.UUID, toStatus string) (*types.Order, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	var out *types.Order
	var previous string
	err := os.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, oErr := os.orderRepo.LockByID(ctx, tx, orderID)
		if oErr != nil {
			return fmt.Errorf("failed to lock order: %w", oErr)
		}
		if order == nil || order.MerchantID != rd.MerchantID {
			return fmt.Errorf("order not found")
		}
		if order.Status == toStatus {
			// Idempotent: a double tap is not an error.
			out = order
			previous = order.Status
			return nil
		}
		if !CanTransitionOrder(order.Status, toStatus) {
			return fmt.Errorf("cannot move order from %s to %s", order.Status, toStatus)
		}
		previous = order.Status
		if uErr := os.orderRepo.UpdateFields(ctx, tx, order.ID, map[string]interface{}{
			"status":     toStatus,
			"updated_at": time.Now().UTC(),
		}); uErr != nil {
			return fmt.Errorf("failed to update order status: %w", uErr)
		}
		order.Status = toStatus
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	if previous != out.Status {
		os.notifier.OrderStatusChanged(rd.MerchantID, out, previous)
	}
	return out, nil
}

func (os *orderService) BumpOrder(ctx context.Context, orderID uuid.UUID) (*types.Order, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	found, err := os.orderRepo.GetByIDs(ctx, nil, []uuid.UUID{orderID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	if len(found) == 0 || found[0].MerchantID != rd.MerchantID {
		return nil, fmt.Errorf("order not found")
	}
	next, ok := bumpNext[found[0].Status]
	if !ok {
		return nil, fmt.Errorf("order is %s and cannot be bumped", found[0].Status)
	}
	return os.TransitionOrder(ctx, orderID, next)
}

func (os *orderService) RecallOrder(ctx context.Context, orderID uuid.UUID) (*types.Order, error) {
	return os.TransitionOrder(ctx, orderID, types.OrderStatusPreparing)
}

func (os *orderService) CancelOrder(ctx context.Context, orderID uuid.UUID) (*types.Order, error) {
	return os.TransitionOrder(ctx, orderID, types.OrderStatusCancelled)
}
