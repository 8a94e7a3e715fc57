package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type CreateSupplierInput struct {
	Name  string
	Email string
	Phone string
	Notes string
}

type PurchaseOrderLineInput struct {
	ProductID     uuid.UUID
	Quantity      int64
	UnitCostCents int64
}

type SupplierService interface {
	CreateSupplier(ctx context.Context, input CreateSupplierInput) (*types.Supplier, error)
	UpdateSupplier(ctx context.Context, supplierID uuid.UUID, updates map[string]interface{}) error
	ListSuppliers(ctx context.Context) ([]*types.Supplier, error)

	CreatePurchaseOrder(ctx context.Context, supplierID uuid.UUID, notes string, lines []PurchaseOrderLineInput) (*types.PurchaseOrder, error)
	PlacePurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) error
	// ReceivePurchaseOrder writes one purchase movement per line and
	// flips the order to received in one transaction.
	ReceivePurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) error
	CancelPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) error
	ListPurchaseOrders(ctx context.Context) ([]*types.PurchaseOrder, error)
	GetPurchaseOrderLines(ctx context.Context, purchaseOrderID uuid.UUID) ([]*types.PurchaseOrderLine, error)
}

type supplierService struct {
	db           *gorm.DB
	log          *logger.Logger
	supplierRepo repos.SupplierRepo
	poRepo       repos.PurchaseOrderRepo
	productRepo  repos.ProductRepo
	movementRepo repos.StockMovementRepo
}

func NewSupplierService(db *gorm.DB, log *logger.Logger, supplierRepo repos.SupplierRepo, poRepo repos.PurchaseOrderRepo, productRepo repos.ProductRepo, movementRepo repos.StockMovementRepo) SupplierService {
	return &supplierService{
		db:           db,
		log:          log.With("service", "SupplierService"),
		supplierRepo: supplierRepo,
		poRepo:       poRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
	}
}

func (ss *supplierService) CreateSupplier(ctx context.Context, input CreateSupplierInput) (*types.Supplier, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("supplier name required")
	}
	supplier := &types.Supplier{
		ID:         uuid.New(),
		MerchantID: rd.MerchantID,
		Name:       input.Name,
		Email:      strings.TrimSpace(input.Email),
		Phone:      strings.TrimSpace(input.Phone),
		Notes:      strings.TrimSpace(input.Notes),
		Active:     true,
	}
	if _, err := ss.supplierRepo.Create(ctx, nil, []*types.Supplier{supplier}); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return supplier, nil
}

func (ss *supplierService) UpdateSupplier(ctx context.Context, supplierID uuid.UUID, updates map[string]interface{}) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return fmt.Errorf("unauthorized")
	}
	allowed := map[string]bool{"name": true, "email": true, "phone": true, "notes": true, "active": true}
	filtered := map[string]interface{}{}
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return fmt.Errorf("no valid updates provided")
	}
	if _, err := ss.ownedSupplier(ctx, nil, rd.MerchantID, supplierID); err != nil {
		return err
	}
	return ss.supplierRepo.UpdateFields(ctx, nil, supplierID, filtered)
}

func (ss *supplierService) ListSuppliers(ctx context.Context) ([]*types.Supplier, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return ss.supplierRepo.ListByMerchant(ctx, nil, rd.MerchantID)
}

func (ss *supplierService) CreatePurchaseOrder(ctx context.Context, supplierID uuid.UUID, notes string, lines []PurchaseOrderLineInput) (*types.PurchaseOrder, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("at least one line required")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("line quantity must be positive")
		}
		if line.UnitCostCents < 0 {
			return nil, fmt.Errorf("line cost must not be negative")
		}
	}

	po := &types.PurchaseOrder{
		ID:         uuid.New(),
		MerchantID: rd.MerchantID,
		SupplierID: supplierID,
		Status:     types.PurchaseOrderStatusDraft,
		Notes:      strings.TrimSpace(notes),
		CreatedBy:  rd.UserID,
	}

	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, sErr := ss.ownedSupplier(ctx, tx, rd.MerchantID, supplierID); sErr != nil {
			return sErr
		}
		productIDs := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			productIDs = append(productIDs, line.ProductID)
		}
		products, pErr := ss.productRepo.GetByIDs(ctx, tx, productIDs)
		if pErr != nil {
			return fmt.Errorf("failed to fetch products: %w", pErr)
		}
		known := make(map[uuid.UUID]bool, len(products))
		for _, p := range products {
			if p.MerchantID == rd.MerchantID {
				known[p.ID] = true
			}
		}
		for _, line := range lines {
			if !known[line.ProductID] {
				return fmt.Errorf("unknown product on purchase order")
			}
		}
		if _, cErr := ss.poRepo.Create(ctx, tx, []*types.PurchaseOrder{po}); cErr != nil {
			return fmt.Errorf("failed to create purchase order: %w", cErr)
		}
		poLines := make([]*types.PurchaseOrderLine, 0, len(lines))
		for _, line := range lines {
			poLines = append(poLines, &types.PurchaseOrderLine{
				ID:              uuid.New(),
				PurchaseOrderID: po.ID,
				ProductID:       line.ProductID,
				Quantity:        line.Quantity,
				UnitCostCents:   line.UnitCostCents,
			})
		}
		if _, lErr := ss.poRepo.CreateLines(ctx, tx, poLines); lErr != nil {
			return fmt.Errorf("failed to create purchase order lines: %w", lErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

func (ss *supplierService) PlacePurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) error {
	return ss.transitionPurchaseOrder(ctx, purchaseOrderID, types.PurchaseOrderStatusDraft, types.PurchaseOrderStatusPlaced)
}

func (ss *supplierService) ReceivePurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return fmt.Errorf("unauthorized")
	}
	return ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, pErr := ss.poRepo.LockByID(ctx, tx, purchaseOrderID)
		if pErr != nil {
			return fmt.Errorf("failed to lock purchase order: %w", pErr)
		}
		if po == nil || po.MerchantID != rd.MerchantID {
			return fmt.Errorf("purchase order not found")
		}
		if po.Status != types.PurchaseOrderStatusPlaced {
			return fmt.Errorf("purchase order is %s, only placed orders can be received", po.Status)
		}
		lines, lErr := ss.poRepo.GetLines(ctx, tx, po.ID)
		if lErr != nil {
			return fmt.Errorf("failed to load purchase order lines: %w", lErr)
		}
		movements := make([]*types.StockMovement, 0, len(lines))
		for _, line := range lines {
			refID := po.ID
			movements = append(movements, &types.StockMovement{
				ID:         uuid.New(),
				MerchantID: rd.MerchantID,
				ProductID:  line.ProductID,
				Kind:       types.StockKindPurchase,
				Quantity:   line.Quantity,
				RefType:    "purchase_order",
				RefID:      &refID,
				CreatedBy:  rd.UserID,
			})
		}
		if _, mErr := ss.movementRepo.Create(ctx, tx, movements); mErr != nil {
			return fmt.Errorf("failed to record received stock: %w", mErr)
		}
		now := time.Now().UTC()
		return ss.poRepo.UpdateFields(ctx, tx, po.ID, map[string]interface{}{
			"status":      types.PurchaseOrderStatusReceived,
			"received_at": now,
			"updated_at":  now,
		})
	})
}

func (ss *supplierService) CancelPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return fmt.Errorf("unauthorized")
	}
	return ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, pErr := ss.poRepo.LockByID(ctx, tx, purchaseOrderID)
		if pErr != nil {
			return fmt.Errorf("failed to lock purchase order: %w", pErr)
		}
		if po == nil || po.MerchantID != rd.MerchantID {
			return fmt.Errorf("purchase order not found")
		}
		if po.Status == types.PurchaseOrderStatusReceived {
			return fmt.Errorf("received purchase orders cannot be cancelled")
		}
		if po.Status == types.PurchaseOrderStatusCancelled {
			return nil
		}
		return ss.poRepo.UpdateFields(ctx, tx, po.ID, map[string]interface{}{
			"status":     types.PurchaseOrderStatusCancelled,
			"updated_at": time.Now().UTC(),
		})
	})
}

func (ss *supplierService) ListPurchaseOrders(ctx context.Context) ([]*types.PurchaseOrder, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return ss.poRepo.ListByMerchant(ctx, nil, rd.MerchantID)
}

func (ss *supplierService) GetPurchaseOrderLines(ctx context.Context, purchaseOrderID uuid.UUID) ([]*types.PurchaseOrderLine, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	found, err := ss.poRepo.GetByIDs(ctx, nil, []uuid.UUID{purchaseOrderID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch purchase order: %w", err)
	}
	if len(found) == 0 || found[0].MerchantID != rd.MerchantID {
		return nil, fmt.Errorf("purchase order not found")
	}
	return ss.poRepo.GetLines(ctx, nil, purchaseOrderID)
}

func (ss *supplierService) transitionPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID, from, to string) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return fmt.Errorf("unauthorized")
	}
	return ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, pErr := ss.poRepo.LockByID(ctx, tx, purchaseOrderID)
		if pErr != nil {
			return fmt.Errorf("failed to lock purchase order: %w", pErr)
		}
		if po == nil || po.MerchantID != rd.MerchantID {
			return fmt.Errorf("purchase order not found")
		}
		if po.Status != from {
			return fmt.Errorf("purchase order is %s, expected %s", po.Status, from)
		}
		return ss.poRepo.UpdateFields(ctx, tx, po.ID, map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	})
}

func (ss *supplierService) ownedSupplier(ctx context.Context, tx *gorm.DB, merchantID, supplierID uuid.UUID) (*types.Supplier, error) {
	found, err := ss.supplierRepo.GetByIDs(ctx, tx, []uuid.UUID{supplierID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier: %w", err)
	}
	if len(found) == 0 || found[0] == nil || found[0].MerchantID != merchantID {
		return nil, fmt.Errorf("supplier not found")
	}
	return found[0], nil
}
