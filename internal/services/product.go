package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type CreateProductInput struct {
	SKU          string
	Name         string
	Category     string
	PriceCents   int64
	TaxRateBPS   int64
	TrackStock   bool
	ReorderLevel int64
	OpeningStock int64
}

type ProductWithStock struct {
	*types.Product
	OnHand int64 `json:"on_hand"`
}

type ProductService interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*types.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, updates map[string]interface{}) (*types.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductWithStock, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]*ProductWithStock, error)
	// AdjustStock appends a signed adjustment movement. Negative
	// adjustments may not take tracked stock below zero.
	AdjustStock(ctx context.Context, productID uuid.UUID, quantity int64, reason string) (int64, error)
	StockHistory(ctx context.Context, productID uuid.UUID, limit int) ([]*types.StockMovement, error)
	LowStock(ctx context.Context) ([]*ProductWithStock, error)
}

type productService struct {
	db            *gorm.DB
	log           *logger.Logger
	productRepo   repos.ProductRepo
	movementRepo  repos.StockMovementRepo
	stockNotifier StockNotifier
}

func NewProductService(db *gorm.DB, log *logger.Logger, productRepo repos.ProductRepo, movementRepo repos.StockMovementRepo, stockNotifier StockNotifier) ProductService {
	return &productService{
		db:            db,
		log:           log.With("service", "ProductService"),
		productRepo:   productRepo,
		movementRepo:  movementRepo,
		stockNotifier: stockNotifier,
	}
}

func (ps *productService) CreateProduct(ctx context.Context, input CreateProductInput) (*types.Product, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	input.SKU = strings.TrimSpace(input.SKU)
	input.Name = strings.TrimSpace(input.Name)
	if input.SKU == "" || input.Name == "" {
		return nil, fmt.Errorf("sku and name required")
	}
	if input.PriceCents < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}
	if input.OpeningStock < 0 {
		return nil, fmt.Errorf("opening stock must not be negative")
	}

	product := &types.Product{
		ID:           uuid.New(),
		MerchantID:   rd.MerchantID,
		SKU:          input.SKU,
		Name:         input.Name,
		Category:     strings.TrimSpace(input.Category),
		PriceCents:   input.PriceCents,
		TaxRateBPS:   input.TaxRateBPS,
		TrackStock:   input.TrackStock,
		ReorderLevel: input.ReorderLevel,
		Active:       true,
	}

	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, sErr := ps.productRepo.SKUExists(ctx, tx, rd.MerchantID, input.SKU)
		if sErr != nil {
			return fmt.Errorf("failed to check sku: %w", sErr)
		}
		if exists {
			return fmt.Errorf("sku already in use")
		}
		if _, cErr := ps.productRepo.Create(ctx, tx, []*types.Product{product}); cErr != nil {
			return fmt.Errorf("failed to create product: %w", cErr)
		}
		if input.TrackStock && input.OpeningStock > 0 {
			movement := &types.StockMovement{
				ID:         uuid.New(),
				MerchantID: rd.MerchantID,
				ProductID:  product.ID,
				Kind:       types.StockKindAdjustment,
				Quantity:   input.OpeningStock,
				Reason:     "opening stock",
				CreatedBy:  rd.UserID,
			}
			if _, mErr := ps.movementRepo.Create(ctx, tx, []*types.StockMovement{movement}); mErr != nil {
				return fmt.Errorf("failed to record opening stock: %w", mErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (ps *productService) UpdateProduct(ctx context.Context, productID uuid.UUID, updates map[string]interface{}) (*types.Product, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	allowed := map[string]bool{
		"name": true, "category": true, "price_cents": true,
		"tax_rate_bps": true, "track_stock": true, "reorder_level": true,
		"active": true,
	}
	filtered := map[string]interface{}{}
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no valid updates provided")
	}

	var out *types.Product
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, pErr := ps.ownedProduct(ctx, tx, rd.MerchantID, productID)
		if pErr != nil {
			return pErr
		}
		if uErr := ps.productRepo.UpdateFields(ctx, tx, product.ID, filtered); uErr != nil {
			return fmt.Errorf("failed to update product: %w", uErr)
		}
		reloaded, rErr := ps.productRepo.GetByIDs(ctx, tx, []uuid.UUID{product.ID})
		if rErr != nil || len(reloaded) == 0 {
			return fmt.Errorf("failed to reload product")
		}
		out = reloaded[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ps *productService) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductWithStock, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	product, err := ps.ownedProduct(ctx, nil, rd.MerchantID, productID)
	if err != nil {
		return nil, err
	}
	onHand := int64(0)
	if product.TrackStock {
		onHand, err = ps.movementRepo.OnHand(ctx, nil, product.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute on-hand: %w", err)
		}
	}
	return &ProductWithStock{Product: product, OnHand: onHand}, nil
}

func (ps *productService) ListProducts(ctx context.Context, activeOnly bool) ([]*ProductWithStock, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	products, err := ps.productRepo.ListByMerchant(ctx, nil, rd.MerchantID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	tracked := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		if p.TrackStock {
			tracked = append(tracked, p.ID)
		}
	}
	onHand, err := ps.movementRepo.OnHandBulk(ctx, nil, tracked)
	if err != nil {
		return nil, fmt.Errorf("failed to compute on-hand: %w", err)
	}
	out := make([]*ProductWithStock, 0, len(products))
	for _, p := range products {
		out = append(out, &ProductWithStock{Product: p, OnHand: onHand[p.ID]})
	}
	return out, nil
}

func (ps *productService) AdjustStock(ctx context.Context, productID uuid.UUID, quantity int64, reason string) (int64, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return 0, fmt.Errorf("unauthorized")
	}
	if quantity == 0 {
		return 0, fmt.Errorf("quantity must not be zero")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return 0, fmt.Errorf("reason required")
	}

	var newOnHand int64
	var lowProduct *types.Product
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, lErr := ps.productRepo.LockByIDs(ctx, tx, []uuid.UUID{productID})
		if lErr != nil {
			return fmt.Errorf("failed to lock product: %w", lErr)
		}
		if len(locked) == 0 || locked[0].MerchantID != rd.MerchantID {
			return fmt.Errorf("product not found")
		}
		product := locked[0]
		if !product.TrackStock {
			return fmt.Errorf("product does not track stock")
		}
		onHand, oErr := ps.movementRepo.OnHand(ctx, tx, product.ID)
		if oErr != nil {
			return fmt.Errorf("failed to compute on-hand: %w", oErr)
		}
		if onHand+quantity < 0 {
			return fmt.Errorf("adjustment would take stock below zero (on hand %d)", onHand)
		}
		movement := &types.StockMovement{
			ID:         uuid.New(),
			MerchantID: rd.MerchantID,
			ProductID:  product.ID,
			Kind:       types.StockKindAdjustment,
			Quantity:   quantity,
			Reason:     reason,
			CreatedBy:  rd.UserID,
		}
		if _, mErr := ps.movementRepo.Create(ctx, tx, []*types.StockMovement{movement}); mErr != nil {
			return fmt.Errorf("failed to record adjustment: %w", mErr)
		}
		newOnHand = onHand + quantity
		if newOnHand <= product.ReorderLevel {
			lowProduct = product
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if lowProduct != nil {
		ps.stockNotifier.StockLow(rd.MerchantID, lowProduct, newOnHand)
	}
	return newOnHand, nil
}

func (ps *productService) StockHistory(ctx context.Context, productID uuid.UUID, limit int) ([]*types.StockMovement, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if _, err := ps.ownedProduct(ctx, nil, rd.MerchantID, productID); err != nil {
		return nil, err
	}
	return ps.movementRepo.ListByProduct(ctx, nil, productID, limit)
}

func (ps *productService) LowStock(ctx context.Context) ([]*ProductWithStock, error) {
	all, err := ps.ListProducts(ctx, true)
	if err != nil {
		return nil, err
	}
	low := make([]*ProductWithStock, 0)
	for _, p := range all {
		if p.TrackStock && p.OnHand <= p.ReorderLevel {
			low = append(low, p)
		}
	}
	return low, nil
}

func (ps *productService) ownedProduct(ctx context.Context, tx *gorm.DB, merchantID, productID uuid.UUID) (*types.Product, error) {
	found, err := ps.productRepo.GetByIDs(ctx, tx, []uuid.UUID{productID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	if len(found) == 0 || found[0] == nil || found[0].MerchantID != merchantID {
		return nil, fmt.Errorf("product not found")
	}
	return found[0], nil
}
