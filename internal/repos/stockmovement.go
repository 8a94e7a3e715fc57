package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type StockMovementRepo interface {
	Create(ctx context.Context, tx *gorm.DB, movements []*types.StockMovement) ([]*types.StockMovement, error)
	// OnHand sums the signed ledger for one product. Callers who need
	// the value to hold must lock the product row first.
	OnHand(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (int64, error)
	OnHandBulk(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	ListByProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, limit int) ([]*types.StockMovement, error)
}

type stockMovementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStockMovementRepo(db *gorm.DB, baseLog *logger.Logger) StockMovementRepo {
	return &stockMovementRepo{db: db, log: baseLog.With("repo", "StockMovementRepo")}
}

func (r *stockMovementRepo) Create(ctx context.Context, tx *gorm.DB, movements []*types.StockMovement) ([]*types.StockMovement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(movements) == 0 {
		return []*types.StockMovement{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *stockMovementRepo) OnHand(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if productID == uuid.Nil {
		return 0, nil
	}
	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.StockMovement{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *stockMovementRepo) OnHandBulk(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	out := make(map[uuid.UUID]int64, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	type row struct {
		ProductID uuid.UUID
		Total     int64
	}
	var rows []row
	if err := transaction.WithContext(ctx).
		Model(&types.StockMovement{}).
		Where("product_id IN ?", productIDs).
		Select("product_id, COALESCE(SUM(quantity), 0) AS total").
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, rw := range rows {
		out[rw.ProductID] = rw.Total
	}
	return out, nil
}

func (r *stockMovementRepo) ListByProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, limit int) ([]*types.StockMovement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StockMovement
	if productID == uuid.Nil {
		return results, nil
	}
	q := transaction.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
