package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type WalletRepo interface {
	Create(ctx context.Context, tx *gorm.DB, wallets []*types.Wallet) ([]*types.Wallet, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Wallet, error)
	GetByOwner(ctx context.Context, tx *gorm.DB, ownerType string, ownerID uuid.UUID) (*types.Wallet, error)
	// LockByIDs loads rows FOR UPDATE in id order so concurrent transfers
	// touching the same pair never deadlock.
	LockByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Wallet, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	CreateEntries(ctx context.Context, tx *gorm.DB, entries []*types.WalletEntry) ([]*types.WalletEntry, error)
	ListEntries(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, limit int) ([]*types.WalletEntry, error)
	GetEntriesByTransferID(ctx context.Context, tx *gorm.DB, transferID uuid.UUID) ([]*types.WalletEntry, error)
}

type walletRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWalletRepo(db *gorm.DB, baseLog *logger.Logger) WalletRepo {
	return &walletRepo{db: db, log: baseLog.With("repo", "WalletRepo")}
}

func (r *walletRepo) Create(ctx context.Context, tx *gorm.DB, wallets []*types.Wallet) ([]*types.Wallet, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(wallets) == 0 {
		return []*types.Wallet{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&wallets).Error; err != nil {
		return nil, err
	}
	return wallets, nil
}

func (r *walletRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Wallet, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Wallet
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *walletRepo) GetByOwner(ctx context.Context, tx *gorm.DB, ownerType string, ownerID uuid.UUID) (*types.Wallet, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if ownerID == uuid.Nil {
		return nil, nil
	}
	var wallet types.Wallet
	err := transaction.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Limit(1).
		Find(&wallet).Error
	if err != nil {
		return nil, err
	}
	if wallet.ID == uuid.Nil {
		return nil, nil
	}
	return &wallet, nil
}

func (r *walletRepo) LockByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Wallet, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Wallet
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *walletRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Wallet{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *walletRepo) CreateEntries(ctx context.Context, tx *gorm.DB, entries []*types.WalletEntry) ([]*types.WalletEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(entries) == 0 {
		return []*types.WalletEntry{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *walletRepo) ListEntries(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, limit int) ([]*types.WalletEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.WalletEntry
	if walletID == uuid.Nil {
		return results, nil
	}
	q := transaction.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *walletRepo) GetEntriesByTransferID(ctx context.Context, tx *gorm.DB, transferID uuid.UUID) ([]*types.WalletEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.WalletEntry
	if transferID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("transfer_id = ?", transferID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
