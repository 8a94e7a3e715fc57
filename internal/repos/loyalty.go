package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type LoyaltyRepo interface {
	GetSettings(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) (*types.LoyaltySettings, error)
	UpsertSettings(ctx context.Context, tx *gorm.DB, settings *types.LoyaltySettings) (*types.LoyaltySettings, error)
	GetAccount(ctx context.Context, tx *gorm.DB, merchantID, customerID uuid.UUID) (*types.LoyaltyAccount, error)
	CreateAccount(ctx context.Context, tx *gorm.DB, account *types.LoyaltyAccount) (*types.LoyaltyAccount, error)
	// LockAccount holds the row FOR UPDATE across the balance check and write.
	LockAccount(ctx context.Context, tx *gorm.DB, merchantID, customerID uuid.UUID) (*types.LoyaltyAccount, error)
	UpdateAccountFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	CreateTransaction(ctx context.Context, tx *gorm.DB, txn *types.LoyaltyTransaction) (*types.LoyaltyTransaction, error)
	ListTransactions(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, limit int) ([]*types.LoyaltyTransaction, error)
	AccountsChangedSince(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, since time.Time) ([]*types.LoyaltyAccount, error)
}

type loyaltyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLoyaltyRepo(db *gorm.DB, baseLog *logger.Logger) LoyaltyRepo {
	return &loyaltyRepo{db: db, log: baseLog.With("repo", "LoyaltyRepo")}
}

func (r *loyaltyRepo) GetSettings(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) (*types.LoyaltySettings, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if merchantID == uuid.Nil {
		return nil, nil
	}
	var settings types.LoyaltySettings
	err := transaction.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Limit(1).
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	if settings.ID == uuid.Nil {
		return nil, nil
	}
	return &settings, nil
}

func (r *loyaltyRepo) UpsertSettings(ctx context.Context, tx *gorm.DB, settings *types.LoyaltySettings) (*types.LoyaltySettings, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if settings == nil {
		return nil, nil
	}
	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "merchant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"earn_rate_bps", "redeem_value_cents", "enabled", "updated_at"}),
		}).
		Create(settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *loyaltyRepo) GetAccount(ctx context.Context, tx *gorm.DB, merchantID, customerID uuid.UUID) (*types.LoyaltyAccount, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if merchantID == uuid.Nil || customerID == uuid.Nil {
		return nil, nil
	}
	var account types.LoyaltyAccount
	err := transaction.WithContext(ctx).
		Where("merchant_id = ? AND customer_id = ?", merchantID, customerID).
		Limit(1).
		Find(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == uuid.Nil {
		return nil, nil
	}
	return &account, nil
}

func (r *loyaltyRepo) CreateAccount(ctx context.Context, tx *gorm.DB, account *types.LoyaltyAccount) (*types.LoyaltyAccount, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if account == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

func (r *loyaltyRepo) LockAccount(ctx context.Context, tx *gorm.DB, merchantID, customerID uuid.UUID) (*types.LoyaltyAccount, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if merchantID == uuid.Nil || customerID == uuid.Nil {
		return nil, nil
	}
	var account types.LoyaltyAccount
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("merchant_id = ? AND customer_id = ?", merchantID, customerID).
		Limit(1).
		Find(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == uuid.Nil {
		return nil, nil
	}
	return &account, nil
}

func (r *loyaltyRepo) UpdateAccountFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.LoyaltyAccount{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *loyaltyRepo) CreateTransaction(ctx context.Context, tx *gorm.DB, txn *types.LoyaltyTransaction) (*types.LoyaltyTransaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if txn == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *loyaltyRepo) ListTransactions(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, limit int) ([]*types.LoyaltyTransaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.LoyaltyTransaction
	if accountID == uuid.Nil {
		return results, nil
	}
	q := transaction.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *loyaltyRepo) AccountsChangedSince(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, since time.Time) ([]*types.LoyaltyAccount, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.LoyaltyAccount
	if merchantID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("merchant_id = ? AND updated_at > ?", merchantID, since).
		Order("updated_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
