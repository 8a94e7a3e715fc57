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

// EarnedPoints converts a sale total into loyalty points: rate is basis
// points per unit spent, truncated toward zero.
func EarnedPoints(totalCents, earnRateBPS int64) int64 {
	if totalCents <= 0 || earnRateBPS <= 0 {
		return 0
	}
	return totalCents * earnRateBPS / 10000
}

// RedeemValue converts points into a discount amount.
func RedeemValue(points, redeemValueCents int64) int64 {
	if points <= 0 || redeemValueCents <= 0 {
		return 0
	}
	return points * redeemValueCents
}

type LoyaltyService interface {
	GetSettings(ctx context.Context) (*types.LoyaltySettings, error)
	UpdateSettings(ctx context.Context, enabled bool, earnRateBPS, redeemValueCents int64) (*types.LoyaltySettings, error)
	GetAccount(ctx context.Context, customerID uuid.UUID) (*types.LoyaltyAccount, error)
	ListTransactions(ctx context.Context, customerID uuid.UUID, limit int) ([]*types.LoyaltyTransaction, error)
	Adjust(ctx context.Context, customerID uuid.UUID, points int64, reason string) (*types.LoyaltyAccount, error)

	// EarnTx and RedeemTx run inside the checkout transaction so points
	// and the sale commit together.
	EarnTx(ctx context.Context, tx *gorm.DB, merchantID, customerID uuid.UUID, totalCents int64, orderID uuid.UUID) (int64, error)
	RedeemTx(ctx context.Context, tx *gorm.DB, merchantID, customerID uuid.UUID, points int64, orderID uuid.UUID) (int64, error)
}

type loyaltyService struct {
	db          *gorm.DB
	log         *logger.Logger
	loyaltyRepo repos.LoyaltyRepo
}

func NewLoyaltyService(db *gorm.DB, log *logger.Logger, loyaltyRepo repos.LoyaltyRepo) LoyaltyService {
	return &loyaltyService{
		db:          db,
		log:         log.With("service", "LoyaltyService"),
		loyaltyRepo: loyaltyRepo,
	}
}

func (ls *loyaltyService) GetSettings(ctx context.Context) (*types.LoyaltySettings, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	settings, err := ls.loyaltyRepo.GetSettings(ctx, nil, rd.MerchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch loyalty settings: %w", err)
	}
	if settings == nil {
		// Disabled defaults until the merchant opts in.
		return &types.LoyaltySettings{MerchantID: rd.MerchantID}, nil
	}
	return settings, nil
}

func (ls *loyaltyService) UpdateSettings(ctx context.Context, enabled bool, earnRateBPS, redeemValueCents int64) (*types.LoyaltySettings, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if earnRateBPS < 0 || redeemValueCents < 0 {
		return nil, fmt.Errorf("loyalty rates must not be negative")
	}
	settings := &types.LoyaltySettings{
		ID:               uuid.New(),
		MerchantID:       rd.MerchantID,
		Enabled:          enabled,
		EarnRateBPS:      earnRateBPS,
		RedeemValueCents: redeemValueCents,
		UpdatedAt:        time.Now().UTC(),
	}
	if _, err := ls.loyaltyRepo.UpsertSettings(ctx, nil, settings); err != nil {
		return nil, fmt.Errorf("failed to save loyalty settings: %w", err)
	}
	return settings, nil
}

func (ls *loyaltyService) GetAccount(ctx context.Context, customerID uuid.UUID) (*types.LoyaltyAccount, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	account, err := ls.loyaltyRepo.GetAccount(ctx, nil, rd.MerchantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch loyalty account: %w", err)
	}
	if account == nil {
		return &types.LoyaltyAccount{MerchantID: rd.MerchantID, CustomerID: customerID}, nil
	}
	return account, nil
}

func (ls *loyaltyService) ListTransactions(ctx context.Context, customerID uuid.UUID, limit int) ([]*types.LoyaltyTransaction, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	account, err := ls.loyaltyRepo.GetAccount(ctx, nil, rd.MerchantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch loyalty account: %w", err)
	}
	if account == nil {
		return []*types.LoyaltyTransaction{}, nil
	}
	return ls.loyaltyRepo.ListTransactions(ctx, nil, account.ID, limit)
}

func (ls *loyaltyService) Adjust(ctx context.Context, customerID uuid.UUID, points int64, reason string) (*types.LoyaltyAccount, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if points == 0 {
		return nil, fmt.Errorf("points must not be zero")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("reason required")
	}

	var out *types.LoyaltyAccount
	err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, aErr := ls.lockOrCreateAccount(ctx, tx, rd.MerchantID, customerID)
		if aErr != nil {
			return aErr
		}
		if account.Balance+points < 0 {
			return fmt.Errorf("adjustment would take balance below zero")
		}
		txn := &types.LoyaltyTransaction{
			ID:        uuid.New(),
			AccountID: account.ID,
			Kind:      types.LoyaltyKindAdjust,
			Points:    points,
			Reason:    reason,
		}
		if _, tErr := ls.loyaltyRepo.CreateTransaction(ctx, tx, txn); tErr != nil {
			return fmt.Errorf("failed to record adjustment: %w", tErr)
		}
		if uErr := ls.loyaltyRepo.UpdateAccountFields(ctx, tx, account.ID, map[string]interface{}{
			"balance":    account.Balance + points,
			"updated_at": time.Now().UTC(),
		}); uErr != nil {
			return fmt.Errorf("failed to update balance: %w", uErr)
		}
		account.Balance += points
		out = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ls *loyaltyService) EarnTx(ctx context.Context, tx *gorm.DB, merchantID, customerID uuid.UUID, totalCents int64, orderID uuid.UUID) (int64, error) {
	if customerID == uuid.Nil {
		return 0, nil
	}
	settings, err := ls.loyaltyRepo.GetSettings(ctx, tx, merchantID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch loyalty settings: %w", err)
	}
	if settings == nil || !settings.Enabled {
		return 0, nil
	}
	points := EarnedPoints(totalCents, settings.EarnRateBPS)
	if points == 0 {
		return 0, nil
	}
	account, err := ls.lockOrCreateAccount(ctx, tx, merchantID, customerID)
	if err != nil {
		return 0, err
	}
	oID := orderID
	txn := &types.LoyaltyTransaction{
		ID:        uuid.New(),
		AccountID: account.ID,
		Kind:      types.LoyaltyKindEarn,
		Points:    points,
		OrderID:   &oID,
	}
	if _, err := ls.loyaltyRepo.CreateTransaction(ctx, tx, txn); err != nil {
		return 0, fmt.Errorf("failed to record earn: %w", err)
	}
	if err := ls.loyaltyRepo.UpdateAccountFields(ctx, tx, account.ID, map[string]interface{}{
		"balance":    account.Balance + points,
		"updated_at": time.Now().UTC(),
	}); err != nil {
		return 0, fmt.Errorf("failed to update balance: %w", err)
	}
	return points, nil
}

func (ls *loyaltyService) RedeemTx(ctx context.Context, tx *gorm.DB, merchantID, customerID uuid.UUID, points int64, orderID uuid.UUID) (int64, error) {
	if points <= 0 {
		return 0, fmt.Errorf("redeem points must be positive")
	}
	if customerID == uuid.Nil {
		return 0, fmt.Errorf("redeeming requires a customer")
	}
	settings, err := ls.loyaltyRepo.GetSettings(ctx, tx, merchantID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch loyalty settings: %w", err)
	}
	if settings == nil || !settings.Enabled {
		return 0, fmt.Errorf("loyalty is not enabled")
	}
	account, err := ls.loyaltyRepo.LockAccount(ctx, tx, merchantID, customerID)
	if err != nil {
		return 0, fmt.Errorf("failed to lock loyalty account: %w", err)
	}
	if account == nil || account.Balance < points {
		return 0, fmt.Errorf("insufficient loyalty points")
	}
	oID := orderID
	txn := &types.LoyaltyTransaction{
		ID:        uuid.New(),
		AccountID: account.ID,
		Kind:      types.LoyaltyKindRedeem,
		Points:    -points,
		OrderID:   &oID,
	}
	if _, err := ls.loyaltyRepo.CreateTransaction(ctx, tx, txn); err != nil {
		return 0, fmt.Errorf("failed to record redeem: %w", err)
	}
	if err := ls.loyaltyRepo.UpdateAccountFields(ctx, tx, account.ID, map[string]interface{}{
		"balance":    account.Balance - points,
		"updated_at": time.Now().UTC(),
	}); err != nil {
		return 0, fmt.Errorf("failed to update balance: %w", err)
	}
	return RedeemValue(points, settings.RedeemValueCents), nil
}

func (ls *loyaltyService) lockOrCreateAccount(ctx context.Context, tx *gorm.DB, merchantID, customerID uuid.UUID) (*types.LoyaltyAccount, error) {
	account, err := ls.loyaltyRepo.LockAccount(ctx, tx, merchantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock loyalty account: %w", err)
	}
	if account != nil {
		return account, nil
	}
	account = &types.LoyaltyAccount{
		ID:         uuid.New(),
		MerchantID: merchantID,
		CustomerID: customerID,
	}
	if _, err := ls.loyaltyRepo.CreateAccount(ctx, tx, account); err != nil {
		return nil, fmt.Errorf("failed to create loyalty account: %w", err)
	}
	return account, nil
}
