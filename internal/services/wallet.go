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

type WalletService interface {
	// EnsureWallet returns the owner's wallet, creating it on first use.
	EnsureWallet(ctx context.Context, tx *gorm.DB, ownerType string, ownerID uuid.UUID, currency string) (*types.Wallet, error)
	GetWallet(ctx context.Context, ownerType string, ownerID uuid.UUID) (*types.Wallet, error)
	// Transfer moves funds between two wallets atomically. Both rows are
	// locked in id order and the source balance is checked under the
	// lock, so concurrent transfers can never overdraw.
	Transfer(ctx context.Context, fromWalletID, toWalletID uuid.UUID, amountCents int64, kind, reason string) (uuid.UUID, error)
	TransferTx(ctx context.Context, tx *gorm.DB, fromWalletID, toWalletID uuid.UUID, amountCents int64, kind, reason string) (uuid.UUID, error)
	Topup(ctx context.Context, walletID uuid.UUID, amountCents int64, reason string) (uuid.UUID, error)
	// Reverse writes compensating entries for an earlier transfer under
	// the same transfer id. The original entries stay in the ledger, and
	// a transfer can only be reversed once.
	Reverse(ctx context.Context, transferID uuid.UUID, reason string) (uuid.UUID, error)
	ListEntries(ctx context.Context, walletID uuid.UUID, limit int) ([]*types.WalletEntry, error)
}

type walletService struct {
	db           *gorm.DB
	log          *logger.Logger
	walletRepo   repos.WalletRepo
	customerRepo repos.CustomerRepo
	schoolRepo   repos.SchoolRepo
}

func NewWalletService(db *gorm.DB, log *logger.Logger, walletRepo repos.WalletRepo, customerRepo repos.CustomerRepo, schoolRepo repos.SchoolRepo) WalletService {
	return &walletService{
		db:           db,
		log:          log.With("service", "WalletService"),
		walletRepo:   walletRepo,
		customerRepo: customerRepo,
		schoolRepo:   schoolRepo,
	}
}

// visibleTo restricts wallet operations to the caller's tenant: the
// merchant's own wallet, or wallets owned by its customers or schools.
func (ws *walletService) visibleTo(ctx context.Context, tx *gorm.DB, wallet *types.Wallet, merchantID uuid.UUID) error {
	switch wallet.OwnerType {
	case types.WalletOwnerMerchant:
		if wallet.OwnerID == merchantID {
			return nil
		}
	case types.WalletOwnerCustomer:
		customers, err := ws.customerRepo.GetByIDs(ctx, tx, []uuid.UUID{wallet.OwnerID})
		if err != nil {
			return fmt.Errorf("failed to resolve wallet owner: %w", err)
		}
		if len(customers) == 1 && customers[0].MerchantID == merchantID {
			return nil
		}
	case types.WalletOwnerSchool:
		schools, err := ws.schoolRepo.GetByIDs(ctx, tx, []uuid.UUID{wallet.OwnerID})
		if err != nil {
			return fmt.Errorf("failed to resolve wallet owner: %w", err)
		}
		if len(schools) == 1 && schools[0].MerchantID == merchantID {
			return nil
		}
	}
	return fmt.Errorf("wallet not found")
}

func (ws *walletService) EnsureWallet(ctx context.Context, tx *gorm.DB, ownerType string, ownerID uuid.UUID, currency string) (*types.Wallet, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("owner id required")
	}
	existing, err := ws.walletRepo.GetByOwner(ctx, tx, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wallet: %w", err)
	}
	if existing != nil {
		return existing, nil
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "SLE"
	}
	wallet := &types.Wallet{
		ID:        uuid.New(),
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Currency:  currency,
	}
	if _, err := ws.walletRepo.Create(ctx, tx, []*types.Wallet{wallet}); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return wallet, nil
}

func (ws *walletService) GetWallet(ctx context.Context, ownerType string, ownerID uuid.UUID) (*types.Wallet, error) {
	wallet, err := ws.walletRepo.GetByOwner(ctx, nil, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wallet: %w", err)
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet not found")
	}
	return wallet, nil
}

func (ws *walletService) Transfer(ctx context.Context, fromWalletID, toWalletID uuid.UUID, amountCents int64, kind, reason string) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("unauthorized")
	}
	var transferID uuid.UUID
	err := ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, tErr := ws.TransferTx(ctx, tx, fromWalletID, toWalletID, amountCents, kind, reason)
		if tErr != nil {
			return tErr
		}
		transferID = id
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return transferID, nil
}

func (ws *walletService) TransferTx(ctx context.Context, tx *gorm.DB, fromWalletID, toWalletID uuid.UUID, amountCents int64, kind, reason string) (uuid.UUID, error) {
	if tx == nil {
		return uuid.Nil, fmt.Errorf("transfer requires an open transaction")
	}
	if amountCents <= 0 {
		return uuid.Nil, fmt.Errorf("transfer amount must be positive")
	}
	if fromWalletID == toWalletID {
		return uuid.Nil, fmt.Errorf("cannot transfer a wallet to itself")
	}

	locked, err := ws.walletRepo.LockByIDs(ctx, tx, []uuid.UUID{fromWalletID, toWalletID})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to lock wallets: %w", err)
	}
	if len(locked) != 2 {
		return uuid.Nil, fmt.Errorf("wallet not found")
	}
	var from, to *types.Wallet
	for _, w := range locked {
		switch w.ID {
		case fromWalletID:
			from = w
		case toWalletID:
			to = w
		}
	}
	if from == nil || to == nil {
		return uuid.Nil, fmt.Errorf("wallet not found")
	}
	if from.Currency != to.Currency {
		return uuid.Nil, fmt.Errorf("wallet currencies do not match")
	}
	// Both wallets must belong to the caller's tenant.
	if rd := requestdata.GetRequestData(ctx); rd != nil && rd.MerchantID != uuid.Nil {
		if err := ws.visibleTo(ctx, tx, from, rd.MerchantID); err != nil {
			return uuid.Nil, err
		}
		if err := ws.visibleTo(ctx, tx, to, rd.MerchantID); err != nil {
			return uuid.Nil, err
		}
	}
	if from.Balance < amountCents {
		return uuid.Nil, fmt.Errorf("insufficient funds")
	}

	transferID := uuid.New()
	now := time.Now().UTC()
	entries := []*types.WalletEntry{
		{
			ID:          uuid.New(),
			WalletID:    from.ID,
			TransferID:  transferID,
			Direction:   types.WalletEntryDebit,
			AmountCents: amountCents,
			Kind:        kind,
			Reason:      reason,
		},
		{
			ID:          uuid.New(),
			WalletID:    to.ID,
			TransferID:  transferID,
			Direction:   types.WalletEntryCredit,
			AmountCents: amountCents,
			Kind:        kind,
			Reason:      reason,
		},
	}
	if _, err := ws.walletRepo.CreateEntries(ctx, tx, entries); err != nil {
		return uuid.Nil, fmt.Errorf("failed to write ledger entries: %w", err)
	}
	if err := ws.walletRepo.UpdateFields(ctx, tx, from.ID, map[string]interface{}{
		"balance":    from.Balance - amountCents,
		"updated_at": now,
	}); err != nil {
		return uuid.Nil, fmt.Errorf("failed to debit wallet: %w", err)
	}
	if err := ws.walletRepo.UpdateFields(ctx, tx, to.ID, map[string]interface{}{
		"balance":    to.Balance + amountCents,
		"updated_at": now,
	}); err != nil {
		return uuid.Nil, fmt.Errorf("failed to credit wallet: %w", err)
	}
	return transferID, nil
}

func (ws *walletService) Topup(ctx context.Context, walletID uuid.UUID, amountCents int64, reason string) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("unauthorized")
	}
	if amountCents <= 0 {
		return uuid.Nil, fmt.Errorf("topup amount must be positive")
	}
	transferID := uuid.New()
	err := ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, lErr := ws.walletRepo.LockByIDs(ctx, tx, []uuid.UUID{walletID})
		if lErr != nil {
			return fmt.Errorf("failed to lock wallet: %w", lErr)
		}
		if len(locked) == 0 {
			return fmt.Errorf("wallet not found")
		}
		wallet := locked[0]
		if vErr := ws.visibleTo(ctx, tx, wallet, rd.MerchantID); vErr != nil {
			return vErr
		}
		entry := &types.WalletEntry{
			ID:          uuid.New(),
			WalletID:    wallet.ID,
			TransferID:  transferID,
			Direction:   types.WalletEntryCredit,
			AmountCents: amountCents,
			Kind:        types.WalletKindTopup,
			Reason:      reason,
		}
		if _, eErr := ws.walletRepo.CreateEntries(ctx, tx, []*types.WalletEntry{entry}); eErr != nil {
			return fmt.Errorf("failed to write topup entry: %w", eErr)
		}
		return ws.walletRepo.UpdateFields(ctx, tx, wallet.ID, map[string]interface{}{
			"balance":    wallet.Balance + amountCents,
			"updated_at": time.Now().UTC(),
		})
	})
	if err != nil {
		return uuid.Nil, err
	}
	return transferID, nil
}

func (ws *walletService) Reverse(ctx context.Context, transferID uuid.UUID, reason string) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("unauthorized")
	}
	if strings.TrimSpace(reason) == "" {
		reason = types.ReversalReasonManualCorrection
	}
	err := ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		original, oErr := ws.walletRepo.GetEntriesByTransferID(ctx, tx, transferID)
		if oErr != nil {
			return fmt.Errorf("failed to fetch transfer entries: %w", oErr)
		}
		if len(original) == 0 {
			return fmt.Errorf("transfer not found")
		}
		for _, e := range original {
			if e.Kind == types.WalletKindReversal {
				return fmt.Errorf("transfer was already reversed")
			}
		}

		walletIDs := make([]uuid.UUID, 0, len(original))
		seen := map[uuid.UUID]bool{}
		for _, e := range original {
			if !seen[e.WalletID] {
				seen[e.WalletID] = true
				walletIDs = append(walletIDs, e.WalletID)
			}
		}
		locked, lErr := ws.walletRepo.LockByIDs(ctx, tx, walletIDs)
		if lErr != nil {
			return fmt.Errorf("failed to lock wallets: %w", lErr)
		}
		byID := make(map[uuid.UUID]*types.Wallet, len(locked))
		for _, w := range locked {
			if vErr := ws.visibleTo(ctx, tx, w, rd.MerchantID); vErr != nil {
				return vErr
			}
			byID[w.ID] = w
		}

		now := time.Now().UTC()
		compensating := make([]*types.WalletEntry, 0, len(original))
		deltas := make(map[uuid.UUID]int64, len(walletIDs))
		for _, e := range original {
			direction := types.WalletEntryCredit
			delta := e.AmountCents
			if e.Direction == types.WalletEntryCredit {
				direction = types.WalletEntryDebit
				delta = -e.AmountCents
			}
			// Compensating entries keep the transfer id, which is what
			// the already-reversed guard above keys on.
			compensating = append(compensating, &types.WalletEntry{
				ID:          uuid.New(),
				WalletID:    e.WalletID,
				TransferID:  transferID,
				Direction:   direction,
				AmountCents: e.AmountCents,
				Kind:        types.WalletKindReversal,
				Reason:      reason,
			})
			deltas[e.WalletID] += delta
		}
		for walletID, delta := range deltas {
			wallet, ok := byID[walletID]
			if !ok {
				return fmt.Errorf("wallet not found")
			}
			if wallet.Balance+delta < 0 {
				return fmt.Errorf("reversal would overdraw wallet")
			}
		}
		if _, cErr := ws.walletRepo.CreateEntries(ctx, tx, compensating); cErr != nil {
			return fmt.Errorf("failed to write reversal entries: %w", cErr)
		}
		for walletID, delta := range deltas {
			wallet := byID[walletID]
			if uErr := ws.walletRepo.UpdateFields(ctx, tx, walletID, map[string]interface{}{
				"balance":    wallet.Balance + delta,
				"updated_at": now,
			}); uErr != nil {
				return fmt.Errorf("failed to apply reversal: %w", uErr)
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return transferID, nil
}

func (ws *walletService) ListEntries(ctx context.Context, walletID uuid.UUID, limit int) ([]*types.WalletEntry, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	wallets, err := ws.walletRepo.GetByIDs(ctx, nil, []uuid.UUID{walletID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wallet: %w", err)
	}
	if len(wallets) == 0 {
		return nil, fmt.Errorf("wallet not found")
	}
	if err := ws.visibleTo(ctx, nil, wallets[0], rd.MerchantID); err != nil {
		return nil, err
	}
	return ws.walletRepo.ListEntries(ctx, nil, walletID, limit)
}
