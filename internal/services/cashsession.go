package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/realtime"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

// ExpectedCash is the drawer amount the till should hold at close.
func ExpectedCash(openingCents, cashSalesCents, paidInCents, paidOutCents int64) int64 {
	return openingCents + cashSalesCents + paidInCents - paidOutCents
}

type CashSessionService interface {
	// OpenSession starts a till session. A register can only have one
	// open session at a time.
	OpenSession(ctx context.Context, registerID uuid.UUID, openingCents int64) (*types.CashSession, error)
	// Adjust records a paid-in or paid-out against the open session.
	Adjust(ctx context.Context, sessionID uuid.UUID, direction string, amountCents int64, reason string) (*types.CashSession, error)
	// CloseSession counts the drawer, computes expected and variance and
	// freezes the row.
	CloseSession(ctx context.Context, sessionID uuid.UUID, countedCents int64) (*types.CashSession, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*types.CashSession, error)
	ListSessions(ctx context.Context, limit int) ([]*types.CashSession, error)
	ListAdjustments(ctx context.Context, sessionID uuid.UUID) ([]*types.CashAdjustment, error)
}

type cashSessionService struct {
	db           *gorm.DB
	log          *logger.Logger
	cashRepo     repos.CashSessionRepo
	registerRepo repos.RegisterRepo
	paymentRepo  repos.PaymentRepo
	emit         SSEEmitter
}

func NewCashSessionService(db *gorm.DB, log *logger.Logger, cashRepo repos.CashSessionRepo, registerRepo repos.RegisterRepo, paymentRepo repos.PaymentRepo, emit SSEEmitter) CashSessionService {
	return &cashSessionService{
		db:           db,
		log:          log.With("service", "CashSessionService"),
		cashRepo:     cashRepo,
		registerRepo: registerRepo,
		paymentRepo:  paymentRepo,
		emit:         emit,
	}
}

func (cs *cashSessionService) OpenSession(ctx context.Context, registerID uuid.UUID, openingCents int64) (*types.CashSession, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if openingCents < 0 {
		return nil, fmt.Errorf("opening float must not be negative")
	}
	registers, err := cs.registerRepo.GetByIDs(ctx, nil, []uuid.UUID{registerID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch register: %w", err)
	}
	if len(registers) == 0 || registers[0].MerchantID != rd.MerchantID {
		return nil, fmt.Errorf("register not found")
	}

	var session *types.CashSession
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		open, oErr := cs.cashRepo.LockOpenByRegister(ctx, tx, registerID)
		if oErr != nil {
			return fmt.Errorf("failed to check for open session: %w", oErr)
		}
		if open != nil {
			return fmt.Errorf("register already has an open cash session")
		}
		session = &types.CashSession{
			ID:           uuid.New(),
			MerchantID:   rd.MerchantID,
			RegisterID:   registerID,
			Status:       types.CashSessionStatusOpen,
			OpenedBy:     rd.UserID,
			OpeningCents: openingCents,
			OpenedAt:     time.Now().UTC(),
		}
		if _, cErr := cs.cashRepo.Create(ctx, tx, []*types.CashSession{session}); cErr != nil {
			return fmt.Errorf("failed to open cash session: %w", cErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cs.emit != nil {
		cs.emit.Emit(ctx, realtime.SSEMessage{
			Channel: rd.MerchantID.String(),
			Event:   realtime.SSEEventCashSessionOpened,
			Data:    map[string]any{"session_id": session.ID, "register_id": registerID},
		})
	}
	return session, nil
}

func (cs *cashSessionService) Adjust(ctx context.Context, sessionID uuid.UUID, direction string, amountCents int64, reason string) (*types.CashSession, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if direction != types.CashAdjustmentIn && direction != types.CashAdjustmentOut {
		return nil, fmt.Errorf("direction must be %s or %s", types.CashAdjustmentIn, types.CashAdjustmentOut)
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("adjustment amount must be positive")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("reason required")
	}

	var out *types.CashSession
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, sErr := cs.lockOwnedSession(ctx, tx, rd.MerchantID, sessionID)
		if sErr != nil {
			return sErr
		}
		if session.Status != types.CashSessionStatusOpen {
			return fmt.Errorf("cash session is closed")
		}
		adjustment := &types.CashAdjustment{
			ID:            uuid.New(),
			CashSessionID: session.ID,
			Direction:     direction,
			AmountCents:   amountCents,
			Reason:        reason,
			CreatedBy:     rd.UserID,
		}
		if _, aErr := cs.cashRepo.CreateAdjustment(ctx, tx, adjustment); aErr != nil {
			return fmt.Errorf("failed to record adjustment: %w", aErr)
		}
		updates := map[string]interface{}{"updated_at": time.Now().UTC()}
		if direction == types.CashAdjustmentIn {
			session.PaidInCents += amountCents
			updates["paid_in_cents"] = session.PaidInCents
		} else {
			session.PaidOutCents += amountCents
			updates["paid_out_cents"] = session.PaidOutCents
		}
		if uErr := cs.cashRepo.UpdateFields(ctx, tx, session.ID, updates); uErr != nil {
			return fmt.Errorf("failed to update session: %w", uErr)
		}
		out = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (cs *cashSessionService) CloseSession(ctx context.Context, sessionID uuid.UUID, countedCents int64) (*types.CashSession, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if countedCents < 0 {
		return nil, fmt.Errorf("counted amount must not be negative")
	}

	var out *types.CashSession
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, sErr := cs.lockOwnedSession(ctx, tx, rd.MerchantID, sessionID)
		if sErr != nil {
			return sErr
		}
		if session.Status != types.CashSessionStatusOpen {
			return fmt.Errorf("cash session is already closed")
		}
		cashSales, cErr := cs.paymentRepo.SumCashBySession(ctx, tx, session.ID)
		if cErr != nil {
			return fmt.Errorf("failed to sum cash sales: %w", cErr)
		}
		now := time.Now().UTC()
		expected := ExpectedCash(session.OpeningCents, cashSales, session.PaidInCents, session.PaidOutCents)
		variance := countedCents - expected
		closedBy := rd.UserID
		if uErr := cs.cashRepo.UpdateFields(ctx, tx, session.ID, map[string]interface{}{
			"status":           types.CashSessionStatusClosed,
			"closed_by":        closedBy,
			"cash_sales_cents": cashSales,
			"expected_cents":   expected,
			"counted_cents":    countedCents,
			"variance_cents":   variance,
			"closed_at":        now,
			"updated_at":       now,
		}); uErr != nil {
			return fmt.Errorf("failed to close session: %w", uErr)
		}
		session.Status = types.CashSessionStatusClosed
		session.ClosedBy = &closedBy
		session.CashSalesCents = cashSales
		session.ExpectedCents = expected
		session.CountedCents = countedCents
		session.VarianceCents = variance
		session.ClosedAt = &now
		out = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cs.emit != nil {
		cs.emit.Emit(ctx, realtime.SSEMessage{
			Channel: rd.MerchantID.String(),
			Event:   realtime.SSEEventCashSessionClosed,
			Data: map[string]any{
				"session_id":     out.ID,
				"register_id":    out.RegisterID,
				"expected_cents": out.ExpectedCents,
				"counted_cents":  out.CountedCents,
				"variance_cents": out.VarianceCents,
			},
		})
	}
	return out, nil
}

func (cs *cashSessionService) GetSession(ctx context.Context, sessionID uuid.UUID) (*types.CashSession, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	found, err := cs.cashRepo.GetByIDs(ctx, nil, []uuid.UUID{sessionID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cash session: %w", err)
	}
	if len(found) == 0 || found[0].MerchantID != rd.MerchantID {
		return nil, fmt.Errorf("cash session not found")
	}
	return found[0], nil
}

func (cs *cashSessionService) ListSessions(ctx context.Context, limit int) ([]*types.CashSession, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return cs.cashRepo.ListByMerchant(ctx, nil, rd.MerchantID, limit)
}

func (cs *cashSessionService) ListAdjustments(ctx context.Context, sessionID uuid.UUID) ([]*types.CashAdjustment, error) {
	if _, err := cs.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return cs.cashRepo.ListAdjustments(ctx, nil, sessionID)
}

func (cs *cashSessionService) lockOwnedSession(ctx context.Context, tx *gorm.DB, merchantID, sessionID uuid.UUID) (*types.CashSession, error) {
	session, err := cs.cashRepo.LockByID(ctx, tx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cash session: %w", err)
	}
	if session == nil || session.MerchantID != merchantID {
		return nil, fmt.Errorf("cash session not found")
	}
	return session, nil
}
