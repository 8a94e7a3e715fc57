package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

type TicketRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tickets []*types.Ticket) ([]*types.Ticket, error)
	// LockByQRCode loads the ticket FOR UPDATE so double scans serialize.
	LockByQRCode(ctx context.Context, tx *gorm.DB, qrCode uuid.UUID) (*types.Ticket, error)
	ListByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]*types.Ticket, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type ticketRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTicketRepo(db *gorm.DB, baseLog *logger.Logger) TicketRepo {
	return &ticketRepo{db: db, log: baseLog.With("repo", "TicketRepo")}
}

func (r *ticketRepo) Create(ctx context.Context, tx *gorm.DB, tickets []*types.Ticket) ([]*types.Ticket, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(tickets) == 0 {
		return []*types.Ticket{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepo) LockByQRCode(ctx context.Context, tx *gorm.DB, qrCode uuid.UUID) (*types.Ticket, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if qrCode == uuid.Nil {
		return nil, nil
	}
	var ticket types.Ticket
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("qr_code = ?", qrCode).
		Limit(1).
		Find(&ticket).Error
	if err != nil {
		return nil, err
	}
	if ticket.ID == uuid.Nil {
		return nil, nil
	}
	return &ticket, nil
}

func (r *ticketRepo) ListByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]*types.Ticket, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Ticket
	if orderID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ticketRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Ticket{}).
		Where("id = ?", id).
		Updates(updates).Error
}
