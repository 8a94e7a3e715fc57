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

type TicketTypeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, ticketTypes []*types.TicketType) ([]*types.TicketType, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.TicketType, error)
	// LockByIDs loads rows FOR UPDATE; the capacity check and issued
	// increment must hold the same lock.
	LockByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.TicketType, error)
	IncrementIssued(ctx context.Context, tx *gorm.DB, id uuid.UUID, by int64) error
	ListByEvent(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) ([]*types.TicketType, error)
	ChangedSince(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, since time.Time) ([]*types.TicketType, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type ticketTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTicketTypeRepo(db *gorm.DB, baseLog *logger.Logger) TicketTypeRepo {
	return &ticketTypeRepo{db: db, log: baseLog.With("repo", "TicketTypeRepo")}
}

func (r *ticketTypeRepo) Create(ctx context.Context, tx *gorm.DB, ticketTypes []*types.TicketType) ([]*types.TicketType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ticketTypes) == 0 {
		return []*types.TicketType{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&ticketTypes).Error; err != nil {
		return nil, err
	}
	return ticketTypes, nil
}

func (r *ticketTypeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.TicketType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TicketType
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

func (r *ticketTypeRepo) LockByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.TicketType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TicketType
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

func (r *ticketTypeRepo) IncrementIssued(ctx context.Context, tx *gorm.DB, id uuid.UUID, by int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || by == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.TicketType{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"issued":     gorm.Expr("issued + ?", by),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *ticketTypeRepo) ListByEvent(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) ([]*types.TicketType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TicketType
	if eventID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ticketTypeRepo) ChangedSince(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, since time.Time) ([]*types.TicketType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TicketType
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

func (r *ticketTypeRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.TicketType{}).
		Where("id = ?", id).
		Updates(updates).Error
}
