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

type CreateEventInput struct {
	Name     string
	Venue    string
	StartsAt time.Time
	EndsAt   *time.Time
}

type CreateTicketTypeInput struct {
	EventID    uuid.UUID
	Name       string
	PriceCents int64
	Capacity   int64
}

type RedeemResult struct {
	Ticket          *types.Ticket `json:"ticket"`
	AlreadyRedeemed bool          `json:"already_redeemed"`
}

type TicketingService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*types.Event, error)
	PublishEvent(ctx context.Context, eventID uuid.UUID) error
	CancelEvent(ctx context.Context, eventID uuid.UUID) error
	ListEvents(ctx context.Context) ([]*types.Event, error)

	CreateTicketType(ctx context.Context, input CreateTicketTypeInput) (*types.TicketType, error)
	ListTicketTypes(ctx context.Context, eventID uuid.UUID) ([]*types.TicketType, error)

	// RedeemTicket marks the ticket redeemed at the gate. Scanning an
	// already-redeemed ticket reports it instead of failing, so gate
	// staff see who scanned it first.
	RedeemTicket(ctx context.Context, qrCode uuid.UUID) (*RedeemResult, error)
}

type ticketingService struct {
	db             *gorm.DB
	log            *logger.Logger
	eventRepo      repos.EventRepo
	ticketTypeRepo repos.TicketTypeRepo
	ticketRepo     repos.TicketRepo
	emit           SSEEmitter
}

func NewTicketingService(db *gorm.DB, log *logger.Logger, eventRepo repos.EventRepo, ticketTypeRepo repos.TicketTypeRepo, ticketRepo repos.TicketRepo, emit SSEEmitter) TicketingService {
	return &ticketingService{
		db:             db,
		log:            log.With("service", "TicketingService"),
		eventRepo:      eventRepo,
		ticketTypeRepo: ticketTypeRepo,
		ticketRepo:     ticketRepo,
		emit:           emit,
	}
}

func (ts *ticketingService) CreateEvent(ctx context.Context, input CreateEventInput) (*types.Event, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("event name required")
	}
	if input.StartsAt.IsZero() {
		return nil, fmt.Errorf("event start time required")
	}
	if input.EndsAt != nil && !input.EndsAt.After(input.StartsAt) {
		return nil, fmt.Errorf("event end must be after start")
	}
	event := &types.Event{
		ID:         uuid.New(),
		MerchantID: rd.MerchantID,
		Name:       input.Name,
		Venue:      strings.TrimSpace(input.Venue),
		Status:     types.EventStatusDraft,
		StartsAt:   input.StartsAt,
		EndsAt:     input.EndsAt,
	}
	if _, err := ts.eventRepo.Create(ctx, nil, []*types.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (ts *ticketingService) PublishEvent(ctx context.Context, eventID uuid.UUID) error {
	return ts.transitionEvent(ctx, eventID, types.EventStatusDraft, types.EventStatusPublished)
}

func (ts *ticketingService) CancelEvent(ctx context.Context, eventID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return fmt.Errorf("unauthorized")
	}
	event, err := ts.ownedEvent(ctx, nil, rd.MerchantID, eventID)
	if err != nil {
		return err
	}
	if event.Status == types.EventStatusCancelled {
		return nil
	}
	return ts.eventRepo.UpdateFields(ctx, nil, event.ID, map[string]interface{}{
		"status":     types.EventStatusCancelled,
		"updated_at": time.Now().UTC(),
	})
}

func (ts *ticketingService) ListEvents(ctx context.Context) ([]*types.Event, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return ts.eventRepo.ListByMerchant(ctx, nil, rd.MerchantID)
}

func (ts *ticketingService) CreateTicketType(ctx context.Context, input CreateTicketTypeInput) (*types.TicketType, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("ticket type name required")
	}
	if input.Capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive")
	}
	if input.PriceCents < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}
	if _, err := ts.ownedEvent(ctx, nil, rd.MerchantID, input.EventID); err != nil {
		return nil, err
	}
	ticketType := &types.TicketType{
		ID:         uuid.New(),
		MerchantID: rd.MerchantID,
		EventID:    input.EventID,
		Name:       input.Name,
		PriceCents: input.PriceCents,
		Capacity:   input.Capacity,
	}
	if _, err := ts.ticketTypeRepo.Create(ctx, nil, []*types.TicketType{ticketType}); err != nil {
		return nil, fmt.Errorf("failed to create ticket type: %w", err)
	}
	return ticketType, nil
}

func (ts *ticketingService) ListTicketTypes(ctx context.Context, eventID uuid.UUID) ([]*types.TicketType, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if _, err := ts.ownedEvent(ctx, nil, rd.MerchantID, eventID); err != nil {
		return nil, err
	}
	return ts.ticketTypeRepo.ListByEvent(ctx, nil, eventID)
}

func (ts *ticketingService) RedeemTicket(ctx context.Context, qrCode uuid.UUID) (*RedeemResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	var result RedeemResult
	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ticket, tErr := ts.ticketRepo.LockByQRCode(ctx, tx, qrCode)
		if tErr != nil {
			return fmt.Errorf("failed to lock ticket: %w", tErr)
		}
		if ticket == nil || ticket.MerchantID != rd.MerchantID {
			return fmt.Errorf("ticket not found")
		}
		event, eErr := ts.ownedEvent(ctx, tx, rd.MerchantID, ticket.EventID)
		if eErr != nil {
			return eErr
		}
		if event.Status == types.EventStatusCancelled {
			return fmt.Errorf("event is cancelled")
		}
		switch ticket.Status {
		case types.TicketStatusVoid:
			return fmt.Errorf("ticket is void")
		case types.TicketStatusRedeemed:
			result.Ticket = ticket
			result.AlreadyRedeemed = true
			return nil
		}
		now := time.Now().UTC()
		if uErr := ts.ticketRepo.UpdateFields(ctx, tx, ticket.ID, map[string]interface{}{
			"status":      types.TicketStatusRedeemed,
			"redeemed_at": now,
			"redeemed_by": rd.UserID,
			"updated_at":  now,
		}); uErr != nil {
			return fmt.Errorf("failed to redeem ticket: %w", uErr)
		}
		ticket.Status = types.TicketStatusRedeemed
		ticket.RedeemedAt = &now
		redeemedBy := rd.UserID
		ticket.RedeemedBy = &redeemedBy
		result.Ticket = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.AlreadyRedeemed && ts.emit != nil {
		ts.emit.Emit(ctx, realtime.SSEMessage{
			Channel: rd.MerchantID.String(),
			Event:   realtime.SSEEventTicketRedeemed,
			Data:    map[string]any{"ticket_id": result.Ticket.ID, "event_id": result.Ticket.EventID},
		})
	}
	return &result, nil
}

func (ts *ticketingService) transitionEvent(ctx context.Context, eventID uuid.UUID, from, to string) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return fmt.Errorf("unauthorized")
	}
	event, err := ts.ownedEvent(ctx, nil, rd.MerchantID, eventID)
	if err != nil {
		return err
	}
	if event.Status != from {
		return fmt.Errorf("event is %s, expected %s", event.Status, from)
	}
	return ts.eventRepo.UpdateFields(ctx, nil, event.ID, map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().UTC(),
	})
}

func (ts *ticketingService) ownedEvent(ctx context.Context, tx *gorm.DB, merchantID, eventID uuid.UUID) (*types.Event, error) {
	found, err := ts.eventRepo.GetByIDs(ctx, tx, []uuid.UUID{eventID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	if len(found) == 0 || found[0] == nil || found[0].MerchantID != merchantID {
		return nil, fmt.Errorf("event not found")
	}
	return found[0], nil
}
