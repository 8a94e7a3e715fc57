package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/PeeapDev/merchant-backend/internal/types"
)

type ticketingFixture struct {
	merchantID uuid.UUID
	svc        TicketingService

	events  *fakeEventRepo
	tts     *fakeTicketTypeRepo
	tickets *fakeTicketRepo
}

func newTicketingFixture(t *testing.T) *ticketingFixture {
	t.Helper()
	fx := &ticketingFixture{
		merchantID: uuid.New(),
		events:     newFakeEventRepo(),
		tts:        newFakeTicketTypeRepo(),
		tickets:    newFakeTicketRepo(),
	}
	fx.svc = NewTicketingService(newTestDB(t), newTestLogger(t), fx.events, fx.tts, fx.tickets, nil)
	return fx
}

func (fx *ticketingFixture) issueTicket(eventStatus string) *types.Ticket {
	event := &types.Event{
		ID:         uuid.New(),
		MerchantID: fx.merchantID,
		Name:       "Quiz night",
		Status:     eventStatus,
	}
	fx.events.add(event)
	tt := &types.TicketType{
		ID:         uuid.New(),
		MerchantID: fx.merchantID,
		EventID:    event.ID,
		Name:       "Entry",
		PriceCents: 500,
		Capacity:   50,
		Issued:     1,
	}
	fx.tts.add(tt)
	ticket := &types.Ticket{
		ID:           uuid.New(),
		MerchantID:   fx.merchantID,
		EventID:      event.ID,
		TicketTypeID: tt.ID,
		QRCode:       uuid.New(),
		Status:       types.TicketStatusIssued,
	}
	fx.tickets.add(ticket)
	return ticket
}

func TestRedeemTicket_SecondScanReportsAlreadyRedeemed(t *testing.T) {
	fx := newTicketingFixture(t)
	ctx := authedCtx(fx.merchantID)
	ticket := fx.issueTicket(types.EventStatusPublished)

	first, err := fx.svc.RedeemTicket(ctx, ticket.QRCode)
	if err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	if first.AlreadyRedeemed {
		t.Fatalf("first scan must not report already redeemed")
	}
	if first.Ticket.Status != types.TicketStatusRedeemed {
		t.Fatalf("ticket status = %s, want %s", first.Ticket.Status, types.TicketStatusRedeemed)
	}

	second, err := fx.svc.RedeemTicket(ctx, ticket.QRCode)
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}
	if !second.AlreadyRedeemed {
		t.Fatalf("second scan must report already redeemed")
	}
}

func TestRedeemTicket_RejectsCancelledEvent(t *testing.T) {
	fx := newTicketingFixture(t)
	ctx := authedCtx(fx.merchantID)
	ticket := fx.issueTicket(types.EventStatusCancelled)

	_, err := fx.svc.RedeemTicket(ctx, ticket.QRCode)
	if err == nil || !strings.Contains(err.Error(), "cancelled") {
		t.Fatalf("expected cancelled event rejection, got %v", err)
	}
	if ticket.Status != types.TicketStatusIssued {
		t.Fatalf("ticket must stay issued, got %s", ticket.Status)
	}
}

func TestRedeemTicket_UnknownCodeNotFound(t *testing.T) {
	fx := newTicketingFixture(t)
	ctx := authedCtx(fx.merchantID)
	fx.issueTicket(types.EventStatusPublished)

	_, err := fx.svc.RedeemTicket(ctx, uuid.New())
	if err == nil || !strings.Contains(err.Error(), "ticket not found") {
		t.Fatalf("expected ticket not found, got %v", err)
	}
}
