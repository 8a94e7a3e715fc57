package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/config"
	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

// LineTax computes the tax on a line total, basis points truncated
// toward zero.
func LineTax(amountCents, rateBPS int64) int64 {
	if amountCents <= 0 || rateBPS <= 0 {
		return 0
	}
	return amountCents * rateBPS / 10000
}

type CheckoutLine struct {
	ProductID    *uuid.UUID `json:"product_id,omitempty"`
	TicketTypeID *uuid.UUID `json:"ticket_type_id,omitempty"`
	Quantity     int64      `json:"quantity"`
	// UnitPriceCents overrides the catalog price for this product line
	// (haggled or marked-down sales). Tickets always sell at list price.
	UnitPriceCents *int64 `json:"unit_price_cents,omitempty"`
}

type CheckoutPayment struct {
	Method        string `json:"method"`
	AmountCents   int64  `json:"amount_cents"`
	TenderedCents int64  `json:"tendered_cents"`
}

type CheckoutInput struct {
	ClientRef    *uuid.UUID        `json:"client_ref,omitempty"`
	RegisterID   *uuid.UUID        `json:"register_id,omitempty"`
	DeviceID     *uuid.UUID        `json:"device_id,omitempty"`
	CustomerID   *uuid.UUID        `json:"customer_id,omitempty"`
	Lines        []CheckoutLine    `json:"lines"`
	Payments     []CheckoutPayment `json:"payments"`
	RedeemPoints int64             `json:"redeem_points"`
	Note         string            `json:"note"`
}

type CheckoutResult struct {
	Order        *types.Order       `json:"order"`
	Items        []*types.OrderItem `json:"items"`
	Payments     []*types.Payment   `json:"payments"`
	Tickets      []*types.Ticket    `json:"tickets"`
	PointsEarned int64              `json:"points_earned"`
	Replayed     bool               `json:"replayed"`
}

// CheckoutService turns a cart into a committed sale: one transaction
// covering the order, its items, stock decrements, ticket issuance,
// payments and loyalty. ClientRef makes the whole thing idempotent for
// offline replays.
type CheckoutService interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}

type checkoutService struct {
	db            *gorm.DB
	log           *logger.Logger
	orderRepo     repos.OrderRepo
	orderItemRepo repos.OrderItemRepo
	paymentRepo   repos.PaymentRepo
	productRepo   repos.ProductRepo
	stockRepo     repos.StockMovementRepo
	eventRepo     repos.EventRepo
	ttRepo        repos.TicketTypeRepo
	ticketRepo    repos.TicketRepo
	cashRepo      repos.CashSessionRepo
	loyalty       LoyaltyService
	wallets       WalletService
	taxRates      *config.TaxRates
	orderNotifier OrderNotifier
	stockNotifier StockNotifier
}

func NewCheckoutService(
	db *gorm.DB,
	log *logger.Logger,
	orderRepo repos.OrderRepo,
	orderItemRepo repos.OrderItemRepo,
	paymentRepo repos.PaymentRepo,
	productRepo repos.ProductRepo,
	stockRepo repos.StockMovementRepo,
	eventRepo repos.EventRepo,
	ttRepo repos.TicketTypeRepo,
	ticketRepo repos.TicketRepo,
	cashRepo repos.CashSessionRepo,
	loyalty LoyaltyService,
	wallets WalletService,
	taxRates *config.TaxRates,
	orderNotifier OrderNotifier,
	stockNotifier StockNotifier,
) CheckoutService {
	return &checkoutService{
		db:            db,
		log:           log.With("service", "CheckoutService"),
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		paymentRepo:   paymentRepo,
		productRepo:   productRepo,
		stockRepo:     stockRepo,
		eventRepo:     eventRepo,
		ttRepo:        ttRepo,
		ticketRepo:    ticketRepo,
		cashRepo:      cashRepo,
		loyalty:       loyalty,
		wallets:       wallets,
		taxRates:      taxRates,
		orderNotifier: orderNotifier,
		stockNotifier: stockNotifier,
	}
}

func (cs *checkoutService) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.MerchantID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if err := validateCheckoutInput(input); err != nil {
		return nil, err
	}

	var result *CheckoutResult
	var lowProducts []*lowStockProduct
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Replay guard. The unique index on client_ref backs this up if
		// two replays race past the read.
		if input.ClientRef != nil {
			existing, eErr := cs.orderRepo.GetByClientRef(ctx, tx, *input.ClientRef)
			if eErr != nil {
				return fmt.Errorf("failed to check client ref: %w", eErr)
			}
			if existing != nil {
				if existing.MerchantID != rd.MerchantID {
					return fmt.Errorf("order not found")
				}
				replay, rErr := cs.loadResult(ctx, tx, existing)
				if rErr != nil {
					return rErr
				}
				replay.Replayed = true
				result = replay
				return nil
			}
		}

		orderID := uuid.New()
		items, tickets, subtotal, tax, low, lErr := cs.buildLines(ctx, tx, rd, orderID, input.Lines)
		if lErr != nil {
			return lErr
		}
		lowProducts = low

		discount := int64(0)
		if input.RedeemPoints > 0 {
			if input.CustomerID == nil {
				return fmt.Errorf("redeeming requires a customer")
			}
			value, dErr := cs.loyalty.RedeemTx(ctx, tx, rd.MerchantID, *input.CustomerID, input.RedeemPoints, orderID)
			if dErr != nil {
				return dErr
			}
			// Returning an error rolls the deduction back, so the
			// customer never forfeits points past the order total.
			if value > subtotal+tax {
				return fmt.Errorf("redeemed points are worth %d, more than the %d due", value, subtotal+tax)
			}
			discount = value
		}
		total := subtotal + tax - discount

		paid := int64(0)
		for _, p := range input.Payments {
			paid += p.AmountCents
		}
		if paid != total {
			return fmt.Errorf("payments total %d does not match order total %d", paid, total)
		}

		order := &types.Order{
			ID:            orderID,
			MerchantID:    rd.MerchantID,
			RegisterID:    input.RegisterID,
			DeviceID:      input.DeviceID,
			ClientRef:     input.ClientRef,
			CustomerID:    input.CustomerID,
			Status:        types.OrderStatusNew,
			SubtotalCents: subtotal,
			TaxCents:      tax,
			DiscountCents: discount,
			TotalCents:    total,
			Note:          input.Note,
			CreatedBy:     rd.UserID,
		}

		payments, pErr := cs.buildPayments(ctx, tx, rd, input, order)
		if pErr != nil {
			return pErr
		}

		if _, cErr := cs.orderRepo.Create(ctx, tx, []*types.Order{order}); cErr != nil {
			return fmt.Errorf("failed to create order: %w", cErr)
		}
		if _, cErr := cs.orderItemRepo.Create(ctx, tx, items); cErr != nil {
			return fmt.Errorf("failed to create order items: %w", cErr)
		}
		if len(tickets) > 0 {
			if _, cErr := cs.ticketRepo.Create(ctx, tx, tickets); cErr != nil {
				return fmt.Errorf("failed to issue tickets: %w", cErr)
			}
		}
		if len(payments) > 0 {
			if _, cErr := cs.paymentRepo.Create(ctx, tx, payments); cErr != nil {
				return fmt.Errorf("failed to record payments: %w", cErr)
			}
		}

		earned := int64(0)
		if input.CustomerID != nil && total > 0 {
			e, eErr := cs.loyalty.EarnTx(ctx, tx, rd.MerchantID, *input.CustomerID, total, orderID)
			if eErr != nil {
				return eErr
			}
			earned = e
		}

		result = &CheckoutResult{
			Order:        order,
			Items:        items,
			Payments:     payments,
			Tickets:      tickets,
			PointsEarned: earned,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Replayed {
		cs.orderNotifier.OrderCreated(rd.MerchantID, result.Order)
		for _, lp := range lowProducts {
			cs.stockNotifier.StockLow(rd.MerchantID, lp.product, lp.onHand)
		}
	}
	return result, nil
}

type lowStockProduct struct {
	product *types.Product
	onHand  int64
}

// buildLines resolves cart lines against locked product and ticket-type
// rows, writes the sale stock movements and increments issued counts.
// Prices and tax come from the server-side rows unless a product line
// carries an explicit override.
func (cs *checkoutService) buildLines(ctx context.Context, tx *gorm.DB, rd *requestdata.RequestData, orderID uuid.UUID, lines []CheckoutLine) ([]*types.OrderItem, []*types.Ticket, int64, int64, []*lowStockProduct, error) {
	productQty := map[uuid.UUID]int64{}
	ticketQty := map[uuid.UUID]int64{}
	for _, line := range lines {
		if line.ProductID != nil {
			productQty[*line.ProductID] += line.Quantity
		} else {
			ticketQty[*line.TicketTypeID] += line.Quantity
		}
	}

	productIDs := make([]uuid.UUID, 0, len(productQty))
	for id := range productQty {
		productIDs = append(productIDs, id)
	}
	ticketTypeIDs := make([]uuid.UUID, 0, len(ticketQty))
	for id := range ticketQty {
		ticketTypeIDs = append(ticketTypeIDs, id)
	}

	products, err := cs.productRepo.LockByIDs(ctx, tx, productIDs)
	if err != nil {
		return nil, nil, 0, 0, nil, fmt.Errorf("failed to lock products: %w", err)
	}
	productByID := make(map[uuid.UUID]*types.Product, len(products))
	for _, p := range products {
		if p.MerchantID != rd.MerchantID {
			return nil, nil, 0, 0, nil, fmt.Errorf("product not found")
		}
		if !p.Active {
			return nil, nil, 0, 0, nil, fmt.Errorf("product %s is inactive", p.SKU)
		}
		productByID[p.ID] = p
	}
	for id := range productQty {
		if productByID[id] == nil {
			return nil, nil, 0, 0, nil, fmt.Errorf("product not found")
		}
	}

	ticketTypes, err := cs.ttRepo.LockByIDs(ctx, tx, ticketTypeIDs)
	if err != nil {
		return nil, nil, 0, 0, nil, fmt.Errorf("failed to lock ticket types: %w", err)
	}
	ttByID := make(map[uuid.UUID]*types.TicketType, len(ticketTypes))
	eventIDs := make([]uuid.UUID, 0, len(ticketTypes))
	for _, tt := range ticketTypes {
		if tt.MerchantID != rd.MerchantID {
			return nil, nil, 0, 0, nil, fmt.Errorf("ticket type not found")
		}
		ttByID[tt.ID] = tt
		eventIDs = append(eventIDs, tt.EventID)
	}
	for id := range ticketQty {
		if ttByID[id] == nil {
			return nil, nil, 0, 0, nil, fmt.Errorf("ticket type not found")
		}
	}
	if len(eventIDs) > 0 {
		events, evErr := cs.eventRepo.GetByIDs(ctx, tx, eventIDs)
		if evErr != nil {
			return nil, nil, 0, 0, nil, fmt.Errorf("failed to fetch events: %w", evErr)
		}
		for _, ev := range events {
			if ev.Status != types.EventStatusPublished {
				return nil, nil, 0, 0, nil, fmt.Errorf("event %s is not on sale", ev.Name)
			}
		}
	}

	// On-hand is read under the product locks, so concurrent checkouts
	// cannot both pass the guard.
	onHand, err := cs.stockRepo.OnHandBulk(ctx, tx, productIDs)
	if err != nil {
		return nil, nil, 0, 0, nil, fmt.Errorf("failed to read stock levels: %w", err)
	}

	var (
		items     []*types.OrderItem
		tickets   []*types.Ticket
		movements []*types.StockMovement
		low       []*lowStockProduct
		subtotal  int64
		tax       int64
	)
	refID := orderID
	for _, line := range lines {
		switch {
		case line.ProductID != nil:
			p := productByID[*line.ProductID]
			unitPrice := p.PriceCents
			if line.UnitPriceCents != nil {
				unitPrice = *line.UnitPriceCents
			}
			lineSubtotal := unitPrice * line.Quantity
			lineTax := LineTax(lineSubtotal, cs.taxRates.RateFor(p.TaxRateBPS, p.Category))
			items = append(items, &types.OrderItem{
				ID:             uuid.New(),
				OrderID:        orderID,
				ProductID:      line.ProductID,
				Name:           p.Name,
				Quantity:       line.Quantity,
				UnitPriceCents: unitPrice,
				TaxCents:       lineTax,
				TotalCents:     lineSubtotal + lineTax,
			})
			subtotal += lineSubtotal
			tax += lineTax
		case line.TicketTypeID != nil:
			tt := ttByID[*line.TicketTypeID]
			lineSubtotal := tt.PriceCents * line.Quantity
			items = append(items, &types.OrderItem{
				ID:             uuid.New(),
				OrderID:        orderID,
				TicketTypeID:   line.TicketTypeID,
				Name:           tt.Name,
				Quantity:       line.Quantity,
				UnitPriceCents: tt.PriceCents,
				TotalCents:     lineSubtotal,
			})
			subtotal += lineSubtotal
		}
	}

	for id, qty := range productQty {
		p := productByID[id]
		if !p.TrackStock {
			continue
		}
		remaining := onHand[id] - qty
		if remaining < 0 {
			return nil, nil, 0, 0, nil, fmt.Errorf("insufficient stock for %s: have %d, need %d", p.SKU, onHand[id], qty)
		}
		movements = append(movements, &types.StockMovement{
			ID:         uuid.New(),
			MerchantID: rd.MerchantID,
			ProductID:  id,
			Kind:       types.StockKindSale,
			Quantity:   -qty,
			RefType:    "order",
			RefID:      &refID,
			CreatedBy:  rd.UserID,
		})
		if remaining <= p.ReorderLevel {
			low = append(low, &lowStockProduct{product: p, onHand: remaining})
		}
	}
	if len(movements) > 0 {
		if _, mErr := cs.stockRepo.Create(ctx, tx, movements); mErr != nil {
			return nil, nil, 0, 0, nil, fmt.Errorf("failed to write stock movements: %w", mErr)
		}
	}

	for id, qty := range ticketQty {
		tt := ttByID[id]
		if tt.Issued+qty > tt.Capacity {
			return nil, nil, 0, 0, nil, fmt.Errorf("ticket type %s is sold out", tt.Name)
		}
		if iErr := cs.ttRepo.IncrementIssued(ctx, tx, id, qty); iErr != nil {
			return nil, nil, 0, 0, nil, fmt.Errorf("failed to reserve tickets: %w", iErr)
		}
		for i := int64(0); i < qty; i++ {
			tickets = append(tickets, &types.Ticket{
				ID:           uuid.New(),
				MerchantID:   rd.MerchantID,
				EventID:      tt.EventID,
				TicketTypeID: tt.ID,
				OrderID:      &refID,
				QRCode:       uuid.New(),
				Status:       types.TicketStatusIssued,
			})
		}
	}

	return items, tickets, subtotal, tax, low, nil
}

// buildPayments validates tenders against the open cash session and the
// customer wallet. Wallet payments move real funds inside the same
// transaction.
func (cs *checkoutService) buildPayments(ctx context.Context, tx *gorm.DB, rd *requestdata.RequestData, input CheckoutInput, order *types.Order) ([]*types.Payment, error) {
	var payments []*types.Payment
	for _, p := range input.Payments {
		payment := &types.Payment{
			ID:          uuid.New(),
			MerchantID:  rd.MerchantID,
			OrderID:     order.ID,
			Method:      p.Method,
			AmountCents: p.AmountCents,
		}
		switch p.Method {
		case types.PaymentMethodCash:
			if input.RegisterID == nil {
				return nil, fmt.Errorf("cash payments require a register")
			}
			session, sErr := cs.cashRepo.LockOpenByRegister(ctx, tx, *input.RegisterID)
			if sErr != nil {
				return nil, fmt.Errorf("failed to look up cash session: %w", sErr)
			}
			if session == nil || session.MerchantID != rd.MerchantID {
				return nil, fmt.Errorf("no open cash session for register")
			}
			if p.TenderedCents < p.AmountCents {
				return nil, fmt.Errorf("tendered cash is less than the amount due")
			}
			payment.TenderedCents = p.TenderedCents
			payment.ChangeCents = p.TenderedCents - p.AmountCents
			sessionID := session.ID
			payment.CashSessionID = &sessionID
			order.CashSessionID = &sessionID
		case types.PaymentMethodWallet:
			if input.CustomerID == nil {
				return nil, fmt.Errorf("wallet payments require a customer")
			}
			customerWallet, wErr := cs.wallets.EnsureWallet(ctx, tx, types.WalletOwnerCustomer, *input.CustomerID, "")
			if wErr != nil {
				return nil, wErr
			}
			merchantWallet, wErr := cs.wallets.EnsureWallet(ctx, tx, types.WalletOwnerMerchant, rd.MerchantID, "")
			if wErr != nil {
				return nil, wErr
			}
			transferID, tErr := cs.wallets.TransferTx(ctx, tx, customerWallet.ID, merchantWallet.ID, p.AmountCents, types.WalletKindSale, fmt.Sprintf("order %s", order.ID))
			if tErr != nil {
				return nil, tErr
			}
			payment.WalletTransferID = &transferID
		case types.PaymentMethodCard:
			// Card settlement happens out of band; the row records the
			// tender for reconciliation.
		default:
			return nil, fmt.Errorf("unsupported payment method %q", p.Method)
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

func (cs *checkoutService) loadResult(ctx context.Context, tx *gorm.DB, order *types.Order) (*CheckoutResult, error) {
	items, err := cs.orderItemRepo.ListByOrders(ctx, tx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order items: %w", err)
	}
	payments, err := cs.paymentRepo.ListByOrders(ctx, tx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}
	tickets, err := cs.ticketRepo.ListByOrder(ctx, tx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets: %w", err)
	}
	return &CheckoutResult{Order: order, Items: items, Payments: payments, Tickets: tickets}, nil
}

func validateCheckoutInput(input CheckoutInput) error {
	if len(input.Lines) == 0 {
		return fmt.Errorf("cart is empty")
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("line quantity must be positive")
		}
		hasProduct := line.ProductID != nil && *line.ProductID != uuid.Nil
		hasTicket := line.TicketTypeID != nil && *line.TicketTypeID != uuid.Nil
		if hasProduct == hasTicket {
			return fmt.Errorf("each line must reference exactly one product or ticket type")
		}
		if line.UnitPriceCents != nil {
			if hasTicket {
				return fmt.Errorf("ticket lines cannot override the price")
			}
			if *line.UnitPriceCents < 0 {
				return fmt.Errorf("unit price override must not be negative")
			}
		}
	}
	if len(input.Payments) == 0 {
		return fmt.Errorf("at least one payment required")
	}
	for _, p := range input.Payments {
		if p.AmountCents <= 0 {
			return fmt.Errorf("payment amount must be positive")
		}
	}
	if input.RedeemPoints < 0 {
		return fmt.Errorf("redeem points must not be negative")
	}
	return nil
}
