package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/requestdata"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

// The fakes below hold service state in maps so the transactional
// services can be exercised without Postgres. The gorm handle from
// newTestDB only provides the transaction wrapper the services open;
// all reads and writes go through the fakes.

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return log
}

func authedCtx(merchantID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:     uuid.New(),
		MerchantID: merchantID,
		Role:       types.RoleOwner,
	})
}

// --- products ---

type fakeProductRepo struct {
	products map[uuid.UUID]*types.Product
	lockErr  error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[uuid.UUID]*types.Product{}}
}

func (f *fakeProductRepo) add(p *types.Product) { f.products[p.ID] = p }

func (f *fakeProductRepo) Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error) {
	for _, p := range products {
		f.products[p.ID] = p
	}
	return products, nil
}

func (f *fakeProductRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Product, error) {
	var out []*types.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) LockByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Product, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	return f.GetByIDs(ctx, tx, ids)
}

func (f *fakeProductRepo) SKUExists(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, sku string) (bool, error) {
	for _, p := range f.products {
		if p.MerchantID == merchantID && p.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProductRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, activeOnly bool) ([]*types.Product, error) {
	var out []*types.Product
	for _, p := range f.products {
		if p.MerchantID == merchantID && (!activeOnly || p.Active) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) ChangedSince(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, since time.Time) ([]*types.Product, error) {
	var out []*types.Product
	for _, p := range f.products {
		if p.MerchantID == merchantID && p.UpdatedAt.After(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

// --- stock movements ---

type fakeStockRepo struct {
	movements []*types.StockMovement
}

func (f *fakeStockRepo) Create(ctx context.Context, tx *gorm.DB, movements []*types.StockMovement) ([]*types.StockMovement, error) {
	f.movements = append(f.movements, movements...)
	return movements, nil
}

func (f *fakeStockRepo) OnHand(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (int64, error) {
	var sum int64
	for _, m := range f.movements {
		if m.ProductID == productID {
			sum += m.Quantity
		}
	}
	return sum, nil
}

func (f *fakeStockRepo) OnHandBulk(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(productIDs))
	for _, id := range productIDs {
		sum, _ := f.OnHand(ctx, tx, id)
		out[id] = sum
	}
	return out, nil
}

func (f *fakeStockRepo) ListByProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, limit int) ([]*types.StockMovement, error) {
	var out []*types.StockMovement
	for _, m := range f.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

// --- orders ---

type fakeOrderRepo struct {
	orders map[uuid.UUID]*types.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uuid.UUID]*types.Order{}}
}

func (f *fakeOrderRepo) Create(ctx context.Context, tx *gorm.DB, orders []*types.Order) ([]*types.Order, error) {
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return orders, nil
}

func (f *fakeOrderRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Order, error) {
	var out []*types.Order
	for _, id := range ids {
		if o, ok := f.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Order, error) {
	return f.orders[id], nil
}

func (f *fakeOrderRepo) GetByClientRef(ctx context.Context, tx *gorm.DB, clientRef uuid.UUID) (*types.Order, error) {
	for _, o := range f.orders {
		if o.ClientRef != nil && *o.ClientRef == clientRef {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, statuses []string, limit int) ([]*types.Order, error) {
	wanted := map[string]bool{}
	for _, s := range statuses {
		wanted[s] = true
	}
	var out []*types.Order
	for _, o := range f.orders {
		if o.MerchantID != merchantID {
			continue
		}
		if len(wanted) > 0 && !wanted[o.Status] {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderRepo) OpenChangedSince(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, since time.Time) ([]*types.Order, error) {
	var out []*types.Order
	for _, o := range f.orders {
		if o.MerchantID == merchantID && o.UpdatedAt.After(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if o, ok := f.orders[id]; ok {
		if s, ok := updates["status"].(string); ok {
			o.Status = s
		}
	}
	return nil
}

// --- order items ---

type fakeOrderItemRepo struct {
	items []*types.OrderItem
}

func (f *fakeOrderItemRepo) Create(ctx context.Context, tx *gorm.DB, items []*types.OrderItem) ([]*types.OrderItem, error) {
	f.items = append(f.items, items...)
	return items, nil
}

func (f *fakeOrderItemRepo) ListByOrders(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID) ([]*types.OrderItem, error) {
	wanted := map[uuid.UUID]bool{}
	for _, id := range orderIDs {
		wanted[id] = true
	}
	var out []*types.OrderItem
	for _, item := range f.items {
		if wanted[item.OrderID] {
			out = append(out, item)
		}
	}
	return out, nil
}

// --- payments ---

type fakePaymentRepo struct {
	payments []*types.Payment
}

func (f *fakePaymentRepo) Create(ctx context.Context, tx *gorm.DB, payments []*types.Payment) ([]*types.Payment, error) {
	f.payments = append(f.payments, payments...)
	return payments, nil
}

func (f *fakePaymentRepo) ListByOrders(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID) ([]*types.Payment, error) {
	wanted := map[uuid.UUID]bool{}
	for _, id := range orderIDs {
		wanted[id] = true
	}
	var out []*types.Payment
	for _, p := range f.payments {
		if wanted[p.OrderID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) SumCashBySession(ctx context.Context, tx *gorm.DB, cashSessionID uuid.UUID) (int64, error) {
	var sum int64
	for _, p := range f.payments {
		if p.Method == types.PaymentMethodCash && p.CashSessionID != nil && *p.CashSessionID == cashSessionID {
			sum += p.AmountCents
		}
	}
	return sum, nil
}

// --- events ---

type fakeEventRepo struct {
	events map[uuid.UUID]*types.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[uuid.UUID]*types.Event{}}
}

func (f *fakeEventRepo) add(ev *types.Event) { f.events[ev.ID] = ev }

func (f *fakeEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.Event) ([]*types.Event, error) {
	for _, ev := range events {
		f.events[ev.ID] = ev
	}
	return events, nil
}

func (f *fakeEventRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Event, error) {
	var out []*types.Event
	for _, id := range ids {
		if ev, ok := f.events[id]; ok {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.Event, error) {
	var out []*types.Event
	for _, ev := range f.events {
		if ev.MerchantID == merchantID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if ev, ok := f.events[id]; ok {
		if s, ok := updates["status"].(string); ok {
			ev.Status = s
		}
	}
	return nil
}

// --- ticket types ---

type fakeTicketTypeRepo struct {
	ticketTypes map[uuid.UUID]*types.TicketType
}

func newFakeTicketTypeRepo() *fakeTicketTypeRepo {
	return &fakeTicketTypeRepo{ticketTypes: map[uuid.UUID]*types.TicketType{}}
}

func (f *fakeTicketTypeRepo) add(tt *types.TicketType) { f.ticketTypes[tt.ID] = tt }

func (f *fakeTicketTypeRepo) Create(ctx context.Context, tx *gorm.DB, ticketTypes []*types.TicketType) ([]*types.TicketType, error) {
	for _, tt := range ticketTypes {
		f.ticketTypes[tt.ID] = tt
	}
	return ticketTypes, nil
}

func (f *fakeTicketTypeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.TicketType, error) {
	var out []*types.TicketType
	for _, id := range ids {
		if tt, ok := f.ticketTypes[id]; ok {
			out = append(out, tt)
		}
	}
	return out, nil
}

func (f *fakeTicketTypeRepo) LockByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.TicketType, error) {
	return f.GetByIDs(ctx, tx, ids)
}

func (f *fakeTicketTypeRepo) IncrementIssued(ctx context.Context, tx *gorm.DB, id uuid.UUID, by int64) error {
	if tt, ok := f.ticketTypes[id]; ok {
		tt.Issued += by
	}
	return nil
}

func (f *fakeTicketTypeRepo) ListByEvent(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) ([]*types.TicketType, error) {
	var out []*types.TicketType
	for _, tt := range f.ticketTypes {
		if tt.EventID == eventID {
			out = append(out, tt)
		}
	}
	return out, nil
}

func (f *fakeTicketTypeRepo) ChangedSince(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, since time.Time) ([]*types.TicketType, error) {
	var out []*types.TicketType
	for _, tt := range f.ticketTypes {
		if tt.MerchantID == merchantID && tt.UpdatedAt.After(since) {
			out = append(out, tt)
		}
	}
	return out, nil
}

func (f *fakeTicketTypeRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

// --- tickets ---

type fakeTicketRepo struct {
	tickets map[uuid.UUID]*types.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[uuid.UUID]*types.Ticket{}}
}

func (f *fakeTicketRepo) add(tk *types.Ticket) { f.tickets[tk.ID] = tk }

func (f *fakeTicketRepo) Create(ctx context.Context, tx *gorm.DB, tickets []*types.Ticket) ([]*types.Ticket, error) {
	for _, tk := range tickets {
		f.tickets[tk.ID] = tk
	}
	return tickets, nil
}

func (f *fakeTicketRepo) LockByQRCode(ctx context.Context, tx *gorm.DB, qrCode uuid.UUID) (*types.Ticket, error) {
	for _, tk := range f.tickets {
		if tk.QRCode == qrCode {
			return tk, nil
		}
	}
	return nil, nil
}

func (f *fakeTicketRepo) ListByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]*types.Ticket, error) {
	var out []*types.Ticket
	for _, tk := range f.tickets {
		if tk.OrderID != nil && *tk.OrderID == orderID {
			out = append(out, tk)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if tk, ok := f.tickets[id]; ok {
		if s, ok := updates["status"].(string); ok {
			tk.Status = s
		}
	}
	return nil
}

// --- cash sessions ---

type fakeCashSessionRepo struct {
	sessions    map[uuid.UUID]*types.CashSession
	adjustments []*types.CashAdjustment
}

func newFakeCashSessionRepo() *fakeCashSessionRepo {
	return &fakeCashSessionRepo{sessions: map[uuid.UUID]*types.CashSession{}}
}

func (f *fakeCashSessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.CashSession) ([]*types.CashSession, error) {
	for _, s := range sessions {
		f.sessions[s.ID] = s
	}
	return sessions, nil
}

func (f *fakeCashSessionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CashSession, error) {
	var out []*types.CashSession
	for _, id := range ids {
		if s, ok := f.sessions[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeCashSessionRepo) LockOpenByRegister(ctx context.Context, tx *gorm.DB, registerID uuid.UUID) (*types.CashSession, error) {
	for _, s := range f.sessions {
		if s.RegisterID == registerID && s.Status == types.CashSessionStatusOpen {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeCashSessionRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CashSession, error) {
	return f.sessions[id], nil
}

func (f *fakeCashSessionRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, limit int) ([]*types.CashSession, error) {
	var out []*types.CashSession
	for _, s := range f.sessions {
		if s.MerchantID == merchantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeCashSessionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if s, ok := f.sessions[id]; ok {
		if status, ok := updates["status"].(string); ok {
			s.Status = status
		}
	}
	return nil
}

func (f *fakeCashSessionRepo) CreateAdjustment(ctx context.Context, tx *gorm.DB, adjustment *types.CashAdjustment) (*types.CashAdjustment, error) {
	f.adjustments = append(f.adjustments, adjustment)
	return adjustment, nil
}

func (f *fakeCashSessionRepo) ListAdjustments(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.CashAdjustment, error) {
	var out []*types.CashAdjustment
	for _, a := range f.adjustments {
		if a.CashSessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- registers ---

type fakeRegisterRepo struct {
	registers map[uuid.UUID]*types.Register
}

func newFakeRegisterRepo() *fakeRegisterRepo {
	return &fakeRegisterRepo{registers: map[uuid.UUID]*types.Register{}}
}

func (f *fakeRegisterRepo) add(r *types.Register) { f.registers[r.ID] = r }

func (f *fakeRegisterRepo) Create(ctx context.Context, tx *gorm.DB, registers []*types.Register) ([]*types.Register, error) {
	for _, r := range registers {
		f.registers[r.ID] = r
	}
	return registers, nil
}

func (f *fakeRegisterRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Register, error) {
	var out []*types.Register
	for _, id := range ids {
		if r, ok := f.registers[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRegisterRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.Register, error) {
	var out []*types.Register
	for _, r := range f.registers {
		if r.MerchantID == merchantID {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- loyalty ---

type fakeLoyaltyRepo struct {
	settings     map[uuid.UUID]*types.LoyaltySettings
	accounts     map[uuid.UUID]*types.LoyaltyAccount
	transactions []*types.LoyaltyTransaction
}

func newFakeLoyaltyRepo() *fakeLoyaltyRepo {
	return &fakeLoyaltyRepo{
		settings: map[uuid.UUID]*types.LoyaltySettings{},
		accounts: map[uuid.UUID]*types.LoyaltyAccount{},
	}
}

func (f *fakeLoyaltyRepo) GetSettings(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) (*types.LoyaltySettings, error) {
	return f.settings[merchantID], nil
}

func (f *fakeLoyaltyRepo) UpsertSettings(ctx context.Context, tx *gorm.DB, settings *types.LoyaltySettings) (*types.LoyaltySettings, error) {
	f.settings[settings.MerchantID] = settings
	return settings, nil
}

func (f *fakeLoyaltyRepo) GetAccount(ctx context.Context, tx *gorm.DB, merchantID, customerID uuid.UUID) (*types.LoyaltyAccount, error) {
	for _, a := range f.accounts {
		if a.MerchantID == merchantID && a.CustomerID == customerID {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeLoyaltyRepo) CreateAccount(ctx context.Context, tx *gorm.DB, account *types.LoyaltyAccount) (*types.LoyaltyAccount, error) {
	f.accounts[account.ID] = account
	return account, nil
}

func (f *fakeLoyaltyRepo) LockAccount(ctx context.Context, tx *gorm.DB, merchantID, customerID uuid.UUID) (*types.LoyaltyAccount, error) {
	return f.GetAccount(ctx, tx, merchantID, customerID)
}

func (f *fakeLoyaltyRepo) UpdateAccountFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if a, ok := f.accounts[id]; ok {
		if balance, ok := updates["balance"].(int64); ok {
			a.Balance = balance
		}
	}
	return nil
}

func (f *fakeLoyaltyRepo) CreateTransaction(ctx context.Context, tx *gorm.DB, txn *types.LoyaltyTransaction) (*types.LoyaltyTransaction, error) {
	f.transactions = append(f.transactions, txn)
	return txn, nil
}

func (f *fakeLoyaltyRepo) ListTransactions(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, limit int) ([]*types.LoyaltyTransaction, error) {
	var out []*types.LoyaltyTransaction
	for _, t := range f.transactions {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeLoyaltyRepo) AccountsChangedSince(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, since time.Time) ([]*types.LoyaltyAccount, error) {
	var out []*types.LoyaltyAccount
	for _, a := range f.accounts {
		if a.MerchantID == merchantID {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- wallets ---

type fakeWalletRepo struct {
	wallets map[uuid.UUID]*types.Wallet
	entries []*types.WalletEntry
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: map[uuid.UUID]*types.Wallet{}}
}

func (f *fakeWalletRepo) add(w *types.Wallet) { f.wallets[w.ID] = w }

func (f *fakeWalletRepo) Create(ctx context.Context, tx *gorm.DB, wallets []*types.Wallet) ([]*types.Wallet, error) {
	for _, w := range wallets {
		f.wallets[w.ID] = w
	}
	return wallets, nil
}

func (f *fakeWalletRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Wallet, error) {
	var out []*types.Wallet
	for _, id := range ids {
		if w, ok := f.wallets[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWalletRepo) GetByOwner(ctx context.Context, tx *gorm.DB, ownerType string, ownerID uuid.UUID) (*types.Wallet, error) {
	for _, w := range f.wallets {
		if w.OwnerType == ownerType && w.OwnerID == ownerID {
			return w, nil
		}
	}
	return nil, nil
}

func (f *fakeWalletRepo) LockByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Wallet, error) {
	return f.GetByIDs(ctx, tx, ids)
}

func (f *fakeWalletRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if w, ok := f.wallets[id]; ok {
		if balance, ok := updates["balance"].(int64); ok {
			w.Balance = balance
		}
	}
	return nil
}

func (f *fakeWalletRepo) CreateEntries(ctx context.Context, tx *gorm.DB, entries []*types.WalletEntry) ([]*types.WalletEntry, error) {
	f.entries = append(f.entries, entries...)
	return entries, nil
}

func (f *fakeWalletRepo) ListEntries(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, limit int) ([]*types.WalletEntry, error) {
	var out []*types.WalletEntry
	for _, e := range f.entries {
		if e.WalletID == walletID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeWalletRepo) GetEntriesByTransferID(ctx context.Context, tx *gorm.DB, transferID uuid.UUID) ([]*types.WalletEntry, error) {
	var out []*types.WalletEntry
	for _, e := range f.entries {
		if e.TransferID == transferID {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- customers ---

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*types.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: map[uuid.UUID]*types.Customer{}}
}

func (f *fakeCustomerRepo) add(c *types.Customer) { f.customers[c.ID] = c }

func (f *fakeCustomerRepo) Create(ctx context.Context, tx *gorm.DB, customers []*types.Customer) ([]*types.Customer, error) {
	for _, c := range customers {
		f.customers[c.ID] = c
	}
	return customers, nil
}

func (f *fakeCustomerRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Customer, error) {
	var out []*types.Customer
	for _, id := range ids {
		if c, ok := f.customers[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCustomerRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.Customer, error) {
	var out []*types.Customer
	for _, c := range f.customers {
		if c.MerchantID == merchantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCustomerRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

// --- schools ---

type fakeSchoolRepo struct {
	schools map[uuid.UUID]*types.School
}

func newFakeSchoolRepo() *fakeSchoolRepo {
	return &fakeSchoolRepo{schools: map[uuid.UUID]*types.School{}}
}

func (f *fakeSchoolRepo) Create(ctx context.Context, tx *gorm.DB, schools []*types.School) ([]*types.School, error) {
	for _, s := range schools {
		f.schools[s.ID] = s
	}
	return schools, nil
}

func (f *fakeSchoolRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.School, error) {
	var out []*types.School
	for _, id := range ids {
		if s, ok := f.schools[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSchoolRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.School, error) {
	return f.schools[id], nil
}

func (f *fakeSchoolRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.School, error) {
	var out []*types.School
	for _, s := range f.schools {
		if s.MerchantID == merchantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSchoolRepo) ListByStatus(ctx context.Context, tx *gorm.DB, status string, limit int) ([]*types.School, error) {
	var out []*types.School
	for _, s := range f.schools {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSchoolRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

// --- sync devices ---

type fakeSyncDeviceRepo struct {
	devices map[uuid.UUID]*types.SyncDevice
}

func newFakeSyncDeviceRepo() *fakeSyncDeviceRepo {
	return &fakeSyncDeviceRepo{devices: map[uuid.UUID]*types.SyncDevice{}}
}

func (f *fakeSyncDeviceRepo) add(d *types.SyncDevice) { f.devices[d.ID] = d }

func (f *fakeSyncDeviceRepo) Create(ctx context.Context, tx *gorm.DB, device *types.SyncDevice) (*types.SyncDevice, error) {
	f.devices[device.ID] = device
	return device, nil
}

func (f *fakeSyncDeviceRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SyncDevice, error) {
	var out []*types.SyncDevice
	for _, id := range ids {
		if d, ok := f.devices[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeSyncDeviceRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.SyncDevice, error) {
	var out []*types.SyncDevice
	for _, d := range f.devices {
		if d.MerchantID == merchantID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeSyncDeviceRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

// --- sync operations ---

type fakeSyncOpRepo struct {
	ops map[uuid.UUID]*types.SyncOperation
}

func newFakeSyncOpRepo() *fakeSyncOpRepo {
	return &fakeSyncOpRepo{ops: map[uuid.UUID]*types.SyncOperation{}}
}

func (f *fakeSyncOpRepo) Create(ctx context.Context, tx *gorm.DB, op *types.SyncOperation) (bool, error) {
	if _, exists := f.ops[op.ID]; exists {
		return false, nil
	}
	stored := *op
	f.ops[op.ID] = &stored
	return true, nil
}

func (f *fakeSyncOpRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SyncOperation, error) {
	var out []*types.SyncOperation
	for _, id := range ids {
		if op, ok := f.ops[id]; ok {
			out = append(out, op)
		}
	}
	return out, nil
}

func (f *fakeSyncOpRepo) ListByDevice(ctx context.Context, tx *gorm.DB, deviceID uuid.UUID, limit int) ([]*types.SyncOperation, error) {
	var out []*types.SyncOperation
	for _, op := range f.ops {
		if op.DeviceID == deviceID {
			out = append(out, op)
		}
	}
	return out, nil
}

func (f *fakeSyncOpRepo) ListRetryable(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, maxAttempts int, limit int) ([]*types.SyncOperation, error) {
	var out []*types.SyncOperation
	for _, op := range f.ops {
		if op.MerchantID == merchantID && op.Status == types.SyncOpStatusParked && op.Attempts < maxAttempts {
			out = append(out, op)
		}
	}
	return out, nil
}

func (f *fakeSyncOpRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	op, ok := f.ops[id]
	if !ok {
		return nil
	}
	if s, ok := updates["status"].(string); ok {
		op.Status = s
	}
	if attempts, ok := updates["attempts"].(int); ok {
		op.Attempts = attempts
	}
	if msg, ok := updates["error"].(string); ok {
		op.Error = msg
	}
	return nil
}

// --- cart drafts ---

type fakeCartDraftRepo struct {
	drafts map[uuid.UUID]*types.CartDraft
}

func newFakeCartDraftRepo() *fakeCartDraftRepo {
	return &fakeCartDraftRepo{drafts: map[uuid.UUID]*types.CartDraft{}}
}

func (f *fakeCartDraftRepo) add(d *types.CartDraft) { f.drafts[d.ID] = d }

func (f *fakeCartDraftRepo) Upsert(ctx context.Context, tx *gorm.DB, draft *types.CartDraft) error {
	existing, ok := f.drafts[draft.ID]
	if !ok {
		f.drafts[draft.ID] = draft
		return nil
	}
	// Same last-writer-wins rule as the real repo: a stale client
	// timestamp leaves the stored row untouched.
	if existing.MerchantID == draft.MerchantID && existing.ClientTS.Before(draft.ClientTS) {
		f.drafts[draft.ID] = draft
	}
	return nil
}

func (f *fakeCartDraftRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CartDraft, error) {
	var out []*types.CartDraft
	for _, id := range ids {
		if d, ok := f.drafts[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeCartDraftRepo) ListByMerchant(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID) ([]*types.CartDraft, error) {
	var out []*types.CartDraft
	for _, d := range f.drafts {
		if d.MerchantID == merchantID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeCartDraftRepo) ChangedSince(ctx context.Context, tx *gorm.DB, merchantID uuid.UUID, since time.Time) ([]*types.CartDraft, error) {
	var out []*types.CartDraft
	for _, d := range f.drafts {
		if d.MerchantID == merchantID && d.UpdatedAt.After(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeCartDraftRepo) Delete(ctx context.Context, tx *gorm.DB, merchantID, id uuid.UUID) error {
	if d, ok := f.drafts[id]; ok && d.MerchantID == merchantID {
		delete(f.drafts, id)
	}
	return nil
}
