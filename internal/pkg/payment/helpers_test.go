package payment

import (
	"context"
	"sync"
	"time"

	"github.com/YuChenWang/ShopPay/app/models"
)

func flipFirstChar(s string) string {
	if s == "" {
		return s
	}
	if s[0] == 'A' {
		return "B" + s[1:]
	}
	return "A" + s[1:]
}

// fakeOrders backs OrderRepository with in-memory maps.
type fakeOrders struct {
	mu        sync.Mutex
	byTradeNo map[string]uint
	byUUID    map[string]uint
	orders    map[uint]*models.Order
	lookupErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		byTradeNo: make(map[string]uint),
		byUUID:    make(map[string]uint),
		orders:    make(map[uint]*models.Order),
	}
}

func (f *fakeOrders) addOrder(o *models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o
	if o.TradeNo != "" {
		f.byTradeNo[o.TradeNo] = o.ID
	}
	if o.UUID != "" {
		f.byUUID[o.UUID] = o.ID
	}
}

func (f *fakeOrders) Create(order *models.Order) error {
	f.addOrder(order)
	return nil
}

func (f *fakeOrders) GetByID(id uint) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.orders[id], nil
}

func (f *fakeOrders) FindIDByTradeNo(tradeNo string) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return 0, f.lookupErr
	}
	return f.byTradeNo[tradeNo], nil
}

func (f *fakeOrders) FindIDByUUID(orderUUID string) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return 0, f.lookupErr
	}
	return f.byUUID[orderUUID], nil
}

// fakeLedger backs WebhookEventRepository. CreateIfNew is guarded by a mutex
// so concurrent callers see the same single-winner semantics as the unique
// key in MySQL.
type fakeLedger struct {
	mu        sync.Mutex
	nextID    uint
	rows      map[string]*models.PaymentWebhookEvent
	insertErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: make(map[string]*models.PaymentWebhookEvent)}
}

func (f *fakeLedger) CreateIfNew(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return false, nil, f.insertErr
	}
	key := event.Gateway + "|" + event.EventID
	if existing, ok := f.rows[key]; ok {
		return false, existing, nil
	}
	f.nextID++
	event.ID = f.nextID
	event.ReceivedAt = time.Now()
	f.rows[key] = event
	return true, event, nil
}

func (f *fakeLedger) GetByID(id uint) (*models.PaymentWebhookEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) ListRecent(limit int) ([]models.PaymentWebhookEvent, error) {
	return nil, nil
}

func (f *fakeLedger) ListUnarchivedBefore(cutoff time.Time, limit int) ([]models.PaymentWebhookEvent, error) {
	return nil, nil
}

func (f *fakeLedger) MarkArchived(id uint) error {
	return nil
}

func (f *fakeLedger) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeAudits backs AuditLogRepository with an append-only slice.
type fakeAudits struct {
	mu      sync.Mutex
	nextID  uint
	entries []models.PaymentAuditLog
}

func newFakeAudits() *fakeAudits {
	return &fakeAudits{}
}

func (f *fakeAudits) Append(entry *models.PaymentAuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	entry.ID = f.nextID
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAudits) ListByOrderID(orderID uint, limit int) ([]models.PaymentAuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PaymentAuditLog
	for _, e := range f.entries {
		if e.OrderID != nil && *e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAudits) ListRecent(limit int) ([]models.PaymentAuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PaymentAuditLog(nil), f.entries...), nil
}

func (f *fakeAudits) ListUnresolvedProcessingErrors(limit int) ([]models.PaymentAuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PaymentAuditLog
	for _, e := range f.entries {
		if e.EventKind == models.AUDIT_PROCESSING_ERROR && e.ResolvedAt == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAudits) MarkResolved(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].ResolvedAt = &now
		}
	}
	return nil
}

func (f *fakeAudits) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.EventKind)
	}
	return out
}

func (f *fakeAudits) lastOfKind(kind string) *models.PaymentAuditLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].EventKind == kind {
			e := f.entries[i]
			return &e
		}
	}
	return nil
}

// fakeSettler counts settlement calls and marks the in-memory order paid so
// repeated settlement attempts stay observable.
type fakeSettler struct {
	mu     sync.Mutex
	calls  int
	orders *fakeOrders
	err    error
}

func newFakeSettler(orders *fakeOrders) *fakeSettler {
	return &fakeSettler{orders: orders}
}

func (f *fakeSettler) ApplyPaymentSuccess(ctx context.Context, orderID uint, gateway, gatewayTxnRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls++
	if f.orders != nil {
		if o := f.orders.orders[orderID]; o != nil {
			now := time.Now()
			o.PaymentStatus = models.PAYMENT_STATUS_PAID
			o.Gateway = gateway
			o.GatewayTxnRef = gatewayTxnRef
			o.PaidAt = &now
		}
	}
	return nil
}

func (f *fakeSettler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeConfig serves static per-gateway configuration.
type fakeConfig struct {
	configs map[string]ProviderConfig
}

func (f *fakeConfig) Get(gateway string) (ProviderConfig, error) {
	cfg, ok := f.configs[gateway]
	if !ok || !cfg.Enabled {
		return ProviderConfig{}, ErrProviderDisabled
	}
	return cfg, nil
}

func enabledTestConfig() *fakeConfig {
	return &fakeConfig{configs: map[string]ProviderConfig{
		models.GATEWAY_ECPAY: {
			Enabled:    true,
			MerchantID: "2000132",
			HashKey:    testHashKey,
			HashIV:     testHashIV,
		},
		models.GATEWAY_LINEPAY: {
			Enabled:       true,
			MerchantID:    "1656999999",
			ChannelSecret: testChannelSecret,
		},
	}}
}
