package payment

import (
	"context"
	"encoding/json"

	"github.com/YuChenWang/ShopPay/app/models"
	"github.com/YuChenWang/ShopPay/app/repository"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Reconciler re-drives settlement for notifications that were acknowledged
// but failed afterwards. The gateway never re-delivers those events (the
// ledger would short-circuit them anyway), so this sweep is the only
// automatic recovery path for processing_error audit rows.
type Reconciler struct {
	gateways map[string]Gateway
	cfg      ConfigReader
	orders   repository.OrderRepository
	events   repository.WebhookEventRepository
	audits   repository.AuditLogRepository
	settler  Settler
}

// NewReconciler creates a reconciler from injected collaborators.
func NewReconciler(cfg ConfigReader, repos *repository.Repositories, settler Settler) *Reconciler {
	return &Reconciler{
		gateways: Gateways(),
		cfg:      cfg,
		orders:   repos.Order,
		events:   repos.WebhookEvent,
		audits:   repos.AuditLog,
		settler:  settler,
	}
}

// NewReconcilerFromDB creates a reconciler from a GORM DB handle.
func NewReconcilerFromDB(db *gorm.DB) *Reconciler {
	return NewReconciler(NewEnvConfigReader(), repository.NewRepositories(db), NewSettler(db))
}

// Sweep walks unresolved processing_error rows and settles whatever can be
// settled. Returns the number of rows it resolved.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	entries, err := r.audits.ListUnresolvedProcessingErrors(100)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for i := range entries {
		entry := &entries[i]
		if !r.reconcileEntry(ctx, entry) {
			continue
		}
		if err := r.audits.MarkResolved(entry.ID); err != nil {
			log.Errorf("[Reconcile] failed to mark audit row %d resolved: %v", entry.ID, err)
			continue
		}
		resolved++
	}
	return resolved, nil
}

func (r *Reconciler) reconcileEntry(ctx context.Context, entry *models.PaymentAuditLog) bool {
	orderID := uint(0)
	txnRef := entry.GatewayTxnRef

	switch {
	case entry.OrderID != nil:
		orderID = *entry.OrderID
	case entry.WebhookEventID != nil:
		// Resolution failed when the event arrived; replay it from the ledger
		// snapshot.
		id, ref, ok := r.replayResolution(entry)
		if !ok {
			return false
		}
		if id == 0 {
			// Definitively settled as unresolvable or not-a-success; the
			// audit trail already has the follow-up row.
			return true
		}
		orderID, txnRef = id, ref
	default:
		// Nothing to go on; leave the row for an operator.
		return false
	}

	order, err := r.orders.GetByID(orderID)
	if err != nil {
		log.Errorf("[Reconcile] load order %d: %v", orderID, err)
		return false
	}
	if order.IsPaid() {
		return true
	}

	if err := r.settler.ApplyPaymentSuccess(ctx, orderID, entry.Gateway, txnRef); err != nil {
		log.Errorf("[Reconcile] settlement retry failed for order %d: %v", orderID, err)
		return false
	}

	log.Infof("[Reconcile] settled order %d from audit row %d", orderID, entry.ID)
	return true
}

// replayResolution re-runs order resolution from the stored ledger payload.
// Returns (0, "", true) when the row is finished without settlement.
func (r *Reconciler) replayResolution(entry *models.PaymentAuditLog) (uint, string, bool) {
	event, err := r.events.GetByID(*entry.WebhookEventID)
	if err != nil {
		log.Errorf("[Reconcile] load ledger event %d: %v", *entry.WebhookEventID, err)
		return 0, "", false
	}
	gw, ok := r.gateways[event.Gateway]
	if !ok {
		return 0, "", false
	}
	cfg, err := r.cfg.Get(event.Gateway)
	if err != nil {
		return 0, "", false
	}

	var payload Payload
	if err := json.Unmarshal([]byte(event.PayloadJSON), &payload); err != nil {
		log.Errorf("[Reconcile] ledger event %d has unreadable snapshot: %v", event.ID, err)
		return 0, "", false
	}

	id, failKind, err := gw.ResolveOrder(gw.OrderRef(payload), r.orders)
	if err != nil {
		return 0, "", false
	}
	if failKind != "" {
		r.appendFollowUp(entry, event, failKind, gw.TxnRef(payload))
		return 0, "", true
	}
	if !gw.PaymentSucceeded(payload, cfg) {
		r.appendFollowUp(entry, event, models.AUDIT_PAYMENT_FAILED, gw.TxnRef(payload))
		return 0, "", true
	}
	return id, gw.TxnRef(payload), true
}

func (r *Reconciler) appendFollowUp(entry *models.PaymentAuditLog, event *models.PaymentWebhookEvent, kind, txnRef string) {
	if err := r.audits.Append(&models.PaymentAuditLog{
		Gateway:        event.Gateway,
		WebhookEventID: &event.ID,
		EventKind:      kind,
		GatewayTxnRef:  txnRef,
		RawPayload:     event.PayloadJSON,
		Detail:         "reconciliation follow-up",
	}); err != nil {
		log.Errorf("[Reconcile] audit append failed for event %d: %v", event.ID, err)
	}
}
