package payment

import (
	"context"
	"fmt"

	"github.com/YuChenWang/ShopPay/app/models"
	"github.com/YuChenWang/ShopPay/app/repository"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Disposition is the terminal outcome of one webhook delivery. The HTTP
// handlers map these onto each gateway's literal response contract.
type Disposition string

const (
	// DispositionProcessed: payment success applied (or settlement attempted).
	DispositionProcessed Disposition = "processed"
	// DispositionPaymentFailed: a failure notification, acknowledged.
	DispositionPaymentFailed Disposition = "payment_failed"
	// DispositionDuplicate: event already in the ledger, acknowledged.
	DispositionDuplicate Disposition = "duplicate"
	// DispositionUnresolved: order reference missing/invalid/unknown,
	// acknowledged so the gateway stops retrying.
	DispositionUnresolved Disposition = "unresolved"
	// DispositionBadRequest: unparseable payload or missing identity fields.
	DispositionBadRequest Disposition = "bad_request"
	// DispositionSignatureInvalid: authentication failed.
	DispositionSignatureInvalid Disposition = "signature_invalid"
	// DispositionDisabled: provider switched off or misconfigured.
	DispositionDisabled Disposition = "disabled"
	// DispositionStoreError: ledger or order store unavailable; fail closed
	// so the gateway retries later.
	DispositionStoreError Disposition = "store_error"
)

// Result is what Process hands back to the HTTP handler.
type Result struct {
	Disposition Disposition
	OrderID     uint
	// SettlementErr is set when settlement failed after the notification was
	// accepted; the response stays a protocol success and the error is
	// surfaced through the audit log.
	SettlementErr error
}

// Service orchestrates one webhook delivery through normalization,
// verification, deduplication, order resolution, audit and settlement.
type Service struct {
	gateways map[string]Gateway
	cfg      ConfigReader
	orders   repository.OrderRepository
	events   repository.WebhookEventRepository
	audits   repository.AuditLogRepository
	settler  Settler
}

// NewService creates a webhook service from injected collaborators.
func NewService(cfg ConfigReader, repos *repository.Repositories, settler Settler) *Service {
	return &Service{
		gateways: Gateways(),
		cfg:      cfg,
		orders:   repos.Order,
		events:   repos.WebhookEvent,
		audits:   repos.AuditLog,
		settler:  settler,
	}
}

// NewServiceFromDB creates a webhook service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewEnvConfigReader(), repository.NewRepositories(db), NewSettler(db))
}

// Process runs the full per-gateway state machine for one delivery. It never
// returns an error: every path terminates in a Disposition the handler can
// translate into the gateway's mandated response.
func (s *Service) Process(ctx context.Context, gatewayName string, raw []byte, meta RequestMeta) Result {
	gw, ok := s.gateways[gatewayName]
	if !ok {
		return Result{Disposition: DispositionDisabled}
	}

	cfg, err := s.cfg.Get(gatewayName)
	if err != nil || !cfg.Enabled {
		return Result{Disposition: DispositionDisabled}
	}

	payload, err := gw.Normalize(raw, meta)
	if err != nil {
		return Result{Disposition: DispositionBadRequest}
	}

	if !gw.Verify(payload, raw, meta, cfg) {
		s.audit(&models.PaymentAuditLog{
			Gateway:       gatewayName,
			EventKind:     models.AUDIT_SIGNATURE_INVALID,
			GatewayTxnRef: gw.TxnRef(payload),
			RawPayload:    string(raw),
		})
		return Result{Disposition: DispositionSignatureInvalid}
	}

	eventID, err := gw.EventID(payload)
	if err != nil {
		// Identity fields missing is a protocol violation, not a new event;
		// reject so nothing downstream treats it as processable.
		return Result{Disposition: DispositionBadRequest}
	}

	created, stored, err := s.events.CreateIfNew(&models.PaymentWebhookEvent{
		Gateway:     gatewayName,
		EventID:     eventID,
		EventType:   models.WEBHOOK_EVENT_PAYMENT_RESULT,
		PayloadJSON: payloadJSON(payload),
	})
	if err != nil {
		log.Errorf("[Payment] ledger insert failed for %s event %s: %v", gatewayName, eventID, err)
		return Result{Disposition: DispositionStoreError}
	}
	if !created {
		return Result{Disposition: DispositionDuplicate}
	}

	txnRef := gw.TxnRef(payload)
	orderID, failKind, err := gw.ResolveOrder(gw.OrderRef(payload), s.orders)
	if err != nil {
		// The ledger row exists but the order store is down. Fail closed and
		// leave a processing_error row so the reconciliation sweep can replay
		// this event from the ledger.
		log.Errorf("[Payment] order resolution failed for %s event %s: %v", gatewayName, eventID, err)
		s.audit(&models.PaymentAuditLog{
			Gateway:        gatewayName,
			WebhookEventID: &stored.ID,
			EventKind:      models.AUDIT_PROCESSING_ERROR,
			GatewayTxnRef:  txnRef,
			RawPayload:     string(raw),
			Detail:         fmt.Sprintf("order resolution: %v", err),
		})
		return Result{Disposition: DispositionStoreError}
	}
	if failKind != "" {
		s.audit(&models.PaymentAuditLog{
			Gateway:        gatewayName,
			WebhookEventID: &stored.ID,
			EventKind:      failKind,
			GatewayTxnRef:  txnRef,
			RawPayload:     string(raw),
		})
		return Result{Disposition: DispositionUnresolved}
	}

	s.audit(&models.PaymentAuditLog{
		OrderID:        &orderID,
		WebhookEventID: &stored.ID,
		Gateway:        gatewayName,
		EventKind:      models.AUDIT_RECEIVED,
		GatewayTxnRef:  txnRef,
		RawPayload:     string(raw),
	})

	if !gw.PaymentSucceeded(payload, cfg) {
		s.audit(&models.PaymentAuditLog{
			OrderID:        &orderID,
			WebhookEventID: &stored.ID,
			Gateway:        gatewayName,
			EventKind:      models.AUDIT_PAYMENT_FAILED,
			GatewayTxnRef:  txnRef,
			RawPayload:     string(raw),
		})
		return Result{Disposition: DispositionPaymentFailed, OrderID: orderID}
	}

	if err := s.settler.ApplyPaymentSuccess(ctx, orderID, gatewayName, txnRef); err != nil {
		// The notification is acknowledged regardless; re-delivery would hit
		// the duplicate short-circuit and never retry settlement, so this
		// error surfaces through the audit log and the reconciliation sweep.
		log.Errorf("[Payment] settlement failed for order %d (%s): %v", orderID, gatewayName, err)
		s.audit(&models.PaymentAuditLog{
			OrderID:        &orderID,
			WebhookEventID: &stored.ID,
			Gateway:        gatewayName,
			EventKind:      models.AUDIT_PROCESSING_ERROR,
			GatewayTxnRef:  txnRef,
			RawPayload:     string(raw),
			Detail:         err.Error(),
		})
		return Result{Disposition: DispositionProcessed, OrderID: orderID, SettlementErr: err}
	}

	return Result{Disposition: DispositionProcessed, OrderID: orderID}
}

// audit appends a row best-effort. A failed audit write must not block the
// response, but it is never silent either.
func (s *Service) audit(entry *models.PaymentAuditLog) {
	if err := s.audits.Append(entry); err != nil {
		log.Errorf("[Payment] audit append failed (kind=%s gateway=%s): %v", entry.EventKind, entry.Gateway, err)
	}
}
