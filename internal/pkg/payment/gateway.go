package payment

import (
	"encoding/json"
	"errors"

	"github.com/YuChenWang/ShopPay/app/repository"
)

// Payload is the normalized key/value view of a gateway notification. Values
// are kept verbatim as delivered; signatures are computed over the original
// field set, so nothing here trims or coerces.
type Payload map[string]string

// RequestMeta carries the request metadata some gateways sign besides the
// body: the request URI path and the signature/nonce headers.
type RequestMeta struct {
	Path      string
	Signature string
	Nonce     string
}

var (
	// ErrMalformedPayload marks a body that could not be parsed at all.
	ErrMalformedPayload = errors.New("payment: malformed payload")
	// ErrEventIdentity marks a payload missing the fields needed to build a
	// stable event identity. This is a protocol violation, not a duplicate.
	ErrEventIdentity = errors.New("payment: payload lacks event identity fields")
)

// Gateway is one member of the closed set of supported payment providers.
// The orchestrator drives every gateway through this surface; response
// literals stay in the per-gateway HTTP handlers.
type Gateway interface {
	Name() string

	// Normalize parses the raw body into a flat payload. Malformed input
	// returns an error wrapping ErrMalformedPayload.
	Normalize(raw []byte, meta RequestMeta) (Payload, error)

	// Verify authenticates the notification against the provider secret
	// material. Implementations must compare in a way that does not leak
	// timing on the secret-derived value.
	Verify(payload Payload, raw []byte, meta RequestMeta, cfg ProviderConfig) bool

	// EventID derives the gateway-scoped idempotency key. Returns
	// ErrEventIdentity when required fields are absent.
	EventID(payload Payload) (string, error)

	// OrderRef extracts the gateway-specific order reference.
	OrderRef(payload Payload) string

	// TxnRef extracts the gateway transaction reference for audit rows.
	TxnRef(payload Payload) string

	// PaymentSucceeded reports whether the notification carries a successful
	// payment result.
	PaymentSucceeded(payload Payload, cfg ProviderConfig) bool

	// ResolveOrder maps the order reference to an internal order ID. When the
	// reference is missing, malformed or unknown it returns orderID 0 and the
	// matching order_* audit kind; err is reserved for store failures.
	ResolveOrder(ref string, orders repository.OrderRepository) (orderID uint, failKind string, err error)
}

// Gateways returns the closed set of supported gateways keyed by name.
func Gateways() map[string]Gateway {
	ecpay := NewECPayGateway()
	linepay := NewLinePayGateway()
	return map[string]Gateway{
		ecpay.Name():   ecpay,
		linepay.Name(): linepay,
	}
}

// payloadJSON renders the normalized payload as a JSON snapshot for the
// ledger. Map keys serialize sorted, so snapshots are stable across retries.
func payloadJSON(p Payload) string {
	b, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(b)
}
