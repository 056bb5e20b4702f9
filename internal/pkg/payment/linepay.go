package payment

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/YuChenWang/ShopPay/app/models"
	"github.com/YuChenWang/ShopPay/app/repository"
	"github.com/google/uuid"
)

// LINE Pay delivers raw JSON notifications. The signature rides in the
// X-LINE-Authorization header, its nonce in X-LINE-Authorization-Nonce, and
// covers the nonce, the request URI path and the raw body keyed by the
// channel secret. orderId carries our order UUID.
type LinePayGateway struct{}

// NewLinePayGateway creates the LINE Pay gateway variant.
func NewLinePayGateway() *LinePayGateway {
	return &LinePayGateway{}
}

func (g *LinePayGateway) Name() string {
	return models.GATEWAY_LINEPAY
}

// Normalize flattens the top-level JSON object to strings. Numbers keep
// their original token via json.Number, nested values are re-marshaled
// compactly; nothing is trimmed or coerced.
func (g *LinePayGateway) Normalize(raw []byte, meta RequestMeta) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	payload := make(Payload, len(doc))
	for k, v := range doc {
		switch val := v.(type) {
		case string:
			payload[k] = val
		case json.Number:
			payload[k] = val.String()
		case bool:
			if val {
				payload[k] = "true"
			} else {
				payload[k] = "false"
			}
		case nil:
			payload[k] = ""
		default:
			nested, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
			}
			payload[k] = string(nested)
		}
	}
	return payload, nil
}

// Verify recomputes the HMAC over nonce + path + raw body. The supplied
// base64 signature is decoded first so the comparison runs over raw MACs in
// constant time.
func (g *LinePayGateway) Verify(payload Payload, raw []byte, meta RequestMeta, cfg ProviderConfig) bool {
	if meta.Signature == "" || meta.Nonce == "" || cfg.ChannelSecret == "" {
		return false
	}
	suppliedMAC, err := base64.StdEncoding.DecodeString(meta.Signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(cfg.ChannelSecret))
	mac.Write([]byte(meta.Nonce))
	mac.Write([]byte(meta.Path))
	mac.Write(raw)
	return hmac.Equal(mac.Sum(nil), suppliedMAC)
}

// SignLinePayRequest produces the header value for a given nonce, path and
// body. Shared with tests and the outbound client.
func SignLinePayRequest(channelSecret, nonce, path string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write([]byte(nonce))
	mac.Write([]byte(path))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (g *LinePayGateway) EventID(payload Payload) (string, error) {
	txnID := payload["transactionId"]
	orderID := payload["orderId"]
	if txnID == "" || orderID == "" {
		return "", ErrEventIdentity
	}
	return txnID + "|" + orderID, nil
}

func (g *LinePayGateway) OrderRef(payload Payload) string {
	return payload["orderId"]
}

func (g *LinePayGateway) TxnRef(payload Payload) string {
	return payload["transactionId"]
}

// PaymentSucceeded is LINE Pay's returnCode 0000.
func (g *LinePayGateway) PaymentSucceeded(payload Payload, cfg ProviderConfig) bool {
	return payload["returnCode"] == "0000"
}

// ResolveOrder validates the reference as a version-4 UUID before touching
// the store; LINE Pay orders are created with our order UUID as orderId.
func (g *LinePayGateway) ResolveOrder(ref string, orders repository.OrderRepository) (uint, string, error) {
	if ref == "" {
		return 0, models.AUDIT_ORDER_ID_MISSING, nil
	}
	parsed, err := uuid.Parse(ref)
	if err != nil || parsed.Version() != 4 {
		return 0, models.AUDIT_ORDER_ID_INVALID, nil
	}
	id, err := orders.FindIDByUUID(ref)
	if err != nil {
		return 0, "", err
	}
	if id == 0 {
		return 0, models.AUDIT_ORDER_NOT_FOUND, nil
	}
	return id, "", nil
}
