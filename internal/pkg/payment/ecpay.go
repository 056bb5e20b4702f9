package payment

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/YuChenWang/ShopPay/app/models"
	"github.com/YuChenWang/ShopPay/app/repository"
)

// ECPay delivers form-encoded notifications signed with a CheckMacValue over
// the full field set. MerchantTradeNo carries our merchant trade number.
type ECPayGateway struct{}

// NewECPayGateway creates the ECPay gateway variant.
func NewECPayGateway() *ECPayGateway {
	return &ECPayGateway{}
}

func (g *ECPayGateway) Name() string {
	return models.GATEWAY_ECPAY
}

// tradeNoPattern matches ECPay merchant trade numbers (max 20 alphanumerics).
var tradeNoPattern = regexp.MustCompile(`^[0-9A-Za-z]{1,20}$`)

func (g *ECPayGateway) Normalize(raw []byte, meta RequestMeta) (Payload, error) {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty form body", ErrMalformedPayload)
	}
	payload := make(Payload, len(values))
	for k, vs := range values {
		payload[k] = vs[0]
	}
	return payload, nil
}

func (g *ECPayGateway) Verify(payload Payload, raw []byte, meta RequestMeta, cfg ProviderConfig) bool {
	supplied := payload["CheckMacValue"]
	if supplied == "" || cfg.HashKey == "" || cfg.HashIV == "" {
		return false
	}
	expected := CheckMacValue(payload, cfg.HashKey, cfg.HashIV)
	return strings.EqualFold(expected, supplied)
}

// CheckMacValue computes ECPay's signature: all fields except CheckMacValue
// sorted case-insensitively by key, wrapped in HashKey/HashIV, URL-encoded,
// lowercased, run through the documented .NET encoding substitutions, then
// SHA-256 as uppercase hex.
func CheckMacValue(payload Payload, hashKey, hashIV string) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		if strings.EqualFold(k, "CheckMacValue") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})

	var b strings.Builder
	b.WriteString("HashKey=")
	b.WriteString(hashKey)
	for _, k := range keys {
		b.WriteString("&")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(payload[k])
	}
	b.WriteString("&HashIV=")
	b.WriteString(hashIV)

	encoded := strings.ToLower(url.QueryEscape(b.String()))
	encoded = dotNETEncodingReplacer.Replace(encoded)

	sum := sha256.Sum256([]byte(encoded))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// ECPay specifies .NET UrlEncode semantics; these characters must come back
// out of percent-encoding before hashing.
var dotNETEncodingReplacer = strings.NewReplacer(
	"%2d", "-",
	"%5f", "_",
	"%2e", ".",
	"%21", "!",
	"%2a", "*",
	"%28", "(",
	"%29", ")",
)

func (g *ECPayGateway) EventID(payload Payload) (string, error) {
	tradeNo := payload["TradeNo"]
	rtnCode := payload["RtnCode"]
	if tradeNo == "" || rtnCode == "" {
		return "", ErrEventIdentity
	}
	return tradeNo + "|" + rtnCode, nil
}

func (g *ECPayGateway) OrderRef(payload Payload) string {
	return payload["MerchantTradeNo"]
}

func (g *ECPayGateway) TxnRef(payload Payload) string {
	return payload["TradeNo"]
}

// PaymentSucceeded is RtnCode 1. Simulated notifications (SimulatePaid=1)
// only count in test mode; a production simulation must not ship goods.
func (g *ECPayGateway) PaymentSucceeded(payload Payload, cfg ProviderConfig) bool {
	if payload["RtnCode"] != "1" {
		return false
	}
	if payload["SimulatePaid"] == "1" && !cfg.TestMode {
		return false
	}
	return true
}

func (g *ECPayGateway) ResolveOrder(ref string, orders repository.OrderRepository) (uint, string, error) {
	if ref == "" {
		return 0, models.AUDIT_ORDER_ID_MISSING, nil
	}
	if !tradeNoPattern.MatchString(ref) {
		return 0, models.AUDIT_ORDER_ID_INVALID, nil
	}
	id, err := orders.FindIDByTradeNo(ref)
	if err != nil {
		return 0, "", err
	}
	if id == 0 {
		return 0, models.AUDIT_ORDER_NOT_FOUND, nil
	}
	return id, "", nil
}
