package payment

import (
	"errors"
	"fmt"

	"github.com/YuChenWang/ShopPay/app/models"
	"github.com/YuChenWang/ShopPay/internal/pkg/env"
	"github.com/go-playground/validator/v10"
)

// ErrProviderDisabled is returned for gateways that are switched off or not
// configured. The webhook must be rejected before any payload processing.
var ErrProviderDisabled = errors.New("payment: provider disabled")

// ProviderConfig is the per-gateway configuration resolved at request time.
// Secret material never leaves this struct.
type ProviderConfig struct {
	Enabled       bool
	TestMode      bool
	MerchantID    string
	HashKey       string
	HashIV        string
	ChannelSecret string
}

// ConfigReader resolves provider configuration. Injected so the engine stays
// testable with fake configs instead of a process-wide singleton.
type ConfigReader interface {
	Get(gateway string) (ProviderConfig, error)
}

type ecpaySecrets struct {
	MerchantID string `validate:"required"`
	HashKey    string `validate:"required"`
	HashIV     string `validate:"required"`
}

type linePaySecrets struct {
	ChannelID     string `validate:"required"`
	ChannelSecret string `validate:"required"`
}

// envConfigReader reads provider config from the environment on every call,
// so secret rotation does not need a restart.
type envConfigReader struct {
	validate *validator.Validate
}

// NewEnvConfigReader creates the environment-backed config reader.
func NewEnvConfigReader() ConfigReader {
	return &envConfigReader{validate: validator.New()}
}

func (r *envConfigReader) Get(gateway string) (ProviderConfig, error) {
	switch gateway {
	case models.GATEWAY_ECPAY:
		if env.GetEnv("ECPAY_ENABLED", "false") != "true" {
			return ProviderConfig{}, ErrProviderDisabled
		}
		secrets := ecpaySecrets{
			MerchantID: env.GetEnv("ECPAY_MERCHANT_ID", ""),
			HashKey:    env.GetEnv("ECPAY_HASH_KEY", ""),
			HashIV:     env.GetEnv("ECPAY_HASH_IV", ""),
		}
		if err := r.validate.Struct(secrets); err != nil {
			return ProviderConfig{}, fmt.Errorf("ecpay config incomplete: %w", ErrProviderDisabled)
		}
		return ProviderConfig{
			Enabled:    true,
			TestMode:   env.GetEnv("ECPAY_TEST_MODE", "false") == "true",
			MerchantID: secrets.MerchantID,
			HashKey:    secrets.HashKey,
			HashIV:     secrets.HashIV,
		}, nil
	case models.GATEWAY_LINEPAY:
		if env.GetEnv("LINEPAY_ENABLED", "false") != "true" {
			return ProviderConfig{}, ErrProviderDisabled
		}
		secrets := linePaySecrets{
			ChannelID:     env.GetEnv("LINEPAY_CHANNEL_ID", ""),
			ChannelSecret: env.GetEnv("LINEPAY_CHANNEL_SECRET", ""),
		}
		if err := r.validate.Struct(secrets); err != nil {
			return ProviderConfig{}, fmt.Errorf("linepay config incomplete: %w", ErrProviderDisabled)
		}
		return ProviderConfig{
			Enabled:       true,
			TestMode:      env.GetEnv("LINEPAY_TEST_MODE", "false") == "true",
			MerchantID:    secrets.ChannelID,
			ChannelSecret: secrets.ChannelSecret,
		}, nil
	default:
		return ProviderConfig{}, fmt.Errorf("unknown gateway %q: %w", gateway, ErrProviderDisabled)
	}
}
