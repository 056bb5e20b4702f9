package payment

import (
	"testing"

	"github.com/YuChenWang/ShopPay/app/models"
	"github.com/YuChenWang/ShopPay/internal/pkg/env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	prev := env.Env
	env.Env = vars
	t.Cleanup(func() { env.Env = prev })
}

func TestEnvConfigReaderECPay(t *testing.T) {
	withEnv(t, map[string]string{
		"ECPAY_ENABLED":     "true",
		"ECPAY_TEST_MODE":   "true",
		"ECPAY_MERCHANT_ID": "2000132",
		"ECPAY_HASH_KEY":    testHashKey,
		"ECPAY_HASH_IV":     testHashIV,
	})

	cfg, err := NewEnvConfigReader().Get(models.GATEWAY_ECPAY)
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.TestMode)
	assert.Equal(t, "2000132", cfg.MerchantID)
	assert.Equal(t, testHashKey, cfg.HashKey)
	assert.Equal(t, testHashIV, cfg.HashIV)
}

func TestEnvConfigReaderLinePay(t *testing.T) {
	withEnv(t, map[string]string{
		"LINEPAY_ENABLED":        "true",
		"LINEPAY_CHANNEL_ID":     "1656999999",
		"LINEPAY_CHANNEL_SECRET": testChannelSecret,
	})

	cfg, err := NewEnvConfigReader().Get(models.GATEWAY_LINEPAY)
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.False(t, cfg.TestMode)
	assert.Equal(t, testChannelSecret, cfg.ChannelSecret)
}

func TestEnvConfigReaderDisabled(t *testing.T) {
	reader := NewEnvConfigReader()

	// switched off
	withEnv(t, map[string]string{"ECPAY_ENABLED": "false"})
	_, err := reader.Get(models.GATEWAY_ECPAY)
	assert.ErrorIs(t, err, ErrProviderDisabled)

	// enabled but secrets incomplete
	withEnv(t, map[string]string{
		"ECPAY_ENABLED":     "true",
		"ECPAY_MERCHANT_ID": "2000132",
	})
	_, err = reader.Get(models.GATEWAY_ECPAY)
	assert.ErrorIs(t, err, ErrProviderDisabled)

	withEnv(t, map[string]string{"LINEPAY_ENABLED": "true"})
	_, err = reader.Get(models.GATEWAY_LINEPAY)
	assert.ErrorIs(t, err, ErrProviderDisabled)

	_, err = reader.Get("applepay")
	assert.ErrorIs(t, err, ErrProviderDisabled)
}
