package archive

import (
	"errors"
	"fmt"
	"time"

	"github.com/YuChenWang/ShopPay/internal/pkg/env"
)

// Config holds payload cold-archive configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads archive configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "ap-northeast-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("S3_ARCHIVE_ENABLED", "false") == "true",
	}

	// Validate required fields if the archive is enabled
	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when the payload archive is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when the payload archive is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when the payload archive is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if the payload archive is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// GetBucketName returns the configured bucket
func (c *Config) GetBucketName() string {
	return c.BucketName
}

// GetObjectKey generates a standardized object key for a webhook payload.
// Format: webhooks/YYYY/MM/<gateway>/<event-id>.json
func (c *Config) GetObjectKey(gateway, eventID string, receivedAt time.Time) string {
	return fmt.Sprintf("webhooks/%04d/%02d/%s/%s.json",
		receivedAt.Year(), int(receivedAt.Month()), gateway, eventID)
}
