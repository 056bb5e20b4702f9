package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
)

// Client wraps the S3 client with payload-archive functionality
type Client struct {
	s3Client *s3.Client
	config   *Config
}

// NewClient creates a new payload archive client
func NewClient(cfg *Config) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("payload archive is disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			// S3-compatible services need path-style URLs
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	client := &Client{
		s3Client: s3Client,
		config:   cfg,
	}

	if err := client.testConnection(); err != nil {
		return nil, fmt.Errorf("failed to connect to S3: %w", err)
	}

	log.Infof("[Archive] Successfully initialized S3 client for bucket: %s", cfg.GetBucketName())
	return client, nil
}

// testConnection checks that the configured bucket is reachable
func (c *Client) testConnection() error {
	ctx := context.Background()

	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.config.GetBucketName()),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", c.config.GetBucketName(), err)
	}
	return nil
}

// UploadPayload ships one webhook payload snapshot to cold storage.
func (c *Client) UploadPayload(ctx context.Context, objectKey string, payload []byte) error {
	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.config.GetBucketName()),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(payload),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(payload))),
		Metadata: map[string]string{
			"upload-source": "shoppay-webhook-archive",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	log.Infof("[Archive] Successfully uploaded: s3://%s/%s", c.config.GetBucketName(), objectKey)
	return nil
}
