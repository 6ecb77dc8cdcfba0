package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client stores and serves uploaded documents and images from a single S3
// bucket. Objects are private; reads go through presigned URLs.
type Client struct {
	bucket   string
	uploader *manager.Uploader
	s3       *s3.Client
	presign  *s3.PresignClient
}

func NewClient(cfg aws.Config, bucket string) *Client {
	api := s3.NewFromConfig(cfg)
	return &Client{
		bucket:   bucket,
		uploader: manager.NewUploader(api),
		s3:       api,
		presign:  s3.NewPresignClient(api),
	}
}

func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("storage: upload %s: %w", key, err)
	}
	return nil
}

func (c *Client) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	out, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("storage: presign %s: %w", key, err)
	}
	return out.URL, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}
