package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/astro-profile/internal/infra/ephemeris"
)

// Config points at an S3-compatible bucket, typically Cloudflare R2.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

// R2Archive stores raw ephemeris payloads as JSON objects.
type R2Archive struct {
	client *minio.Client
	bucket string
	region string
	mu     sync.Mutex
	ready  bool
	logger *slog.Logger
}

// NewR2Archive constructs the archive adapter.
func NewR2Archive(cfg Config, logger *slog.Logger) (*R2Archive, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("archive bucket is required")
	}
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       useSSL(cfg.Endpoint),
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init r2 client: %w", err)
	}
	return &R2Archive{client: client, bucket: cfg.Bucket, region: cfg.Region, logger: logger.With("component", "archive.r2")}, nil
}

func (a *R2Archive) ensureBucket(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		return nil
	}
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil || !exists {
		err = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region})
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			return err
		}
	}
	a.ready = true
	return nil
}

// Archive uploads one payload under key.
func (a *R2Archive) Archive(ctx context.Context, key string, payload []byte) error {
	if err := a.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", a.bucket, err)
	}
	info, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType:      "application/json",
		DisableMultipart: true,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	a.logger.Debug("archived payload", "key", key, "size", info.Size)
	return nil
}

var _ ephemeris.Archiver = (*R2Archive)(nil)

// sanitizeEndpoint strips scheme and path, which minio.New rejects.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if idx := strings.Index(raw, "/"); idx >= 0 {
		raw = raw[:idx]
	}
	return raw
}

func useSSL(endpoint string) bool {
	return !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "http://")
}
