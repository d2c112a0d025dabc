package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"devtrack.app/api/core/config"
)

// Archive keeps a copy of generated report files.
type Archive interface {
	Put(ctx context.Context, kind, ext, contentType string, data []byte) (string, error)
}

type minioArchive struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// New connects to the bucket, creating it if it does not exist.
// Returns nil when archiving is not configured.
func New(ctx context.Context, cfg config.ArchiveConfig) (Archive, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", cfg.Bucket, err)
		}
		slog.InfoContext(ctx, "created report archive bucket", "bucket", cfg.Bucket)
	}

	return &minioArchive{client: client, bucket: cfg.Bucket, now: time.Now}, nil
}

func (a *minioArchive) Put(ctx context.Context, kind, ext, contentType string, data []byte) (string, error) {
	key := ObjectKey(kind, ext, a.now(), uuid.New())
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return key, nil
}

// ObjectKey lays files out as reports/<kind>/<yyyy>/<mm>/<uuid>.<ext>.
func ObjectKey(kind, ext string, at time.Time, id uuid.UUID) string {
	at = at.UTC()
	return fmt.Sprintf("reports/%s/%04d/%02d/%s.%s", kind, at.Year(), int(at.Month()), id.String(), ext)
}
