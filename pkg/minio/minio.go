// Package minio archives finished reports into an S3-compatible bucket.
package minio

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"workshop-backend/pkg/config"
)

var Module = fx.Module("minio", fx.Provide(NewArchive))

const reportPrefix = "reports"

type Archive struct {
	client *minio.Client
	bucket string
}

// NewArchive returns nil when MINIO_ENDPOINT is not configured.
func NewArchive(lc fx.Lifecycle, c *config.Config) (*Archive, error) {
	if c.Minio.Endpoint == "" {
		return nil, nil
	}

	client, err := minio.New(c.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Minio.AccessKey, c.Minio.SecretKey, ""),
		Secure: c.Minio.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	a := &Archive{client: client, bucket: c.Minio.BucketName}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			a.ensureBucket(ctx)
			return nil
		},
	})

	zap.L().Info("[Minio] report archive enabled",
		zap.String("endpoint", c.Minio.Endpoint),
		zap.String("bucket", c.Minio.BucketName),
	)
	return a, nil
}

func (a *Archive) ensureBucket(ctx context.Context) {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		zap.L().Error("[Minio] failed to check bucket", zap.String("bucket", a.bucket), zap.Error(err))
		return
	}
	if exists {
		return
	}

	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		zap.L().Error("[Minio] failed to create bucket", zap.String("bucket", a.bucket), zap.Error(err))
		return
	}
	zap.L().Info("[Minio] created bucket", zap.String("bucket", a.bucket))
}

// Upload stores the file at localPath under key and returns the uploaded size.
func (a *Archive) Upload(ctx context.Context, key, localPath string) (int64, error) {
	info, err := a.client.FPutObject(ctx, a.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return 0, fmt.Errorf("upload %s to %s: %w", key, a.bucket, err)
	}
	return info.Size, nil
}

// ObjectKey maps a report under root to reports/<YYYY>/<MM>/<file>.
func ObjectKey(root, localPath string) (string, error) {
	rel, err := filepath.Rel(root, localPath)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || strings.HasPrefix(rel, "../") || rel == ".." {
		return "", fmt.Errorf("%s is outside %s", localPath, root)
	}
	return path.Join(reportPrefix, rel), nil
}
