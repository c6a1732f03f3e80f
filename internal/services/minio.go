package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/config"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

// ImageHost stores images remotely and hands back a durable URL plus the
// public id needed to delete them again.
type ImageHost interface {
	Upload(ctx context.Context, folder string, r io.Reader, size int64, contentType string) (models.Image, error)
	Delete(ctx context.Context, publicID string) error
}

type MinioHost struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

var _ ImageHost = (*MinioHost)(nil)

// ConnectMinio creates the client and the bucket if it is missing.
func ConnectMinio(ctx context.Context, cfg *config.Config) (*MinioHost, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "minio client")
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, errors.Wrap(err, "minio bucket check")
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrap(err, "minio make bucket")
		}
		zap.S().Infow("🪣 bucket created", "bucket", cfg.MinioBucket)
	}

	publicBase := cfg.MinioPublicURL
	if publicBase == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s", scheme, cfg.MinioEndpoint)
	}
	zap.S().Infow("✅ connected to MinIO", "endpoint", cfg.MinioEndpoint, "bucket", cfg.MinioBucket)
	return &MinioHost{client: client, bucket: cfg.MinioBucket, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

func (h *MinioHost) Upload(ctx context.Context, folder string, r io.Reader, size int64, contentType string) (models.Image, error) {
	objectName := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), extensionFor(contentType))
	if _, err := h.client.PutObject(ctx, h.bucket, objectName, r, size,
		minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return models.Image{}, errors.Wrap(err, "minio upload")
	}
	return models.Image{
		URL:      fmt.Sprintf("%s/%s/%s", h.publicBase, h.bucket, objectName),
		PublicID: objectName,
	}, nil
}

func (h *MinioHost) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if err := h.client.RemoveObject(ctx, h.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrapf(err, "minio delete %s", publicID)
	}
	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
