package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"tryon-web/internal/domain/entities"
	"tryon-web/internal/domain/valueobjects"
)

// InlineReferencer sends the embedded data URL itself.
type InlineReferencer struct{}

func NewInlineReferencer() *InlineReferencer {
	return &InlineReferencer{}
}

func (InlineReferencer) Reference(ctx context.Context, requestID entities.TryOnRequestID, slot valueobjects.ImageSlot, payload *valueobjects.ImagePayload) (string, error) {
	if payload == nil {
		return "", valueobjects.ErrEmptyImage
	}
	return payload.DataURL(), nil
}

// objectStore is the part of *minio.Client used here.
type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// ObjectReferencer uploads each image to a bucket and sends a presigned
// GET URL, for providers that need a hosted image.
type ObjectReferencer struct {
	client objectStore
	bucket string
	expiry time.Duration
	logger *zap.Logger
}

func NewObjectReferencer(client *minio.Client, bucket string, expiry time.Duration, logger *zap.Logger) *ObjectReferencer {
	return newObjectReferencer(client, bucket, expiry, logger)
}

func newObjectReferencer(client objectStore, bucket string, expiry time.Duration, logger *zap.Logger) *ObjectReferencer {
	return &ObjectReferencer{
		client: client,
		bucket: bucket,
		expiry: expiry,
		logger: logger,
	}
}

func (r *ObjectReferencer) Reference(ctx context.Context, requestID entities.TryOnRequestID, slot valueobjects.ImageSlot, payload *valueobjects.ImagePayload) (string, error) {
	if payload == nil {
		return "", valueobjects.ErrEmptyImage
	}

	objectName := ObjectName(requestID, slot, payload)
	info, err := r.client.PutObject(ctx, r.bucket, objectName, payload.Reader(), int64(payload.Size()),
		minio.PutObjectOptions{ContentType: payload.MimeType()})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s image: %w", slot, err)
	}

	presigned, err := r.client.PresignedGetObject(ctx, r.bucket, objectName, r.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s image: %w", slot, err)
	}

	r.logger.Debug("image uploaded",
		zap.String("bucket", r.bucket),
		zap.String("object", objectName),
		zap.Int64("size", info.Size),
	)

	return presigned.String(), nil
}

func ObjectName(requestID entities.TryOnRequestID, slot valueobjects.ImageSlot, payload *valueobjects.ImagePayload) string {
	return fmt.Sprintf("%s/%s%s", requestID, slot, payload.Extension())
}

// NewMinioClient connects to an S3-compatible endpoint with static keys.
func NewMinioClient(endpoint, accessKey, secretKey string, secure bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Minio client: %w", err)
	}
	return client, nil
}
