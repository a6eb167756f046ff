package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader parks exported PDFs in S3-compatible object storage and hands out
// time-limited download links.
type Uploader struct {
	client *minio.Client
	bucket string
}

// NewUploader connects to object storage and ensures the exports bucket
// exists.
func NewUploader(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Uploader, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object storage: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check exports bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create exports bucket: %w", err)
		}
	}

	return &Uploader{client: client, bucket: bucket}, nil
}

// Upload stores PDF bytes under <documentID>/<timestamp>.pdf and returns a
// presigned URL valid for one hour.
func (u *Uploader) Upload(ctx context.Context, documentID string, data []byte) (string, error) {
	objectName := fmt.Sprintf("%s/%d.pdf", documentID, time.Now().UnixMilli())

	_, err := u.client.PutObject(ctx, u.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return "", fmt.Errorf("upload pdf: %w", err)
	}

	url, err := u.client.PresignedGetObject(ctx, u.bucket, objectName, time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("presign pdf url: %w", err)
	}
	return url.String(), nil
}
