// Package storage relays uploaded media to object storage. Only the durable
// URLs it returns are persisted; the binaries never touch the database.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"riseup/config"
	"riseup/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MediaStore is what the upload handlers need from the media backend.
type MediaStore interface {
	// Upload stores the object under the given folder and returns its
	// durable public URL.
	Upload(ctx context.Context, folder, filename, contentType string, reader io.Reader, size int64) (string, error)
}

// Object describes a stored object, for the inspection command.
type Object struct {
	Key  string
	Size int64
}

// MinioStore is the MinIO-backed media store.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore connects to MinIO and makes sure the media bucket exists.
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("Created media bucket", logger.String("bucket", cfg.MinioBucket))
	}

	publicURL := strings.TrimSuffix(cfg.MinioPublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
	}

	return &MinioStore{
		client:    client,
		bucket:    cfg.MinioBucket,
		publicURL: publicURL,
	}, nil
}

// Upload streams the object into the bucket under "<folder>/<uuid><ext>" and
// returns the public URL the track row will carry.
func (s *MinioStore) Upload(ctx context.Context, folder, filename, contentType string, reader io.Reader, size int64) (string, error) {
	key := fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.NewString(), strings.ToLower(path.Ext(filename)))

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	logger.Debug("Uploaded media object",
		logger.String("key", key),
		logger.Int64("size", size),
		logger.String("contentType", contentType))

	return s.publicURL + "/" + key, nil
}

// ListObjects lists the bucket contents under the given prefix.
func (s *MinioStore) ListObjects(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", info.Err)
		}
		objects = append(objects, Object{Key: info.Key, Size: info.Size})
	}
	return objects, nil
}
