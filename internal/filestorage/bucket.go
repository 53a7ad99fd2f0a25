package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strings"

	"educycle_backend/internal/firebase"
	"educycle_backend/internal/shared"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
)

const publicStorageHost = "https://storage.googleapis.com"

// BucketStore keeps uploads in the Firebase default storage bucket.
type BucketStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
	logger     *zap.Logger
}

var _ shared.FileStore = (*BucketStore)(nil)

func NewBucketStore(fb *firebase.FirebaseService, logger *zap.Logger) (*BucketStore, error) {
	bucket, name, err := fb.Bucket(context.Background())
	if err != nil {
		return nil, err
	}
	logger.Info("Bucket file storage initialized", zap.String("bucket", name))
	return &BucketStore{bucket: bucket, bucketName: name, logger: logger}, nil
}

func (s *BucketStore) Save(ctx context.Context, fileHeader *multipart.FileHeader, subDir string) (string, error) {
	name, err := objectName(fileHeader, subDir)
	if err != nil {
		return "", err
	}
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = fileHeader.Header.Get("Content-Type")
	w.CacheControl = "public, max-age=86400"
	if _, err := io.Copy(w, src); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		s.logger.Error("Bucket upload failed", zap.String("object", name), zap.Error(err))
		return "", fmt.Errorf("failed to finalize upload %s: %w", name, err)
	}
	return s.publicURL(name), nil
}

func (s *BucketStore) Delete(ctx context.Context, fileURL string) error {
	prefix := s.publicURL("")
	if !strings.HasPrefix(fileURL, prefix) {
		return fmt.Errorf("invalid file path for deletion")
	}
	name, err := url.PathUnescape(strings.TrimPrefix(fileURL, prefix))
	if err != nil || name == "" {
		return fmt.Errorf("invalid file path for deletion")
	}
	if err := s.bucket.Object(name).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete object %s: %w", name, err)
	}
	return nil
}

func (s *BucketStore) publicURL(name string) string {
	return fmt.Sprintf("%s/%s/%s", publicStorageHost, s.bucketName, name)
}
