package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"educycle_backend/internal/shared"

	"go.uber.org/zap"
)

// StaticPrefix is the URL path the router serves the local storage directory under.
const StaticPrefix = "/static"

// LocalStore keeps uploads on disk and serves them through the API's static route.
type LocalStore struct {
	storagePath   string
	publicBaseURL string
	logger        *zap.Logger
}

var _ shared.FileStore = (*LocalStore)(nil)

// NewLocalStore creates the storage directory if needed.
func NewLocalStore(storagePath, publicBaseURL string, logger *zap.Logger) (*LocalStore, error) {
	if storagePath == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if err := os.MkdirAll(storagePath, os.ModePerm); err != nil {
		logger.Error("Failed to create storage path directory", zap.String("path", storagePath), zap.Error(err))
		return nil, fmt.Errorf("failed to create storage path %s: %w", storagePath, err)
	}
	logger.Info("Local file storage initialized", zap.String("storagePath", storagePath))
	return &LocalStore{
		storagePath:   storagePath,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}, nil
}

// Root is the directory served under StaticPrefix.
func (s *LocalStore) Root() string {
	return s.storagePath
}

// Save writes the upload below subDir and returns its public URL.
func (s *LocalStore) Save(_ context.Context, fileHeader *multipart.FileHeader, subDir string) (string, error) {
	name, err := objectName(fileHeader, subDir)
	if err != nil {
		return "", err
	}

	src, err := fileHeader.Open()
	if err != nil {
		s.logger.Error("Failed to open uploaded file", zap.Error(err))
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	destinationPath := filepath.Join(s.storagePath, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(destinationPath), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	dst, err := os.Create(destinationPath)
	if err != nil {
		s.logger.Error("Failed to create destination file", zap.String("path", destinationPath), zap.Error(err))
		return "", fmt.Errorf("failed to create file %s: %w", destinationPath, err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		s.logger.Error("Failed to copy uploaded file to destination", zap.String("path", destinationPath), zap.Error(err))
		os.Remove(destinationPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.logger.Debug("File saved", zap.String("path", destinationPath))
	return s.publicBaseURL + StaticPrefix + "/" + name, nil
}

// Delete removes a file previously returned by Save. Missing files are not an error.
func (s *LocalStore) Delete(_ context.Context, fileURL string) error {
	relativePath, ok := s.relativePath(fileURL)
	if !ok {
		s.logger.Warn("Refusing to delete file outside storage", zap.String("url", fileURL))
		return fmt.Errorf("invalid file path for deletion")
	}

	fullPath := filepath.Join(s.storagePath, filepath.FromSlash(relativePath))
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("Attempt to delete non-existent file", zap.String("path", fullPath))
			return nil
		}
		s.logger.Error("Failed to delete file", zap.String("path", fullPath), zap.Error(err))
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	return nil
}

func (s *LocalStore) relativePath(fileURL string) (string, bool) {
	rest := strings.TrimPrefix(fileURL, s.publicBaseURL)
	if !strings.HasPrefix(rest, StaticPrefix+"/") {
		return "", false
	}
	rel := filepath.ToSlash(filepath.Clean(strings.TrimPrefix(rest, StaticPrefix+"/")))
	if rel == "." || strings.Contains(rel, "..") || strings.HasPrefix(rel, "/") {
		return "", false
	}
	return rel, true
}
