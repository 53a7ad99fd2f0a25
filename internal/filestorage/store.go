package filestorage

import (
	"fmt"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"educycle_backend/internal/config"
	"educycle_backend/internal/firebase"
	"educycle_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// MaxUploadSize caps a single stored file.
const MaxUploadSize = 10 << 20

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".pdf": true, ".doc": true, ".docx": true, ".ppt": true, ".pptx": true,
}

var contentTypeExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// New selects the file store named by STORAGE_DRIVER.
func New(cfg *config.Config, fb *firebase.FirebaseService, logger *zap.Logger) (shared.FileStore, error) {
	switch cfg.StorageDriver {
	case "firebase":
		if fb == nil {
			return nil, fmt.Errorf("STORAGE_DRIVER=firebase requires FIREBASE_SERVICE_ACCOUNT_KEY_PATH")
		}
		return NewBucketStore(fb, logger)
	default:
		return NewLocalStore(cfg.StoragePath, cfg.PublicBaseURL, logger)
	}
}

// objectName builds "<subDir>/<slugged-name>-<random><ext>" for an upload and validates its type.
func objectName(fileHeader *multipart.FileHeader, subDir string) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("fileHeader cannot be nil")
	}
	if fileHeader.Size > MaxUploadSize {
		return "", fmt.Errorf("file %s exceeds the %d MB limit", fileHeader.Filename, MaxUploadSize>>20)
	}

	originalFilename := filepath.Base(fileHeader.Filename)
	extension := strings.ToLower(filepath.Ext(originalFilename))
	if extension == "" {
		contentType := fileHeader.Header.Get("Content-Type")
		for prefix, ext := range contentTypeExtensions {
			if strings.HasPrefix(contentType, prefix) {
				extension = ext
				break
			}
		}
	}
	if !allowedExtensions[extension] {
		return "", fmt.Errorf("unsupported file type or missing extension: %s", originalFilename)
	}

	cleanSubDir := path.Clean(filepath.ToSlash(subDir))
	if cleanSubDir == "." || strings.HasPrefix(cleanSubDir, "..") || strings.HasPrefix(cleanSubDir, "/") {
		return "", fmt.Errorf("invalid subDir path")
	}

	base := slug.Make(strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename)))
	if base == "" {
		base = "file"
	}
	if len(base) > 60 {
		base = base[:60]
	}
	return path.Join(cleanSubDir, fmt.Sprintf("%s-%s%s", base, uuid.NewString()[:8], extension)), nil
}
