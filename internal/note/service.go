// File: internal/note/service.go
package note

import (
	"context"
	"mime/multipart"
	"strings"

	"educycle_backend/internal/common"
	"educycle_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const filesSubDir = "notes"

// Service defines the study notes operations.
type Service interface {
	Upload(ctx context.Context, ownerUID string, req UploadRequest, file *multipart.FileHeader) (*Note, error)
	List(ctx context.Context, query ListQuery) ([]Note, *common.Pagination, error)
	ListMine(ctx context.Context, ownerUID string) ([]Note, error)
	Delete(ctx context.Context, id uuid.UUID, uid string) error
	RegisterDownload(ctx context.Context, id uuid.UUID) (*DownloadResponse, error)
}

type ServiceImplementation struct {
	repo   Repository
	files  shared.FileStore
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(repo Repository, files shared.FileStore, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, files: files, logger: logger.Named("note")}
}

func (s *ServiceImplementation) Upload(ctx context.Context, ownerUID string, req UploadRequest, file *multipart.FileHeader) (*Note, error) {
	if file == nil {
		return nil, common.ErrBadRequest.WithDetails("A file is required.")
	}
	url, err := s.files.Save(ctx, file, filesSubDir)
	if err != nil {
		if strings.Contains(err.Error(), "unsupported file type") || strings.Contains(err.Error(), "exceeds") {
			return nil, common.ErrBadRequest.WithDetails(err.Error())
		}
		s.logger.Error("Failed to store note file", zap.String("owner_uid", ownerUID), zap.Error(err))
		return nil, err
	}

	n := &Note{
		Title:       strings.TrimSpace(req.Title),
		Subject:     strings.TrimSpace(req.Subject),
		ClassLevel:  strings.TrimSpace(req.ClassLevel),
		Board:       strings.TrimSpace(req.Board),
		Description: strings.TrimSpace(req.Description),
		FileURL:     url,
		OwnerUID:    ownerUID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		if delErr := s.files.Delete(ctx, url); delErr != nil {
			s.logger.Warn("Failed to remove orphaned note file", zap.String("url", url), zap.Error(delErr))
		}
		return nil, err
	}
	s.logger.Info("Note uploaded", zap.String("note_id", n.ID.String()), zap.String("owner_uid", ownerUID))
	return n, nil
}

func (s *ServiceImplementation) List(ctx context.Context, query ListQuery) ([]Note, *common.Pagination, error) {
	return s.repo.List(ctx, query)
}

func (s *ServiceImplementation) ListMine(ctx context.Context, ownerUID string) ([]Note, error) {
	return s.repo.ListByOwner(ctx, ownerUID)
}

// Delete removes a note and its file. Only the owner may delete.
func (s *ServiceImplementation) Delete(ctx context.Context, id uuid.UUID, uid string) error {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if n.OwnerUID != uid {
		return common.ErrForbidden.WithDetails("You can only delete your own notes.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.files.Delete(ctx, n.FileURL); err != nil {
		s.logger.Warn("Note deleted but file removal failed", zap.String("note_id", id.String()), zap.Error(err))
	}
	return nil
}

func (s *ServiceImplementation) RegisterDownload(ctx context.Context, id uuid.UUID) (*DownloadResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	downloads, err := s.repo.IncrementDownloads(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DownloadResponse{FileURL: n.FileURL, Downloads: downloads}, nil
}
