// File: internal/book/service.go
package book

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"educycle_backend/internal/common"
	es "educycle_backend/internal/platform/elasticsearch"
	"educycle_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const (
	imagesSubDir  = "books"
	maxBookImages = 8
)

// Service defines the interface for book operations.
type Service interface {
	Donate(ctx context.Context, donorUID string, req DonateRequest, images []*multipart.FileHeader) (*Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)
	Search(ctx context.Context, query SearchQuery) ([]Book, *common.Pagination, error)
	ListMine(ctx context.Context, donorUID string) ([]Book, error)
	CountDonated(ctx context.Context, donorUID string) (int64, error)
	MarkUnavailable(ctx context.Context, id uuid.UUID) error
	Reindex(ctx context.Context, id uuid.UUID) error
	SyncIndex(ctx context.Context, batchSize int, refresh string) (int, error)
}

// ServiceImplementation implements the book Service.
type ServiceImplementation struct {
	repo   Repository
	files  shared.FileStore
	index  SearchIndex
	es     *es.ESClientWrapper
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a book service. esClient may be nil, which disables the search index.
func NewService(repo Repository, files shared.FileStore, esClient *es.ESClientWrapper, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		files:  files,
		index:  NewSearchIndex(esClient),
		es:     esClient,
		logger: logger.Named("book"),
	}
}

// Donate stores the images in upload order and creates an available book owned by donorUID.
func (s *ServiceImplementation) Donate(ctx context.Context, donorUID string, req DonateRequest, images []*multipart.FileHeader) (*Book, error) {
	if len(images) == 0 {
		return nil, common.ErrBadRequest.WithDetails("At least one image is required.")
	}
	if len(images) > maxBookImages {
		return nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("At most %d images are allowed.", maxBookImages))
	}

	urls := make([]string, 0, len(images))
	for _, fh := range images {
		url, err := s.files.Save(ctx, fh, imagesSubDir)
		if err != nil {
			s.removeFiles(ctx, urls)
			if strings.Contains(err.Error(), "unsupported file type") || strings.Contains(err.Error(), "exceeds") {
				return nil, common.ErrBadRequest.WithDetails(err.Error())
			}
			s.logger.Error("Failed to store book image", zap.String("donor_uid", donorUID), zap.Error(err))
			return nil, fmt.Errorf("failed to store image %s: %w", fh.Filename, err)
		}
		urls = append(urls, url)
	}

	b := &Book{
		Title:          strings.TrimSpace(req.Title),
		Subject:        strings.TrimSpace(req.Subject),
		ClassLevel:     strings.TrimSpace(req.ClassLevel),
		Board:          strings.TrimSpace(req.Board),
		Condition:      req.Condition,
		City:           strings.TrimSpace(req.City),
		Area:           strings.TrimSpace(req.Area),
		Description:    strings.TrimSpace(req.Description),
		PickupLocation: strings.TrimSpace(req.PickupLocation),
		ImageURLs:      urls,
		DonorUID:       donorUID,
		Available:      true,
	}
	b.ID = uuid.New()
	b.Slug = fmt.Sprintf("%s-%s", slug.Make(b.Title), b.ID.String()[:8])

	if err := s.repo.Create(ctx, b); err != nil {
		s.removeFiles(ctx, urls)
		return nil, err
	}
	s.logger.Info("Book donated", zap.String("book_id", b.ID.String()), zap.String("donor_uid", donorUID), zap.Int("images", len(urls)))
	s.reindex(ctx, b)
	return b, nil
}

func (s *ServiceImplementation) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// Search uses the index when configured and the database otherwise, or when the index fails.
func (s *ServiceImplementation) Search(ctx context.Context, query SearchQuery) ([]Book, *common.Pagination, error) {
	if s.index != nil {
		ids, total, err := s.index.Search(ctx, query)
		if err == nil {
			books, err := s.repo.FindByIDs(ctx, ids)
			if err != nil {
				return nil, nil, err
			}
			return books, paginationFor(total, query), nil
		}
		s.logger.Warn("Search index query failed; falling back to database", zap.Error(err))
	}
	return s.repo.Search(ctx, query)
}

func (s *ServiceImplementation) ListMine(ctx context.Context, donorUID string) ([]Book, error) {
	return s.repo.ListByDonor(ctx, donorUID)
}

func (s *ServiceImplementation) CountDonated(ctx context.Context, donorUID string) (int64, error) {
	return s.repo.CountByDonor(ctx, donorUID)
}

// MarkUnavailable hides the book from search once it has been handed over.
func (s *ServiceImplementation) MarkUnavailable(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkUnavailable(ctx, id); err != nil {
		return err
	}
	return s.Reindex(ctx, id)
}

// Reindex pushes the stored state of a book to the search index after another module
// changed it. It is a no-op without an index.
func (s *ServiceImplementation) Reindex(ctx context.Context, id uuid.UUID) error {
	if s.index == nil {
		return nil
	}
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	s.reindex(ctx, b)
	return nil
}

// SyncIndex re-indexes every book in batches and returns how many were indexed.
func (s *ServiceImplementation) SyncIndex(ctx context.Context, batchSize int, refresh string) (int, error) {
	if s.es == nil {
		return 0, errors.New("search index is not configured; set ELASTICSEARCH_URL")
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if err := es.CreateIndexIfNotExists(ctx, s.es, es.BooksIndexName, es.BooksMapping(), s.logger); err != nil {
		return 0, err
	}

	offset, totalSynced, totalFailed := 0, 0, 0
	for batchNumber := 1; ; batchNumber++ {
		books, err := s.repo.FindAllForSync(ctx, offset, batchSize)
		if err != nil {
			return totalSynced, fmt.Errorf("failed to fetch batch %d: %w", batchNumber, err)
		}
		if len(books) == 0 {
			break
		}

		docs := make([]es.BulkDocument, 0, len(books))
		for i := range books {
			docs = append(docs, es.BulkDocument{ID: books[i].ID.String(), Doc: books[i].toSearchDoc()})
		}
		synced, failed, err := s.es.BulkIndex(ctx, es.BooksIndexName, docs, refresh, s.logger)
		if err != nil {
			s.logger.Error("Bulk request failed", zap.Int("batchNumber", batchNumber), zap.Error(err))
			totalFailed += len(books)
		} else {
			totalSynced += synced
			totalFailed += len(failed)
		}
		s.logger.Info("Batch processed.", zap.Int("batchNumber", batchNumber), zap.Int("synced", synced), zap.Int("failed", len(failed)))
		offset += len(books)
	}

	if totalFailed > 0 {
		return totalSynced, fmt.Errorf("%d books failed to sync", totalFailed)
	}
	return totalSynced, nil
}

func (s *ServiceImplementation) reindex(ctx context.Context, b *Book) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(ctx, b); err != nil {
		s.logger.Warn("Failed to index book", zap.String("book_id", b.ID.String()), zap.Error(err))
	}
}

func (s *ServiceImplementation) removeFiles(ctx context.Context, urls []string) {
	for _, u := range urls {
		if err := s.files.Delete(ctx, u); err != nil {
			s.logger.Warn("Failed to clean up uploaded image", zap.String("url", u), zap.Error(err))
		}
	}
}
