// File: internal/ngo/service.go
package ngo

import (
	"context"
	"strings"

	"educycle_backend/internal/common"
	"educycle_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultOpenLimit = 50

// Service manages NGO bulk book requests.
type Service interface {
	Create(ctx context.Context, ngoUID string, req CreateBulkRequest) (*BulkRequest, error)
	ListMine(ctx context.Context, ngoUID string) ([]BulkRequest, error)
	ListOpen(ctx context.Context) ([]BulkRequest, error)
	Fulfill(ctx context.Context, id uuid.UUID, uid string, count int) (*BulkRequest, error)
	CloseFulfilled(ctx context.Context) (int64, error)
}

type ServiceImplementation struct {
	repo   Repository
	users  shared.UserService
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates the bulk request service. users fills a missing city/area from the NGO profile.
func NewService(repo Repository, users shared.UserService, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, users: users, logger: logger.Named("ngo")}
}

func (s *ServiceImplementation) Create(ctx context.Context, ngoUID string, req CreateBulkRequest) (*BulkRequest, error) {
	br := &BulkRequest{
		NGOUID:     ngoUID,
		ClassLevel: strings.TrimSpace(req.ClassLevel),
		Board:      strings.TrimSpace(req.Board),
		Subject:    strings.TrimSpace(req.Subject),
		Quantity:   req.Quantity,
		City:       strings.TrimSpace(req.City),
		Area:       strings.TrimSpace(req.Area),
		Status:     StatusOpen,
	}
	if (br.City == "" || br.Area == "") && s.users != nil {
		if u, err := s.users.GetUserByUID(ctx, ngoUID); err == nil {
			if br.City == "" {
				br.City = u.City
			}
			if br.Area == "" {
				br.Area = u.Area
			}
		}
	}
	if err := s.repo.Create(ctx, br); err != nil {
		return nil, err
	}
	s.logger.Info("Bulk request created", zap.String("id", br.ID.String()), zap.String("ngo_uid", ngoUID), zap.Int("quantity", br.Quantity))
	return br, nil
}

func (s *ServiceImplementation) ListMine(ctx context.Context, ngoUID string) ([]BulkRequest, error) {
	return s.repo.ListByNGO(ctx, ngoUID)
}

func (s *ServiceImplementation) ListOpen(ctx context.Context) ([]BulkRequest, error) {
	return s.repo.ListOpen(ctx, defaultOpenLimit)
}

// Fulfill records count books received. Only the owning NGO may record them.
func (s *ServiceImplementation) Fulfill(ctx context.Context, id uuid.UUID, uid string, count int) (*BulkRequest, error) {
	if count <= 0 {
		return nil, common.ErrBadRequest.WithDetails("count must be positive.")
	}
	br, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if br.NGOUID != uid {
		return nil, common.ErrForbidden.WithDetails("You can only update your own bulk requests.")
	}
	if br.Status == StatusCompleted {
		return nil, common.ErrConflict.WithDetails("This bulk request is already fulfilled.")
	}
	return s.repo.AddFulfilled(ctx, id, count)
}

func (s *ServiceImplementation) CloseFulfilled(ctx context.Context) (int64, error) {
	return s.repo.CloseFulfilled(ctx)
}
