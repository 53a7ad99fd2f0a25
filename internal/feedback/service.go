// File: internal/feedback/service.go
package feedback

import (
	"context"
	"fmt"
	"math"
	"strings"

	"educycle_backend/internal/common"
	"educycle_backend/internal/notification"
	"educycle_backend/internal/request"
	"educycle_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Requests resolves the request a feedback refers to, enforcing participation.
type Requests interface {
	Get(ctx context.Context, id uuid.UUID, uid string) (*request.BookRequest, error)
}

// Reputations stores a user's average rating.
type Reputations interface {
	SetReputation(ctx context.Context, uid string, reputation float64) error
}

type Service interface {
	Submit(ctx context.Context, fromUID string, req SubmitRequest) (*SubmitResponse, error)
	ListReceived(ctx context.Context, uid string) ([]Feedback, error)
}

type ServiceImplementation struct {
	repo        Repository
	requests    Requests
	reputations Reputations
	credits     shared.CreditAwarder
	notifier    shared.Notifier
	logger      *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(repo Repository, requests Requests, reputations Reputations, credits shared.CreditAwarder, notifier shared.Notifier, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:        repo,
		requests:    requests,
		reputations: reputations,
		credits:     credits,
		notifier:    notifier,
		logger:      logger.Named("feedback"),
	}
}

// Submit rates the other participant of a completed request, recomputes their
// reputation and credits the author once per request.
func (s *ServiceImplementation) Submit(ctx context.Context, fromUID string, req SubmitRequest) (*SubmitResponse, error) {
	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("Invalid request_id.")
	}
	br, err := s.requests.Get(ctx, requestID, fromUID)
	if err != nil {
		return nil, err
	}
	if br.Status != request.StatusCompleted {
		return nil, common.ErrConflict.WithDetails("Feedback can only be left for completed requests.")
	}

	other := br.DonorUID
	if fromUID == br.DonorUID {
		other = br.RequesterUID
	}
	toUID := strings.TrimSpace(req.ToUID)
	if toUID == "" {
		toUID = other
	}
	if toUID != other || toUID == fromUID {
		return nil, common.ErrBadRequest.WithDetails("to_uid must be the other participant of the request.")
	}

	fb := &Feedback{
		RequestID: requestID,
		FromUID:   fromUID,
		ToUID:     toUID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := s.repo.Create(ctx, fb); err != nil {
		return nil, err
	}

	avg, err := s.repo.AverageFor(ctx, toUID)
	if err != nil {
		return nil, err
	}
	reputation := math.Round(avg*100) / 100
	if err := s.reputations.SetReputation(ctx, toUID, reputation); err != nil {
		s.logger.Error("Failed to update reputation", zap.String("uid", toUID), zap.Error(err))
		return nil, err
	}

	if s.credits != nil {
		if _, err := s.credits.Award(ctx, fromUID, shared.CreditReasonFeedbackGiven, requestID.String()); err != nil {
			s.logger.Warn("Failed to award feedback credits", zap.String("uid", fromUID), zap.Error(err))
		}
	}
	if s.notifier != nil {
		msg := fmt.Sprintf("You received a %d-star rating for \"%s\".", fb.Rating, br.BookTitle)
		if err := s.notifier.Notify(ctx, toUID, string(notification.FeedbackReceived), "New feedback", msg, &requestID); err != nil {
			s.logger.Warn("Failed to send feedback notification", zap.String("uid", toUID), zap.Error(err))
		}
	}

	s.logger.Info("Feedback submitted", zap.String("request_id", requestID.String()), zap.String("from_uid", fromUID), zap.Int("rating", fb.Rating))
	return &SubmitResponse{Status: "submitted", FeedbackID: fb.ID.String(), Reputation: reputation}, nil
}

func (s *ServiceImplementation) ListReceived(ctx context.Context, uid string) ([]Feedback, error) {
	out, err := s.repo.ListReceived(ctx, uid)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Feedback{}
	}
	return out, nil
}
