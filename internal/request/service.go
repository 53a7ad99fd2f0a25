package request

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"educycle_backend/internal/book"
	"educycle_backend/internal/common"
	"educycle_backend/internal/notification"
	"educycle_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Books is the part of the book module the request lifecycle depends on.
type Books interface {
	GetByID(ctx context.Context, id uuid.UUID) (*book.Book, error)
	Reindex(ctx context.Context, id uuid.UUID) error
}

// Chats opens and closes the chat attached to a request.
type Chats interface {
	OpenForRequest(ctx context.Context, requestID uuid.UUID, participants ...string) error
	Close(ctx context.Context, chatID uuid.UUID) error
}

// Service defines the book request lifecycle.
type Service interface {
	Create(ctx context.Context, requesterUID string, req CreateRequest) (*BookRequest, error)
	Get(ctx context.Context, id uuid.UUID, uid string) (*BookRequest, error)
	List(ctx context.Context, uid string) ([]BookRequest, error)
	Approve(ctx context.Context, id uuid.UUID, uid string) (*TransitionResponse, error)
	Reject(ctx context.Context, id uuid.UUID, uid string) (*TransitionResponse, error)
	Complete(ctx context.Context, id uuid.UUID, uid string) (*TransitionResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, uid string, status Status) (*TransitionResponse, error)
	CountsFor(ctx context.Context, uid string) (*Counts, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo     Repository
	books    Books
	chats    Chats
	users    shared.UserService
	notifier shared.Notifier
	credits  shared.CreditAwarder
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(repo Repository, books Books, chats Chats, users shared.UserService, notifier shared.Notifier, credits shared.CreditAwarder, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		books:    books,
		chats:    chats,
		users:    users,
		notifier: notifier,
		credits:  credits,
		logger:   logger.Named("request"),
	}
}

// Create files a pending request for an available book.
func (s *ServiceImplementation) Create(ctx context.Context, requesterUID string, req CreateRequest) (*BookRequest, error) {
	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("Invalid book_id.")
	}
	b, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !b.Available {
		return nil, common.ErrConflict.WithDetails("This book is no longer available.")
	}
	if req.DonorUID != "" && req.DonorUID != b.DonorUID {
		return nil, common.ErrBadRequest.WithDetails("donor_uid does not match the book's donor.")
	}
	if b.DonorUID == requesterUID {
		return nil, common.ErrBadRequest.WithDetails("You cannot request your own book.")
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	pickup := strings.TrimSpace(req.PickupLocation)
	if pickup == "" {
		pickup = b.PickupLocation
	}

	br := &BookRequest{
		BookID:         b.ID,
		BookTitle:      b.Title,
		RequesterUID:   requesterUID,
		DonorUID:       b.DonorUID,
		Status:         StatusPending,
		PickupLocation: pickup,
		Reason:         strings.TrimSpace(req.Reason),
		Quantity:       quantity,
	}
	if err := s.repo.CreateIfNoActive(ctx, br); err != nil {
		return nil, err
	}
	s.logger.Info("Book requested", zap.String("request_id", br.ID.String()), zap.String("book_id", b.ID.String()), zap.String("requester_uid", requesterUID))

	s.notify(ctx, br.DonorUID, notification.BookRequested, "New book request",
		fmt.Sprintf("%s requested \"%s\".", s.displayName(ctx, requesterUID), b.Title), br.ID)
	return br, nil
}

// Get returns a request visible to uid (requester or donor).
func (s *ServiceImplementation) Get(ctx context.Context, id uuid.UUID, uid string) (*BookRequest, error) {
	br, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if br.RequesterUID != uid && br.DonorUID != uid {
		return nil, common.ErrForbidden.WithDetails("You are not part of this request.")
	}
	return br, nil
}

func (s *ServiceImplementation) List(ctx context.Context, uid string) ([]BookRequest, error) {
	reqs, err := s.repo.ListForUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []BookRequest{}
	}
	return reqs, nil
}

// Approve accepts a pending request and opens its chat. Only the donor may approve,
// and only while the book is available and no other request for it is approved.
// Approving an approved request is a conflict, but it still opens a missing chat.
func (s *ServiceImplementation) Approve(ctx context.Context, id uuid.UUID, uid string) (*TransitionResponse, error) {
	br, err := s.requireDonor(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.repo.Approve(ctx, id, br.BookID, map[string]interface{}{"responded_at": now}); err != nil {
		if errors.Is(err, common.ErrConflict) && br.Status == StatusApproved {
			if chatErr := s.chats.OpenForRequest(ctx, id, br.RequesterUID, br.DonorUID); chatErr != nil {
				s.logger.Error("Failed to reopen chat for approved request", zap.String("request_id", id.String()), zap.Error(chatErr))
			}
		}
		return nil, err
	}
	if err := s.chats.OpenForRequest(ctx, id, br.RequesterUID, br.DonorUID); err != nil {
		s.logger.Error("Request approved but chat could not be opened", zap.String("request_id", id.String()), zap.Error(err))
		return nil, err
	}
	s.notify(ctx, br.RequesterUID, notification.RequestApproved, "Request approved",
		fmt.Sprintf("Your request for \"%s\" was approved. You can now chat with the donor.", br.BookTitle), id)
	return &TransitionResponse{RequestID: id.String(), Status: StatusApproved}, nil
}

// Reject declines a pending request. Only the donor may reject.
func (s *ServiceImplementation) Reject(ctx context.Context, id uuid.UUID, uid string) (*TransitionResponse, error) {
	br, err := s.requireDonor(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.repo.Transition(ctx, id, StatusPending, StatusRejected, map[string]interface{}{"responded_at": now}); err != nil {
		return nil, err
	}
	s.notify(ctx, br.RequesterUID, notification.RequestRejected, "Request declined",
		fmt.Sprintf("Your request for \"%s\" was declined.", br.BookTitle), id)
	return &TransitionResponse{RequestID: id.String(), Status: StatusRejected}, nil
}

// Complete records that the requester collected the book. The book leaves circulation,
// other pending requests for it are declined, the chat closes and the donor is credited once.
func (s *ServiceImplementation) Complete(ctx context.Context, id uuid.UUID, uid string) (*TransitionResponse, error) {
	br, err := s.Get(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	if br.RequesterUID != uid {
		return nil, common.ErrForbidden.WithDetails("Only the requester can mark a book as collected.")
	}
	now := time.Now().UTC()
	declined, err := s.repo.Complete(ctx, id, br.BookID, map[string]interface{}{"completed_at": now})
	if err != nil {
		return nil, err
	}

	if err := s.books.Reindex(ctx, br.BookID); err != nil {
		s.logger.Error("Failed to reindex handed over book", zap.String("book_id", br.BookID.String()), zap.Error(err))
	}
	if err := s.chats.Close(ctx, id); err != nil {
		s.logger.Warn("Failed to close chat", zap.String("request_id", id.String()), zap.Error(err))
	}
	if s.credits != nil {
		if _, err := s.credits.Award(ctx, br.DonorUID, shared.CreditReasonBookDonated, id.String()); err != nil {
			s.logger.Error("Failed to award donation credits", zap.String("donor_uid", br.DonorUID), zap.Error(err))
		}
	}
	s.notify(ctx, br.DonorUID, notification.RequestCompleted, "Book handed over",
		fmt.Sprintf("\"%s\" was marked as collected. Thanks for donating!", br.BookTitle), id)
	for _, other := range declined {
		s.notify(ctx, other.RequesterUID, notification.RequestRejected, "Request declined",
			fmt.Sprintf("\"%s\" has been given to another student.", other.BookTitle), other.ID)
	}

	return &TransitionResponse{
		RequestID:    id.String(),
		Status:       StatusCompleted,
		FeedbackPath: "/feedback/" + id.String(),
	}, nil
}

// UpdateStatus dispatches PATCH /requests/:id/status to the matching transition.
func (s *ServiceImplementation) UpdateStatus(ctx context.Context, id uuid.UUID, uid string, status Status) (*TransitionResponse, error) {
	switch status {
	case StatusApproved:
		return s.Approve(ctx, id, uid)
	case StatusRejected:
		return s.Reject(ctx, id, uid)
	case StatusCompleted:
		return s.Complete(ctx, id, uid)
	case StatusPending:
		if _, err := s.Get(ctx, id, uid); err != nil {
			return nil, err
		}
		return nil, common.ErrConflict.WithDetails("A request cannot move back to pending.")
	default:
		return nil, common.ErrUnprocessableEntity.WithDetails(fmt.Sprintf("Unknown status %q.", status))
	}
}

func (s *ServiceImplementation) CountsFor(ctx context.Context, uid string) (*Counts, error) {
	pending, completed := StatusPending, StatusCompleted
	var c Counts
	var err error
	if c.Sent, err = s.repo.CountByRequester(ctx, uid, nil); err != nil {
		return nil, err
	}
	if c.SentCompleted, err = s.repo.CountByRequester(ctx, uid, &completed); err != nil {
		return nil, err
	}
	if c.ReceivedTotal, err = s.repo.CountByDonor(ctx, uid, nil); err != nil {
		return nil, err
	}
	if c.ReceivedPending, err = s.repo.CountByDonor(ctx, uid, &pending); err != nil {
		return nil, err
	}
	if c.ReceivedComplete, err = s.repo.CountByDonor(ctx, uid, &completed); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ServiceImplementation) requireDonor(ctx context.Context, id uuid.UUID, uid string) (*BookRequest, error) {
	br, err := s.Get(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	if br.DonorUID != uid {
		return nil, common.ErrForbidden.WithDetails("Only the donor can respond to this request.")
	}
	return br, nil
}

func (s *ServiceImplementation) displayName(ctx context.Context, uid string) string {
	if s.users != nil {
		if u, err := s.users.GetUserByUID(ctx, uid); err == nil {
			return u.PublicName()
		}
	}
	return "Someone"
}

// notify never fails the caller; a missed notification is logged.
func (s *ServiceImplementation) notify(ctx context.Context, uid string, t notification.NotificationType, title, message string, relatedID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, uid, string(t), title, message, &relatedID); err != nil {
		s.logger.Warn("Failed to send notification", zap.String("user_uid", uid), zap.String("type", string(t)), zap.Error(err))
	}
}
