// File: internal/impact/service.go
package impact

import (
	"context"
	"math"

	"educycle_backend/internal/request"
	"educycle_backend/internal/shared"

	"go.uber.org/zap"
)

// Per-book estimates behind the derived metrics.
const (
	PaperKgPerBook  = 0.8
	RupeesPerBook   = 450
	PaperKgPerTree  = 15.0
	CO2KgPerPaperKg = 2.1
)

// Stats is the body of GET /impact/.
type Stats struct {
	BooksShared               int64   `json:"books_shared"`
	BooksReceived             int64   `json:"books_received"`
	TotalRequestsReceived     int64   `json:"total_requests_received"`
	PendingRequestsReceived   int64   `json:"pending_requests_received"`
	CompletedRequestsReceived int64   `json:"completed_requests_received"`
	TotalReused               int64   `json:"total_reused"`
	EduCredits                int     `json:"edu_credits"`
	MoneySavedINR             float64 `json:"money_saved_inr"`
	PaperSavedKg              float64 `json:"paper_saved_kg"`
	TreesProtected            float64 `json:"trees_protected"`
	CO2SavedKg                float64 `json:"co2_saved_kg"`
}

// Books counts a user's donations.
type Books interface {
	CountDonated(ctx context.Context, donorUID string) (int64, error)
}

// Requests counts a user's requests on both sides.
type Requests interface {
	CountsFor(ctx context.Context, uid string) (*request.Counts, error)
}

type Service interface {
	ForUser(ctx context.Context, uid string) (*Stats, error)
}

type ServiceImplementation struct {
	books    Books
	requests Requests
	users    shared.UserService
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(books Books, requests Requests, users shared.UserService, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{books: books, requests: requests, users: users, logger: logger.Named("impact")}
}

func (s *ServiceImplementation) ForUser(ctx context.Context, uid string) (*Stats, error) {
	booksShared, err := s.books.CountDonated(ctx, uid)
	if err != nil {
		return nil, err
	}
	counts, err := s.requests.CountsFor(ctx, uid)
	if err != nil {
		return nil, err
	}
	credits := 0
	if u, err := s.users.GetUserByUID(ctx, uid); err == nil {
		credits = u.EduCredits
	} else {
		s.logger.Warn("Impact requested for user without profile", zap.String("uid", uid), zap.Error(err))
	}

	st := Compute(booksShared, counts, credits)
	return &st, nil
}

// Compute derives the environmental metrics. A donor's impact counts the books
// they listed plus the requests they completed as donor.
func Compute(booksShared int64, counts *request.Counts, eduCredits int) Stats {
	circulated := float64(booksShared + counts.ReceivedComplete)
	paper := circulated * PaperKgPerBook
	return Stats{
		BooksShared:               booksShared,
		BooksReceived:             counts.SentCompleted,
		TotalRequestsReceived:     counts.ReceivedTotal,
		PendingRequestsReceived:   counts.ReceivedPending,
		CompletedRequestsReceived: counts.ReceivedComplete,
		TotalReused:               booksShared + counts.SentCompleted,
		EduCredits:                eduCredits,
		MoneySavedINR:             circulated * RupeesPerBook,
		PaperSavedKg:              paper,
		TreesProtected:            math.Round(paper/PaperKgPerTree*100) / 100,
		CO2SavedKg:                paper * CO2KgPerPaperKg,
	}
}
