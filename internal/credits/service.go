package credits

import (
	"context"
	"fmt"

	"educycle_backend/internal/common"
	"educycle_backend/internal/config"
	"educycle_backend/internal/shared"
	"educycle_backend/internal/user"

	"go.uber.org/zap"
)

const (
	recentTransactionsLimit = 50
	defaultLeaderboardSize  = 10
	maxLeaderboardSize      = 100
)

// Service grants EduCredits and reports balances.
type Service interface {
	shared.CreditAwarder
	GetBalance(ctx context.Context, userUID string) (*Balance, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

type ServiceImplementation struct {
	repo    Repository
	users   shared.UserService
	amounts map[string]int
	logger  *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(repo Repository, users shared.UserService, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:  repo,
		users: users,
		amounts: map[string]int{
			shared.CreditReasonBookDonated:      cfg.CreditsBookDonated,
			shared.CreditReasonFeedbackGiven:    cfg.CreditsFeedbackGiven,
			shared.CreditReasonProfileCompleted: cfg.CreditsProfileComplete,
		},
		logger: logger.Named("credits"),
	}
}

// Award grants the configured amount for reason. Repeating an award for the same refID is a no-op
// and returns false.
func (s *ServiceImplementation) Award(ctx context.Context, userUID, reason, refID string) (bool, error) {
	amount, ok := s.amounts[reason]
	if !ok {
		return false, fmt.Errorf("unknown credit reason %q", reason)
	}
	if amount <= 0 {
		return false, nil
	}
	applied, err := s.repo.Apply(ctx, &Transaction{
		UserUID: userUID,
		Amount:  amount,
		Reason:  reason,
		RefID:   refID,
	})
	if err != nil {
		s.logger.Error("Credit award failed", zap.String("uid", userUID), zap.String("reason", reason), zap.Error(err))
		return false, err
	}
	if applied {
		s.logger.Info("EduCredits awarded", zap.String("uid", userUID), zap.String("reason", reason), zap.Int("amount", amount))
	}
	return applied, nil
}

func (s *ServiceImplementation) GetBalance(ctx context.Context, userUID string) (*Balance, error) {
	u, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		return nil, err
	}
	txns, err := s.repo.ListByUser(ctx, userUID, recentTransactionsLimit)
	if err != nil {
		return nil, err
	}
	if txns == nil {
		txns = []Transaction{}
	}
	return &Balance{EduCredits: u.EduCredits, Transactions: txns}, nil
}

func (s *ServiceImplementation) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	if limit > maxLeaderboardSize {
		return nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("limit may not exceed %d.", maxLeaderboardSize))
	}
	users, err := s.repo.TopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(users))
	for i := range users {
		u := user.DBToShared(&users[i])
		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			UID:        u.UID,
			Name:       u.PublicName(),
			Role:       u.Role,
			EduCredits: u.EduCredits,
		})
	}
	return entries, nil
}
