package feedback

import (
	"context"
	"testing"

	"educycle_backend/internal/common"
	"educycle_backend/internal/platform/database/dbtest"
	"educycle_backend/internal/request"
	"educycle_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type mockRequests struct{ mock.Mock }

func (m *mockRequests) Get(ctx context.Context, id uuid.UUID, uid string) (*request.BookRequest, error) {
	args := m.Called(ctx, id, uid)
	if br := args.Get(0); br != nil {
		return br.(*request.BookRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockReputations struct{ mock.Mock }

func (m *mockReputations) SetReputation(ctx context.Context, uid string, reputation float64) error {
	return m.Called(ctx, uid, reputation).Error(0)
}

type mockCredits struct{ mock.Mock }

func (m *mockCredits) Award(ctx context.Context, uid, reason, refID string) (bool, error) {
	args := m.Called(ctx, uid, reason, refID)
	return args.Bool(0), args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, userUID, notificationType, title, message string, relatedID *uuid.UUID) error {
	return m.Called(ctx, userUID, notificationType, title, message, relatedID).Error(0)
}

type FeedbackSuite struct {
	suite.Suite
	requests    *mockRequests
	reputations *mockReputations
	credits     *mockCredits
	notifier    *mockNotifier
	svc         *ServiceImplementation
}

func TestFeedbackSuite(t *testing.T) {
	suite.Run(t, new(FeedbackSuite))
}

func (s *FeedbackSuite) SetupTest() {
	s.requests = new(mockRequests)
	s.reputations = new(mockReputations)
	s.credits = new(mockCredits)
	s.notifier = new(mockNotifier)
	repo := NewGORMRepository(dbtest.New(s.T(), &Feedback{}))
	s.svc = NewService(repo, s.requests, s.reputations, s.credits, s.notifier, zap.NewNop())
}

func completed(id uuid.UUID) *request.BookRequest {
	br := &request.BookRequest{BookTitle: "NCERT Maths 10", RequesterUID: "asha", DonorUID: "dev", Status: request.StatusCompleted}
	br.ID = id
	return br
}

func (s *FeedbackSuite) TestSubmit_AveragesReputationAndAwardsOnce() {
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()
	s.requests.On("Get", mock.Anything, first, "asha").Return(completed(first), nil)
	s.requests.On("Get", mock.Anything, second, "asha").Return(completed(second), nil)
	s.reputations.On("SetReputation", mock.Anything, "dev", 5.0).Return(nil).Once()
	s.reputations.On("SetReputation", mock.Anything, "dev", 4.5).Return(nil).Once()
	s.credits.On("Award", mock.Anything, "asha", shared.CreditReasonFeedbackGiven, mock.Anything).Return(true, nil)
	s.notifier.On("Notify", mock.Anything, "dev", "feedback_received", "New feedback", mock.Anything, mock.Anything).Return(nil)

	res, err := s.svc.Submit(ctx, "asha", SubmitRequest{RequestID: first.String(), Rating: 5, Comment: "Great"})
	s.Require().NoError(err)
	s.Equal("submitted", res.Status)
	s.Equal(5.0, res.Reputation)

	res, err = s.svc.Submit(ctx, "asha", SubmitRequest{RequestID: second.String(), ToUID: "dev", Rating: 4})
	s.Require().NoError(err)
	s.Equal(4.5, res.Reputation)

	_, err = s.svc.Submit(ctx, "asha", SubmitRequest{RequestID: first.String(), Rating: 1})
	s.ErrorIs(err, common.ErrConflict)

	received, err := s.svc.ListReceived(ctx, "dev")
	s.Require().NoError(err)
	s.Len(received, 2)

	s.reputations.AssertExpectations(s.T())
	s.credits.AssertNumberOfCalls(s.T(), "Award", 2)
}

func (s *FeedbackSuite) TestSubmit_DonorRatesRequester() {
	id := uuid.New()
	s.requests.On("Get", mock.Anything, id, "dev").Return(completed(id), nil)
	s.reputations.On("SetReputation", mock.Anything, "asha", 3.0).Return(nil)
	s.credits.On("Award", mock.Anything, "dev", shared.CreditReasonFeedbackGiven, id.String()).Return(true, nil)
	s.notifier.On("Notify", mock.Anything, "asha", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := s.svc.Submit(context.Background(), "dev", SubmitRequest{RequestID: id.String(), Rating: 3})
	s.Require().NoError(err)
	s.credits.AssertExpectations(s.T())
}

func (s *FeedbackSuite) TestSubmit_Rejections() {
	ctx := context.Background()
	pendingID, doneID := uuid.New(), uuid.New()
	pending := completed(pendingID)
	pending.Status = request.StatusApproved
	s.requests.On("Get", mock.Anything, pendingID, "asha").Return(pending, nil)
	s.requests.On("Get", mock.Anything, doneID, "asha").Return(completed(doneID), nil)
	s.requests.On("Get", mock.Anything, doneID, "ravi").Return(nil, common.ErrForbidden)

	_, err := s.svc.Submit(ctx, "asha", SubmitRequest{RequestID: pendingID.String(), Rating: 4})
	s.ErrorIs(err, common.ErrConflict, "request not completed")

	_, err = s.svc.Submit(ctx, "asha", SubmitRequest{RequestID: doneID.String(), ToUID: "someone", Rating: 4})
	s.ErrorIs(err, common.ErrBadRequest, "recipient must be the other party")

	_, err = s.svc.Submit(ctx, "asha", SubmitRequest{RequestID: doneID.String(), ToUID: "asha", Rating: 4})
	s.ErrorIs(err, common.ErrBadRequest, "cannot rate yourself")

	_, err = s.svc.Submit(ctx, "ravi", SubmitRequest{RequestID: doneID.String(), Rating: 4})
	s.ErrorIs(err, common.ErrForbidden)

	_, err = s.svc.Submit(ctx, "asha", SubmitRequest{RequestID: "not-a-uuid", Rating: 4})
	s.ErrorIs(err, common.ErrBadRequest)

	s.reputations.AssertNotCalled(s.T(), "SetReputation", mock.Anything, mock.Anything, mock.Anything)
}
