package request

import (
	"context"
	"errors"
	"testing"

	"educycle_backend/internal/book"
	"educycle_backend/internal/chat"
	"educycle_backend/internal/common"
	"educycle_backend/internal/config"
	"educycle_backend/internal/credits"
	"educycle_backend/internal/notification"
	"educycle_backend/internal/platform/database/dbtest"
	"educycle_backend/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LifecycleSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	svc     *ServiceImplementation
	chats   *chat.ServiceImplementation
	users   *user.ServiceImplementation
	notices *notification.ServiceImplementation
	books   book.Repository
	book    *book.Book
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = dbtest.New(s.T(),
		&user.User{}, &credits.Transaction{}, &book.Book{}, &BookRequest{},
		&chat.Chat{}, &chat.Message{}, &notification.Notification{},
	)
	logger := zap.NewNop()

	userRepo := user.NewGORMRepository(s.db)
	s.users = user.NewService(userRepo, nil, nil, logger)
	creditSvc := credits.NewService(credits.NewGORMRepository(s.db), s.users,
		&config.Config{CreditsBookDonated: 50, CreditsFeedbackGiven: 25, CreditsProfileComplete: 10}, logger)
	s.books = book.NewGORMRepository(s.db)
	bookSvc := book.NewService(s.books, nil, nil, logger)
	s.chats = chat.NewService(chat.NewGORMRepository(s.db), logger)
	s.notices = notification.NewService(notification.NewGORMRepository(s.db), logger)
	s.svc = NewService(NewGORMRepository(s.db), bookSvc, s.chats, s.users, s.notices, creditSvc, logger)

	s.Require().NoError(userRepo.Create(s.ctx, &user.User{UID: "donor", Role: common.RoleStudent, DisplayName: "Dev"}))
	s.Require().NoError(userRepo.Create(s.ctx, &user.User{UID: "asha", Role: common.RoleStudent, DisplayName: "Asha"}))
	s.Require().NoError(userRepo.Create(s.ctx, &user.User{UID: "ravi", Role: common.RoleStudent, DisplayName: "Ravi"}))

	s.book = &book.Book{
		Title: "NCERT Maths 10", Subject: "Maths", ClassLevel: "10", Board: "CBSE",
		Condition: common.ConditionGood, City: "Pune", Area: "Aundh",
		DonorUID: "donor", Available: true, ImageURLs: []string{"http://x/static/books/a.jpg"},
	}
	s.Require().NoError(s.books.Create(s.ctx, s.book))
}

func (s *LifecycleSuite) request(uid string) *BookRequest {
	br, err := s.svc.Create(s.ctx, uid, CreateRequest{BookID: s.book.ID.String(), DonorUID: "donor", Reason: "Board exams"})
	s.Require().NoError(err)
	return br
}

func (s *LifecycleSuite) statusOf(id uuid.UUID) Status {
	br, err := s.svc.Get(s.ctx, id, "donor")
	s.Require().NoError(err)
	return br.Status
}

func (s *LifecycleSuite) TestHappyPath() {
	br := s.request("asha")
	s.Equal(StatusPending, br.Status)
	s.Equal(1, br.Quantity)
	s.Equal("NCERT Maths 10", br.BookTitle)

	donorNotes, _, err := s.notices.GetNotificationsForUser(s.ctx, "donor", 1, 10)
	s.Require().NoError(err)
	s.Require().Len(donorNotes, 1)
	s.Contains(donorNotes[0].Message, "Asha")

	res, err := s.svc.Approve(s.ctx, br.ID, "donor")
	s.Require().NoError(err)
	s.Equal(StatusApproved, res.Status)

	c, err := s.chats.Get(s.ctx, br.ID, "asha")
	s.Require().NoError(err)
	s.True(c.Active)
	_, err = s.chats.Send(s.ctx, br.ID, "asha", "When can I pick it up?")
	s.Require().NoError(err)

	res, err = s.svc.Complete(s.ctx, br.ID, "asha")
	s.Require().NoError(err)
	s.Equal(StatusCompleted, res.Status)
	s.Equal("/feedback/"+br.ID.String(), res.FeedbackPath)

	b, err := s.books.FindByID(s.ctx, s.book.ID)
	s.Require().NoError(err)
	s.False(b.Available)

	c, err = s.chats.Get(s.ctx, br.ID, "donor")
	s.Require().NoError(err)
	s.False(c.Active)

	donor, err := s.users.GetUserByUID(s.ctx, "donor")
	s.Require().NoError(err)
	s.Equal(50, donor.EduCredits)

	_, err = s.svc.Complete(s.ctx, br.ID, "asha")
	s.ErrorIs(err, common.ErrConflict)
	donor, err = s.users.GetUserByUID(s.ctx, "donor")
	s.Require().NoError(err)
	s.Equal(50, donor.EduCredits, "credits are awarded once")
}

func (s *LifecycleSuite) TestDoubleApproveIsConflictAndKeepsOneChat() {
	br := s.request("asha")

	_, err := s.svc.Approve(s.ctx, br.ID, "donor")
	s.Require().NoError(err)
	_, err = s.svc.Approve(s.ctx, br.ID, "donor")
	s.ErrorIs(err, common.ErrConflict)

	var chats int64
	s.Require().NoError(s.db.Model(&chat.Chat{}).Where("request_id = ?", br.ID).Count(&chats).Error)
	s.Equal(int64(1), chats)
	s.Equal(StatusApproved, s.statusOf(br.ID))
}

func (s *LifecycleSuite) TestRejectionPath() {
	br := s.request("asha")

	res, err := s.svc.UpdateStatus(s.ctx, br.ID, "donor", StatusRejected)
	s.Require().NoError(err)
	s.Equal(StatusRejected, res.Status)

	_, err = s.chats.Get(s.ctx, br.ID, "asha")
	s.ErrorIs(err, common.ErrNotFound, "no chat for a rejected request")

	_, err = s.svc.Approve(s.ctx, br.ID, "donor")
	s.ErrorIs(err, common.ErrConflict)

	mine, err := s.svc.List(s.ctx, "asha")
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(StatusRejected, mine[0].Status)

	again := s.request("asha")
	s.NotEqual(br.ID, again.ID, "a rejected request does not block a new one")
}

func (s *LifecycleSuite) TestCreateRules() {
	_, err := s.svc.Create(s.ctx, "donor", CreateRequest{BookID: s.book.ID.String()})
	s.ErrorIs(err, common.ErrBadRequest, "self request")

	_, err = s.svc.Create(s.ctx, "asha", CreateRequest{BookID: s.book.ID.String(), DonorUID: "someone-else"})
	s.ErrorIs(err, common.ErrBadRequest, "donor mismatch")

	_, err = s.svc.Create(s.ctx, "asha", CreateRequest{BookID: uuid.NewString()})
	s.ErrorIs(err, common.ErrNotFound)

	s.request("asha")
	_, err = s.svc.Create(s.ctx, "asha", CreateRequest{BookID: s.book.ID.String()})
	s.ErrorIs(err, common.ErrConflict, "duplicate active request")

	s.Require().NoError(s.books.MarkUnavailable(s.ctx, s.book.ID))
	_, err = s.svc.Create(s.ctx, "ravi", CreateRequest{BookID: s.book.ID.String()})
	s.ErrorIs(err, common.ErrConflict, "book no longer available")
}

func (s *LifecycleSuite) TestRoleRules() {
	br := s.request("asha")

	_, err := s.svc.Get(s.ctx, br.ID, "ravi")
	s.ErrorIs(err, common.ErrForbidden)

	_, err = s.svc.Approve(s.ctx, br.ID, "asha")
	s.ErrorIs(err, common.ErrForbidden)

	_, err = s.svc.Complete(s.ctx, br.ID, "asha")
	s.ErrorIs(err, common.ErrConflict, "cannot complete before approval")

	_, err = s.svc.Approve(s.ctx, br.ID, "donor")
	s.Require().NoError(err)
	_, err = s.svc.Complete(s.ctx, br.ID, "donor")
	s.ErrorIs(err, common.ErrForbidden)

	_, err = s.svc.UpdateStatus(s.ctx, br.ID, "donor", StatusPending)
	s.ErrorIs(err, common.ErrConflict)
}

func (s *LifecycleSuite) TestCompletionConsumesTheBookOnce() {
	first := s.request("asha")
	second := s.request("ravi")

	_, err := s.svc.Approve(s.ctx, first.ID, "donor")
	s.Require().NoError(err)
	_, err = s.svc.Approve(s.ctx, second.ID, "donor")
	s.ErrorIs(err, common.ErrConflict, "only one approved request per book")

	_, err = s.svc.Complete(s.ctx, first.ID, "asha")
	s.Require().NoError(err)
	s.Equal(StatusRejected, s.statusOf(second.ID), "open requests are declined once the book is gone")

	_, err = s.svc.Approve(s.ctx, second.ID, "donor")
	s.ErrorIs(err, common.ErrConflict)
	_, err = s.svc.Complete(s.ctx, second.ID, "ravi")
	s.ErrorIs(err, common.ErrConflict)

	donor, err := s.users.GetUserByUID(s.ctx, "donor")
	s.Require().NoError(err)
	s.Equal(50, donor.EduCredits, "one book earns one donation award")

	raviNotes, _, err := s.notices.GetNotificationsForUser(s.ctx, "ravi", 1, 10)
	s.Require().NoError(err)
	s.Require().NotEmpty(raviNotes)
	s.Equal(notification.RequestRejected, raviNotes[0].Type)
}

func (s *LifecycleSuite) TestApproveAfterBookGoneIsConflict() {
	br := s.request("asha")
	s.Require().NoError(s.books.MarkUnavailable(s.ctx, s.book.ID))

	_, err := s.svc.Approve(s.ctx, br.ID, "donor")
	s.ErrorIs(err, common.ErrConflict)
	s.Equal(StatusPending, s.statusOf(br.ID))
}

// flakyChats fails the first OpenForRequest call.
type flakyChats struct {
	Chats
	failed bool
}

func (f *flakyChats) OpenForRequest(ctx context.Context, requestID uuid.UUID, participants ...string) error {
	if !f.failed {
		f.failed = true
		return errors.New("db blip")
	}
	return f.Chats.OpenForRequest(ctx, requestID, participants...)
}

func (s *LifecycleSuite) TestApproveRetryOpensMissingChat() {
	logger := zap.NewNop()
	bookSvc := book.NewService(s.books, nil, nil, logger)
	svc := NewService(NewGORMRepository(s.db), bookSvc, &flakyChats{Chats: s.chats}, s.users, s.notices, nil, logger)
	br := s.request("asha")

	_, err := svc.Approve(s.ctx, br.ID, "donor")
	s.Require().Error(err)
	s.Equal(StatusApproved, s.statusOf(br.ID))
	_, err = s.chats.Get(s.ctx, br.ID, "asha")
	s.ErrorIs(err, common.ErrNotFound)

	_, err = svc.Approve(s.ctx, br.ID, "donor")
	s.ErrorIs(err, common.ErrConflict)
	c, err := s.chats.Get(s.ctx, br.ID, "asha")
	s.Require().NoError(err)
	s.True(c.Active)
}

func (s *LifecycleSuite) TestCounts() {
	other := &book.Book{
		Title: "HC Verma Physics", Subject: "Physics", ClassLevel: "11", Board: "CBSE",
		Condition: common.ConditionUsable, City: "Pune", Area: "Aundh",
		DonorUID: "donor", Available: true, ImageURLs: []string{"http://x/static/books/b.jpg"},
	}
	s.Require().NoError(s.books.Create(s.ctx, other))
	br := s.request("asha")
	_, err := s.svc.Create(s.ctx, "ravi", CreateRequest{BookID: other.ID.String()})
	s.Require().NoError(err)
	_, err = s.svc.Approve(s.ctx, br.ID, "donor")
	s.Require().NoError(err)
	_, err = s.svc.Complete(s.ctx, br.ID, "asha")
	s.Require().NoError(err)

	donor, err := s.svc.CountsFor(s.ctx, "donor")
	s.Require().NoError(err)
	s.Equal(int64(2), donor.ReceivedTotal)
	s.Equal(int64(1), donor.ReceivedPending)
	s.Equal(int64(1), donor.ReceivedComplete)

	asha, err := s.svc.CountsFor(s.ctx, "asha")
	s.Require().NoError(err)
	s.Equal(int64(1), asha.Sent)
	s.Equal(int64(1), asha.SentCompleted)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil, nil, zap.NewNop())
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "u", Status("cancelled"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnprocessableEntity)
}
