package distribution

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"sync"
	"testing"

	"educycle_backend/internal/common"
	"educycle_backend/internal/filestorage"
	"educycle_backend/internal/notification"
	"educycle_backend/internal/platform/database/dbtest"
	"educycle_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type stubUsers map[string]*shared.User

func (u stubUsers) GetUserByUID(_ context.Context, uid string) (*shared.User, error) {
	if user, ok := u[uid]; ok {
		return user, nil
	}
	return nil, common.ErrNotFound
}

type DistributionSuite struct {
	suite.Suite
	ctx     context.Context
	svc     *ServiceImplementation
	notices *notification.ServiceImplementation
}

func TestDistributionSuite(t *testing.T) {
	suite.Run(t, new(DistributionSuite))
}

func (s *DistributionSuite) SetupTest() {
	s.ctx = context.Background()
	db := dbtest.New(s.T(), &Event{}, &Comment{}, &notification.Notification{})
	store, err := filestorage.NewLocalStore(s.T().TempDir(), "http://api.test", zap.NewNop())
	s.Require().NoError(err)
	users := stubUsers{
		"ngo-1": {UID: "ngo-1", Role: common.RoleNGO, OrganizationName: "Pustak Seva"},
		"asha":  {UID: "asha", Role: common.RoleStudent, DisplayName: "Asha"},
	}
	s.notices = notification.NewService(notification.NewGORMRepository(db), zap.NewNop())
	s.svc = NewService(NewGORMRepository(db), store, users, s.notices, zap.NewNop())
}

func (s *DistributionSuite) images(names ...string) []*multipart.FileHeader {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for _, name := range names {
		part, err := w.CreateFormFile("images", name)
		s.Require().NoError(err)
		_, err = io.WriteString(part, "img")
		s.Require().NoError(err)
	}
	s.Require().NoError(w.Close())
	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	s.Require().NoError(err)
	return form.File["images"]
}

func (s *DistributionSuite) post(title string) *Event {
	e, err := s.svc.Create(s.ctx, "ngo-1", CreateRequest{Title: title, Description: "Handed out 40 books"}, s.images("a.jpg", "b.png"))
	s.Require().NoError(err)
	return e
}

func (s *DistributionSuite) TestCreateAndList() {
	first := s.post("Drive at Hadapsar")
	s.Equal("Pustak Seva", first.NGOName)
	s.Len(first.ImageURLs, 2)
	s.True(strings.HasPrefix(first.ImageURLs[0], "http://api.test/static/distributions/a-"))
	s.post("Drive at Aundh")

	events, err := s.svc.List(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal("Drive at Aundh", events[0].Title, "newest first")

	events, err = s.svc.List(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *DistributionSuite) TestCreateValidation() {
	_, err := s.svc.Create(s.ctx, "ngo-1", CreateRequest{Title: "x", Description: " "}, s.images("a.jpg"))
	s.ErrorIs(err, common.ErrBadRequest)
	_, err = s.svc.Create(s.ctx, "ngo-1", CreateRequest{Title: "x", Description: "y"}, nil)
	s.ErrorIs(err, common.ErrBadRequest)
}

func (s *DistributionSuite) TestToggleLike() {
	e := s.post("Drive")

	res, err := s.svc.ToggleLike(s.ctx, e.ID, "asha")
	s.Require().NoError(err)
	s.Equal(LikeResult{Liked: true, LikesCount: 1}, *res)

	res, err = s.svc.ToggleLike(s.ctx, e.ID, "ravi")
	s.Require().NoError(err)
	s.Equal(2, res.LikesCount)

	res, err = s.svc.ToggleLike(s.ctx, e.ID, "asha")
	s.Require().NoError(err)
	s.Equal(LikeResult{Liked: false, LikesCount: 1}, *res)

	_, err = s.svc.ToggleLike(s.ctx, uuid.New(), "asha")
	s.ErrorIs(err, common.ErrNotFound)
}

func (s *DistributionSuite) TestConcurrentLikesAreAllKept() {
	e := s.post("Drive")

	const likers = 10
	var wg sync.WaitGroup
	errs := make(chan error, likers)
	for i := 0; i < likers; i++ {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := s.svc.ToggleLike(s.ctx, e.ID, uid)
			errs <- err
		}(fmt.Sprintf("student-%d", i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	events, err := s.svc.List(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(likers, events[0].LikesCount)
	s.Len(events[0].LikedBy, likers)
}

func (s *DistributionSuite) TestCommentsNotifyNGO() {
	e := s.post("Drive")
	long := strings.Repeat("wonderful ", 10)

	_, err := s.svc.AddComment(s.ctx, e.ID, "asha", long)
	s.Require().NoError(err)
	_, err = s.svc.AddComment(s.ctx, e.ID, "ngo-1", "Thanks!")
	s.Require().NoError(err)

	comments, err := s.svc.Comments(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Require().Len(comments, 2)
	s.Equal("Asha", comments[0].UserName)

	events, err := s.svc.List(s.ctx, 0)
	s.Require().NoError(err)
	s.Equal(2, events[0].CommentsCount)

	notes, _, err := s.notices.GetNotificationsForUser(s.ctx, "ngo-1", 1, 10)
	s.Require().NoError(err)
	s.Require().Len(notes, 1, "self comments do not notify")
	s.Equal(string(notification.DistributionComment), string(notes[0].Type))
	s.Equal(fmt.Sprintf("Asha commented: %s...", strings.TrimSpace(long)[:50]), notes[0].Message)

	_, err = s.svc.AddComment(s.ctx, uuid.New(), "asha", "hi")
	s.ErrorIs(err, common.ErrNotFound)
}

func (s *DistributionSuite) TestDeleteOwnerOnly() {
	e := s.post("Drive")
	_, err := s.svc.AddComment(s.ctx, e.ID, "asha", "Nice")
	s.Require().NoError(err)

	s.ErrorIs(s.svc.Delete(s.ctx, e.ID, "asha"), common.ErrForbidden)
	s.Require().NoError(s.svc.Delete(s.ctx, e.ID, "ngo-1"))
	s.ErrorIs(s.svc.Delete(s.ctx, e.ID, "ngo-1"), common.ErrNotFound)

	comments, err := s.svc.Comments(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Empty(comments)
}
