// File: internal/distribution/service.go
package distribution

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"educycle_backend/internal/common"
	"educycle_backend/internal/notification"
	"educycle_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultListLimit = 20
	maxListLimit     = 100
	maxEventImages   = 10
	imagesSubDir     = "distributions"
	commentPreview   = 50
)

// Service runs the NGO distribution feed.
type Service interface {
	List(ctx context.Context, limit int) ([]Event, error)
	Create(ctx context.Context, ngoUID string, req CreateRequest, images []*multipart.FileHeader) (*Event, error)
	ToggleLike(ctx context.Context, id uuid.UUID, uid string) (*LikeResult, error)
	Comments(ctx context.Context, id uuid.UUID) ([]Comment, error)
	AddComment(ctx context.Context, id uuid.UUID, uid, text string) (*Comment, error)
	Delete(ctx context.Context, id uuid.UUID, uid string) error
}

type ServiceImplementation struct {
	repo     Repository
	files    shared.FileStore
	users    shared.UserService
	notifier shared.Notifier
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(repo Repository, files shared.FileStore, users shared.UserService, notifier shared.Notifier, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, files: files, users: users, notifier: notifier, logger: logger.Named("distribution")}
}

func (s *ServiceImplementation) List(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	events, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}

func (s *ServiceImplementation) Create(ctx context.Context, ngoUID string, req CreateRequest, images []*multipart.FileHeader) (*Event, error) {
	title, description := strings.TrimSpace(req.Title), strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, common.ErrBadRequest.WithDetails("Title and description are required")
	}
	if len(images) == 0 {
		return nil, common.ErrBadRequest.WithDetails("At least one image is required.")
	}
	if len(images) > maxEventImages {
		return nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("At most %d images are allowed.", maxEventImages))
	}

	urls := make([]string, 0, len(images))
	for _, fh := range images {
		url, err := s.files.Save(ctx, fh, imagesSubDir)
		if err != nil {
			s.removeFiles(ctx, urls)
			if strings.Contains(err.Error(), "unsupported file type") {
				return nil, common.ErrBadRequest.WithDetails(err.Error())
			}
			return nil, fmt.Errorf("failed to store image %s: %w", fh.Filename, err)
		}
		urls = append(urls, url)
	}

	event := &Event{
		NGOUID:      ngoUID,
		NGOName:     s.nameOf(ctx, ngoUID, "Verified NGO"),
		Title:       title,
		Description: description,
		ImageURLs:   urls,
		LikedBy:     []string{},
	}
	if err := s.repo.Create(ctx, event); err != nil {
		s.removeFiles(ctx, urls)
		return nil, err
	}
	s.logger.Info("Distribution event posted", zap.String("event_id", event.ID.String()), zap.String("ngo_uid", ngoUID))
	return event, nil
}

func (s *ServiceImplementation) ToggleLike(ctx context.Context, id uuid.UUID, uid string) (*LikeResult, error) {
	return s.repo.ToggleLike(ctx, id, uid)
}

func (s *ServiceImplementation) Comments(ctx context.Context, id uuid.UUID) ([]Comment, error) {
	comments, err := s.repo.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []Comment{}
	}
	return comments, nil
}

// AddComment posts a comment and tells the NGO, unless the NGO commented on its own post.
func (s *ServiceImplementation) AddComment(ctx context.Context, id uuid.UUID, uid, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.ErrBadRequest.WithDetails("Comment cannot be empty.")
	}
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comment := &Comment{
		EventID:  id,
		UserUID:  uid,
		UserName: s.nameOf(ctx, uid, "User"),
		Text:     text,
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	if event.NGOUID != uid && s.notifier != nil {
		preview := text
		if r := []rune(preview); len(r) > commentPreview {
			preview = string(r[:commentPreview])
		}
		msg := fmt.Sprintf("%s commented: %s...", comment.UserName, preview)
		if err := s.notifier.Notify(ctx, event.NGOUID, string(notification.DistributionComment), "New Comment on your Post", msg, &id); err != nil {
			s.logger.Warn("Failed to notify NGO about comment", zap.String("event_id", id.String()), zap.Error(err))
		}
	}
	return comment, nil
}

// Delete removes a post. Only the NGO that posted it may delete it.
func (s *ServiceImplementation) Delete(ctx context.Context, id uuid.UUID, uid string) error {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if event.NGOUID != uid {
		return common.ErrForbidden.WithDetails("You can only delete your own posts")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeFiles(ctx, event.ImageURLs)
	return nil
}

func (s *ServiceImplementation) nameOf(ctx context.Context, uid, fallback string) string {
	if s.users == nil {
		return fallback
	}
	u, err := s.users.GetUserByUID(ctx, uid)
	if err != nil {
		return fallback
	}
	if name := u.PublicName(); name != "" {
		return name
	}
	return fallback
}

func (s *ServiceImplementation) removeFiles(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.files.Delete(ctx, url); err != nil {
			s.logger.Warn("Failed to remove event image", zap.String("url", url), zap.Error(err))
		}
	}
}
