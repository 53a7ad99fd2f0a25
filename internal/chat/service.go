package chat

import (
	"context"
	"strings"

	"educycle_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages request chats.
type Service interface {
	OpenForRequest(ctx context.Context, requestID uuid.UUID, participants ...string) error
	Close(ctx context.Context, chatID uuid.UUID) error
	Get(ctx context.Context, chatID uuid.UUID, uid string) (*Chat, error)
	Messages(ctx context.Context, chatID uuid.UUID, uid string) ([]Message, error)
	Send(ctx context.Context, chatID uuid.UUID, uid, text string) (*Message, error)
}

type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, logger: logger.Named("chat")}
}

// OpenForRequest creates the chat for an approved request. Calling it again is a no-op.
func (s *ServiceImplementation) OpenForRequest(ctx context.Context, requestID uuid.UUID, participants ...string) error {
	created, err := s.repo.CreateIfMissing(ctx, &Chat{
		ID:           requestID,
		RequestID:    requestID,
		Participants: participants,
		Active:       true,
	})
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("Chat opened", zap.String("chat_id", requestID.String()))
	}
	return nil
}

func (s *ServiceImplementation) Close(ctx context.Context, chatID uuid.UUID) error {
	return s.repo.Deactivate(ctx, chatID)
}

// Get returns the chat if uid participates in it.
func (s *ServiceImplementation) Get(ctx context.Context, chatID uuid.UUID, uid string) (*Chat, error) {
	chat, err := s.repo.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(uid) {
		return nil, common.ErrForbidden.WithDetails("You are not part of this chat.")
	}
	return chat, nil
}

func (s *ServiceImplementation) Messages(ctx context.Context, chatID uuid.UUID, uid string) ([]Message, error) {
	if _, err := s.Get(ctx, chatID, uid); err != nil {
		return nil, err
	}
	msgs, err := s.repo.ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

// Send appends a message. Closed chats are read-only.
func (s *ServiceImplementation) Send(ctx context.Context, chatID uuid.UUID, uid, text string) (*Message, error) {
	chat, err := s.Get(ctx, chatID, uid)
	if err != nil {
		return nil, err
	}
	if !chat.Active {
		return nil, common.ErrConflict.WithDetails("This chat is closed.")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.ErrBadRequest.WithDetails("Message cannot be empty.")
	}
	msg := &Message{ChatID: chatID, SenderUID: uid, Message: text}
	if err := s.repo.AddMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
