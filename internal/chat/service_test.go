package chat

import (
	"context"
	"testing"

	"educycle_backend/internal/common"
	"educycle_backend/internal/platform/database/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) *ServiceImplementation {
	t.Helper()
	return NewService(NewGORMRepository(dbtest.New(t, &Chat{}, &Message{})), zap.NewNop())
}

func TestOpenForRequest_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	reqID := uuid.New()

	require.NoError(t, svc.OpenForRequest(ctx, reqID, "requester", "donor"))
	require.NoError(t, svc.OpenForRequest(ctx, reqID, "requester", "donor"))

	chat, err := svc.Get(ctx, reqID, "donor")
	require.NoError(t, err)
	assert.Equal(t, reqID, chat.RequestID)
	assert.True(t, chat.Active)
	assert.ElementsMatch(t, []string{"requester", "donor"}, []string(chat.Participants))
}

func TestSendAndList(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	reqID := uuid.New()
	require.NoError(t, svc.OpenForRequest(ctx, reqID, "requester", "donor"))

	_, err := svc.Send(ctx, reqID, "requester", "Can we meet at the library?")
	require.NoError(t, err)
	_, err = svc.Send(ctx, reqID, "donor", "Sure, 5pm")
	require.NoError(t, err)

	msgs, err := svc.Messages(ctx, reqID, "requester")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "requester", msgs[0].SenderUID)
	assert.Equal(t, "Sure, 5pm", msgs[1].Message)
}

func TestAccessRules(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	reqID := uuid.New()
	require.NoError(t, svc.OpenForRequest(ctx, reqID, "requester", "donor"))

	_, err := svc.Get(ctx, reqID, "stranger")
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.Get(ctx, uuid.New(), "donor")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = svc.Send(ctx, reqID, "donor", "   ")
	assert.ErrorIs(t, err, common.ErrBadRequest)

	require.NoError(t, svc.Close(ctx, reqID))
	_, err = svc.Send(ctx, reqID, "donor", "still there?")
	assert.ErrorIs(t, err, common.ErrConflict)

	msgs, err := svc.Messages(ctx, reqID, "donor")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
