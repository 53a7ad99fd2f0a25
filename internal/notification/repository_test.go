package notification

import (
	"context"
	"testing"
	"time"

	"educycle_backend/internal/common"
	"educycle_backend/internal/platform/database/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGORMRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewGORMRepository(dbtest.New(t, &Notification{}))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &Notification{
			UserUID:   "u1",
			Type:      BookRequested,
			Title:     "New request",
			Message:   "msg",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, &Notification{UserUID: "u2", Type: RequestApproved, Title: "t", Message: "m"}))

	page, pagination, err := repo.GetByUserUID(ctx, "u1", 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), pagination.TotalItems)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	unread, err := repo.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	require.NoError(t, repo.MarkAsRead(ctx, page[0].ID, "u1"))
	require.NoError(t, repo.MarkAsRead(ctx, page[0].ID, "u1"))
	assert.ErrorIs(t, repo.MarkAsRead(ctx, page[0].ID, "u2"), common.ErrNotFound)
	assert.ErrorIs(t, repo.MarkAsRead(ctx, uuid.New(), "u1"), common.ErrNotFound)

	n, err := repo.MarkAllAsRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	unread, err = repo.CountUnread(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
