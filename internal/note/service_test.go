package note

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"educycle_backend/internal/common"
	"educycle_backend/internal/filestorage"
	"educycle_backend/internal/platform/database/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*ServiceImplementation, *filestorage.LocalStore) {
	t.Helper()
	store, err := filestorage.NewLocalStore(t.TempDir(), "http://api.test", zap.NewNop())
	require.NoError(t, err)
	return NewService(NewGORMRepository(dbtest.New(t, &Note{})), store, zap.NewNop()), store
}

func fileHeader(t *testing.T, name string) *multipart.FileHeader {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = io.WriteString(part, "%PDF-1.4 notes")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["file"][0]
}

func upload(t *testing.T, svc *ServiceImplementation, owner, subject string) *Note {
	t.Helper()
	n, err := svc.Upload(context.Background(), owner, UploadRequest{
		Title: "Trigonometry summary", Subject: subject, ClassLevel: "10", Board: "CBSE",
	}, fileHeader(t, "trig.pdf"))
	require.NoError(t, err)
	return n
}

func TestUpload_StoresFile(t *testing.T) {
	svc, store := newTestService(t)
	n := upload(t, svc, "asha", "Maths")

	assert.True(t, strings.HasPrefix(n.FileURL, "http://api.test/static/notes/"))
	rel := strings.TrimPrefix(n.FileURL, "http://api.test/static/")
	_, err := os.Stat(filepath.Join(store.Root(), rel))
	assert.NoError(t, err)
	assert.Equal(t, 0, n.Downloads)
}

func TestUpload_RejectsUnsupportedFile(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Upload(context.Background(), "asha", UploadRequest{Title: "x1", Subject: "Maths", ClassLevel: "10"}, fileHeader(t, "run.exe"))
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = svc.Upload(context.Background(), "asha", UploadRequest{Title: "x1", Subject: "Maths", ClassLevel: "10"}, nil)
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestListFiltersAndMine(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	upload(t, svc, "asha", "Maths")
	upload(t, svc, "asha", "Physics")
	upload(t, svc, "ravi", "Maths")

	maths, pagination, err := svc.List(ctx, ListQuery{Subject: "Maths"})
	require.NoError(t, err)
	assert.Len(t, maths, 2)
	assert.Equal(t, int64(2), pagination.TotalItems)

	byText, _, err := svc.List(ctx, ListQuery{Q: "TRIGONOMETRY"})
	require.NoError(t, err)
	assert.Len(t, byText, 3)

	mine, err := svc.ListMine(ctx, "asha")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestDelete_OwnerOnly(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	n := upload(t, svc, "asha", "Maths")

	assert.ErrorIs(t, svc.Delete(ctx, n.ID, "ravi"), common.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, n.ID, "asha"))
	assert.ErrorIs(t, svc.Delete(ctx, n.ID, "asha"), common.ErrNotFound)

	rel := strings.TrimPrefix(n.FileURL, "http://api.test/static/")
	_, err := os.Stat(filepath.Join(store.Root(), rel))
	assert.True(t, os.IsNotExist(err))
}

func TestRegisterDownload_Increments(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	n := upload(t, svc, "asha", "Maths")

	res, err := svc.RegisterDownload(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Downloads)
	res, err = svc.RegisterDownload(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Downloads)
	assert.Equal(t, n.FileURL, res.FileURL)

	_, err = svc.RegisterDownload(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}
