package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAPIError_WithDetailsDoesNotMutateSentinel(t *testing.T) {
	e := ErrNotFound.WithDetails("Book not found.")

	assert.Equal(t, "Book not found.", e.Details)
	assert.Nil(t, ErrNotFound.Details)
	assert.True(t, errors.Is(e, ErrNotFound))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", e), ErrNotFound))
	assert.False(t, errors.Is(e, ErrConflict))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(25, 2, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := NewPagination(0, 0, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Equal(t, DefaultPage, empty.CurrentPage)
	assert.Equal(t, DefaultPageSize, empty.PageSize)
	assert.False(t, empty.HasNext)
}

func TestGetTokenFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]string{
		"Bearer abc.def": "abc.def",
		"bearer xyz":     "xyz",
		"Basic dXNlcjpw": "",
		"Bearer":         "",
		"":               "",
	}
	for header, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set(AuthorizationHeader, header)
		}
		assert.Equal(t, want, GetTokenFromContext(c), "header %q", header)
	}
}

func TestRespondWithError_UnknownErrorBecomes500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithError(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
	assert.NotContains(t, w.Body.String(), "boom")
}
