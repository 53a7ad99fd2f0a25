package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/v1/", opts...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "success", "message": "ok",
			"data": map[string]interface{}{"uid": "u1", "email": "a@b.c", "role": "student"},
		})
	}, WithTokenSource(TokenFunc(func(context.Context) (string, error) {
		calls++
		return "tok-123", nil
	})))

	p, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "/api/v1/auth/me", gotPath)
	assert.Equal(t, "u1", p.UID)
	assert.Equal(t, "student", p.Role)

	_, err = c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "token is fetched for every request")
}

func TestClient_OmitsAuthorizationWithoutToken(t *testing.T) {
	var present bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": []interface{}{}})
	}, WithTokenSource(TokenFunc(func(context.Context) (string, error) { return "", nil })))

	_, err := c.MyBooks(context.Background())
	require.NoError(t, err)
	assert.False(t, present)
}

func TestClient_TokenSourceFailureStopsRequest(t *testing.T) {
	hit := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { hit = true },
		WithTokenSource(TokenFunc(func(context.Context) (string, error) { return "", errors.New("expired") })))

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
	assert.False(t, hit)
}

func TestClient_ErrorMessagePrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail wins", `{"detail":"from detail","details":"from details","message":"from message"}`, "from detail"},
		{"string details", `{"details":"from details","message":"from message"}`, "from details"},
		{"object details fall back to message", `{"code":"VALIDATION_ERROR","details":{"field":"x"},"message":"Validation failed."}`, "Validation failed."},
		{"status text", `not json`, "API request failed: Conflict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.GetBook(context.Background(), "b1")
			require.Error(t, err)
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, http.StatusConflict, apiErr.Status)
			assert.True(t, IsStatus(err, http.StatusConflict))
		})
	}
}

func TestClient_ErrorCarriesCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "NOT_FOUND", "message": "Book not found."})
	})
	_, err := c.GetBook(context.Background(), "missing")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "Book not found.", apiErr.Message)
}

func TestClient_DecodeErrorOnSchemaMismatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": "not-a-book"})
	})
	_, err := c.GetBook(context.Background(), "b1")
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "/api/v1/books/b1", decErr.Path)
}

func TestClient_SearchReturnsPagination(t *testing.T) {
	var query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"data":   []map[string]interface{}{{"id": "b1", "title": "Physics"}},
			"pagination": map[string]interface{}{
				"total_items": 11, "total_pages": 2, "current_page": 1, "page_size": 10, "has_next": true,
			},
		})
	})
	books, p, err := c.SearchBooks(context.Background(), BookSearch{Subject: "Physics", Page: 1})
	require.NoError(t, err)
	require.Len(t, books, 1)
	require.NotNil(t, p)
	assert.True(t, p.HasNext)
	assert.Equal(t, 2, p.TotalPages)
	assert.Contains(t, query, "subject=Physics")
	assert.Contains(t, query, "page=1")
}

func TestClient_DonateSendsPayloadAndImagesInOrder(t *testing.T) {
	var (
		contentType string
		payload     DonateRequest
		names       []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.NoError(t, json.Unmarshal([]byte(r.FormValue("payload")), &payload))
		for _, fh := range r.MultipartForm.File["images"] {
			names = append(names, fh.Filename)
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"status": "success", "data": map[string]interface{}{"book_id": "b9", "image_urls": []string{"u1", "u2"}},
		})
	})

	res, err := c.DonateBook(context.Background(), DonateRequest{Title: "Maths 10", Subject: "Maths"}, []Upload{
		{Filename: "front.jpg", ContentType: "image/jpeg", Content: strings.NewReader("front")},
		{Filename: "back.jpg", ContentType: "image/jpeg", Content: strings.NewReader("back")},
	})
	require.NoError(t, err)
	assert.Equal(t, "b9", res.BookID)
	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary="))
	assert.Equal(t, "Maths 10", payload.Title)
	assert.Equal(t, []string{"front.jpg", "back.jpg"}, names)
}

func TestClient_SendChatMessageUnwrapsMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"status": "success",
			"data":   map[string]interface{}{"sent": true, "message": map[string]interface{}{"id": "m1", "text": "hi"}},
		})
	})
	msg, err := c.SendChatMessage(context.Background(), "c1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(BaseURLEnv, "https://api.example.org/api/v1/")
	c := FromEnv()
	assert.Equal(t, "https://api.example.org/api/v1", c.baseURL)

	t.Setenv(BaseURLEnv, "")
	assert.Equal(t, defaultBaseURL, FromEnv().baseURL)
}

func TestNew_TimeoutOnlyAppliesToDefaultClient(t *testing.T) {
	assert.Equal(t, DefaultTimeout, New("http://x").httpClient.Timeout)
	assert.Equal(t, 3*time.Second, New("http://x", WithTimeout(3*time.Second)).httpClient.Timeout)

	shared := &http.Client{Timeout: time.Minute}
	c := New("http://x", WithHTTPClient(shared), WithTimeout(time.Second))
	assert.Same(t, shared, c.httpClient)
	assert.Equal(t, time.Minute, shared.Timeout)

	c = New("http://x", WithHTTPClient(nil), WithTimeout(2*time.Second))
	require.NotNil(t, c.httpClient)
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
}
