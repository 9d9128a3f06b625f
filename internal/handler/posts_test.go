package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BloggingApp/post-store/internal/dto"
	"github.com/BloggingApp/post-store/internal/metrics"
	"github.com/BloggingApp/post-store/internal/model"
	"github.com/BloggingApp/post-store/internal/repository"
	"github.com/BloggingApp/post-store/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func defaultOptions() Options {
	return Options{
		ClientOrigin:   "*",
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		MetricsEnabled: true,
	}
}

func newTestRouter(t *testing.T, opts Options) (*gin.Engine, *repository.Repository) {
	t.Helper()
	repo := repository.New(filepath.Join(t.TempDir(), "blog_posts.json"), nil, time.Minute)
	_, err := repo.File.Bootstrap()
	require.NoError(t, err)

	m := metrics.New()
	services := service.New(zap.NewNop(), repo, m)
	return New(services, zap.NewNop(), m, opts).InitRoutes(), repo
}

func doJSON(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func doForm(r http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestPostsGetAll(t *testing.T) {
	r, _ := newTestRouter(t, defaultOptions())

	rec := doJSON(r, http.MethodGet, "/api/v1/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[dto.PostsResponse](t, rec)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, int64(1), resp.Posts[0].ID)
	assert.Equal(t, int64(2), resp.Posts[1].ID)
}

func TestPostsCreateJSON(t *testing.T) {
	r, _ := newTestRouter(t, defaultOptions())

	rec := doJSON(r, http.MethodPost, "/api/v1/posts", `{"author":"A","title":"T","content":"C"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, model.Post{ID: 3, Author: "A", Title: "T", Content: "C"}, decode[model.Post](t, rec))

	rec = doJSON(r, http.MethodGet, "/api/v1/posts", "")
	resp := decode[dto.PostsResponse](t, rec)
	require.Equal(t, 3, resp.Count)
	assert.Equal(t, "T", resp.Posts[2].Title)
}

func TestPostsCreateFormWithMissingFields(t *testing.T) {
	r, _ := newTestRouter(t, defaultOptions())

	rec := doForm(r, http.MethodPost, "/api/v1/posts", url.Values{"title": {"Only a title"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, model.Post{ID: 3, Title: "Only a title"}, decode[model.Post](t, rec))
}

func TestPostsGetByID(t *testing.T) {
	r, _ := newTestRouter(t, defaultOptions())

	rec := doJSON(r, http.MethodGet, "/api/v1/posts/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jane Doe", decode[model.Post](t, rec).Author)

	rec = doJSON(r, http.MethodGet, "/api/v1/posts/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(r, http.MethodGet, "/api/v1/posts/abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errInvalidPostID.Error(), decode[dto.BasicResponse](t, rec).Details)
}

func TestPostsUpdate(t *testing.T) {
	r, _ := newTestRouter(t, defaultOptions())

	rec := doForm(r, http.MethodPut, "/api/v1/posts/1", url.Values{
		"author":  {"John Roe"},
		"title":   {"Edited"},
		"content": {""},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.Post{ID: 1, Author: "John Roe", Title: "Edited", Content: ""}, decode[model.Post](t, rec))
}

func TestPostsUpdateIncompleteForm(t *testing.T) {
	r, repo := newTestRouter(t, defaultOptions())
	before, err := os.ReadFile(repo.File.Path())
	require.NoError(t, err)

	rec := doJSON(r, http.MethodPut, "/api/v1/posts/1", `{"author":"a","title":"t"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errIncompleteForm.Error(), decode[dto.BasicResponse](t, rec).Details)

	after, err := os.ReadFile(repo.File.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPostsUpdateNotFound(t *testing.T) {
	r, _ := newTestRouter(t, defaultOptions())

	rec := doJSON(r, http.MethodPut, "/api/v1/posts/42", `{"author":"a","title":"t","content":"c"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.ErrPostNotFound.Error(), decode[dto.BasicResponse](t, rec).Details)
}

func TestPostsUpdateUnknownIDBeforeIncompleteForm(t *testing.T) {
	r, _ := newTestRouter(t, defaultOptions())

	rec := doForm(r, http.MethodPut, "/api/v1/posts/42", url.Values{"title": {"only a title"}})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.ErrPostNotFound.Error(), decode[dto.BasicResponse](t, rec).Details)
}

func TestPostsDelete(t *testing.T) {
	r, _ := newTestRouter(t, defaultOptions())

	rec := doJSON(r, http.MethodDelete, "/api/v1/posts/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.BasicResponse](t, rec).Ok)

	rec = doJSON(r, http.MethodGet, "/api/v1/posts/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(r, http.MethodDelete, "/api/v1/posts/2", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(r, http.MethodPost, "/api/v1/posts", `{"author":"a","title":"t","content":"c"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(2), decode[model.Post](t, rec).ID)
}

func TestCorruptStoreIsUnavailable(t *testing.T) {
	r, repo := newTestRouter(t, defaultOptions())
	require.NoError(t, os.WriteFile(repo.File.Path(), []byte("{broken"), 0o644))

	rec := doJSON(r, http.MethodGet, "/api/v1/posts", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, decode[dto.BasicResponse](t, rec).Ok)
}

func TestRateLimitOnMutations(t *testing.T) {
	opts := defaultOptions()
	opts.RateLimitRPS = 0.001
	opts.RateLimitBurst = 1
	r, _ := newTestRouter(t, opts)

	rec := doJSON(r, http.MethodPost, "/api/v1/posts", `{"title":"first"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(r, http.MethodPost, "/api/v1/posts", `{"title":"second"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = doJSON(r, http.MethodGet, "/api/v1/posts", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	r, _ := newTestRouter(t, defaultOptions())

	rec := doJSON(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, defaultOptions())
	doJSON(r, http.MethodGet, "/api/v1/posts", "")

	rec := doJSON(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `post_store_operations_total{operation="list",result="ok"} 1`)

	opts := defaultOptions()
	opts.MetricsEnabled = false
	r, _ = newTestRouter(t, opts)
	rec = doJSON(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
