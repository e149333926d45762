package httpapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"myforum/internal/adapters/memory"
	"myforum/internal/adapters/storage"
	postapp "myforum/internal/core/post/service"
	statsapp "myforum/internal/core/stats/service"
	userapp "myforum/internal/core/user/service"
	postPort "myforum/internal/ports/post"
	userPort "myforum/internal/ports/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type RouterSuite struct {
	suite.Suite
	router    *gin.Engine
	uploadDir string
	alice     string
	bob       string
}

func TestRouterSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	store := memory.NewStore()
	logger := zap.NewNop()
	s.uploadDir = s.T().TempDir()
	images := storage.NewImageStore(s.uploadDir)

	userSvc := userapp.NewUserService(store.Users(), []byte("secret"), time.Hour, "/avatars/", logger)
	postSvc := postapp.NewPostService(store.Posts(), store.Comments(), store.Likes(), store.Users(), logger,
		postapp.WithImages(images))
	statsSvc := statsapp.NewStatsService(store.Likes(), logger)

	s.router = SetupRoutes(userSvc, postSvc, statsSvc, RouterOptions{
		Logger:    logger,
		Images:    images,
		UploadDir: s.uploadDir,
	})

	s.alice = s.signUp("alice")
	s.bob = s.signUp("bob")
}

func (s *RouterSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) signUp(name string) string {
	w := s.do(http.MethodPost, "/register", "", gin.H{
		"username": name, "email": name + "@example.com", "password": "password", "avatar": name + ".png",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/login", "", gin.H{"username": name, "password": "password"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var res userPort.LoginResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	return res.Token
}

func (s *RouterSuite) createPost(token, title string) string {
	w := s.do(http.MethodPost, "/posts", token, gin.H{"title": title, "text": "body of " + title})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var res postResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	return res.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestAuthRequired() {
	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/posts", "", gin.H{"title": "t", "text": "x"}).Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/posts", "bogus", gin.H{"title": "t", "text": "x"}).Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/posts", "bogus", nil).Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "nope"}).Code)
}

func (s *RouterSuite) TestRegisterConflictAndValidation() {
	w := s.do(http.MethodPost, "/register", "", gin.H{"username": "alice", "email": "x@example.com", "password": "password"})
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/register", "", gin.H{"username": "", "email": "bad", "password": "1"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *RouterSuite) TestFeedLikeFlow() {
	id := s.createPost(s.alice, "hello")

	w := s.do(http.MethodPost, "/posts/"+id+"/like", s.bob, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	// liking twice stays a single like
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/posts/"+id+"/like", s.bob, nil).Code)

	anon := decode[postPort.FeedPage](s.T(), s.do(http.MethodGet, "/posts", "", nil))
	s.Require().Len(anon.Items, 1)
	s.Equal(int64(1), anon.Items[0].Likes)
	s.False(anon.Items[0].LikedByViewer)
	s.Equal("/avatars/alice.png", anon.Items[0].AuthorAvatar)

	asBob := decode[postPort.FeedPage](s.T(), s.do(http.MethodGet, "/posts?page=1", s.bob, nil))
	s.True(asBob.Items[0].LikedByViewer)

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/posts/"+id+"/dislike", s.bob, nil).Code)
	asBob = decode[postPort.FeedPage](s.T(), s.do(http.MethodGet, "/posts", s.bob, nil))
	s.Equal(int64(0), asBob.Items[0].Likes)
	s.False(asBob.Items[0].LikedByViewer)

	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodGet, "/posts?page=abc", "", nil).Code)
}

func (s *RouterSuite) TestCreatePostValidation() {
	w := s.do(http.MethodPost, "/posts", s.alice, gin.H{"title": "", "text": "text"})
	s.Require().Equal(http.StatusUnprocessableEntity, w.Code)
	body := decode[map[string]any](s.T(), w)
	s.Contains(body["fields"], "title")
}

func (s *RouterSuite) TestDetailAndComments() {
	id := s.createPost(s.alice, "hello")

	w := s.do(http.MethodPost, "/posts/"+id+"/comments", s.bob, gin.H{"text": "nice"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodPost, "/posts/"+id+"/comments", s.bob, gin.H{"text": " "}).Code)

	detail := decode[postPort.PostDetail](s.T(), s.do(http.MethodGet, "/posts/"+id, s.bob, nil))
	s.Equal("hello", detail.Post.Title)
	s.Equal(int64(1), detail.Post.Comments)
	s.Require().Len(detail.Comments, 1)
	s.True(detail.Comments[0].ByViewer)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/posts/not-a-uuid", "", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/posts/6f1c7f4e-3c55-4d0e-9a57-1f3a4b1c2d3e", "", nil).Code)
}

func (s *RouterSuite) TestDeletePost() {
	id := s.createPost(s.alice, "hello")

	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, "/posts/"+id, s.bob, nil).Code)
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/posts/"+id, s.alice, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/posts/"+id, "", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/posts/"+id+"/like", s.bob, nil).Code)
}

func (s *RouterSuite) TestMultipartUploadServesAndDeletesImage() {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	s.Require().NoError(mw.WriteField("title", "with image"))
	s.Require().NoError(mw.WriteField("text", "look"))
	part, err := mw.CreateFormFile("file", "cat.png")
	s.Require().NoError(err)
	_, err = part.Write([]byte("png-bytes"))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.alice)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	created := decode[postResponse](s.T(), w)
	s.Require().NotNil(created.Image)

	img := s.do(http.MethodGet, *created.Image, "", nil)
	s.Equal(http.StatusOK, img.Code)
	s.Equal("png-bytes", img.Body.String())

	s.Require().Equal(http.StatusNoContent, s.do(http.MethodDelete, "/posts/"+created.ID, s.alice, nil).Code)
	_, err = os.Stat(filepath.Join(s.uploadDir, filepath.Base(*created.Image)))
	s.True(os.IsNotExist(err))
}

func (s *RouterSuite) TestRejectedPostDoesNotKeepUpload() {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	s.Require().NoError(mw.WriteField("title", ""))
	s.Require().NoError(mw.WriteField("text", "look"))
	part, err := mw.CreateFormFile("file", "cat.gif")
	s.Require().NoError(err)
	_, err = part.Write([]byte("gif"))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.alice)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusUnprocessableEntity, w.Code)

	entries, err := os.ReadDir(s.uploadDir)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *RouterSuite) TestLikeStats() {
	first := s.createPost(s.alice, "one")
	second := s.createPost(s.alice, "two")
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/posts/"+first+"/like", s.bob, nil).Code)
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/posts/"+second+"/like", s.bob, nil).Code)

	stats := decode[postPort.LikeStats](s.T(), s.do(http.MethodGet, "/me/likes", s.bob, nil))
	s.Equal(postPort.LikeStats{Total: 2, LastWeek: 2}, stats)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/me/likes", "", nil).Code)

	weekly := decode[struct {
		Weeks []statsapp.WeekCount `json:"weeks"`
	}](s.T(), s.do(http.MethodGet, "/stats/likes/weekly", "", nil))
	s.Require().Len(weekly.Weeks, 1)
	s.Equal(int64(2), weekly.Weeks[0].Likes)
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := memory.NewStore()
	logger := zap.NewNop()
	r := SetupRoutes(
		userapp.NewUserService(store.Users(), []byte("secret"), time.Hour, "", logger),
		postapp.NewPostService(store.Posts(), store.Comments(), store.Likes(), store.Users(), logger),
		statsapp.NewStatsService(store.Likes(), logger),
		RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}},
	)

	req := httptest.NewRequest(http.MethodOptions, "/posts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
