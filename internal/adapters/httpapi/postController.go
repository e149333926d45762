package httpapi

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"myforum/internal/adapters/httpapi/middleware"
	"myforum/internal/core/apperr"
	postEntity "myforum/internal/core/post"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ImageStore ذخیره و حذف تصویر پست
type ImageStore interface {
	Save(file multipart.File, header *multipart.FileHeader) (string, error)
	Delete(path string) error
}

type PostController struct {
	pc     PostUseCase
	images ImageStore
	logger *zap.Logger
}

func NewPostController(pc PostUseCase, images ImageStore, logger *zap.Logger) *PostController {
	return &PostController{pc: pc, images: images, logger: logger}
}

type postResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"authorId"`
	Image     *string   `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ctl *PostController) ListFeed(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			v := apperr.NewValidationError()
			v.Add("page", "must be a number")
			respondError(c, ctl.logger, v)
			return
		}
		page = n
	}

	res, err := ctl.pc.ListFeed(c.Request.Context(), middleware.ViewerFrom(c), page)
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *PostController) GetPostDetail(c *gin.Context) {
	id, ok := postIDParam(c)
	if !ok {
		return
	}
	res, err := ctl.pc.GetPostDetail(c.Request.Context(), id, middleware.ViewerFrom(c))
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CreatePost accepts JSON, or multipart/form-data with an optional "file" image.
func (ctl *PostController) CreatePost(c *gin.Context) {
	var req struct {
		Title string `json:"title" form:"title"`
		Text  string `json:"text" form:"text"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	image, ok := ctl.saveImage(c)
	if !ok {
		return
	}

	p, err := ctl.pc.CreatePost(c.Request.Context(), middleware.ViewerFrom(c), req.Title, req.Text, image)
	if err != nil {
		// پست ذخیره نشد، فایل آپلود شده هم نباید بماند
		if image != nil {
			if delErr := ctl.images.Delete(*image); delErr != nil {
				ctl.logger.Warn("could not clean up uploaded image", zap.String("image", *image), zap.Error(delErr))
			}
		}
		respondError(c, ctl.logger, err)
		return
	}

	c.JSON(http.StatusCreated, postResponse{
		ID:        p.ID.String(),
		Title:     p.Title,
		Text:      p.Text,
		AuthorID:  p.UserID.String(),
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
	})
}

// saveImage stores the "file" part of a multipart request. It reports false
// after writing an error response.
func (ctl *PostController) saveImage(c *gin.Context) (*string, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, true
	}
	header, err := c.FormFile("file")
	if err == http.ErrMissingFile {
		return nil, true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file"})
		return nil, false
	}
	if ctl.images == nil {
		v := apperr.NewValidationError()
		v.Add("image", "uploads are disabled")
		respondError(c, ctl.logger, v)
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file"})
		return nil, false
	}
	defer file.Close()

	path, err := ctl.images.Save(file, header)
	if err != nil {
		respondError(c, ctl.logger, err)
		return nil, false
	}
	return &path, true
}

func (ctl *PostController) CreateComment(c *gin.Context) {
	id, ok := postIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	comment, err := ctl.pc.CreateComment(c.Request.Context(), middleware.ViewerFrom(c), id, req.Text)
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toCommentResponse(comment))
}

func (ctl *PostController) LikePost(c *gin.Context) {
	id, ok := postIDParam(c)
	if !ok {
		return
	}
	if err := ctl.pc.LikePost(c.Request.Context(), id, middleware.ViewerFrom(c)); err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": true})
}

func (ctl *PostController) DislikePost(c *gin.Context) {
	id, ok := postIDParam(c)
	if !ok {
		return
	}
	if err := ctl.pc.DislikePost(c.Request.Context(), id, middleware.ViewerFrom(c)); err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": false})
}

func (ctl *PostController) DeletePost(c *gin.Context) {
	id, ok := postIDParam(c)
	if !ok {
		return
	}
	if err := ctl.pc.DeletePost(c.Request.Context(), id, middleware.ViewerFrom(c)); err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toCommentResponse(cm *postEntity.Comment) commentResponse {
	return commentResponse{
		ID:        cm.ID.String(),
		PostID:    cm.PostID.String(),
		Text:      cm.Text,
		AuthorID:  cm.UserID.String(),
		CreatedAt: cm.CreatedAt,
	}
}
