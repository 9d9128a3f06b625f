package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/BloggingApp/post-store/internal/dto"
	"github.com/BloggingApp/post-store/internal/repository/filestore"
	"github.com/BloggingApp/post-store/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) postsGetAll(c *gin.Context) {
	posts, err := h.services.Post.ListPosts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPostsResponse(posts))
}

func (h *Handler) postsGetByID(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	post, err := h.services.Post.GetPost(c.Request.Context(), postID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *Handler) postsCreate(c *gin.Context) {
	var input dto.PostRequest
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	createdPost, err := h.services.Post.AddPost(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createdPost)
}

func (h *Handler) postsUpdate(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	// An unknown post is reported before an incomplete form.
	if _, err := h.services.Post.GetPost(c.Request.Context(), postID); err != nil {
		h.respondError(c, err)
		return
	}

	var input dto.UpdatePostRequest
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errIncompleteForm.Error()))
		return
	}

	updatedPost, err := h.services.Post.UpdatePost(c.Request.Context(), postID, input.Fields())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updatedPost)
}

func (h *Handler) postsDelete(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	if err := h.services.Post.DeletePost(c.Request.Context(), postID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, ""))
}

func parsePostID(c *gin.Context) (int64, bool) {
	postID, err := strconv.ParseInt(strings.TrimSpace(c.Param("postID")), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errInvalidPostID.Error()))
		return 0, false
	}
	return postID, true
}

// respondError maps a service error onto a response. Only a missing post is
// reported as such; store failures are generic.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		c.JSON(http.StatusNotFound, dto.NewBasicResponse(false, service.ErrPostNotFound.Error()))
	case errors.Is(err, filestore.ErrCorruptData), errors.Is(err, filestore.ErrNotFound):
		c.JSON(http.StatusServiceUnavailable, dto.NewBasicResponse(false, errStoreUnavailable.Error()))
	default:
		c.JSON(http.StatusInternalServerError, dto.NewBasicResponse(false, service.ErrInternal.Error()))
	}
}
