package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkondo/notes-api/internal/dto"
	apierrors "github.com/mkondo/notes-api/internal/errors"
	"github.com/mkondo/notes-api/internal/middleware"
	"github.com/mkondo/notes-api/internal/services"
)

// TagHandler coordinates tag-management HTTP handlers.
type TagHandler struct {
	tagService *services.TagService
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService *services.TagService) *TagHandler {
	return &TagHandler{
		tagService: tagService,
	}
}

// ListTags returns the user's tags with usage counts.
func (h *TagHandler) ListTags(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	tags, err := h.tagService.ListTags(userID)
	if err != nil {
		respondTagError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags": dto.ToTagDTOs(tags),
	})
}

// CreateTag creates a tag.
func (h *TagHandler) CreateTag(c *gin.Context) {
	type CreateTagRequest struct {
		Name string `json:"name" binding:"required"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tag, err := h.tagService.CreateTag(userID, req.Name)
	if err != nil {
		respondTagError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTagDTO(*tag))
}

// RenameTag updates a tag name in place.
func (h *TagHandler) RenameTag(c *gin.Context) {
	type RenameTagRequest struct {
		Name string `json:"name" binding:"required"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	tagID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RenameTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tag, err := h.tagService.RenameTag(userID, tagID, req.Name)
	if err != nil {
		respondTagError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDTO(*tag))
}

// DeleteTag removes a tag and all of its links.
func (h *TagHandler) DeleteTag(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	tagID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	deleted, err := h.tagService.DeleteTag(userID, tagID)
	if err != nil {
		respondTagError(c, err)
		return
	}
	if !deleted {
		apierrors.NotFound(c, "Tag not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tag deleted",
	})
}

func respondTagError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidTagName):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTagNameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrTagNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
