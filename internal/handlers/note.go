package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mkondo/notes-api/internal/dto"
	apierrors "github.com/mkondo/notes-api/internal/errors"
	"github.com/mkondo/notes-api/internal/middleware"
	"github.com/mkondo/notes-api/internal/services"
	"github.com/mkondo/notes-api/internal/utils"
)

// NoteHandler coordinates note-related HTTP handlers.
type NoteHandler struct {
	noteService *services.NoteService
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(noteService *services.NoteService) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
	}
}

// ListNotes returns the user's notes, filtered and sorted.
//
// Query parameters: tags (comma-separated, any-match), sort_by
// (created_at|updated_at), sort_order (asc|desc), limit, offset.
func (h *NoteHandler) ListNotes(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var tagNames []string
	if raw := c.Query("tags"); raw != "" {
		tagNames = strings.Split(raw, ",")
	}

	params := utils.GetPaginationParams(c)

	notes, total, err := h.noteService.ListNotes(services.ListNotesInput{
		UserID:    userID,
		TagNames:  tagNames,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
		Limit:     params.Limit,
		Offset:    params.Offset,
	})
	if err != nil {
		respondNoteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNoteListResponse(notes, params, total))
}

// CreateNote creates a note with its first version.
func (h *NoteHandler) CreateNote(c *gin.Context) {
	type CreateNoteRequest struct {
		Content string `json:"content" binding:"required"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	note, err := h.noteService.CreateNote(userID, req.Content)
	if err != nil {
		respondNoteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToNoteDTO(*note))
}

// GetNote returns a single note.
func (h *NoteHandler) GetNote(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	noteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	note, err := h.noteService.GetNote(userID, noteID)
	if err != nil {
		respondNoteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNoteDTO(*note))
}

// UpdateNote writes new content as a new version.
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	type UpdateNoteRequest struct {
		Content string `json:"content" binding:"required"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	noteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	note, err := h.noteService.UpdateNote(userID, noteID, req.Content)
	if err != nil {
		respondNoteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNoteDTO(*note))
}

// DeleteNote removes a note with its versions and tag links.
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	noteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	deleted, err := h.noteService.DeleteNote(userID, noteID)
	if err != nil {
		respondNoteError(c, err)
		return
	}
	if !deleted {
		apierrors.NotFound(c, "Note not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Note deleted",
	})
}

// ListNoteVersions returns the note's version history.
func (h *NoteHandler) ListNoteVersions(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	noteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	versions, err := h.noteService.ListNoteVersions(userID, noteID)
	if err != nil {
		respondNoteError(c, err)
		return
	}

	dtos := make([]dto.NoteVersionDTO, len(versions))
	for i, v := range versions {
		dtos[i] = dto.ToNoteVersionDTO(v)
	}

	c.JSON(http.StatusOK, gin.H{
		"versions": dtos,
	})
}

// GetNoteVersion returns a single version snapshot.
func (h *NoteHandler) GetNoteVersion(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	noteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		apierrors.BadRequest(c, "Invalid version number")
		return
	}

	v, err := h.noteService.GetNoteVersion(userID, noteID, version)
	if err != nil {
		respondNoteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNoteVersionDTO(*v))
}

// AddTagToNote links a tag to the live note, creating the tag on first
// use.
func (h *NoteHandler) AddTagToNote(c *gin.Context) {
	type AddTagRequest struct {
		Name string `json:"name" binding:"required"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	noteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	note, err := h.noteService.AddTagToNote(userID, noteID, req.Name)
	if err != nil {
		respondNoteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNoteDTO(*note))
}

// RemoveTagFromNote removes a live tag link.
func (h *NoteHandler) RemoveTagFromNote(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	noteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tagID, ok := parseIDParam(c, "tagId")
	if !ok {
		return
	}

	note, err := h.noteService.RemoveTagFromNote(userID, noteID, tagID)
	if err != nil {
		respondNoteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNoteDTO(*note))
}

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}

func respondNoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrContentTooLong),
		errors.Is(err, services.ErrInvalidTagName):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNoteNotFound),
		errors.Is(err, services.ErrVersionNotFound),
		errors.Is(err, services.ErrTagNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
