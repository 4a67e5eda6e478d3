package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/mkondo/notes-api/internal/constants"
	"github.com/mkondo/notes-api/internal/database"
	"github.com/mkondo/notes-api/internal/dto"
	"github.com/mkondo/notes-api/internal/models"
	"github.com/mkondo/notes-api/internal/repository"
	"github.com/mkondo/notes-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NoteHandlerTestSuite defines the test suite for NoteHandler
type NoteHandlerTestSuite struct {
	suite.Suite
	db          *gorm.DB
	handler     *NoteHandler
	noteService *services.NoteService
	tagService  *services.TagService
}

// SetupTest runs before each test
func (suite *NoteHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Note{},
		&models.NoteVersion{},
		&models.PasswordResetToken{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	noteRepo := repository.NewNoteRepository(suite.db)
	tagRepo := repository.NewTagRepository(suite.db)
	suite.noteService = services.NewNoteService(noteRepo, tagRepo)
	suite.tagService = services.NewTagService(tagRepo)
	suite.handler = NewNoteHandler(suite.noteService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *NoteHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *NoteHandlerTestSuite) createTestUser(email, username string) *models.User {
	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: "hashedpassword",
		IsActive:     true,
	}
	suite.db.Create(user)
	return user
}

// createAuthContext builds an authenticated request context
func (suite *NoteHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func (suite *NoteHandlerTestSuite) versionCount(noteID uint64) int64 {
	var count int64
	suite.db.Model(&models.NoteVersion{}).Where("note_id = ?", noteID).Count(&count)
	return count
}

func (suite *NoteHandlerTestSuite) TestCreateNote() {
	user := suite.createTestUser("writer@example.com", "writer")

	body, _ := json.Marshal(map[string]string{"content": "Buy milk"})
	c, w := suite.createAuthContext("POST", "/api/notes", body, user.ID)

	suite.handler.CreateNote(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.NoteDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Buy milk", response.Content)
	assert.Equal(suite.T(), 1, response.CurrentVersion)
	assert.Empty(suite.T(), response.Tags)

	assert.EqualValues(suite.T(), 1, suite.versionCount(response.ID))
}

func (suite *NoteHandlerTestSuite) TestCreateNote_EmptyContent() {
	user := suite.createTestUser("writer@example.com", "writer")

	body, _ := json.Marshal(map[string]string{"content": "   "})
	c, w := suite.createAuthContext("POST", "/api/notes", body, user.ID)

	suite.handler.CreateNote(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *NoteHandlerTestSuite) TestCreateNote_ContentTooLong() {
	user := suite.createTestUser("writer@example.com", "writer")

	long := bytes.Repeat([]byte("a"), constants.MaxNoteLength+1)
	body, _ := json.Marshal(map[string]string{"content": string(long)})
	c, w := suite.createAuthContext("POST", "/api/notes", body, user.ID)

	suite.handler.CreateNote(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *NoteHandlerTestSuite) TestUpdateNote_CreatesNewVersion() {
	user := suite.createTestUser("writer@example.com", "writer")

	note, err := suite.noteService.CreateNote(user.ID, "Buy milk")
	suite.Require().NoError(err)

	body, _ := json.Marshal(map[string]string{"content": "Buy milk and eggs"})
	c, w := suite.createAuthContext("PUT", fmt.Sprintf("/api/notes/%d", note.ID), body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", note.ID)}}

	suite.handler.UpdateNote(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.NoteDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Buy milk and eggs", response.Content)
	assert.Equal(suite.T(), 2, response.CurrentVersion)

	// Version 1 is untouched
	v1, err := suite.noteService.GetNoteVersion(user.ID, note.ID, 1)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Buy milk", v1.Content)

	v2, err := suite.noteService.GetNoteVersion(user.ID, note.ID, 2)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Buy milk and eggs", v2.Content)
}

func (suite *NoteHandlerTestSuite) TestUpdateNote_NoOpEditCreatesNoVersion() {
	user := suite.createTestUser("writer@example.com", "writer")

	note, err := suite.noteService.CreateNote(user.ID, "Buy milk")
	suite.Require().NoError(err)

	updated, err := suite.noteService.UpdateNote(user.ID, note.ID, "Buy milk")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, updated.CurrentVersion)
	assert.EqualValues(suite.T(), 1, suite.versionCount(note.ID))
}

func (suite *NoteHandlerTestSuite) TestUpdateNote_VersionNumbersAreGapless() {
	user := suite.createTestUser("writer@example.com", "writer")

	note, err := suite.noteService.CreateNote(user.ID, "v1")
	suite.Require().NoError(err)

	for i := 2; i <= 6; i++ {
		_, err := suite.noteService.UpdateNote(user.ID, note.ID, fmt.Sprintf("v%d", i))
		suite.Require().NoError(err)
	}

	versions, err := suite.noteService.ListNoteVersions(user.ID, note.ID)
	suite.Require().NoError(err)
	suite.Require().Len(versions, 6)
	for i, v := range versions {
		assert.Equal(suite.T(), i+1, v.Version)
		assert.Equal(suite.T(), fmt.Sprintf("v%d", i+1), v.Content)
	}
}

func (suite *NoteHandlerTestSuite) TestVersionTagSnapshots() {
	user := suite.createTestUser("writer@example.com", "writer")

	// Scenario: v1 untagged, tag added, edit freezes the tag onto v2.
	note, err := suite.noteService.CreateNote(user.ID, "Buy milk")
	suite.Require().NoError(err)

	_, err = suite.noteService.AddTagToNote(user.ID, note.ID, "shopping")
	suite.Require().NoError(err)

	_, err = suite.noteService.UpdateNote(user.ID, note.ID, "Buy milk and eggs")
	suite.Require().NoError(err)

	v1, err := suite.noteService.GetNoteVersion(user.ID, note.ID, 1)
	suite.Require().NoError(err)
	assert.Empty(suite.T(), v1.Tags, "version 1 predates the tag")

	v2, err := suite.noteService.GetNoteVersion(user.ID, note.ID, 2)
	suite.Require().NoError(err)
	suite.Require().Len(v2.Tags, 1)
	assert.Equal(suite.T(), "shopping", v2.Tags[0].Name)

	// Removing the live tag later must not rewrite the snapshot
	tag, err := suite.tagService.ListTags(user.ID)
	suite.Require().NoError(err)
	suite.Require().Len(tag, 1)

	_, err = suite.noteService.RemoveTagFromNote(user.ID, note.ID, tag[0].ID)
	suite.Require().NoError(err)

	v2Again, err := suite.noteService.GetNoteVersion(user.ID, note.ID, 2)
	suite.Require().NoError(err)
	assert.Len(suite.T(), v2Again.Tags, 1, "historical snapshot survives live tag removal")

	live, err := suite.noteService.GetNote(user.ID, note.ID)
	suite.Require().NoError(err)
	assert.Empty(suite.T(), live.Tags)
}

func (suite *NoteHandlerTestSuite) TestAddTagToNote_DedupsCaseInsensitively() {
	user := suite.createTestUser("writer@example.com", "writer")

	note, err := suite.noteService.CreateNote(user.ID, "note")
	suite.Require().NoError(err)

	_, err = suite.noteService.AddTagToNote(user.ID, note.ID, "Work")
	suite.Require().NoError(err)
	updated, err := suite.noteService.AddTagToNote(user.ID, note.ID, "work")
	suite.Require().NoError(err)

	suite.Require().Len(updated.Tags, 1)
	assert.Equal(suite.T(), "work", updated.Tags[0].Name)

	var tagCount int64
	suite.db.Model(&models.Tag{}).Where("user_id = ?", user.ID).Count(&tagCount)
	assert.EqualValues(suite.T(), 1, tagCount)
}

func (suite *NoteHandlerTestSuite) TestDeleteNote_CascadesVersionsAndLinks() {
	user := suite.createTestUser("writer@example.com", "writer")

	note, err := suite.noteService.CreateNote(user.ID, "doomed")
	suite.Require().NoError(err)
	_, err = suite.noteService.AddTagToNote(user.ID, note.ID, "junk")
	suite.Require().NoError(err)
	_, err = suite.noteService.UpdateNote(user.ID, note.ID, "doomed v2")
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("DELETE", fmt.Sprintf("/api/notes/%d", note.ID), nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", note.ID)}}

	suite.handler.DeleteNote(c)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	assert.EqualValues(suite.T(), 0, suite.versionCount(note.ID))

	var linkCount int64
	suite.db.Table("note_tags").Where("note_id = ?", note.ID).Count(&linkCount)
	assert.EqualValues(suite.T(), 0, linkCount)

	var versionLinkCount int64
	suite.db.Table("note_version_tags").Count(&versionLinkCount)
	assert.EqualValues(suite.T(), 0, versionLinkCount)

	// The tag itself survives; only links are removed
	var tagCount int64
	suite.db.Model(&models.Tag{}).Where("user_id = ?", user.ID).Count(&tagCount)
	assert.EqualValues(suite.T(), 1, tagCount)
}

func (suite *NoteHandlerTestSuite) TestDeleteNote_MissingReturnsNotFound() {
	user := suite.createTestUser("writer@example.com", "writer")

	c, w := suite.createAuthContext("DELETE", "/api/notes/9999", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "9999"}}

	suite.handler.DeleteNote(c)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *NoteHandlerTestSuite) TestOwnershipIsolation() {
	alice := suite.createTestUser("alice@example.com", "alice")
	bob := suite.createTestUser("bob@example.com", "bob")

	note, err := suite.noteService.CreateNote(alice.ID, "alice's secret")
	suite.Require().NoError(err)

	// Bob cannot read, update or delete Alice's note even with its id
	_, err = suite.noteService.GetNote(bob.ID, note.ID)
	assert.ErrorIs(suite.T(), err, services.ErrNoteNotFound)

	_, err = suite.noteService.UpdateNote(bob.ID, note.ID, "hijacked")
	assert.ErrorIs(suite.T(), err, services.ErrNoteNotFound)

	deleted, err := suite.noteService.DeleteNote(bob.ID, note.ID)
	suite.Require().NoError(err)
	assert.False(suite.T(), deleted)

	_, err = suite.noteService.ListNoteVersions(bob.ID, note.ID)
	assert.ErrorIs(suite.T(), err, services.ErrNoteNotFound)

	// Alice's note is intact
	got, err := suite.noteService.GetNote(alice.ID, note.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "alice's secret", got.Content)
}

func (suite *NoteHandlerTestSuite) TestListNotes_TagFilterMatchesAny() {
	user := suite.createTestUser("writer@example.com", "writer")

	work, err := suite.noteService.CreateNote(user.ID, "work note")
	suite.Require().NoError(err)
	_, err = suite.noteService.AddTagToNote(user.ID, work.ID, "work")
	suite.Require().NoError(err)

	home, err := suite.noteService.CreateNote(user.ID, "home note")
	suite.Require().NoError(err)
	_, err = suite.noteService.AddTagToNote(user.ID, home.ID, "home")
	suite.Require().NoError(err)

	_, err = suite.noteService.CreateNote(user.ID, "untagged note")
	suite.Require().NoError(err)

	notes, total, err := suite.noteService.ListNotes(services.ListNotesInput{
		UserID:   user.ID,
		TagNames: []string{"work", "home"},
	})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 2, total)
	assert.Len(suite.T(), notes, 2)

	notes, total, err = suite.noteService.ListNotes(services.ListNotesInput{
		UserID:   user.ID,
		TagNames: []string{"work"},
	})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 1, total)
	suite.Require().Len(notes, 1)
	assert.Equal(suite.T(), "work note", notes[0].Content)

	_, total, err = suite.noteService.ListNotes(services.ListNotesInput{UserID: user.ID})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 3, total)
}

func (suite *NoteHandlerTestSuite) TestListNotes_SortAndPagination() {
	user := suite.createTestUser("writer@example.com", "writer")

	for i := 1; i <= 5; i++ {
		_, err := suite.noteService.CreateNote(user.ID, fmt.Sprintf("note %d", i))
		suite.Require().NoError(err)
	}

	notes, total, err := suite.noteService.ListNotes(services.ListNotesInput{
		UserID:    user.ID,
		SortBy:    "created_at",
		SortOrder: "asc",
		Limit:     2,
		Offset:    0,
	})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 5, total)
	suite.Require().Len(notes, 2)
	assert.Equal(suite.T(), "note 1", notes[0].Content)
	assert.Equal(suite.T(), "note 2", notes[1].Content)

	notes, _, err = suite.noteService.ListNotes(services.ListNotesInput{
		UserID:    user.ID,
		SortBy:    "created_at",
		SortOrder: "asc",
		Limit:     2,
		Offset:    2,
	})
	suite.Require().NoError(err)
	suite.Require().Len(notes, 2)
	assert.Equal(suite.T(), "note 3", notes[0].Content)
	assert.Equal(suite.T(), "note 4", notes[1].Content)

	notes, _, err = suite.noteService.ListNotes(services.ListNotesInput{
		UserID:    user.ID,
		SortOrder: "desc",
		Limit:     1,
	})
	suite.Require().NoError(err)
	suite.Require().Len(notes, 1)
	assert.Equal(suite.T(), "note 5", notes[0].Content)
}

func (suite *NoteHandlerTestSuite) TestListNotes_Handler() {
	user := suite.createTestUser("writer@example.com", "writer")

	note, err := suite.noteService.CreateNote(user.ID, "tagged")
	suite.Require().NoError(err)
	_, err = suite.noteService.AddTagToNote(user.ID, note.ID, "keep")
	suite.Require().NoError(err)
	_, err = suite.noteService.CreateNote(user.ID, "plain")
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("GET", "/api/notes", nil, user.ID)
	c.Request.URL.RawQuery = "tags=keep&sort_by=updated_at&sort_order=desc&limit=10"

	suite.handler.ListNotes(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.NoteListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Notes, 1)
	assert.Equal(suite.T(), "tagged", response.Notes[0].Content)
	assert.EqualValues(suite.T(), 1, response.Pagination.Total)
	assert.Equal(suite.T(), 10, response.Pagination.Limit)
}

// TestNoteHandlerTestSuite runs the test suite
func TestNoteHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(NoteHandlerTestSuite))
}
