package handler

import (
	"errors"
	"net/http"

	"maestro/internal/domain"
	"maestro/internal/middleware"
	"maestro/internal/models"
	"maestro/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type NoteHandler struct {
	notes *repository.NoteRepository
}

func NewNoteHandler(notes *repository.NoteRepository) *NoteHandler {
	return &NoteHandler{notes: notes}
}

type noteRequest struct {
	StudentID uint   `json:"student_id" binding:"required"`
	LessonID  *uint  `json:"lesson_id"`
	Body      string `json:"body" binding:"required"`
	Private   *bool  `json:"private"`
}

func (h *NoteHandler) Create(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	private := true
	if req.Private != nil {
		private = *req.Private
	}
	note := &models.Note{
		AuthorID:  middleware.GetUserID(c),
		StudentID: req.StudentID,
		LessonID:  req.LessonID,
		Body:      req.Body,
		Private:   private,
	}
	if err := h.notes.Create(note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating note failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"note": note})
}

// ListForStudent shows a teacher everything; a student only sees notes
// that were left visible to them, and only their own.
func (h *NoteHandler) ListForStudent(c *gin.Context) {
	studentID := parseID(c, "studentId")
	viewerID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	includePrivate := role != domain.RoleStudent
	if !includePrivate && studentID != viewerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	notes, err := h.notes.ListByStudent(studentID, includePrivate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing notes failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

func (h *NoteHandler) Delete(c *gin.Context) {
	note, err := h.notes.GetByID(parseID(c, "id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading note failed"})
		return
	}
	if note.AuthorID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your note"})
		return
	}
	if err := h.notes.Delete(note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deleting note failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
