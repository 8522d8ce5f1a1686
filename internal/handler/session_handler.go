package handler

import (
	"errors"
	"net/http"
	"time"

	"maestro/internal/middleware"
	"maestro/internal/models"
	"maestro/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessions *service.SessionService
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type sessionRequest struct {
	CourseID *uint     `json:"course_id"`
	Title    string    `json:"title" binding:"required"`
	StartAt  time.Time `json:"start_at" binding:"required"`
	EndAt    time.Time `json:"end_at" binding:"required"`
	Notes    string    `json:"notes"`
}

func (h *SessionHandler) Schedule(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := h.sessions.Schedule(c.Request.Context(), middleware.GetUserID(c), &models.Session{
		CourseID: req.CourseID,
		Title:    req.Title,
		StartAt:  req.StartAt,
		EndAt:    req.EndAt,
		Notes:    req.Notes,
	})
	if h.sessionError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

type addStudentRequest struct {
	StudentID uint `json:"student_id" binding:"required"`
}

func (h *SessionHandler) AddStudent(c *gin.Context) {
	var req addStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := h.sessions.AddStudent(c.Request.Context(), parseID(c, "id"), req.StudentID)
	if h.sessionError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

type rescheduleRequest struct {
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required"`
}

func (h *SessionHandler) Reschedule(c *gin.Context) {
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := h.sessions.Reschedule(c.Request.Context(), middleware.GetUserID(c), parseID(c, "id"), req.StartAt, req.EndAt)
	if h.sessionError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SessionHandler) Cancel(c *gin.Context) {
	session, err := h.sessions.Cancel(c.Request.Context(), middleware.GetUserID(c), parseID(c, "id"))
	if h.sessionError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SessionHandler) Complete(c *gin.Context) {
	session, err := h.sessions.Complete(middleware.GetUserID(c), parseID(c, "id"))
	if h.sessionError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessions.Get(parseID(c, "id"))
	if h.sessionError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SessionHandler) Mine(c *gin.Context) {
	sessions, err := h.sessions.ListForTutor(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing sessions failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *SessionHandler) sessionError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSessionNotYours):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTimeRange), errors.Is(err, service.ErrSessionNotEditable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoCalendarAccess):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "calendar operation failed"})
	}
	return true
}
