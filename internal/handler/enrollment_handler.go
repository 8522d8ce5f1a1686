package handler

import (
	"errors"
	"net/http"

	"maestro/internal/middleware"
	"maestro/internal/service"

	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	progress *service.ProgressService
}

func NewEnrollmentHandler(progress *service.ProgressService) *EnrollmentHandler {
	return &EnrollmentHandler{progress: progress}
}

func (h *EnrollmentHandler) Mine(c *gin.Context) {
	enrollments, err := h.progress.ListForStudent(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing enrollments failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollments": enrollments})
}

func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, err := h.progress.Get(middleware.GetUserID(c), parseID(c, "courseId"))
	if errors.Is(err, service.ErrNotEnrolled) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading enrollment failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollment": enrollment})
}

func (h *EnrollmentHandler) CompleteLesson(c *gin.Context) {
	enrollment, err := h.progress.MarkLessonComplete(
		middleware.GetUserID(c), parseID(c, "courseId"), parseID(c, "lessonId"))
	if h.progressError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollment": enrollment})
}

func (h *EnrollmentHandler) UncompleteLesson(c *gin.Context) {
	enrollment, err := h.progress.UnmarkLessonComplete(
		middleware.GetUserID(c), parseID(c, "courseId"), parseID(c, "lessonId"))
	if h.progressError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollment": enrollment})
}

func (h *EnrollmentHandler) Touch(c *gin.Context) {
	err := h.progress.Touch(middleware.GetUserID(c), parseID(c, "courseId"))
	if h.progressError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

type statusRequest struct {
	StudentID uint   `json:"student_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

// SetStatus is the admin path for pausing, resuming or cancelling.
func (h *EnrollmentHandler) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	enrollment, err := h.progress.SetStatus(req.StudentID, parseID(c, "courseId"), req.Status)
	if errors.Is(err, service.ErrNotEnrolled) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollment": enrollment})
}

func (h *EnrollmentHandler) progressError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, service.ErrNotEnrolled):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEnrollmentClosed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrLessonNotInCourse):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "updating progress failed"})
	}
	return true
}
