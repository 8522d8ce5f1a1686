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

type CourseHandler struct {
	courses *repository.CourseRepository
}

func NewCourseHandler(courses *repository.CourseRepository) *CourseHandler {
	return &CourseHandler{courses: courses}
}

func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.ListPublished()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing courses failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.GetByID(parseID(c, "id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading course failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

type courseRequest struct {
	Title       string `json:"title" binding:"required"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Level       string `json:"level"`
	Instrument  string `json:"instrument"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}
	course := &models.Course{
		TeacherID:   middleware.GetUserID(c),
		Title:       req.Title,
		Code:        req.Code,
		Description: req.Description,
		Level:       req.Level,
		Instrument:  req.Instrument,
		PriceCents:  req.PriceCents,
		Currency:    currency,
	}
	if err := h.courses.Create(course); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating course failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"course": course})
}

func (h *CourseHandler) Update(c *gin.Context) {
	course, ok := h.ownedCourse(c)
	if !ok {
		return
	}
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	course.Title = req.Title
	course.Code = req.Code
	course.Description = req.Description
	course.Level = req.Level
	course.Instrument = req.Instrument
	course.PriceCents = req.PriceCents
	if req.Currency != "" {
		course.Currency = req.Currency
	}
	if err := h.courses.Update(course); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "updating course failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

func (h *CourseHandler) Publish(c *gin.Context) {
	course, ok := h.ownedCourse(c)
	if !ok {
		return
	}
	course.Published = true
	if err := h.courses.Update(course); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "publishing course failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

type lessonRequest struct {
	Title           string `json:"title" binding:"required"`
	Position        int    `json:"position"`
	ContentHTML     string `json:"content_html"`
	VideoURL        string `json:"video_url"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (h *CourseHandler) AddLesson(c *gin.Context) {
	course, ok := h.ownedCourse(c)
	if !ok {
		return
	}
	var req lessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lesson := &models.Lesson{
		CourseID:        course.ID,
		Title:           req.Title,
		Position:        req.Position,
		ContentHTML:     req.ContentHTML,
		VideoURL:        req.VideoURL,
		DurationMinutes: req.DurationMinutes,
	}
	if err := h.courses.CreateLesson(lesson); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating lesson failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"lesson": lesson})
}

func (h *CourseHandler) GetLesson(c *gin.Context) {
	lesson, err := h.courses.GetLesson(parseID(c, "lessonId"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading lesson failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lesson": lesson})
}

func (h *CourseHandler) Mine(c *gin.Context) {
	courses, err := h.courses.ListByTeacher(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing courses failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// ownedCourse loads the course and enforces teacher ownership; admins
// may edit anything.
func (h *CourseHandler) ownedCourse(c *gin.Context) (*models.Course, bool) {
	course, err := h.courses.GetByID(parseID(c, "id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading course failed"})
		return nil, false
	}
	if course.TeacherID != middleware.GetUserID(c) && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your course"})
		return nil, false
	}
	return course, true
}
