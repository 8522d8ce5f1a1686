package handler

import (
	"errors"
	"net/http"
	"time"

	"maestro/internal/middleware"
	"maestro/internal/models"
	"maestro/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssessmentHandler struct {
	assessments *service.AssessmentService
}

func NewAssessmentHandler(assessments *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

type quizRequest struct {
	LessonID           uint                  `json:"lesson_id" binding:"required"`
	Questions          []models.QuizQuestion `json:"questions" binding:"required,min=1"`
	PassMark           int                   `json:"pass_mark" binding:"required"`
	Instructions       string                `json:"instructions"`
	TimeLimitMinutes   int                   `json:"time_limit_minutes"`
	AllowRetakes       *bool                 `json:"allow_retakes"`
	MaxAttempts        int                   `json:"max_attempts"`
	ShuffleQuestions   bool                  `json:"shuffle_questions"`
	ShowCorrectAnswers bool                  `json:"show_correct_answers"`
}

func (h *AssessmentHandler) CreateQuiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	allowRetakes := true
	if req.AllowRetakes != nil {
		allowRetakes = *req.AllowRetakes
	}
	maxAttempts := req.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 3
	}
	quiz := &models.Quiz{
		LessonID:           req.LessonID,
		Questions:          datatypes.JSONSlice[models.QuizQuestion](req.Questions),
		PassMark:           req.PassMark,
		Instructions:       req.Instructions,
		TimeLimitMinutes:   req.TimeLimitMinutes,
		AllowRetakes:       allowRetakes,
		MaxAttempts:        maxAttempts,
		ShuffleQuestions:   req.ShuffleQuestions,
		ShowCorrectAnswers: req.ShowCorrectAnswers,
	}
	if err := h.assessments.CreateQuiz(quiz); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating quiz failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"quiz": quiz})
}

// GetQuiz returns the quiz without the answer keys.
func (h *AssessmentHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.assessments.GetQuiz(parseID(c, "id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "quiz not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading quiz failed"})
		return
	}
	questions := make([]gin.H, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, gin.H{
			"type":    q.Type,
			"prompt":  q.Prompt,
			"options": q.Options,
			"points":  q.Points,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"id":                 quiz.ID,
		"lesson_id":          quiz.LessonID,
		"questions":          questions,
		"pass_mark":          quiz.PassMark,
		"total_points":       quiz.TotalPoints(),
		"instructions":       quiz.Instructions,
		"time_limit_minutes": quiz.TimeLimitMinutes,
		"allow_retakes":      quiz.AllowRetakes,
		"max_attempts":       quiz.MaxAttempts,
	})
}

func (h *AssessmentHandler) StartAttempt(c *gin.Context) {
	attempt, err := h.assessments.StartQuizAttempt(middleware.GetUserID(c), parseID(c, "id"))
	switch {
	case errors.Is(err, service.ErrRetakeExhausted):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotEnrolled), errors.Is(err, service.ErrEnrollmentClosed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "quiz not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "starting attempt failed"})
	default:
		c.JSON(http.StatusCreated, gin.H{"attempt": attempt})
	}
}

type submitAttemptRequest struct {
	Answers map[int]int `json:"answers" binding:"required"`
}

func (h *AssessmentHandler) SubmitAttempt(c *gin.Context) {
	var req submitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	attempt, err := h.assessments.SubmitQuizAttempt(middleware.GetUserID(c), parseID(c, "attemptId"), req.Answers)
	switch {
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAttemptClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "attempt not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submitting attempt failed"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"attempt":     attempt,
			"max_score":   attempt.MaxScore(),
			"percentage":  attempt.ScorePercentage(),
			"grade":       attempt.GradeLetter(),
		})
	}
}

func (h *AssessmentHandler) ListAttempts(c *gin.Context) {
	attempts, err := h.assessments.ListAttempts(middleware.GetUserID(c), parseID(c, "id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing attempts failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}

type assignmentRequest struct {
	LessonID            *uint      `json:"lesson_id"`
	SessionID           *uint      `json:"session_id"`
	Title               string     `json:"title" binding:"required"`
	InstructionsHTML    string     `json:"instructions_html"`
	DueAt               *time.Time `json:"due_at"`
	MaxPoints           int        `json:"max_points"`
	Rubric              string     `json:"rubric"`
	Attachments         []string   `json:"attachments"`
	IsRequired          *bool      `json:"is_required"`
	AllowLateSubmission bool       `json:"allow_late_submission"`
	LatePenalty         int        `json:"late_penalty"`
}

func (h *AssessmentHandler) CreateAssignment(c *gin.Context) {
	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.LessonID != nil && req.SessionID != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assignment may target a lesson or a session, not both"})
		return
	}
	maxPoints := req.MaxPoints
	if maxPoints == 0 {
		maxPoints = 100
	}
	required := true
	if req.IsRequired != nil {
		required = *req.IsRequired
	}
	assignment := &models.Assignment{
		LessonID:            req.LessonID,
		SessionID:           req.SessionID,
		Title:               req.Title,
		InstructionsHTML:    req.InstructionsHTML,
		DueAt:               req.DueAt,
		MaxPoints:           maxPoints,
		Rubric:              req.Rubric,
		Attachments:         datatypes.JSONSlice[string](req.Attachments),
		IsRequired:          required,
		AllowLateSubmission: req.AllowLateSubmission,
		LatePenalty:         req.LatePenalty,
	}
	if err := h.assessments.CreateAssignment(assignment); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating assignment failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"assignment": assignment})
}

func (h *AssessmentHandler) GetAssignment(c *gin.Context) {
	assignment, err := h.assessments.GetAssignment(parseID(c, "id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading assignment failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment, "target": assignment.Target()})
}

type submissionRequest struct {
	Files []string `json:"files"`
	Notes string   `json:"notes"`
}

func (h *AssessmentHandler) Submit(c *gin.Context) {
	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	submission, err := h.assessments.SubmitAssignment(middleware.GetUserID(c), parseID(c, "id"), req.Files, req.Notes)
	switch {
	case errors.Is(err, service.ErrLateNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotEnrolled), errors.Is(err, service.ErrEnrollmentClosed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submitting assignment failed"})
	default:
		c.JSON(http.StatusCreated, gin.H{"submission": submission})
	}
}

type gradeRequest struct {
	Points       *int   `json:"points" binding:"required"`
	FeedbackHTML string `json:"feedback_html"`
}

func (h *AssessmentHandler) GradeSubmission(c *gin.Context) {
	var req gradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	submission, err := h.assessments.GradeSubmission(middleware.GetUserID(c), parseID(c, "submissionId"), *req.Points, req.FeedbackHTML)
	switch {
	case errors.Is(err, service.ErrNotGrader):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidGrade):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "grading failed"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"submission":  submission,
			"final_grade": submission.FinalGrade(),
			"percentage":  submission.FinalGradePercentage(),
			"grade":       submission.GradeLetter(),
		})
	}
}

func (h *AssessmentHandler) ListSubmissions(c *gin.Context) {
	submissions, err := h.assessments.ListSubmissions(parseID(c, "id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing submissions failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

type commentRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *AssessmentHandler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := h.assessments.AddComment(middleware.GetUserID(c), parseID(c, "submissionId"), req.Body)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "adding comment failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}
