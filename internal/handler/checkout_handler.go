package handler

import (
	"errors"
	"net/http"

	"maestro/internal/middleware"
	"maestro/internal/service"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkout *service.CheckoutService
}

func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type checkoutRequest struct {
	CourseID uint `json:"course_id" binding:"required"`
}

func (h *CheckoutHandler) Start(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.checkout.Start(c.Request.Context(), middleware.GetUserID(c), req.CourseID)
	switch {
	case errors.Is(err, service.ErrAlreadyEnrolled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCourseUnavailable):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "starting checkout failed"})
	default:
		c.JSON(http.StatusCreated, result)
	}
}
