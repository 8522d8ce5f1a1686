package handler

import (
	"errors"
	"net/http"

	"maestro/internal/middleware"
	"maestro/internal/service"

	"github.com/gin-gonic/gin"
)

type CertificateHandler struct {
	certificates *service.CertificateService
}

func NewCertificateHandler(certificates *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

type issueRequest struct {
	CourseID uint `json:"course_id" binding:"required"`
}

func (h *CertificateHandler) Issue(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cert, err := h.certificates.Issue(middleware.GetUserID(c), req.CourseID)
	switch {
	case errors.Is(err, service.ErrNotEnrolled):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCourseNotCompleted):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCertificateExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issuing certificate failed"})
	default:
		c.JSON(http.StatusCreated, gin.H{
			"certificate": cert,
			"full_serial": cert.FullSerial(),
			"verify_url":  cert.VerificationPath(),
		})
	}
}

func (h *CertificateHandler) Mine(c *gin.Context) {
	certs, err := h.certificates.ListForUser(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing certificates failed"})
		return
	}
	out := make([]gin.H, 0, len(certs))
	for i := range certs {
		out = append(out, gin.H{
			"certificate": certs[i],
			"full_serial": certs[i].FullSerial(),
			"expires_at":  certs[i].ExpiryDate(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"certificates": out})
}

// Verify is public; anyone holding a serial can check it.
func (h *CertificateHandler) Verify(c *gin.Context) {
	result, err := h.certificates.Verify(c.Param("serial"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

type revokeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *CertificateHandler) Revoke(c *gin.Context) {
	var req revokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cert, err := h.certificates.Revoke(middleware.GetUserID(c), parseID(c, "id"), req.Reason)
	switch {
	case errors.Is(err, service.ErrCertificateMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "revoking certificate failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"certificate": cert, "status": cert.Status()})
	}
}
