package handler

import (
	"errors"
	"net/http"
	"time"

	"maestro/internal/domain"
	"maestro/internal/middleware"
	"maestro/internal/models"
	"maestro/internal/repository"
	"maestro/pkg/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxUploadBytes = 50 << 20

type UploadHandler struct {
	files   *repository.StoredFileRepository
	storage storage.FileStorage
	log     *zap.Logger
}

func NewUploadHandler(files *repository.StoredFileRepository, fs storage.FileStorage, log *zap.Logger) *UploadHandler {
	return &UploadHandler{files: files, storage: fs, log: log}
}

// Upload streams a multipart file into blob storage and records it.
func (h *UploadHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading file failed"})
		return
	}
	defer src.Close()

	folder := c.DefaultPostForm("folder", "uploads")
	blob, err := h.storage.Upload(c.Request.Context(), folder, src, header.Size,
		header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		h.log.Error("upload failed", zap.String("file", header.Filename), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "storing file failed"})
		return
	}
	record := &models.StoredFile{
		BlobName:     blob.BlobName,
		OriginalName: blob.OriginalName,
		ContentType:  blob.ContentType,
		Size:         blob.Size,
		URL:          blob.URL,
		UploadedByID: middleware.GetUserID(c),
	}
	if err := h.files.Create(record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recording file failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"file": record})
}

// TemporaryURL returns a short-lived signed link to a stored blob.
func (h *UploadHandler) TemporaryURL(c *gin.Context) {
	record, err := h.files.GetByBlobName(c.Query("blob"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading file failed"})
		return
	}
	url, err := h.storage.TemporaryURL(c.Request.Context(), record.BlobName, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "signing url failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expires_in_seconds": 900})
}

func (h *UploadHandler) Delete(c *gin.Context) {
	record, err := h.files.GetByBlobName(c.Query("blob"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading file failed"})
		return
	}
	uploader := middleware.GetUserID(c)
	if record.UploadedByID != uploader && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your file"})
		return
	}
	if err := h.storage.Delete(c.Request.Context(), record.BlobName); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "deleting blob failed"})
		return
	}
	if err := h.files.Delete(record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deleting record failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UploadHandler) Mine(c *gin.Context) {
	files, err := h.files.ListByUploader(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing files failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}
