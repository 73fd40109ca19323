package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nvquang/formatforge/internal/config"
	"github.com/nvquang/formatforge/internal/models"
	"github.com/nvquang/formatforge/internal/service"
	"github.com/nvquang/formatforge/pkg/utils"
)

type UploadHandler struct {
	storage *service.StorageService
	logger  *zap.Logger
	config  *config.Config
}

func NewUploadHandler(storage *service.StorageService, logger *zap.Logger, config *config.Config) *UploadHandler {
	return &UploadHandler{storage: storage, logger: logger, config: config}
}

// Upload stores an original in object storage under a generated key
// and writes its metadata row.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   "No file provided",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.config.Upload.MaxFileSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   "Failed to read uploaded file",
		})
		return
	}
	if int64(len(data)) > h.config.Upload.MaxFileSize {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   fmt.Sprintf("File exceeds the %d byte limit", h.config.Upload.MaxFileSize),
		})
		return
	}

	ctx := c.Request.Context()
	key := utils.GenerateUploadKey(header.Filename)
	contentType := http.DetectContentType(data)

	url, err := h.storage.Upload(ctx, data, key, contentType)
	if err != nil {
		h.logger.Error("Upload to object storage failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "Failed to store file",
		})
		return
	}

	meta := &models.UploadedFile{
		ID:          uuid.New().String(),
		Key:         key,
		FileName:    header.Filename,
		Size:        int64(len(data)),
		ContentType: contentType,
		URL:         url,
		UploadedAt:  time.Now(),
	}
	if err := h.storage.SaveFileMeta(ctx, meta); err != nil {
		h.logger.Warn("Failed to save file metadata", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"file":    meta,
		"url":     url,
	})
}

// ListFiles serves the most recent upload metadata rows.
func (h *UploadHandler) ListFiles(c *gin.Context) {
	files, err := h.storage.ListFileMeta(c.Request.Context(), 50)
	if err != nil {
		h.logger.Error("Failed to list files", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "Failed to list files",
		})
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: files})
}
