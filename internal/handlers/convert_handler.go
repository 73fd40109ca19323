package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nvquang/formatforge/internal/analytics"
	"github.com/nvquang/formatforge/internal/classify"
	"github.com/nvquang/formatforge/internal/config"
	"github.com/nvquang/formatforge/internal/convert"
	"github.com/nvquang/formatforge/internal/models"
	"github.com/nvquang/formatforge/internal/service"
	"github.com/nvquang/formatforge/pkg/utils"
)

type ConvertHandler struct {
	dispatcher *convert.Dispatcher
	recorder   *analytics.Recorder
	storage    *service.StorageService
	queue      *service.QueueService
	logger     *zap.Logger
	config     *config.Config
}

func NewConvertHandler(
	dispatcher *convert.Dispatcher,
	recorder *analytics.Recorder,
	storage *service.StorageService,
	queue *service.QueueService,
	logger *zap.Logger,
	config *config.Config,
) *ConvertHandler {
	return &ConvertHandler{
		dispatcher: dispatcher,
		recorder:   recorder,
		storage:    storage,
		queue:      queue,
		logger:     logger,
		config:     config,
	}
}

// Convert handles the synchronous conversion path: multipart upload in,
// converted bytes out as an attachment. Every request produces exactly
// one best-effort analytics event.
func (h *ConvertHandler) Convert(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ConversionError{Error: "No file provided"})
		return
	}
	defer file.Close()

	targetFormat := c.PostForm("targetFormat")
	if targetFormat == "" {
		c.JSON(http.StatusBadRequest, models.ConversionError{Error: "No target format specified"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.config.Upload.MaxFileSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ConversionError{Error: "Failed to read uploaded file"})
		return
	}
	if int64(len(data)) > h.config.Upload.MaxFileSize {
		c.JSON(http.StatusBadRequest, models.ConversionError{
			Error: fmt.Sprintf("File exceeds the %d byte limit", h.config.Upload.MaxFileSize),
		})
		return
	}

	start := time.Now()
	result, err := h.dispatcher.Dispatch(c.Request.Context(), &convert.Request{
		Data:         data,
		FileName:     header.Filename,
		TargetFormat: targetFormat,
	})
	elapsed := time.Since(start)

	h.recordEvent(analytics.Event{
		FileName:         header.Filename,
		OriginalFormat:   classify.Ext(header.Filename),
		TargetFormat:     targetFormat,
		FileSize:         int64(len(data)),
		ProcessingTimeMs: elapsed.Milliseconds(),
		Success:          err == nil,
		ErrorMessage:     errMessage(err),
	})

	if err != nil {
		h.respondConversionError(c, header.Filename, targetFormat, err)
		return
	}

	filename := utils.ReplaceExt(header.Filename, targetFormat)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, result.MIMEType, result.Bytes)
}

// ConvertAsync stages the upload, publishes a job and returns its id.
func (h *ConvertHandler) ConvertAsync(c *gin.Context) {
	if h.queue == nil {
		c.JSON(http.StatusServiceUnavailable, models.APIResponse{
			Success: false,
			Error:   "Async conversion is not available",
		})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ConversionError{Error: "No file provided"})
		return
	}
	defer file.Close()

	targetFormat := c.PostForm("targetFormat")
	if targetFormat == "" {
		c.JSON(http.StatusBadRequest, models.ConversionError{Error: "No target format specified"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.config.Upload.MaxFileSize+1))
	if err != nil || int64(len(data)) > h.config.Upload.MaxFileSize {
		c.JSON(http.StatusBadRequest, models.ConversionError{Error: "Failed to read uploaded file"})
		return
	}

	job := &models.ConversionJob{
		ID:           uuid.New().String(),
		InputKey:     uuid.New().String(),
		FileName:     header.Filename,
		TargetFormat: targetFormat,
		CreatedAt:    time.Now(),
	}

	ctx := c.Request.Context()
	if err := h.storage.StageInput(ctx, job.InputKey, data); err != nil {
		h.logger.Error("Failed to stage input", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "Failed to accept file for conversion",
		})
		return
	}

	state := &models.JobState{
		ID:          job.ID,
		Status:      models.StatusPending,
		FileName:    header.Filename,
		SubmittedAt: job.CreatedAt,
	}
	if err := h.storage.SaveJobState(ctx, state); err != nil {
		h.logger.Warn("Failed to save job state", zap.Error(err))
	}

	if err := h.queue.PublishJob(ctx, job); err != nil {
		h.logger.Error("Failed to publish job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "Failed to queue conversion",
		})
		return
	}

	c.JSON(http.StatusAccepted, models.APIResponse{
		Success: true,
		Data:    gin.H{"jobId": job.ID, "status": models.StatusPending},
	})
}

// Formats lists every supported (kind, source, target) conversion.
func (h *ConvertHandler) Formats(c *gin.Context) {
	routes := h.dispatcher.Routes()
	sort.Strings(routes)
	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: routes})
}

// JobStatus serves the state of an async conversion.
func (h *ConvertHandler) JobStatus(c *gin.Context) {
	state, err := h.storage.GetJobState(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to read job state", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Error:   "Failed to read job state",
		})
		return
	}
	if state == nil {
		c.JSON(http.StatusNotFound, models.APIResponse{
			Success: false,
			Error:   "Job not found",
		})
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: state})
}

func (h *ConvertHandler) respondConversionError(c *gin.Context, fileName, targetFormat string, err error) {
	var ce *convert.CallerError
	if errors.As(err, &ce) {
		c.JSON(http.StatusBadRequest, models.ConversionError{
			Error:   "Unsupported conversion",
			Details: ce.Message,
			FileInfo: &models.FileInfo{
				FileName:     fileName,
				Kind:         ce.Kind,
				SourceFormat: ce.SourceFormat,
				TargetFormat: ce.TargetFormat,
			},
		})
		return
	}

	h.logger.Error("Conversion failed",
		zap.String("file", fileName),
		zap.String("target", targetFormat),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, models.ConversionError{
		Error:   "Conversion failed",
		Details: err.Error(),
	})
}

// recordEvent is fire-and-forget: a failure to record analytics must
// never affect the conversion response.
func (h *ConvertHandler) recordEvent(event analytics.Event) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Warn("Analytics recording failed", zap.Any("panic", r))
		}
	}()
	h.recorder.Record(event)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
