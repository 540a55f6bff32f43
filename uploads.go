package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/parser"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"bitbucket.org/mmdatafocus/factory_backend/workflow"
)

const maxUploadSizeBytes int64 = 50 * 1024 * 1024

var allowedUploadExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
}

type ossUploadRequest struct {
	ObjectKey   string `json:"object_key" binding:"required"`
	FilterMonth string `json:"filter_month"`
}

func readUploadedWorkbook(c *gin.Context) ([]byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, errors.New("file is required")
	}
	if fileHeader.Size > maxUploadSizeBytes {
		return nil, errors.New("file is too large")
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedUploadExtensions[ext] {
		return nil, errors.New("only .xlsx and .xls files are supported")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// archiveWorkbook keeps a copy of the raw feed file in object storage so a
// bad import can be replayed. Failures only log; the import already ran.
func archiveWorkbook(c *gin.Context, feedType string, data []byte) {
	if utils.GetStorageProvider() != utils.StorageProviderGCS {
		return
	}
	objectName := feedType + "/" + utils.GenerateUniqueFilename() + ".xlsx"
	if err := utils.UploadFileToStorage(c.Request.Context(), objectName, bytes.NewReader(data)); err != nil {
		config.LogError(config.GetLogger(), "uploads.go", "archiveWorkbook", "Archiving uploaded workbook", objectName, err)
	}
}

func writeImportError(c *gin.Context, err error) {
	var schemaErr *parser.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": schemaErr.Error(), "missing_columns": schemaErr.Missing})
	case errors.Is(err, parser.ErrInvalidFilterMonth):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrFeedLocked):
		c.JSON(http.StatusConflict, gin.H{"error": "another upload for this feed is in progress"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
	}
}

func uploadProductionLocalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		data, err := readUploadedWorkbook(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		filterMonth := strings.TrimSpace(c.PostForm("filter_month"))
		summary, err := workflow.ProcessProductionUploadWorkflow(c.Request.Context(), config.GetDB(), logger, bytes.NewReader(data), filterMonth)
		if err != nil {
			writeImportError(c, err)
			return
		}
		archiveWorkbook(c, workflow.FeedTypeProduction, data)
		c.JSON(http.StatusOK, summary)
	}
}

func uploadWorklogLocalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		data, err := readUploadedWorkbook(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		summary, err := workflow.ProcessWorklogUploadWorkflow(c.Request.Context(), config.GetDB(), logger, bytes.NewReader(data))
		if err != nil {
			writeImportError(c, err)
			return
		}
		archiveWorkbook(c, workflow.FeedTypeWorklog, data)
		c.JSON(http.StatusOK, summary)
	}
}

func uploadProductionOssHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req ossUploadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "object_key is required"})
			return
		}

		summary, err := workflow.ProcessStorageUploadWorkflow(c.Request.Context(), config.GetDB(), logger,
			workflow.FeedTypeProduction, req.ObjectKey, req.FilterMonth)
		if err != nil {
			writeImportError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func uploadWorklogOssHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req ossUploadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "object_key is required"})
			return
		}

		summary, err := workflow.ProcessStorageUploadWorkflow(c.Request.Context(), config.GetDB(), logger,
			workflow.FeedTypeWorklog, req.ObjectKey, "")
		if err != nil {
			writeImportError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func presignedUploadURLHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		objectKey := strings.TrimSpace(c.Query("object_key"))
		if objectKey == "" {
			objectKey = "uploads/" + utils.GenerateUniqueFilename()
		}

		contentType := strings.TrimSpace(c.Query("content_type"))
		if contentType == "" {
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		}

		expires := 3600
		if v := strings.TrimSpace(c.Query("expires")); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				expires = n
			}
		}

		signed, err := utils.SignUpload(c.Request.Context(), objectKey, contentType, time.Duration(expires)*time.Second)
		if err != nil {
			config.LogError(logger, "uploads.go", "presignedUploadURLHandler", "Signing upload URL", objectKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign upload url"})
			return
		}
		c.JSON(http.StatusOK, signed)
	}
}
