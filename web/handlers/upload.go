package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"shiftinsight.com/shiftinsight/config"
	"shiftinsight.com/shiftinsight/core"
	"shiftinsight.com/shiftinsight/loader"
	"shiftinsight.com/shiftinsight/web/common"
)

const ndjsonContentType = "application/x-ndjson"

// Upload loads one workbook and streams the progress events back as newline delimited JSON.
// Once streaming has started every outcome, including a fatal load error, is a 200 with a
// final error or complete event.
func (ep *Endpoint) Upload(c *gin.Context) {
	if ep.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ep.maxUploadBytes)
	}

	var req UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			c.JSON(http.StatusRequestEntityTooLarge, common.NewErrorResponse(
				fmt.Sprintf("File is larger than %d MB", ep.maxUploadBytes>>20)))
			return
		}
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	filename := filepath.Base(req.File.Filename)
	if !loader.IsSupported(filename) {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(
			fmt.Sprintf("Unsupported file type. Allowed: %s", strings.Join(loader.SupportedExtensions, ", "))))
		return
	}

	file, err := req.File.Open()
	if err != nil {
		config.LogError(ep.log, "handlers", "Upload", "open upload", filename, err)
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
		return
	}
	defer file.Close()

	loadID := uuid.NewString()
	c.Header("Content-Type", ndjsonContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Load-ID", loadID)
	c.Status(http.StatusOK)

	enc := json.NewEncoder(c.Writer)
	progress := func(e loader.Event) {
		if err := enc.Encode(e); err != nil {
			ep.log.WithError(err).WithField("load_id", loadID).Warn("failed to write progress event")
			return
		}
		c.Writer.Flush()
	}

	// a load runs to completion even when the client goes away
	ctx := context.WithoutCancel(c.Request.Context())
	_, err = ep.service.Load(ctx, loader.Input{
		LoadID:   loadID,
		Filename: filename,
		Sheet:    req.Sheet,
		Reader:   file,
	}, core.SourceUpload, progress)
	if err != nil {
		config.LogError(ep.log, "handlers", "Upload", "load", gin.H{"load_id": loadID, "filename": filename}, err)
	}
}
