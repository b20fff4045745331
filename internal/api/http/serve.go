package http

import (
	"bytes"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/shared/types"
	"github.com/GriffinCanCode/webbridge/internal/shared/utils"
)

// minCompressSize is the smallest body worth compressing.
const minCompressSize = 512

// Asset serves a file of a window's app resource scheme.
func (h *Handlers) Asset(c *gin.Context) {
	w, ok := h.window(c)
	if !ok {
		return
	}
	name := strings.TrimPrefix(c.Param("path"), "/")
	if err := utils.ValidateAssetPath(name); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}
	if w.Assets() == nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "window has no assets"})
		return
	}
	data, err := fs.ReadFile(w.Assets(), name)
	if err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "asset not found: " + name})
		return
	}
	h.serve(c, ContentType(name, data), data)
}

// ContentType resolves the media type of an asset, by extension first and by
// content sniffing otherwise.
func ContentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return mimetype.Detect(data).String()
}

// serve writes body with an ETag, answering conditional requests with 304
// and compressing for clients that accept gzip.
func (h *Handlers) serve(c *gin.Context, contentType string, body []byte) {
	etag := utils.ETag(body)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	c.Header("Vary", "Accept-Encoding")
	if utils.MatchesETag(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}

	if len(body) < minCompressSize || !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
		c.Data(http.StatusOK, contentType, body)
		return
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err == nil {
		_, err = zw.Write(body)
	}
	if err == nil {
		err = zw.Close()
	}
	if err != nil {
		h.logger.Warn("Failed to compress response", zap.Error(err))
		c.Data(http.StatusOK, contentType, body)
		return
	}
	c.Header("Content-Encoding", "gzip")
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
