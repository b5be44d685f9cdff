package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/stackusage/internal/export"
	"github.com/xxxsen/stackusage/internal/filestore"
	"github.com/xxxsen/stackusage/internal/pkg/response"
	"github.com/xxxsen/stackusage/internal/render"
)

// downloadable maps artifact names the file endpoint may serve to their
// content types. Anything else is a 404, not a path lookup.
var downloadable = map[string]string{
	export.FileTagMetrics: "text/csv; charset=utf-8",
	export.FileQuestions:  "application/json",
	export.FileAnswers:    "application/json",
	export.FileUsers:      "application/json",
	export.FileSummary:    "application/json",
	export.FileMarkdown:   "text/markdown; charset=utf-8",
}

type ReportHandler struct {
	store    filestore.Store
	renderer *render.HTMLRenderer
}

func NewReportHandler(store filestore.Store, renderer *render.HTMLRenderer) *ReportHandler {
	return &ReportHandler{store: store, renderer: renderer}
}

func (h *ReportHandler) Summary(c *gin.Context) {
	doc, err := h.loadSummary(c)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *ReportHandler) Tags(c *gin.Context) {
	doc, err := h.loadSummary(c)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc.Tags)
}

func (h *ReportHandler) Download(c *gin.Context) {
	name := c.Param("name")
	contentType, ok := downloadable[name]
	if !ok {
		response.Error(c, http.StatusNotFound, "unknown artifact")
		return
	}
	data, err := h.readArtifact(c, name)
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, data)
}

func (h *ReportHandler) View(c *gin.Context) {
	markdown, err := h.readArtifact(c, export.FileMarkdown)
	if err != nil {
		handleError(c, err)
		return
	}
	page, err := h.renderer.Render(export.FileMarkdown, markdown)
	if err != nil {
		handleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (h *ReportHandler) loadSummary(c *gin.Context) (*export.SummaryDocument, error) {
	data, err := h.readArtifact(c, export.FileSummary)
	if err != nil {
		return nil, err
	}
	var doc export.SummaryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", export.FileSummary, err)
	}
	return &doc, nil
}

func (h *ReportHandler) readArtifact(c *gin.Context, name string) ([]byte, error) {
	reader, err := h.store.Open(c.Request.Context(), name)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
