package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/filter"
	"github.com/justsurfingit/career-tracker/internal/services"
	"go.uber.org/zap"
)

// Extractor pulls structured job details out of a posting page.
type Extractor interface {
	ExtractJobDetails(ctx context.Context, rawHTML string) (string, error)
}

type JobHandler struct {
	Extractor  Extractor
	JobService *services.JobService
	Log        *zap.Logger
}

func NewJobHandler(extractor Extractor, j *services.JobService, log *zap.Logger) *JobHandler {
	return &JobHandler{Extractor: extractor, JobService: j, Log: log}
}

// ParseJob is the POST /jobs/extract endpoint
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if !bindJSON(c, &req) {
		return
	}
	extractedJSON, err := h.Extractor.ExtractJobDetails(c.Request.Context(), req.RawHTML)
	if err != nil {
		h.Log.Warn("job extraction failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI Extraction failed: " + err.Error()})
		return
	}
	// RawMessage keeps the model's JSON from being escaped into a string.
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    json.RawMessage(extractedJSON),
	})
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.JobService.CreateJob(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	f, err := filter.JobFilterFromQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	page, limit := pageParams(c)
	resp, err := h.JobService.ListJobs(c.Request.Context(), f, page, limit)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	job, err := h.JobService.GetJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dtos.JobUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.JobService.UpdateJob(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.JobService.DeleteJob(c.Request.Context(), id); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *JobHandler) AddHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dtos.JobEventRequest
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.JobService.AddHistory(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *JobHandler) ListHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	history, err := h.JobService.ListHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *JobHandler) Tree(c *gin.Context) {
	f, err := filter.JobFilterFromQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	tree, err := h.JobService.Tree(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *JobHandler) Export(c *gin.Context) {
	if !exportFormat(c) {
		return
	}
	f, err := filter.JobFilterFromQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="jobs.csv"`)
	if err := h.JobService.ExportCSV(c.Request.Context(), f, c.Writer); err != nil {
		h.Log.Error("job export failed", zap.Error(err))
	}
}
