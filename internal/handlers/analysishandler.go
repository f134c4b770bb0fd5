package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/services"
	"go.uber.org/zap"
)

type AnalysisHandler struct {
	Analysis *services.AnalysisService
	Log      *zap.Logger
}

func NewAnalysisHandler(s *services.AnalysisService, log *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{Analysis: s, Log: log}
}

// Run returns a handler for one analysis kind.
func (h *AnalysisHandler) Run(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dtos.AnalysisRequest
		if !bindJSON(c, &req) {
			return
		}
		resp, err := h.Analysis.Run(c.Request.Context(), kind, &req)
		if err != nil {
			respondError(c, h.Log, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// History serves GET /analysis/:kind/:jobId/history. The path uses dashes
// ("job-match") while stored kinds use underscores.
func (h *AnalysisHandler) History(c *gin.Context) {
	jobID, ok := paramID(c, "jobId")
	if !ok {
		return
	}
	kind := strings.ReplaceAll(c.Param("kind"), "-", "_")
	hist, err := h.Analysis.History(c.Request.Context(), kind, jobID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": hist})
}
