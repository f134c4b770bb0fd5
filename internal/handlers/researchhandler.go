package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/services"
	"go.uber.org/zap"
)

type ResearchHandler struct {
	Research *services.ResearchService
	Log      *zap.Logger
}

func NewResearchHandler(s *services.ResearchService, log *zap.Logger) *ResearchHandler {
	return &ResearchHandler{Research: s, Log: log}
}

type researchOp func(ctx context.Context, req *dtos.CompanyResearchRequest) (*services.Research, error)

func (h *ResearchHandler) Company(c *gin.Context) {
	h.run(c, h.Research.CompanyProfile)
}

func (h *ResearchHandler) News(c *gin.Context) {
	h.run(c, h.Research.CompanyNews)
}

func (h *ResearchHandler) run(c *gin.Context, op researchOp) {
	var req dtos.CompanyResearchRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := op(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    res.Data,
		"cached":  res.Cached,
	})
}

func (h *ResearchHandler) Follow(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dtos.FollowRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Research.Follow(c.Request.Context(), id, req.Following)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": res})
}
