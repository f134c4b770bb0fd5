package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/models"
)

// ResearchResult is the research/news envelope.
type ResearchResult struct {
	Success bool                    `json:"success"`
	Data    *models.CompanyResearch `json:"data"`
	Cached  bool                    `json:"cached"`
}

func (c *Client) CompanyResearch(ctx context.Context, req *dtos.CompanyResearchRequest) (*ResearchResult, error) {
	return c.research(ctx, "/research/company", req)
}

func (c *Client) CompanyNews(ctx context.Context, req *dtos.CompanyResearchRequest) (*ResearchResult, error) {
	return c.research(ctx, "/research/news", req)
}

func (c *Client) research(ctx context.Context, path string, req *dtos.CompanyResearchRequest) (*ResearchResult, error) {
	var res ResearchResult
	if err := c.do(ctx, http.MethodPost, path, nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// FollowCompany sets the following flag on a research snapshot.
func (c *Client) FollowCompany(ctx context.Context, researchID uint, following bool) (*models.CompanyResearch, error) {
	var resp struct {
		Data *models.CompanyResearch `json:"data"`
	}
	path := fmt.Sprintf("/research/company/%d/follow", researchID)
	if err := c.do(ctx, http.MethodPatch, path, nil, dtos.FollowRequest{Following: following}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Analyze runs one analysis kind (models.KindJobMatch and friends).
func (c *Client) Analyze(ctx context.Context, kind string, req *dtos.AnalysisRequest) (*dtos.AnalysisResponse, error) {
	var resp dtos.AnalysisResponse
	if err := c.do(ctx, http.MethodPost, "/analysis/"+kindPath(kind), nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AnalysisHistory(ctx context.Context, kind string, jobID uint) ([]dtos.AnalysisHistoryEntry, error) {
	var resp struct {
		Data []dtos.AnalysisHistoryEntry `json:"data"`
	}
	path := fmt.Sprintf("/analysis/%s/%d/history", kindPath(kind), jobID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func kindPath(kind string) string {
	return strings.ReplaceAll(kind, "_", "-")
}
