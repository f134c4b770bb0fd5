package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/filter"
	"github.com/justsurfingit/career-tracker/internal/grouping"
	"github.com/justsurfingit/career-tracker/internal/models"
)

// ExtractJob asks the backend to pull structured fields out of a posting.
func (c *Client) ExtractJob(ctx context.Context, req *dtos.JobExtractionRequest) (json.RawMessage, error) {
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/jobs/extract", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) CreateJob(ctx context.Context, req *dtos.JobCreationRequest) (*models.Job, error) {
	var job models.Job
	if err := c.do(ctx, http.MethodPost, "/jobs", nil, req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) ListJobs(ctx context.Context, f filter.JobFilter, page, limit int) (*dtos.ListResponse[models.Job], error) {
	var resp dtos.ListResponse[models.Job]
	if err := c.do(ctx, http.MethodGet, "/jobs", pageQuery(f.Values(), page, limit), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	if err := c.do(ctx, http.MethodGet, jobPath(id), nil, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) UpdateJob(ctx context.Context, id uint, req *dtos.JobUpdateRequest) (*models.Job, error) {
	var job models.Job
	if err := c.do(ctx, http.MethodPatch, jobPath(id), nil, req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) DeleteJob(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, jobPath(id), nil, nil, nil)
}

func (c *Client) AddHistory(ctx context.Context, jobID uint, req *dtos.JobEventRequest) (*models.JobEvent, error) {
	var ev models.JobEvent
	if err := c.do(ctx, http.MethodPost, jobPath(jobID)+"/history", nil, req, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (c *Client) ListHistory(ctx context.Context, jobID uint) ([]models.JobEvent, error) {
	var events []models.JobEvent
	if err := c.do(ctx, http.MethodGet, jobPath(jobID)+"/history", nil, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) JobTree(ctx context.Context, f filter.JobFilter) (*grouping.Tree[models.Job], error) {
	var tree grouping.Tree[models.Job]
	if err := c.do(ctx, http.MethodGet, "/jobs/tree", f.Values(), nil, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// ExportJobs returns the CSV export of the filtered jobs.
func (c *Client) ExportJobs(ctx context.Context, f filter.JobFilter) ([]byte, error) {
	q := f.Values()
	q.Set("format", "csv")
	var raw []byte
	if err := c.do(ctx, http.MethodGet, "/jobs/export", q, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func jobPath(id uint) string {
	return fmt.Sprintf("/jobs/%d", id)
}
