package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/filter"
	"github.com/justsurfingit/career-tracker/internal/grouping"
	"github.com/justsurfingit/career-tracker/internal/importer"
	"github.com/justsurfingit/career-tracker/internal/models"
)

func (c *Client) CreateContact(ctx context.Context, req *dtos.ContactRequest) (*models.Contact, error) {
	var contact models.Contact
	if err := c.do(ctx, http.MethodPost, "/contacts", nil, req, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (c *Client) ListContacts(ctx context.Context, f filter.ContactFilter, page, limit int) (*dtos.ListResponse[models.Contact], error) {
	var resp dtos.ListResponse[models.Contact]
	if err := c.do(ctx, http.MethodGet, "/contacts", pageQuery(f.Values(), page, limit), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetContact(ctx context.Context, id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := c.do(ctx, http.MethodGet, contactPath(id), nil, nil, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// UpdateContact sends a partial update. Slices in req replace the stored ones.
func (c *Client) UpdateContact(ctx context.Context, id uint, req *dtos.ContactUpdateRequest) (*models.Contact, error) {
	var contact models.Contact
	if err := c.do(ctx, http.MethodPatch, contactPath(id), nil, req, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (c *Client) DeleteContact(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, contactPath(id), nil, nil, nil)
}

func (c *Client) LinkJob(ctx context.Context, contactID, jobID uint) (*models.Contact, error) {
	return c.link(ctx, http.MethodPost, contactID, jobID)
}

func (c *Client) UnlinkJob(ctx context.Context, contactID, jobID uint) (*models.Contact, error) {
	return c.link(ctx, http.MethodDelete, contactID, jobID)
}

func (c *Client) link(ctx context.Context, method string, contactID, jobID uint) (*models.Contact, error) {
	var contact models.Contact
	path := fmt.Sprintf("%s/jobs/%d", contactPath(contactID), jobID)
	if err := c.do(ctx, method, path, nil, nil, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (c *Client) AddInteraction(ctx context.Context, contactID uint, req *dtos.InteractionRequest) (*models.Interaction, error) {
	var in models.Interaction
	if err := c.do(ctx, http.MethodPost, contactPath(contactID)+"/interactions", nil, req, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (c *Client) ListInteractions(ctx context.Context, contactID uint) ([]models.Interaction, error) {
	var list []models.Interaction
	if err := c.do(ctx, http.MethodGet, contactPath(contactID)+"/interactions", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ImportContacts uploads loosely-keyed records; the server maps field
// spellings and reports per-row failures.
func (c *Client) ImportContacts(ctx context.Context, records []importer.Record) (*dtos.ImportResult, error) {
	var res dtos.ImportResult
	if err := c.do(ctx, http.MethodPost, "/contacts/import", nil, records, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ImportContactsCSV(ctx context.Context, csv io.Reader) (*dtos.ImportResult, error) {
	var res dtos.ImportResult
	if err := c.send(ctx, http.MethodPost, "/contacts/import", nil, "text/csv", csv, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ExportContacts(ctx context.Context, f filter.ContactFilter) ([]byte, error) {
	q := f.Values()
	q.Set("format", "csv")
	var raw []byte
	if err := c.do(ctx, http.MethodGet, "/contacts/export", q, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) ContactTree(ctx context.Context, f filter.ContactFilter) (*grouping.Tree[models.Contact], error) {
	var tree grouping.Tree[models.Contact]
	if err := c.do(ctx, http.MethodGet, "/contacts/tree", f.Values(), nil, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

func contactPath(id uint) string {
	return fmt.Sprintf("/contacts/%d", id)
}
