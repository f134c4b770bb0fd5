package workspace

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"slices"
	"time"

	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/filter"
	"github.com/justsurfingit/career-tracker/internal/grouping"
	"github.com/justsurfingit/career-tracker/internal/importer"
	"github.com/justsurfingit/career-tracker/internal/models"
	"github.com/justsurfingit/career-tracker/internal/store"
	"github.com/justsurfingit/career-tracker/internal/validation"
	"github.com/justsurfingit/career-tracker/internal/viewstate"
	"go.uber.org/zap"
)

type ContactsAPI interface {
	CreateContact(ctx context.Context, req *dtos.ContactRequest) (*models.Contact, error)
	ListContacts(ctx context.Context, f filter.ContactFilter, page, limit int) (*dtos.ListResponse[models.Contact], error)
	GetContact(ctx context.Context, id uint) (*models.Contact, error)
	UpdateContact(ctx context.Context, id uint, req *dtos.ContactUpdateRequest) (*models.Contact, error)
	DeleteContact(ctx context.Context, id uint) error
	AddInteraction(ctx context.Context, contactID uint, req *dtos.InteractionRequest) (*models.Interaction, error)
	ImportContacts(ctx context.Context, records []importer.Record) (*dtos.ImportResult, error)
	ImportContactsCSV(ctx context.Context, csv io.Reader) (*dtos.ImportResult, error)
}

type ContactsManager struct {
	*Collection[models.Contact, filter.ContactFilter]

	API ContactsAPI
	Log *zap.Logger
}

func NewContactsManager(api ContactsAPI, log *zap.Logger) *ContactsManager {
	meta := store.Meta[models.Contact]{
		ID:        func(c models.Contact) uint { return c.ID },
		UpdatedAt: func(c models.Contact) time.Time { return c.UpdatedAt },
	}
	return &ContactsManager{
		Collection: newCollection(meta, filter.Contacts, grouping.ContactLevels()),
		API:        api,
		Log:        log,
	}
}

func (m *ContactsManager) SetFilterFromQuery(q url.Values) error {
	f, err := filter.ContactFilterFromQuery(q)
	if err != nil {
		return err
	}
	m.SetFilter(f)
	return nil
}

func (m *ContactsManager) Refresh(ctx context.Context) error {
	fetchedAt := time.Now()
	var all []models.Contact
	for page := 1; ; page++ {
		resp, err := m.API.ListContacts(ctx, filter.ContactFilter{}, page, fetchPageLimit)
		if err != nil {
			return fmt.Errorf("list contacts: %w", err)
		}
		all = append(all, resp.Items...)
		if page >= resp.Pagination.TotalPages {
			break
		}
	}
	m.Store.Dispatch(store.Replace[models.Contact]{Items: all, FetchedAt: fetchedAt})
	return nil
}

func (m *ContactsManager) CreateContact(ctx context.Context, req *dtos.ContactRequest) (*models.Contact, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	c, err := m.API.CreateContact(ctx, req)
	if err != nil {
		return nil, err
	}
	m.Store.Dispatch(store.Upsert[models.Contact]{Item: *c})
	m.View.Back()
	return c, nil
}

func (m *ContactsManager) UpdateContact(ctx context.Context, id uint, req *dtos.ContactUpdateRequest) (*models.Contact, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return m.save(ctx, id, req)
}

func (m *ContactsManager) DeleteContact(ctx context.Context, id uint) error {
	if err := m.API.DeleteContact(ctx, id); err != nil {
		return err
	}
	m.Store.Dispatch(store.Remove[models.Contact]{ID: id})
	if sel, ok := m.View.Selected(); ok && sel.ID == id {
		m.View.Back()
	}
	return nil
}

// LinkJob adds jobID to the contact's linked jobs. Linking an already linked
// job sends nothing.
func (m *ContactsManager) LinkJob(ctx context.Context, contactID, jobID uint) (*models.Contact, error) {
	return m.mutate(ctx, contactID, func(c *models.Contact) (*dtos.ContactUpdateRequest, bool) {
		if !c.LinkJob(jobID) {
			return nil, false
		}
		return &dtos.ContactUpdateRequest{LinkedJobIDs: &c.LinkedJobIDs}, true
	})
}

// UnlinkJob removes jobID; unlinking a job that is not linked sends nothing.
func (m *ContactsManager) UnlinkJob(ctx context.Context, contactID, jobID uint) (*models.Contact, error) {
	return m.mutate(ctx, contactID, func(c *models.Contact) (*dtos.ContactUpdateRequest, bool) {
		if !c.UnlinkJob(jobID) {
			return nil, false
		}
		return &dtos.ContactUpdateRequest{LinkedJobIDs: &c.LinkedJobIDs}, true
	})
}

func (m *ContactsManager) AddTag(ctx context.Context, contactID uint, tag string) (*models.Contact, error) {
	return m.mutate(ctx, contactID, func(c *models.Contact) (*dtos.ContactUpdateRequest, bool) {
		if !c.AddTag(tag) {
			return nil, false
		}
		return &dtos.ContactUpdateRequest{Tags: &c.Tags}, true
	})
}

func (m *ContactsManager) RemoveTag(ctx context.Context, contactID uint, tag string) (*models.Contact, error) {
	return m.mutate(ctx, contactID, func(c *models.Contact) (*dtos.ContactUpdateRequest, bool) {
		if !c.RemoveTag(tag) {
			return nil, false
		}
		return &dtos.ContactUpdateRequest{Tags: &c.Tags}, true
	})
}

// AddInteraction records an interaction and re-reads the contact, whose
// strength the server adjusted.
func (m *ContactsManager) AddInteraction(ctx context.Context, contactID uint, req *dtos.InteractionRequest) (*models.Interaction, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	in, err := m.API.AddInteraction(ctx, contactID, req)
	if err != nil {
		return nil, err
	}
	c, err := m.API.GetContact(ctx, contactID)
	if err != nil {
		m.Log.Warn("re-reading contact after interaction failed", zap.Uint("contact_id", contactID), zap.Error(err))
		return in, nil
	}
	m.Store.Dispatch(store.Upsert[models.Contact]{Item: *c})
	return in, nil
}

// Import uploads records and reloads the list when anything was imported.
func (m *ContactsManager) Import(ctx context.Context, records []importer.Record) (*dtos.ImportResult, error) {
	res, err := m.API.ImportContacts(ctx, records)
	return m.afterImport(ctx, res, err)
}

func (m *ContactsManager) ImportCSV(ctx context.Context, r io.Reader) (*dtos.ImportResult, error) {
	res, err := m.API.ImportContactsCSV(ctx, r)
	return m.afterImport(ctx, res, err)
}

func (m *ContactsManager) afterImport(ctx context.Context, res *dtos.ImportResult, err error) (*dtos.ImportResult, error) {
	if err != nil {
		return nil, err
	}
	if res.Imported > 0 {
		if err := m.Refresh(ctx); err != nil {
			m.Log.Warn("reload after import failed", zap.Error(err))
		}
	}
	m.View.Back()
	return res, nil
}

// mutate applies change to a private copy of the held contact and saves the
// whole changed slice. A change that reports false is a no-op.
func (m *ContactsManager) mutate(ctx context.Context, id uint, change func(*models.Contact) (*dtos.ContactUpdateRequest, bool)) (*models.Contact, error) {
	held, ok := m.Store.Get(id)
	if !ok {
		c, err := m.API.GetContact(ctx, id)
		if err != nil {
			return nil, err
		}
		m.Store.Dispatch(store.Upsert[models.Contact]{Item: *c})
		held = *c
	}
	held.Tags = slices.Clone(held.Tags)
	held.LinkedJobIDs = slices.Clone(held.LinkedJobIDs)

	req, changed := change(&held)
	if !changed {
		return &held, nil
	}
	return m.save(ctx, id, req)
}

func (m *ContactsManager) save(ctx context.Context, id uint, req *dtos.ContactUpdateRequest) (*models.Contact, error) {
	c, err := m.API.UpdateContact(ctx, id, req)
	if err != nil {
		return nil, err
	}
	m.Store.Dispatch(store.Upsert[models.Contact]{Item: *c})
	if v, ok := m.View.Mode().(viewstate.Viewing[models.Contact]); ok && v.Entity.ID == id {
		m.View.Select(*c)
	}
	return c, nil
}
