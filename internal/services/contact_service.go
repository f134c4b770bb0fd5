package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/events"
	"github.com/justsurfingit/career-tracker/internal/filter"
	"github.com/justsurfingit/career-tracker/internal/grouping"
	"github.com/justsurfingit/career-tracker/internal/importer"
	"github.com/justsurfingit/career-tracker/internal/models"
	"github.com/justsurfingit/career-tracker/internal/validation"
	"go.uber.org/zap"
)

type ContactService struct {
	Contacts ContactStore
	Jobs     JobStore
	Events   events.Publisher
	Log      *zap.Logger
}

func NewContactService(contacts ContactStore, jobs JobStore, pub events.Publisher, log *zap.Logger) *ContactService {
	return &ContactService{Contacts: contacts, Jobs: jobs, Events: pub, Log: log}
}

func (s *ContactService) CreateContact(ctx context.Context, req *dtos.ContactRequest) (*models.Contact, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	c := &models.Contact{
		FirstName:            strings.TrimSpace(req.FirstName),
		LastName:             strings.TrimSpace(req.LastName),
		Email:                strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:                req.Phone,
		Company:              req.Company,
		Title:                req.Title,
		LinkedInURL:          req.LinkedInURL,
		RelationshipType:     req.RelationshipType,
		RelationshipStrength: req.RelationshipStrength,
		Industry:             req.Industry,
		Category:             req.Category,
		Notes:                req.Notes,
		MutualConnections:    req.MutualConnections,
	}
	for _, t := range req.Tags {
		c.AddTag(t)
	}
	for _, id := range req.LinkedJobIDs {
		c.LinkJob(id)
	}
	if err := s.Contacts.CreateContact(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) GetContact(ctx context.Context, id uint) (*models.Contact, error) {
	return s.Contacts.GetContact(ctx, id)
}

func (s *ContactService) ListContacts(ctx context.Context, f filter.ContactFilter, page, limit int) (*dtos.ListResponse[models.Contact], error) {
	contacts, err := s.Contacts.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	items, p := Paginate(filter.Contacts(contacts, f), page, limit)
	return &dtos.ListResponse[models.Contact]{Items: items, Pagination: p}, nil
}

func (s *ContactService) Tree(ctx context.Context, f filter.ContactFilter) (*grouping.Tree[models.Contact], error) {
	contacts, err := s.Contacts.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	return grouping.Build(filter.Contacts(contacts, f), grouping.ContactLevels()), nil
}

// UpdateContact applies a partial update and saves the whole record.
func (s *ContactService) UpdateContact(ctx context.Context, id uint, req *dtos.ContactUpdateRequest) (*models.Contact, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	c, err := s.Contacts.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}

	setString(&c.FirstName, req.FirstName)
	setString(&c.LastName, req.LastName)
	setString(&c.Email, req.Email)
	setString(&c.Phone, req.Phone)
	setString(&c.Company, req.Company)
	setString(&c.Title, req.Title)
	setString(&c.LinkedInURL, req.LinkedInURL)
	setString(&c.RelationshipType, req.RelationshipType)
	setString(&c.Industry, req.Industry)
	setString(&c.Category, req.Category)
	setString(&c.Notes, req.Notes)
	if req.RelationshipStrength != nil {
		c.RelationshipStrength = *req.RelationshipStrength
	}
	if req.Tags != nil {
		c.Tags = nil
		for _, t := range *req.Tags {
			c.AddTag(t)
		}
	}
	if req.MutualConnections != nil {
		c.MutualConnections = *req.MutualConnections
	}
	if req.LinkedJobIDs != nil {
		c.LinkedJobIDs = nil
		for _, jid := range *req.LinkedJobIDs {
			c.LinkJob(jid)
		}
	}
	c.Email = strings.ToLower(c.Email)

	if err := s.Contacts.SaveContact(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) DeleteContact(ctx context.Context, id uint) error {
	return s.Contacts.DeleteContact(ctx, id)
}

// LinkJob adds jobID to the contact's linked set and saves the record.
// Linking an already-linked job changes nothing.
func (s *ContactService) LinkJob(ctx context.Context, contactID, jobID uint) (*models.Contact, error) {
	if _, err := s.Jobs.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	return s.mutateLinks(ctx, contactID, func(c *models.Contact) bool { return c.LinkJob(jobID) })
}

func (s *ContactService) UnlinkJob(ctx context.Context, contactID, jobID uint) (*models.Contact, error) {
	return s.mutateLinks(ctx, contactID, func(c *models.Contact) bool { return c.UnlinkJob(jobID) })
}

func (s *ContactService) mutateLinks(ctx context.Context, contactID uint, mutate func(*models.Contact) bool) (*models.Contact, error) {
	c, err := s.Contacts.GetContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if !mutate(c) {
		return c, nil
	}
	if err := s.Contacts.SaveContact(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AddInteraction records an interaction and moves the contact's strength by
// its delta, clamped to 0..100.
func (s *ContactService) AddInteraction(ctx context.Context, contactID uint, req *dtos.InteractionRequest) (*models.Interaction, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.Contacts.GetContact(ctx, contactID); err != nil {
		return nil, err
	}
	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}
	in := &models.Interaction{
		ContactID:          contactID,
		Type:               req.Type,
		Date:               date,
		Notes:              req.Notes,
		Outcome:            req.Outcome,
		RelationshipChange: req.RelationshipChange,
	}
	if err := s.Contacts.AddInteraction(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *ContactService) ListInteractions(ctx context.Context, contactID uint) ([]models.Interaction, error) {
	if _, err := s.Contacts.GetContact(ctx, contactID); err != nil {
		return nil, err
	}
	return s.Contacts.ListInteractions(ctx, contactID)
}

// Import creates one contact per record. Rows that fail mapping or
// validation are reported by 1-based row number; they never abort the batch.
func (s *ContactService) Import(ctx context.Context, records []importer.Record) (*dtos.ImportResult, error) {
	result := &dtos.ImportResult{ErrorsList: []dtos.ImportError{}}
	for i, rec := range records {
		row := i + 1
		c, err := importer.ToContact(rec)
		if err == nil {
			err = s.validateImported(&c)
		}
		if err == nil {
			err = s.Contacts.CreateContact(ctx, &c)
		}
		if err != nil {
			result.Errors++
			result.ErrorsList = append(result.ErrorsList, dtos.ImportError{Row: row, Error: err.Error()})
			continue
		}
		result.Imported++
	}

	s.Log.Info("contacts imported", zap.Int("imported", result.Imported), zap.Int("errors", result.Errors))
	if result.Imported > 0 {
		if err := s.Events.Publish(ctx, events.ContactsImported, map[string]any{
			"imported": result.Imported, "errors": result.Errors,
		}); err != nil {
			s.Log.Warn("publish import event failed", zap.Error(err))
		}
	}
	return result, nil
}

func (s *ContactService) validateImported(c *models.Contact) error {
	return validation.Struct(&dtos.ContactRequest{
		FirstName:            c.FirstName,
		Email:                c.Email,
		Phone:                c.Phone,
		LinkedInURL:          c.LinkedInURL,
		RelationshipStrength: c.RelationshipStrength,
	})
}

// ImportCSV parses a CSV document with a header row and imports it.
func (s *ContactService) ImportCSV(ctx context.Context, src io.Reader) (*dtos.ImportResult, error) {
	records, err := importer.ParseCSV(src)
	if err != nil {
		verr := apperrors.NewValidationError()
		verr.Add("file", err.Error())
		return nil, verr
	}
	return s.Import(ctx, records)
}

var contactCSVHeader = []string{
	"id", "first_name", "last_name", "email", "phone", "company", "title", "linkedin_url",
	"relationship_type", "relationship_strength", "industry", "category", "tags", "notes",
}

func (s *ContactService) ExportCSV(ctx context.Context, f filter.ContactFilter, w io.Writer) error {
	contacts, err := s.Contacts.ListContacts(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(contactCSVHeader); err != nil {
		return err
	}
	for _, c := range filter.Contacts(contacts, f) {
		row := []string{
			strconv.FormatUint(uint64(c.ID), 10), c.FirstName, c.LastName, c.Email, c.Phone,
			c.Company, c.Title, c.LinkedInURL, c.RelationshipType,
			strconv.Itoa(c.RelationshipStrength), c.Industry, c.Category,
			strings.Join(c.Tags, "; "), c.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write contact %d: %w", c.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
