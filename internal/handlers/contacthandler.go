package handlers

import (
	"context"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/filter"
	"github.com/justsurfingit/career-tracker/internal/importer"
	"github.com/justsurfingit/career-tracker/internal/models"
	"github.com/justsurfingit/career-tracker/internal/services"
	"go.uber.org/zap"
)

type ContactHandler struct {
	Contacts *services.ContactService
	Log      *zap.Logger
}

func NewContactHandler(s *services.ContactService, log *zap.Logger) *ContactHandler {
	return &ContactHandler{Contacts: s, Log: log}
}

func (h *ContactHandler) Create(c *gin.Context) {
	var req dtos.ContactRequest
	if !bindJSON(c, &req) {
		return
	}
	contact, err := h.Contacts.CreateContact(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandler) List(c *gin.Context) {
	f, err := filter.ContactFilterFromQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	page, limit := pageParams(c)
	resp, err := h.Contacts.ListContacts(c.Request.Context(), f, page, limit)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	contact, err := h.Contacts.GetContact(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dtos.ContactUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	contact, err := h.Contacts.UpdateContact(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Contacts.DeleteContact(c.Request.Context(), id); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type linkOp func(ctx context.Context, contactID, jobID uint) (*models.Contact, error)

func (h *ContactHandler) LinkJob(c *gin.Context) {
	h.links(c, h.Contacts.LinkJob)
}

func (h *ContactHandler) UnlinkJob(c *gin.Context) {
	h.links(c, h.Contacts.UnlinkJob)
}

func (h *ContactHandler) links(c *gin.Context, op linkOp) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	jobID, ok := paramID(c, "jobId")
	if !ok {
		return
	}
	contact, err := op(c.Request.Context(), id, jobID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) AddInteraction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dtos.InteractionRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := h.Contacts.AddInteraction(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, in)
}

func (h *ContactHandler) ListInteractions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.Contacts.ListInteractions(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Import accepts a JSON array of loose records, a text/csv body, or a
// multipart upload in the "file" field.
func (h *ContactHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))

	var (
		res *dtos.ImportResult
		err error
	)
	switch {
	case mediaType == "text/csv":
		res, err = h.Contacts.ImportCSV(ctx, c.Request.Body)
	case strings.HasPrefix(mediaType, "multipart/"):
		fh, ferr := c.FormFile("file")
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		f, ferr := fh.Open()
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open file"})
			return
		}
		defer f.Close()
		res, err = h.Contacts.ImportCSV(ctx, f)
	default:
		var records []importer.Record
		if !bindJSON(c, &records) {
			return
		}
		res, err = h.Contacts.Import(ctx, records)
	}
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ContactHandler) Tree(c *gin.Context) {
	f, err := filter.ContactFilterFromQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	tree, err := h.Contacts.Tree(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *ContactHandler) Export(c *gin.Context) {
	if !exportFormat(c) {
		return
	}
	f, err := filter.ContactFilterFromQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="contacts.csv"`)
	if err := h.Contacts.ExportCSV(c.Request.Context(), f, c.Writer); err != nil {
		h.Log.Error("contact export failed", zap.Error(err))
	}
}
