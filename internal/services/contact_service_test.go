package services

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/events"
	"github.com/justsurfingit/career-tracker/internal/filter"
	"github.com/justsurfingit/career-tracker/internal/importer"
	"github.com/justsurfingit/career-tracker/internal/models"
	"github.com/justsurfingit/career-tracker/internal/repository/memrepo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContactService() (*ContactService, *memrepo.Contacts, *memrepo.Jobs, *recordingPublisher) {
	contacts, jobs, pub := memrepo.NewContacts(), memrepo.NewJobs(), &recordingPublisher{}
	return NewContactService(contacts, jobs, pub, nopLog), contacts, jobs, pub
}

func TestContactService_CreateDedupsTagsAndLinks(t *testing.T) {
	svc, _, _, _ := newContactService()

	c, err := svc.CreateContact(context.Background(), &dtos.ContactRequest{
		FirstName:    "Ada",
		Email:        "ADA@Example.com",
		Tags:         []string{"mentor", "Mentor", "go"},
		LinkedJobIDs: []uint{4, 4, 5},
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", c.Email)
	assert.Equal(t, []string{"mentor", "go"}, c.Tags)
	assert.Equal(t, []uint{4, 5}, c.LinkedJobIDs)
}

func TestContactService_CreateValidation(t *testing.T) {
	svc, _, _, _ := newContactService()

	_, err := svc.CreateContact(context.Background(), &dtos.ContactRequest{
		Email:                "nope",
		Phone:                "abc",
		RelationshipStrength: 120,
	})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"first_name", "email", "phone", "relationship_strength"} {
		assert.Contains(t, verr.Fields, field)
	}
}

func TestContactService_LinkUnlinkAreIdempotent(t *testing.T) {
	svc, store, jobs, _ := newContactService()
	ctx := context.Background()
	job := &models.Job{Title: "Dev"}
	require.NoError(t, jobs.CreateJob(ctx, job))
	c, err := svc.CreateContact(ctx, &dtos.ContactRequest{FirstName: "Ada"})
	require.NoError(t, err)

	got, err := svc.LinkJob(ctx, c.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{job.ID}, got.LinkedJobIDs)
	assert.Equal(t, 1, store.Saves)

	got, err = svc.LinkJob(ctx, c.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{job.ID}, got.LinkedJobIDs)
	assert.Equal(t, 1, store.Saves, "linking twice must not write")

	got, err = svc.UnlinkJob(ctx, c.ID, 999)
	require.NoError(t, err)
	assert.Equal(t, []uint{job.ID}, got.LinkedJobIDs)

	got, err = svc.UnlinkJob(ctx, c.ID, job.ID)
	require.NoError(t, err)
	assert.Empty(t, got.LinkedJobIDs)

	_, err = svc.LinkJob(ctx, c.ID, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestContactService_UpdateReplacesTagSet(t *testing.T) {
	svc, _, _, _ := newContactService()
	ctx := context.Background()
	c, err := svc.CreateContact(ctx, &dtos.ContactRequest{FirstName: "Ada", Tags: []string{"a"}})
	require.NoError(t, err)

	tags := []string{"b", "B", "c"}
	got, err := svc.UpdateContact(ctx, c.ID, &dtos.ContactUpdateRequest{Tags: &tags, Title: strPtr("CTO")})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, got.Tags)
	assert.Equal(t, "CTO", got.Title)
	assert.Equal(t, "Ada", got.FirstName)
}

func TestContactService_InteractionClampsStrength(t *testing.T) {
	svc, store, _, _ := newContactService()
	ctx := context.Background()
	c, err := svc.CreateContact(ctx, &dtos.ContactRequest{FirstName: "Ada", RelationshipStrength: 95})
	require.NoError(t, err)

	_, err = svc.AddInteraction(ctx, c.ID, &dtos.InteractionRequest{Type: "coffee", RelationshipChange: 10})
	require.NoError(t, err)
	assert.Equal(t, 100, store.ByID[c.ID].RelationshipStrength)

	_, err = svc.AddInteraction(ctx, c.ID, &dtos.InteractionRequest{Type: "call", RelationshipChange: 11})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	list, err := svc.ListInteractions(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestContactService_ConcurrentInteractionsAccumulate(t *testing.T) {
	svc, store, _, _ := newContactService()
	ctx := context.Background()
	c, err := svc.CreateContact(ctx, &dtos.ContactRequest{FirstName: "Ada", RelationshipStrength: 10})
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddInteraction(ctx, c.ID, &dtos.InteractionRequest{Type: "call", RelationshipChange: 2})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.GetContact(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 10+2*n, got.RelationshipStrength)
	assert.Len(t, store.Interactions, n)
}

func TestContactService_ImportReportsRowErrors(t *testing.T) {
	svc, store, _, pub := newContactService()
	store.FailEmail = "dup@x.com"

	res, err := svc.Import(context.Background(), []importer.Record{
		{"First Name": "Ada", "email": "ada@x.com"},
		{"email": "nobody@x.com"},
		{"name": "Grace Hopper", "Relationship Strength": "200"},
		{"firstName": "Dup", "Email": "dup@x.com"},
		{"FirstName": "Linus", "tags": "kernel; git"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 3, res.Errors)
	rows := make([]int, len(res.ErrorsList))
	for i, e := range res.ErrorsList {
		rows[i] = e.Row
	}
	assert.Equal(t, []int{2, 3, 4}, rows)
	assert.Equal(t, []string{events.ContactsImported}, pub.types())
}

func TestContactService_ImportCSVQuotedComma(t *testing.T) {
	svc, store, _, _ := newContactService()
	doc := "first_name,last_name,company,email\nJohn,Doe,\"Acme, Inc.\",john@x.com\n"

	res, err := svc.ImportCSV(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, "Acme, Inc.", store.ByID[1].Company)
}

func TestContactService_TreeAndExport(t *testing.T) {
	svc, _, _, _ := newContactService()
	ctx := context.Background()
	for _, r := range []dtos.ContactRequest{
		{FirstName: "A", Industry: "Tech", Title: "CTO", RelationshipType: "mentor"},
		{FirstName: "B", Industry: "Finance"},
		{FirstName: "C", Industry: "Tech", Title: "CTO", RelationshipType: "mentor", Tags: []string{"x", "y"}},
	} {
		_, err := svc.CreateContact(ctx, &r)
		require.NoError(t, err)
	}

	tree, err := svc.Tree(ctx, filter.ContactFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"industry-Tech", "industry-Finance"}, tree.TopLevelKeys())
	assert.Len(t, tree.Flatten(), 3)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, filter.ContactFilter{Tag: "y"}, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "x; y")
}
