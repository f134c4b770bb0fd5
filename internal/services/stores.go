package services

import (
	"context"
	"time"

	"github.com/justsurfingit/career-tracker/internal/models"
)

// JobStore is the persistence the job features need. repository.JobRepo
// implements it.
type JobStore interface {
	FindOrCreateCompany(ctx context.Context, name string) (*models.Company, error)
	FindCompanyByName(ctx context.Context, name string) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uint) (*models.Job, error)
	ListJobs(ctx context.Context) ([]models.Job, error)
	ActiveJobsForCompany(ctx context.Context, companyID uint) ([]models.Job, error)
	SaveJob(ctx context.Context, job *models.Job) error
	DeleteJob(ctx context.Context, id uint) error
	AppendEvent(ctx context.Context, event *models.JobEvent) error
	ListEvents(ctx context.Context, jobID uint) ([]models.JobEvent, error)
}

type ContactStore interface {
	CreateContact(ctx context.Context, c *models.Contact) error
	GetContact(ctx context.Context, id uint) (*models.Contact, error)
	ListContacts(ctx context.Context) ([]models.Contact, error)
	ContactsForJob(ctx context.Context, jobID uint) ([]models.Contact, error)
	SaveContact(ctx context.Context, c *models.Contact) error
	DeleteContact(ctx context.Context, id uint) error
	// AddInteraction applies in.RelationshipChange to the stored strength,
	// clamped to 0..100, atomically with inserting in.
	AddInteraction(ctx context.Context, in *models.Interaction) error
	ListInteractions(ctx context.Context, contactID uint) ([]models.Interaction, error)
}

type ResearchStore interface {
	GetResearch(ctx context.Context, companyID uint) (*models.CompanyResearch, error)
	SaveResearch(ctx context.Context, res *models.CompanyResearch) error
	SetFollowing(ctx context.Context, id uint, following bool) (*models.CompanyResearch, error)
}

type AnalysisStore interface {
	LatestAnalysis(ctx context.Context, jobID uint, kind string) (*models.Analysis, error)
	AnalysisHistory(ctx context.Context, jobID uint, kind string, limit int) ([]models.Analysis, error)
	CreateAnalysis(ctx context.Context, a *models.Analysis) error
	StaleJobIDs(ctx context.Context, kind string, cutoff time.Time) ([]uint, error)
}

type EmailStateStore interface {
	DefaultUser(ctx context.Context) (*models.User, error)
	UpdateHistoryID(ctx context.Context, userID uint, historyID uint64) error
	IsProcessed(ctx context.Context, messageID string) (bool, error)
	MarkProcessed(ctx context.Context, messageID string) error
}
