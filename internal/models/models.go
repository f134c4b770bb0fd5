package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Job statuses. History rows record every transition between them.
const (
	StatusSaved     = "SAVED"
	StatusApplied   = "APPLIED"
	StatusInterview = "INTERVIEW"
	StatusOffer     = "OFFER"
	StatusRejected  = "REJECTED"
	StatusWithdrawn = "WITHDRAWN"
)

// JobEvent types.
const (
	EventCreated      = "CREATED"
	EventStatusChange = "STATUS_CHANGE"
	EventEmailUpdate  = "EMAIL_UPDATE"
	EventNote         = "NOTE"
)

// Analysis kinds. Each is versioned per job.
const (
	KindJobMatch          = "job_match"
	KindSkillsGap         = "skills_gap"
	KindInterviewInsights = "interview_insights"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	LastHistoryID uint64 `json:"last_history_id"`
}

type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"uniqueIndex;not null" json:"company_name"`

	// 'omitempty' prevents infinite loops when fetching a Job -> Company -> Jobs -> ...
	Jobs     []Job            `json:"jobs,omitempty"`
	Research *CompanyResearch `json:"research,omitempty"`
}

type Job struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyID uint    `json:"company_id"`
	Company   Company `json:"company"`

	Title       string     `gorm:"not null" json:"title"`
	Location    string     `json:"location"`
	SalaryMin   string     `json:"salary_min"`
	SalaryMax   string     `json:"salary_max"`
	JobLink     string     `json:"job_link"`
	Deadline    *time.Time `json:"deadline"`
	Description string     `gorm:"type:text" json:"description"`
	Industry    string     `gorm:"index" json:"industry"`
	JobType     string     `json:"job_type"`
	Status      string     `gorm:"default:'APPLIED'" json:"status"`
	Notes       string     `gorm:"type:text" json:"notes"`
	ResumeLink  string     `json:"resume_link"`

	History  []JobEvent `json:"history,omitempty"`
	Contacts []Contact  `gorm:"-" json:"contacts,omitempty"`
}

// CompanyName is the name of the attached company, empty when not preloaded.
func (j Job) CompanyName() string {
	return j.Company.Name
}

type JobEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JobID     uint      `gorm:"index" json:"job_id"`
	Status    string    `json:"status"`
	EventType string    `json:"event_type"`
	Details   string    `gorm:"type:text" json:"details"`
}

type Contact struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FirstName   string `gorm:"not null" json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `gorm:"index" json:"email"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	Title       string `json:"title"`
	LinkedInURL string `json:"linkedin_url"`

	RelationshipType     string `json:"relationship_type"`
	RelationshipStrength int    `json:"relationship_strength"`
	Industry             string `json:"industry"`
	Category             string `json:"category"`
	Notes                string `gorm:"type:text" json:"notes"`

	Tags              []string `gorm:"type:jsonb;serializer:json" json:"tags"`
	MutualConnections []string `gorm:"type:jsonb;serializer:json" json:"mutual_connections"`
	LinkedJobIDs      []uint   `gorm:"type:jsonb;serializer:json" json:"linked_job_ids"`

	Interactions []Interaction `json:"interactions,omitempty"`
}

// FullName joins first and last name.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type Interaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ContactID          uint      `gorm:"index" json:"contact_id"`
	Type               string    `json:"type"`
	Date               time.Time `json:"date"`
	Notes              string    `gorm:"type:text" json:"notes"`
	Outcome            string    `json:"outcome"`
	RelationshipChange int       `json:"relationship_change"`
}

type Leader struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

type NewsItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Summary     string `json:"summary"`
	PublishedAt string `json:"published_at"`
}

type CompanyResearch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CompanyID   uint       `gorm:"uniqueIndex" json:"company_id"`
	Name        string     `json:"name"`
	Size        string     `json:"size"`
	Industry    string     `json:"industry"`
	Description string     `gorm:"type:text" json:"description"`
	Mission     string     `gorm:"type:text" json:"mission"`
	Leadership  []Leader   `gorm:"type:jsonb;serializer:json" json:"leadership"`
	Products    []string   `gorm:"type:jsonb;serializer:json" json:"products"`
	Website     string     `json:"website"`
	LinkedInURL string     `json:"linkedin_url"`
	Twitter     string     `json:"twitter"`
	Following   bool       `json:"following"`
	News        []NewsItem `gorm:"type:jsonb;serializer:json" json:"news"`

	ResearchedAt time.Time  `json:"researched_at"`
	NewsAt       *time.Time `json:"news_at"`
}

type Analysis struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	JobID   uint     `gorm:"index:idx_analysis_job_kind;uniqueIndex:idx_analysis_version,priority:1" json:"job_id"`
	Kind    string   `gorm:"index:idx_analysis_job_kind;uniqueIndex:idx_analysis_version,priority:2" json:"kind"`
	Version int      `gorm:"uniqueIndex:idx_analysis_version,priority:3" json:"version"`
	Score   *float64 `json:"score"`
	Payload string   `gorm:"type:text" json:"payload"`
	Weights string   `gorm:"type:text" json:"weights,omitempty"`
}

func (Analysis) TableName() string { return "analyses" }

type ProcessedEmail struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&User{}, &Company{}, &Job{}, &JobEvent{}, &Contact{}, &Interaction{},
		&CompanyResearch{}, &Analysis{}, &ProcessedEmail{},
	}
}
