package dtos

import "time"

type JobExtractionRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url"`
}

type JobCreationRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Title       string `json:"role_title" binding:"required"`
	JobLink     string `json:"job_link" binding:"omitempty,url"`
	Description string `json:"description"`

	// Optional Fields
	Location   string     `json:"location"`
	SalaryMin  string     `json:"salary_min"`
	SalaryMax  string     `json:"salary_max"`
	Deadline   *time.Time `json:"deadline"`
	Industry   string     `json:"industry"`
	JobType    string     `json:"job_type"`
	Notes      string     `json:"notes"`
	TechStack  []string   `json:"tech_stack"`
	ResumeLink string     `json:"resume_link" binding:"omitempty,url"`
	Status     string     `json:"status"` // Defaults to "APPLIED" if empty
}

// JobUpdateRequest is a partial update; nil fields are left untouched.
type JobUpdateRequest struct {
	CompanyName *string    `json:"company_name" binding:"omitempty,min=1"`
	Title       *string    `json:"role_title" binding:"omitempty,min=1"`
	JobLink     *string    `json:"job_link" binding:"omitempty,url"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	SalaryMin   *string    `json:"salary_min"`
	SalaryMax   *string    `json:"salary_max"`
	Deadline    *time.Time `json:"deadline"`
	Industry    *string    `json:"industry"`
	JobType     *string    `json:"job_type"`
	Notes       *string    `json:"notes"`
	ResumeLink  *string    `json:"resume_link" binding:"omitempty,url"`
	Status      *string    `json:"status"`
}

// JobEventRequest appends one application-history row.
type JobEventRequest struct {
	Status    string `json:"status" binding:"required"`
	EventType string `json:"event_type"`
	Details   string `json:"details"`
}

// Pagination mirrors the list envelope every collection endpoint returns.
type Pagination struct {
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
}

type ListResponse[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}
