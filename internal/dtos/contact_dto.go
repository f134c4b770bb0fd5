package dtos

import "time"

type ContactRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone" binding:"omitempty,phone"`
	Company     string `json:"company"`
	Title       string `json:"title"`
	LinkedInURL string `json:"linkedin_url" binding:"omitempty,url"`

	RelationshipType     string `json:"relationship_type"`
	RelationshipStrength int    `json:"relationship_strength" binding:"min=0,max=100"`
	Industry             string `json:"industry"`
	Category             string `json:"category"`
	Notes                string `json:"notes"`

	Tags              []string `json:"tags"`
	MutualConnections []string `json:"mutual_connections"`
	LinkedJobIDs      []uint   `json:"linked_job_ids"`
}

// ContactUpdateRequest is a partial update; slices replace the stored list
// when present.
type ContactUpdateRequest struct {
	FirstName   *string `json:"first_name" binding:"omitempty,min=1"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone" binding:"omitempty,phone"`
	Company     *string `json:"company"`
	Title       *string `json:"title"`
	LinkedInURL *string `json:"linkedin_url" binding:"omitempty,url"`

	RelationshipType     *string `json:"relationship_type"`
	RelationshipStrength *int    `json:"relationship_strength" binding:"omitempty,min=0,max=100"`
	Industry             *string `json:"industry"`
	Category             *string `json:"category"`
	Notes                *string `json:"notes"`

	Tags              *[]string `json:"tags"`
	MutualConnections *[]string `json:"mutual_connections"`
	LinkedJobIDs      *[]uint   `json:"linked_job_ids"`
}

type InteractionRequest struct {
	Type               string     `json:"type" binding:"required"`
	Date               *time.Time `json:"date"`
	Notes              string     `json:"notes"`
	Outcome            string     `json:"outcome"`
	RelationshipChange int        `json:"relationship_change" binding:"min=-10,max=10"`
}

type ImportError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResult struct {
	Imported   int           `json:"imported"`
	Errors     int           `json:"errors"`
	ErrorsList []ImportError `json:"errorsList"`
}
