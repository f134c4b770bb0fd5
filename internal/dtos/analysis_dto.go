package dtos

import (
	"encoding/json"
	"time"
)

type CompanyResearchRequest struct {
	CompanyName  string `json:"companyName" binding:"required"`
	ForceRefresh bool   `json:"forceRefresh"`
}

type FollowRequest struct {
	Following bool `json:"following"`
}

// AnalysisRequest drives job-match, skills-gap and interview-insight runs.
// Weights only apply to job match.
type AnalysisRequest struct {
	JobID        uint               `json:"jobId" binding:"required"`
	ForceRefresh bool               `json:"forceRefresh"`
	Weights      map[string]float64 `json:"weights"`
}

type AnalysisResponse struct {
	Success      bool               `json:"success"`
	Data         json.RawMessage    `json:"data"`
	Cached       bool               `json:"cached"`
	AnalysisDate *time.Time         `json:"analysisDate,omitempty"`
	WeightsUsed  map[string]float64 `json:"weightsUsed,omitempty"`
	Version      int                `json:"version,omitempty"`
}

type AnalysisHistoryEntry struct {
	Version   int       `json:"version"`
	Score     *float64  `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
