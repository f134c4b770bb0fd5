package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/events"
	"github.com/justsurfingit/career-tracker/internal/models"
	"github.com/justsurfingit/career-tracker/internal/validation"
	"go.uber.org/zap"
)

// DefaultMatchWeights is used when a job-match request carries no weights.
var DefaultMatchWeights = map[string]float64{
	"skills":     0.4,
	"experience": 0.3,
	"education":  0.1,
	"location":   0.1,
	"salary":     0.1,
}

// Kinds lists the analysis kinds in dashboard order.
var Kinds = []string{models.KindJobMatch, models.KindSkillsGap, models.KindInterviewInsights}

func validKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

type AnalysisService struct {
	Jobs         JobStore
	Analyses     AnalysisStore
	LLM          Generator
	Events       events.Publisher
	Log          *zap.Logger
	MaxAge       time.Duration
	HistoryLimit int

	now func() time.Time
}

func NewAnalysisService(jobs JobStore, analyses AnalysisStore, llm Generator, pub events.Publisher, log *zap.Logger, maxAge time.Duration, historyLimit int) *AnalysisService {
	return &AnalysisService{
		Jobs: jobs, Analyses: analyses, LLM: llm, Events: pub, Log: log,
		MaxAge: maxAge, HistoryLimit: historyLimit, now: time.Now,
	}
}

func (s *AnalysisService) JobMatch(ctx context.Context, req *dtos.AnalysisRequest) (*dtos.AnalysisResponse, error) {
	return s.Run(ctx, models.KindJobMatch, req)
}

func (s *AnalysisService) SkillsGap(ctx context.Context, req *dtos.AnalysisRequest) (*dtos.AnalysisResponse, error) {
	return s.Run(ctx, models.KindSkillsGap, req)
}

func (s *AnalysisService) InterviewInsights(ctx context.Context, req *dtos.AnalysisRequest) (*dtos.AnalysisResponse, error) {
	return s.Run(ctx, models.KindInterviewInsights, req)
}

// Run returns the latest snapshot of kind for the job when it is younger
// than MaxAge and was computed with the same weights; otherwise it asks the
// model and stores a new version.
func (s *AnalysisService) Run(ctx context.Context, kind string, req *dtos.AnalysisRequest) (*dtos.AnalysisResponse, error) {
	if !validKind(kind) {
		return nil, apperrors.New(apperrors.ErrTypeInvalidInput, fmt.Sprintf("unknown analysis kind %q", kind), nil)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var weights map[string]float64
	if kind == models.KindJobMatch {
		w, err := NormalizeWeights(req.Weights)
		if err != nil {
			return nil, err
		}
		weights = w
	}

	job, err := s.Jobs.GetJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	if !req.ForceRefresh {
		latest, err := s.Analyses.LatestAnalysis(ctx, job.ID, kind)
		switch {
		case err == nil && s.reusable(latest, weights):
			return response(latest, true), nil
		case err != nil && !errors.Is(err, apperrors.ErrNotFound):
			return nil, err
		}
	}

	prompt, err := s.prompt(kind, job, weights)
	if err != nil {
		return nil, err
	}
	raw, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, apperrors.Unavailable(kind+" analysis failed", err)
	}
	doc := cleanJSON(raw)
	if err := validateOutput(kind, doc); err != nil {
		return nil, apperrors.Internal(kind+" analysis returned an unexpected shape", err)
	}

	a := &models.Analysis{JobID: job.ID, Kind: kind, Payload: doc, Score: extractScore(doc)}
	if weights != nil {
		b, _ := json.Marshal(weights)
		a.Weights = string(b)
	}
	if err := s.Analyses.CreateAnalysis(ctx, a); err != nil {
		return nil, err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}

	if err := s.Events.Publish(ctx, events.AnalysisCompleted, map[string]any{
		"jobId": job.ID, "kind": kind, "version": a.Version,
	}); err != nil {
		s.Log.Warn("publish analysis event failed", zap.String("kind", kind), zap.Error(err))
	}
	return response(a, false), nil
}

func (s *AnalysisService) reusable(a *models.Analysis, weights map[string]float64) bool {
	if s.MaxAge > 0 && s.now().Sub(a.CreatedAt) >= s.MaxAge {
		return false
	}
	if weights == nil {
		return true
	}
	var stored map[string]float64
	if err := json.Unmarshal([]byte(a.Weights), &stored); err != nil {
		return false
	}
	return sameWeights(stored, weights)
}

// History returns the latest snapshots of kind for a job, newest first.
func (s *AnalysisService) History(ctx context.Context, kind string, jobID uint) ([]dtos.AnalysisHistoryEntry, error) {
	if !validKind(kind) {
		return nil, apperrors.New(apperrors.ErrTypeInvalidInput, fmt.Sprintf("unknown analysis kind %q", kind), nil)
	}
	if _, err := s.Jobs.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	rows, err := s.Analyses.AnalysisHistory(ctx, jobID, kind, s.HistoryLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.AnalysisHistoryEntry, len(rows))
	for i, r := range rows {
		out[i] = dtos.AnalysisHistoryEntry{Version: r.Version, Score: r.Score, CreatedAt: r.CreatedAt}
	}
	return out, nil
}

// RefreshStale recomputes every analysis older than MaxAge on active jobs.
// Failures are logged per job and do not stop the sweep.
func (s *AnalysisService) RefreshStale(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.MaxAge)
	refreshed := 0
	for _, kind := range Kinds {
		ids, err := s.Analyses.StaleJobIDs(ctx, kind, cutoff)
		if err != nil {
			return refreshed, err
		}
		for _, id := range ids {
			req := &dtos.AnalysisRequest{JobID: id, ForceRefresh: true}
			if kind == models.KindJobMatch {
				req.Weights = s.lastWeights(ctx, id)
			}
			if _, err := s.Run(ctx, kind, req); err != nil {
				s.Log.Warn("stale analysis refresh failed", zap.String("kind", kind), zap.Uint("job_id", id), zap.Error(err))
				continue
			}
			refreshed++
		}
	}
	return refreshed, nil
}

func (s *AnalysisService) lastWeights(ctx context.Context, jobID uint) map[string]float64 {
	latest, err := s.Analyses.LatestAnalysis(ctx, jobID, models.KindJobMatch)
	if err != nil {
		return nil
	}
	var w map[string]float64
	if json.Unmarshal([]byte(latest.Weights), &w) != nil {
		return nil
	}
	return w
}

// NormalizeWeights fills in defaults and scales the weights to sum to 1.
// Unknown factors and negative weights are rejected.
func NormalizeWeights(in map[string]float64) (map[string]float64, error) {
	if len(in) == 0 {
		return maps.Clone(DefaultMatchWeights), nil
	}
	verr := apperrors.NewValidationError()
	var sum float64
	for k, v := range in {
		if _, ok := DefaultMatchWeights[k]; !ok {
			verr.Add("weights."+k, "is not a known factor")
			continue
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			verr.Add("weights."+k, "must be a non-negative number")
			continue
		}
		sum += v
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if sum == 0 {
		verr.Add("weights", "must not all be zero")
		return nil, verr
	}
	out := make(map[string]float64, len(DefaultMatchWeights))
	for k := range DefaultMatchWeights {
		out[k] = round4(in[k] / sum)
	}
	return out, nil
}

func sameWeights(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if math.Abs(v-b[k]) > 1e-4 {
			return false
		}
	}
	return true
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }

func extractScore(doc string) *float64 {
	var out struct {
		Score *float64 `json:"score"`
	}
	if json.Unmarshal([]byte(doc), &out) != nil {
		return nil
	}
	return out.Score
}

func response(a *models.Analysis, cached bool) *dtos.AnalysisResponse {
	at := a.CreatedAt
	resp := &dtos.AnalysisResponse{
		Success:      true,
		Data:         json.RawMessage(a.Payload),
		Cached:       cached,
		AnalysisDate: &at,
		Version:      a.Version,
	}
	if a.Weights != "" {
		var w map[string]float64
		if json.Unmarshal([]byte(a.Weights), &w) == nil {
			resp.WeightsUsed = w
		}
	}
	return resp
}

const jobMatchPrompt = `
You are a career coach scoring how well a candidate fits a job.
%s
Score each factor from 0 to 100, then combine them with these weights into an overall score:
%s
Answer with JSON only, no markdown:
{"score": 0-100, "summary": "two sentences", "breakdown": {"factor": 0-100}, "strengths": ["..."], "concerns": ["..."]}
`

const skillsGapPrompt = `
You are a career coach. Compare the candidate's likely skills with what this job needs.
%s
Answer with JSON only, no markdown:
{"score": 0-100, "matching_skills": ["..."], "missing_skills": [{"skill": "...", "importance": "high|medium|low", "resources": ["..."]}], "recommendations": ["..."]}
`

const interviewInsightsPrompt = `
You are an interview coach. Prepare the candidate for interviews for this job.
%s
Answer with JSON only, no markdown:
{"process": "what the interview loop usually looks like", "questions": [{"question": "...", "category": "technical|behavioral|company", "tips": "..."}], "tips": ["..."]}
`

func (s *AnalysisService) prompt(kind string, job *models.Job, weights map[string]float64) (string, error) {
	desc := describeJob(job)
	switch kind {
	case models.KindJobMatch:
		return fmt.Sprintf(jobMatchPrompt, desc, describeWeights(weights)), nil
	case models.KindSkillsGap:
		return fmt.Sprintf(skillsGapPrompt, desc), nil
	case models.KindInterviewInsights:
		return fmt.Sprintf(interviewInsightsPrompt, desc), nil
	}
	return "", fmt.Errorf("no prompt for %s", kind)
}

func describeJob(job *models.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job title: %s\nCompany: %s\n", job.Title, job.CompanyName())
	for _, f := range []struct{ label, value string }{
		{"Location", job.Location},
		{"Industry", job.Industry},
		{"Job type", job.JobType},
		{"Salary min", job.SalaryMin},
		{"Salary max", job.SalaryMax},
		{"Resume", job.ResumeLink},
		{"Candidate notes", job.Notes},
	} {
		if f.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
		}
	}
	fmt.Fprintf(&b, "Description:\n%s\n", clip(job.Description, maxPromptInput))
	return b.String()
}

func describeWeights(w map[string]float64) string {
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %.2f\n", k, w[k])
	}
	return b.String()
}
