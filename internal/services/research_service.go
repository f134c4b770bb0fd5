package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"github.com/justsurfingit/career-tracker/internal/cache"
	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/events"
	"github.com/justsurfingit/career-tracker/internal/models"
	"github.com/justsurfingit/career-tracker/internal/validation"
	"go.uber.org/zap"
)

// Research is returned by the research endpoints; Cached reports whether
// the model was skipped.
type Research struct {
	Data   *models.CompanyResearch
	Cached bool
}

type ResearchService struct {
	Jobs     JobStore
	Research ResearchStore
	LLM      Generator
	Cache    cache.Cache
	Events   events.Publisher
	Log      *zap.Logger
	TTL      time.Duration

	now func() time.Time
}

func NewResearchService(jobs JobStore, research ResearchStore, llm Generator, c cache.Cache, pub events.Publisher, log *zap.Logger, ttl time.Duration) *ResearchService {
	return &ResearchService{
		Jobs: jobs, Research: research, LLM: llm, Cache: c, Events: pub, Log: log, TTL: ttl,
		now: time.Now,
	}
}

func profileKey(companyID uint) string { return fmt.Sprintf("research:profile:%d", companyID) }
func newsKey(companyID uint) string    { return fmt.Sprintf("research:news:%d", companyID) }

const companyProfilePrompt = `
You are a company research assistant helping a job seeker prepare for applications.
Research the company "%s" and answer with JSON only, no markdown:
{
  "name": "official company name",
  "size": "employee count range, or null",
  "industry": "primary industry, or null",
  "description": "two or three sentence overview",
  "mission": "mission statement, or null",
  "leadership": [{"name": "person", "title": "role"}],
  "products": ["main products or services"],
  "website": "https://..., or null",
  "linkedin_url": "https://..., or null",
  "twitter": "handle or URL, or null"
}
Use null for anything you are not confident about. Do not invent people.
`

type companyProfile struct {
	Name        string          `json:"name"`
	Size        string          `json:"size"`
	Industry    string          `json:"industry"`
	Description string          `json:"description"`
	Mission     string          `json:"mission"`
	Leadership  []models.Leader `json:"leadership"`
	Products    []string        `json:"products"`
	Website     string          `json:"website"`
	LinkedInURL string          `json:"linkedin_url"`
	Twitter     string          `json:"twitter"`
}

// CompanyProfile returns the research snapshot for a company, computing it
// with the model when there is no fresh one or forceRefresh is set.
func (s *ResearchService) CompanyProfile(ctx context.Context, req *dtos.CompanyResearchRequest) (*Research, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	company, err := s.Jobs.FindOrCreateCompany(ctx, strings.TrimSpace(req.CompanyName))
	if err != nil {
		return nil, err
	}

	existing, err := s.stored(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	if !req.ForceRefresh {
		var hit models.CompanyResearch
		if err := s.Cache.Get(ctx, profileKey(company.ID), &hit); err == nil {
			return &Research{Data: &hit, Cached: true}, nil
		}
		if existing != nil && s.fresh(existing.ResearchedAt) {
			s.remember(ctx, profileKey(company.ID), existing)
			return &Research{Data: existing, Cached: true}, nil
		}
	}

	raw, err := s.LLM.Generate(ctx, fmt.Sprintf(companyProfilePrompt, company.Name))
	if err != nil {
		return nil, apperrors.Unavailable("company research failed", err)
	}
	doc := cleanJSON(raw)
	if err := validateOutput(schemaCompanyProfile, doc); err != nil {
		return nil, apperrors.Internal("company research returned an unexpected shape", err)
	}
	var p companyProfile
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, apperrors.Internal("decode company research", err)
	}

	res := &models.CompanyResearch{CompanyID: company.ID}
	if existing != nil {
		res = existing
	}
	res.Name = firstNonEmpty(p.Name, company.Name)
	res.Size, res.Industry = p.Size, p.Industry
	res.Description, res.Mission = p.Description, p.Mission
	res.Leadership, res.Products = p.Leadership, p.Products
	res.Website, res.LinkedInURL, res.Twitter = p.Website, p.LinkedInURL, p.Twitter
	res.ResearchedAt = s.now().UTC()

	if err := s.Research.SaveResearch(ctx, res); err != nil {
		return nil, err
	}
	s.remember(ctx, profileKey(company.ID), res)
	s.publish(ctx, events.ResearchCompleted, company)
	return &Research{Data: res, Cached: false}, nil
}

const companyNewsPrompt = `
List up to five recent, notable news items about the company "%s" that a job candidate would want to know.
Answer with JSON only, no markdown:
{"news": [{"title": "...", "url": "https://... or null", "summary": "one sentence", "published_at": "YYYY-MM-DD or null"}]}
Return {"news": []} if you know of nothing reliable.
`

// CompanyNews refreshes the news list on the company's research snapshot.
func (s *ResearchService) CompanyNews(ctx context.Context, req *dtos.CompanyResearchRequest) (*Research, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	company, err := s.Jobs.FindOrCreateCompany(ctx, strings.TrimSpace(req.CompanyName))
	if err != nil {
		return nil, err
	}
	existing, err := s.stored(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	if !req.ForceRefresh {
		var hit models.CompanyResearch
		if err := s.Cache.Get(ctx, newsKey(company.ID), &hit); err == nil {
			return &Research{Data: &hit, Cached: true}, nil
		}
		if existing != nil && existing.NewsAt != nil && s.fresh(*existing.NewsAt) {
			s.remember(ctx, newsKey(company.ID), existing)
			return &Research{Data: existing, Cached: true}, nil
		}
	}

	raw, err := s.LLM.Generate(ctx, fmt.Sprintf(companyNewsPrompt, company.Name))
	if err != nil {
		return nil, apperrors.Unavailable("company news failed", err)
	}
	doc := cleanJSON(raw)
	if err := validateOutput(schemaCompanyNews, doc); err != nil {
		return nil, apperrors.Internal("company news returned an unexpected shape", err)
	}
	var out struct {
		News []models.NewsItem `json:"news"`
	}
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return nil, apperrors.Internal("decode company news", err)
	}

	res := existing
	if res == nil {
		res = &models.CompanyResearch{CompanyID: company.ID, Name: company.Name}
	}
	at := s.now().UTC()
	res.News, res.NewsAt = out.News, &at
	if err := s.Research.SaveResearch(ctx, res); err != nil {
		return nil, err
	}
	s.remember(ctx, newsKey(company.ID), res)
	s.publish(ctx, events.NewsCompleted, company)
	return &Research{Data: res, Cached: false}, nil
}

// Follow sets the follow flag on a research snapshot and drops cached copies.
func (s *ResearchService) Follow(ctx context.Context, researchID uint, following bool) (*models.CompanyResearch, error) {
	res, err := s.Research.SetFollowing(ctx, researchID, following)
	if err != nil {
		return nil, err
	}
	res.Following = following
	for _, key := range []string{profileKey(res.CompanyID), newsKey(res.CompanyID)} {
		if err := s.Cache.Delete(ctx, key); err != nil {
			s.Log.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
		}
	}
	return res, nil
}

func (s *ResearchService) stored(ctx context.Context, companyID uint) (*models.CompanyResearch, error) {
	res, err := s.Research.GetResearch(ctx, companyID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return res, err
}

func (s *ResearchService) fresh(at time.Time) bool {
	return !at.IsZero() && s.now().Sub(at) < s.TTL
}

func (s *ResearchService) remember(ctx context.Context, key string, res *models.CompanyResearch) {
	if err := s.Cache.Set(ctx, key, res, s.TTL); err != nil {
		s.Log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *ResearchService) publish(ctx context.Context, eventType string, company *models.Company) {
	err := s.Events.Publish(ctx, eventType, map[string]any{"companyId": company.ID, "companyName": company.Name})
	if err != nil {
		s.Log.Warn("publish research event failed", zap.String("type", eventType), zap.Error(err))
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
