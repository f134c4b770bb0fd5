// Package handlertest runs the full REST router on in-memory stores and a
// scripted model, for tests of code that talks to the API over HTTP.
package handlertest

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/career-tracker/internal/cache"
	"github.com/justsurfingit/career-tracker/internal/events"
	"github.com/justsurfingit/career-tracker/internal/handlers"
	"github.com/justsurfingit/career-tracker/internal/repository/memrepo"
	"github.com/justsurfingit/career-tracker/internal/services"
	"go.uber.org/zap"
)

// ErrModelDown is returned by the scripted model for failed prompts.
var ErrModelDown = errors.New("model unavailable")

// Model answers by prompt keyword. Prompts containing any Fail substring
// return ErrModelDown.
type Model struct {
	mu    sync.Mutex
	calls map[string]int
	Fail  []string
}

func (m *Model) Generate(_ context.Context, prompt string) (string, error) {
	kind, answer := classify(prompt)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[kind]++
	for _, f := range m.Fail {
		if f == kind {
			return "", ErrModelDown
		}
	}
	return answer, nil
}

func (m *Model) ExtractJobDetails(context.Context, string) (string, error) {
	return `{"company_name": "Acme", "role_title": "Dev"}`, nil
}

// Calls reports how often prompts of a kind (see classify) reached the model.
func (m *Model) Calls(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[kind]
}

// SetFail replaces the set of failing prompt kinds.
func (m *Model) SetFail(kinds ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fail = kinds
}

func classify(prompt string) (string, string) {
	switch {
	case strings.Contains(prompt, "news items"):
		return "company_news", `{"news": [{"title": "Acme raises", "url": "https://acme.test/news"}]}`
	case strings.Contains(prompt, "company research assistant"):
		return "company_profile", `{"name": "Acme", "description": "Makes anvils.", "industry": "Tools"}`
	case strings.Contains(prompt, "scoring how well"):
		return "job_match", `{"score": 70, "summary": "ok", "breakdown": {"skills": 70}}`
	case strings.Contains(prompt, "Compare the candidate"):
		return "skills_gap", `{"matching_skills": ["go"], "missing_skills": [{"skill": "rust", "importance": "high"}]}`
	}
	return "interview_insights", `{"questions": [{"question": "Why Acme?"}]}`
}

type Server struct {
	*httptest.Server
	Jobs     *memrepo.Jobs
	Contacts *memrepo.Contacts
	Model    *Model
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	s := &Server{Jobs: memrepo.NewJobs(), Contacts: memrepo.NewContacts(), Model: &Model{}}
	pub := events.Nop{}

	router := gin.New()
	handlers.Routes(router, handlers.Handlers{
		Jobs:     handlers.NewJobHandler(s.Model, services.NewJobService(s.Jobs, s.Contacts, pub, log), log),
		Contacts: handlers.NewContactHandler(services.NewContactService(s.Contacts, s.Jobs, pub, log), log),
		Research: handlers.NewResearchHandler(services.NewResearchService(s.Jobs, memrepo.NewResearch(), s.Model, cache.Nop{}, pub, log, time.Hour), log),
		Analysis: handlers.NewAnalysisHandler(services.NewAnalysisService(s.Jobs, memrepo.NewAnalyses(), s.Model, pub, log, time.Hour, 5), log),
	})
	s.Server = httptest.NewServer(router)
	t.Cleanup(s.Close)
	return s
}
