package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/justsurfingit/career-tracker/internal/client"
	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type PanelKind string

const (
	PanelCompanyProfile    PanelKind = "company_profile"
	PanelCompanyNews       PanelKind = "company_news"
	PanelJobMatch          PanelKind = models.KindJobMatch
	PanelSkillsGap         PanelKind = models.KindSkillsGap
	PanelInterviewInsights PanelKind = models.KindInterviewInsights
)

// PanelKinds lists the dashboard tabs in display order.
var PanelKinds = []PanelKind{
	PanelCompanyProfile, PanelCompanyNews, PanelJobMatch, PanelSkillsGap, PanelInterviewInsights,
}

type InsightsAPI interface {
	CompanyResearch(ctx context.Context, req *dtos.CompanyResearchRequest) (*client.ResearchResult, error)
	CompanyNews(ctx context.Context, req *dtos.CompanyResearchRequest) (*client.ResearchResult, error)
	Analyze(ctx context.Context, kind string, req *dtos.AnalysisRequest) (*dtos.AnalysisResponse, error)
}

// PanelState is a copy of one panel's status.
type PanelState struct {
	Kind    PanelKind
	Loading bool
	Loaded  bool
	Cached  bool
	Err     error
	Data    json.RawMessage
}

type fetchFunc func(ctx context.Context, force bool) (data json.RawMessage, cached bool, err error)

// Panel is one independently loaded section of the dashboard. Its error
// never affects the other panels.
//
// Only the most recently started fetch may write the state: a slow lazy
// load that lands after a refresh is discarded.
type Panel struct {
	kind  PanelKind
	fetch fetchFunc

	mu    sync.Mutex
	state PanelState
	gen   uint64
}

// Load fetches the panel unless it already loaded or is loading. A panel
// whose last load failed is fetched again.
func (p *Panel) Load(ctx context.Context) error {
	p.mu.Lock()
	if p.state.Loaded || p.state.Loading {
		p.mu.Unlock()
		return nil
	}
	gen := p.begin()
	p.mu.Unlock()
	return p.run(ctx, false, gen)
}

// Refresh asks the backend to regenerate the panel's data.
func (p *Panel) Refresh(ctx context.Context) error {
	p.mu.Lock()
	gen := p.begin()
	p.mu.Unlock()
	return p.run(ctx, true, gen)
}

// begin marks the panel loading and returns the new generation; callers
// hold p.mu.
func (p *Panel) begin() uint64 {
	p.gen++
	p.state.Loading = true
	p.state.Err = nil
	return p.gen
}

func (p *Panel) run(ctx context.Context, force bool, gen uint64) error {
	data, cached, err := p.fetch(ctx, force)
	if err != nil {
		err = fmt.Errorf("%s: %w", p.kind, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return err
	}
	p.state.Loading = false
	if err != nil {
		p.state.Err = err
		return err
	}
	p.state.Loaded, p.state.Cached, p.state.Data = true, cached, data
	return nil
}

func (p *Panel) State() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Dashboard is the analysis view of one job.
type Dashboard struct {
	Job models.Job
	Log *zap.Logger

	mu     sync.Mutex
	panels map[PanelKind]*Panel
	active PanelKind
	// weights is the job-match weighting of the next run; nil means server defaults.
	weights map[string]float64
}

func NewDashboard(api InsightsAPI, job models.Job, log *zap.Logger) *Dashboard {
	d := &Dashboard{Job: job, Log: log, panels: map[PanelKind]*Panel{}}
	company := job.CompanyName()

	research := func(call func(context.Context, *dtos.CompanyResearchRequest) (*client.ResearchResult, error)) fetchFunc {
		return func(ctx context.Context, force bool) (json.RawMessage, bool, error) {
			res, err := call(ctx, &dtos.CompanyResearchRequest{CompanyName: company, ForceRefresh: force})
			if err != nil {
				return nil, false, err
			}
			data, err := json.Marshal(res.Data)
			return data, res.Cached, err
		}
	}
	analysis := func(kind PanelKind) fetchFunc {
		return func(ctx context.Context, force bool) (json.RawMessage, bool, error) {
			req := &dtos.AnalysisRequest{JobID: job.ID, ForceRefresh: force}
			if kind == PanelJobMatch {
				req.Weights = d.Weights()
			}
			res, err := api.Analyze(ctx, string(kind), req)
			if err != nil {
				return nil, false, err
			}
			return res.Data, res.Cached, nil
		}
	}

	d.add(PanelCompanyProfile, research(api.CompanyResearch))
	d.add(PanelCompanyNews, research(api.CompanyNews))
	for _, k := range []PanelKind{PanelJobMatch, PanelSkillsGap, PanelInterviewInsights} {
		d.add(k, analysis(k))
	}
	return d
}

func (d *Dashboard) add(kind PanelKind, fetch fetchFunc) {
	d.panels[kind] = &Panel{kind: kind, fetch: fetch, state: PanelState{Kind: kind}}
}

func (d *Dashboard) Panel(kind PanelKind) (*Panel, bool) {
	p, ok := d.panels[kind]
	return p, ok
}

// Select makes kind the active tab and loads it the first time.
func (d *Dashboard) Select(ctx context.Context, kind PanelKind) error {
	p, ok := d.Panel(kind)
	if !ok {
		return fmt.Errorf("unknown panel %q", kind)
	}
	d.mu.Lock()
	d.active = kind
	d.mu.Unlock()
	return p.Load(ctx)
}

func (d *Dashboard) Active() PanelKind {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// SetWeights changes the job-match weighting; the next job-match refresh
// uses it.
func (d *Dashboard) SetWeights(w map[string]float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.weights = w
}

func (d *Dashboard) Weights() map[string]float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.weights
}

// LoadAll loads every panel concurrently. Failed panels keep their own error;
// the first one is returned.
func (d *Dashboard) LoadAll(ctx context.Context) error {
	var g errgroup.Group
	for _, kind := range PanelKinds {
		p := d.panels[kind]
		g.Go(func() error {
			err := p.Load(ctx)
			if err != nil {
				d.Log.Warn("dashboard panel failed", zap.String("panel", string(kind)), zap.Uint("job_id", d.Job.ID), zap.Error(err))
			}
			return err
		})
	}
	return g.Wait()
}

// States returns every panel's state in display order.
func (d *Dashboard) States() []PanelState {
	out := make([]PanelState, 0, len(PanelKinds))
	for _, kind := range PanelKinds {
		out = append(out, d.panels[kind].State())
	}
	return out
}
