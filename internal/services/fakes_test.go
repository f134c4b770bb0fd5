package services

import (
	"context"
	"sync"

	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
)

var nopLog = zap.NewNop()

// scriptedLLM returns its responses in order and records the prompts.
type scriptedLLM struct {
	responses []string
	err       error
	prompts   []string
}

func (g *scriptedLLM) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	if len(g.responses) == 0 {
		return "", apperrors.Internal("no scripted response", nil)
	}
	r := g.responses[0]
	g.responses = g.responses[1:]
	return r, nil
}

type recordedEvent struct {
	Type    string
	Payload map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, t string, payload map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: t, Payload: payload})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fakeMailbox struct {
	recent      []*gmail.Message
	since       []*gmail.Message
	historyID   uint64
	sinceErr    error
	recentCalls int
	sinceCalls  int
	lastStartID uint64
}

func (f *fakeMailbox) Recent(context.Context) ([]*gmail.Message, uint64, error) {
	f.recentCalls++
	return f.recent, f.historyID, nil
}

func (f *fakeMailbox) Since(_ context.Context, startID uint64) ([]*gmail.Message, uint64, error) {
	f.sinceCalls++
	f.lastStartID = startID
	if f.sinceErr != nil {
		return nil, 0, f.sinceErr
	}
	return f.since, f.historyID, nil
}

type fakeClassifier struct {
	role   int
	status string
}

func (f *fakeClassifier) IdentifyJobRole(context.Context, []string, string, string) int {
	return f.role
}

func (f *fakeClassifier) AnalyzeEmailStatus(context.Context, string, string, string) (string, error) {
	return f.status, nil
}
