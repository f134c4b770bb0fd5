package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const maxPromptInput = 20000

// clip cuts s to at most n bytes without splitting a UTF-8 sequence.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Generator produces a completion for a single prompt. LLMService is the
// production implementation; tests use canned responses.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type LLMService struct {
	// Client is shared so we don't recreate it for every prompt
	Client llms.Model
}

// NewLLMService initializes the Gemini client.
func NewLLMService(ctx context.Context, apiKey, model string) (*LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &LLMService{Client: llm}, nil
}

func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		return "", err
	}
	return resp, nil
}

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "company_name": "Name of the company (e.g., Google, StartupInc)",
    "role_title": "Job title (e.g., Senior Backend Engineer)",
    "location": "Job location or 'Remote'",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags.",
    "tech_stack": ["Array", "of", "technologies", "mentioned", "e.g., Go, React, AWS"],
    "salary_min": "Lower salary bound if explicitly mentioned, otherwise null",
    "salary_max": "Upper salary bound if explicitly mentioned, otherwise null",
    "industry": "Industry of the company, otherwise null",
    "job_type": "full-time, part-time, contract or internship, otherwise null"
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

// ExtractJobDetails takes raw HTML and returns the extracted JSON object.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML string) (string, error) {
	rawHTML = clip(rawHTML, maxPromptInput)
	resp, err := s.Generate(ctx, fmt.Sprintf(jobExtractionPrompt, rawHTML))
	if err != nil {
		return "", err
	}
	out := cleanJSON(resp)
	if !json.Valid([]byte(out)) {
		return "", fmt.Errorf("extraction returned invalid JSON")
	}
	return out, nil
}

const identifyRolePrompt = `
An email from a company recruiter refers to exactly one of these job applications:
%s

Email subject: %s
Email body:
%s

Reply with only the number of the matching application, or -1 if you cannot tell.
`

// IdentifyJobRole asks which of the candidate titles an email is about.
// It returns -1 when the model can't decide.
func (s *LLMService) IdentifyJobRole(ctx context.Context, titles []string, subject, body string) int {
	var list strings.Builder
	for i, t := range titles {
		fmt.Fprintf(&list, "%d. %s\n", i, t)
	}
	body = clip(body, maxPromptInput)
	resp, err := s.Generate(ctx, fmt.Sprintf(identifyRolePrompt, list.String(), subject, body))
	if err != nil {
		return -1
	}
	return parseRoleIndex(resp, len(titles))
}

const emailStatusPrompt = `
You track job applications. Read this email from %s and decide the new application status.

Subject: %s
Body:
%s

Reply with JSON only: {"status": "APPLIED|INTERVIEW|OFFER|REJECTED|NO_CHANGE|UNKNOWN", "summary": "one sentence"}
`

func (s *LLMService) AnalyzeEmailStatus(ctx context.Context, company, subject, body string) (string, error) {
	body = clip(body, maxPromptInput)
	resp, err := s.Generate(ctx, fmt.Sprintf(emailStatusPrompt, company, subject, body))
	if err != nil {
		return "", err
	}
	return cleanJSON(resp), nil
}

// cleanJSON strips markdown fences and prose around the first JSON value.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

func parseRoleIndex(resp string, n int) int {
	var idx int
	if _, err := fmt.Sscanf(strings.TrimSpace(resp), "%d", &idx); err != nil {
		return -1
	}
	if idx < 0 || idx >= n {
		return -1
	}
	return idx
}
