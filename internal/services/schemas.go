package services

import (
	"fmt"
	"strings"

	"github.com/justsurfingit/career-tracker/internal/models"
	"github.com/xeipuuv/gojsonschema"
)

// Model output is checked against these before anything is stored or cached.
const (
	schemaCompanyProfile = "company_profile"
	schemaCompanyNews    = "company_news"
)

var schemaSources = map[string]string{
	schemaCompanyProfile: `{
		"type": "object",
		"required": ["name", "description"],
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"size": {"type": ["string", "null"]},
			"industry": {"type": ["string", "null"]},
			"description": {"type": "string"},
			"mission": {"type": ["string", "null"]},
			"leadership": {
				"type": ["array", "null"],
				"items": {
					"type": "object",
					"required": ["name"],
					"properties": {"name": {"type": "string"}, "title": {"type": ["string", "null"]}}
				}
			},
			"products": {"type": ["array", "null"], "items": {"type": "string"}},
			"website": {"type": ["string", "null"]},
			"linkedin_url": {"type": ["string", "null"]},
			"twitter": {"type": ["string", "null"]}
		}
	}`,
	schemaCompanyNews: `{
		"type": "object",
		"required": ["news"],
		"properties": {
			"news": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["title"],
					"properties": {
						"title": {"type": "string", "minLength": 1},
						"url": {"type": ["string", "null"]},
						"summary": {"type": ["string", "null"]},
						"published_at": {"type": ["string", "null"]}
					}
				}
			}
		}
	}`,
	models.KindJobMatch: `{
		"type": "object",
		"required": ["score", "summary", "breakdown"],
		"properties": {
			"score": {"type": "number", "minimum": 0, "maximum": 100},
			"summary": {"type": "string"},
			"breakdown": {
				"type": "object",
				"additionalProperties": {"type": "number", "minimum": 0, "maximum": 100}
			},
			"strengths": {"type": "array", "items": {"type": "string"}},
			"concerns": {"type": "array", "items": {"type": "string"}}
		}
	}`,
	models.KindSkillsGap: `{
		"type": "object",
		"required": ["matching_skills", "missing_skills"],
		"properties": {
			"score": {"type": "number", "minimum": 0, "maximum": 100},
			"matching_skills": {"type": "array", "items": {"type": "string"}},
			"missing_skills": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["skill"],
					"properties": {
						"skill": {"type": "string"},
						"importance": {"enum": ["high", "medium", "low"]},
						"resources": {"type": "array", "items": {"type": "string"}}
					}
				}
			},
			"recommendations": {"type": "array", "items": {"type": "string"}}
		}
	}`,
	models.KindInterviewInsights: `{
		"type": "object",
		"required": ["questions"],
		"properties": {
			"process": {"type": "string"},
			"questions": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["question"],
					"properties": {
						"question": {"type": "string"},
						"category": {"type": "string"},
						"tips": {"type": "string"}
					}
				}
			},
			"tips": {"type": "array", "items": {"type": "string"}}
		}
	}`,
}

var schemas = func() map[string]*gojsonschema.Schema {
	out := make(map[string]*gojsonschema.Schema, len(schemaSources))
	for name, src := range schemaSources {
		s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			panic(fmt.Sprintf("schema %s: %v", name, err))
		}
		out[name] = s
	}
	return out
}()

// validateOutput checks a model response against the named schema.
func validateOutput(name, doc string) error {
	schema, ok := schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	res, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("%s output is not JSON: %w", name, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%s output failed schema: %s", name, strings.Join(msgs, "; "))
}
