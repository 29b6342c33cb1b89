package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"maxwell/internal/analyzers"
	"maxwell/internal/domain/wiki"
	"maxwell/pkg/errors"
)

// Analyzer tool names exposed to agents.
const (
	ToolAnalyzePacing  = "analyze_pacing"
	ToolAnalyzePOV     = "analyze_pov"
	ToolDetectBeats    = "detect_emotional_beats"
	ToolDetectSubplots = "detect_subplots"
	ToolLookupEntity   = "lookup_entity"
)

func textSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "The manuscript passage to analyze",
			},
		},
		"required": []string{"text"},
	}
}

// RegisterAnalyzers registers the heuristic text analyzers as agent tools.
func RegisterAnalyzers(registry *Registry) {
	analyzerTools := []struct {
		name        string
		description string
		fn          func(string) []analyzers.Finding
	}{
		{ToolAnalyzePacing, "Analyze sentence rhythm and dialogue density of a passage", analyzers.AnalyzePacing},
		{ToolAnalyzePOV, "Check a passage for point-of-view drift and perception filtering", analyzers.AnalyzePOV},
		{ToolDetectBeats, "Label the emotional beats present in a passage", analyzers.DetectEmotionalBeats},
		{ToolDetectSubplots, "Estimate dangling or scattered subplot threads by named-entity distribution", analyzers.DetectSubplots},
	}

	for _, at := range analyzerTools {
		fn := at.fn
		registry.Register(New(at.name, at.description, textSchema(),
			func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				text, err := stringArg(args, "text")
				if err != nil {
					return nil, err
				}
				return fn(text), nil
			}))
	}
}

// RegisterWikiLookup registers semantic entity lookup against the fact store.
func RegisterWikiLookup(registry *Registry, svc *wiki.Service) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Entity name or description to look up",
			},
			"user_id": map[string]interface{}{
				"type":        "string",
				"description": "Owner of the wiki to search",
			},
			"limit": map[string]interface{}{
				"type":        "number",
				"description": "Maximum results, default 5",
			},
		},
		"required": []string{"query", "user_id"},
	}

	registry.Register(New(ToolLookupEntity,
		"Look up established facts about a character, place, or object from the story wiki",
		schema,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			query, err := stringArg(args, "query")
			if err != nil {
				return nil, err
			}
			userRaw, err := stringArg(args, "user_id")
			if err != nil {
				return nil, err
			}
			userID, err := uuid.Parse(userRaw)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid user_id %q", userRaw)
			}

			limit := 5
			if v, ok := args["limit"].(float64); ok && v > 0 {
				limit = int(v)
			}

			blocks, err := svc.LookupEntities(ctx, wiki.ScopeRef{UserID: userID}, query, limit)
			if err != nil {
				return nil, err
			}

			var sb strings.Builder
			for _, b := range blocks {
				fmt.Fprintf(&sb, "%s: %s\n", b.Title, b.Content)
			}
			if sb.Len() == 0 {
				return "No wiki entries found.", nil
			}
			return sb.String(), nil
		}))
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", errors.Wrapf(errors.ErrInvalidInput, "missing required argument %q", key)
	}
	return v, nil
}
