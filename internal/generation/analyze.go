package generation

import (
	"context"
	"encoding/json"

	"github.com/jonathan/careerflow/internal/llm"
	"github.com/jonathan/careerflow/internal/prompts"
	"github.com/jonathan/careerflow/internal/schemas"
	"github.com/jonathan/careerflow/internal/types"
)

// searchTextThreshold is the description length below which, given a URL,
// analysis switches to the search-grounded path instead of raw-text
// extraction.
const searchTextThreshold = 50

// AnalyzeJobDescription extracts structured requirements from a job
// description. When url is set and text is under the length threshold, the
// provider is asked to find the posting via web search; that path cannot
// use schema-constrained output, so the JSON object is pulled out of the
// free-form response by fence stripping and brace matching.
//
// This is the one extraction whose failure the caller must handle
// explicitly: errors propagate instead of degrading.
func (g *Gateway) AnalyzeJobDescription(ctx context.Context, text, url string) (*types.StructuredData, error) {
	const op = "analyze job description"

	var raw string
	var err error
	if url != "" && len(text) < searchTextThreshold {
		prompt := prompts.Format(prompts.MustGet(promptFile, "analyze-job-search"),
			map[string]string{"URL": url})
		raw, err = g.client.GenerateWithSearch(ctx, llm.Request{
			Prompt: prompt,
			Tier:   llm.TierAdvanced,
		})
		if err == nil {
			raw = llm.ExtractJSONObject(llm.CleanJSONBlock(raw))
			if raw == "" {
				return nil, &ShapeError{Op: op, Message: "no JSON object in search-grounded response"}
			}
		}
	} else {
		prompt := prompts.Format(prompts.MustGet(promptFile, "analyze-job"),
			map[string]string{"Text": text})
		raw, err = g.client.GenerateJSON(ctx, llm.Request{
			Prompt: prompt,
			Schema: structuredDataSchema(),
			Tier:   llm.TierAdvanced,
		})
	}
	if err != nil {
		return nil, &GenerationError{Op: op, Message: "provider call failed", Cause: err}
	}

	if err := schemas.ValidateBytes(schemas.StructuredData, []byte(raw)); err != nil {
		return nil, &ShapeError{Op: op, Message: "response does not match structured data shape", Cause: err}
	}

	var data types.StructuredData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, &ShapeError{Op: op, Message: "response is not valid JSON", Cause: err}
	}
	return &data, nil
}
