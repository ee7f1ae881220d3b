package generation

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/jonathan/careerflow/internal/llm"
	"github.com/jonathan/careerflow/internal/prompts"
	"github.com/jonathan/careerflow/internal/types"
)

// ParseCareerHistory splits a free-form career document into distinct role
// drafts. It never fails: any provider or parse error is logged and the
// empty slice returned, so a bad upload degrades to "nothing imported".
func (g *Gateway) ParseCareerHistory(ctx context.Context, text string) []types.ExperienceDraft {
	prompt := prompts.Format(prompts.MustGet(promptFile, "parse-history"),
		map[string]string{"Text": text})

	raw, err := g.client.GenerateJSON(ctx, llm.Request{
		Prompt: prompt,
		Schema: parseHistorySchema(),
		Tier:   llm.TierFast,
	})
	if err != nil {
		log.Printf("[GEN] career history parse failed: %v", err)
		return []types.ExperienceDraft{}
	}

	var parsed struct {
		Experiences []types.ExperienceDraft `json:"experiences"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("[GEN] career history response not parseable: %v", err)
		return []types.ExperienceDraft{}
	}
	if parsed.Experiences == nil {
		return []types.ExperienceDraft{}
	}
	return parsed.Experiences
}

// EnrichExperience derives industry, sector, products, a company blurb,
// STAR bullets, and skill lists from raw role text. Failures are logged
// and the zero draft returned.
func (g *Gateway) EnrichExperience(ctx context.Context, rawText string) types.ExperienceDraft {
	prompt := prompts.Format(prompts.MustGet(promptFile, "enrich-experience"),
		map[string]string{"Text": rawText})

	raw, err := g.client.GenerateJSON(ctx, llm.Request{
		Prompt: prompt,
		System: BannedWordsInstruction(),
		Schema: enrichExperienceSchema(),
		Tier:   llm.TierFast,
	})
	if err != nil {
		log.Printf("[GEN] experience enrichment failed: %v", err)
		return types.ExperienceDraft{}
	}

	var draft types.ExperienceDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		log.Printf("[GEN] enrichment response not parseable: %v", err)
		return types.ExperienceDraft{}
	}
	return draft
}

// RefineOptions tune the tone and length of a bullet rewrite.
type RefineOptions struct {
	Tone   string
	Length string
}

// RefineBulletPoint rewrites one achievement line under the two-pattern
// structural rule (verb+task+metric or verb+metric+task). On any failure
// the original text is returned unchanged.
func (g *Gateway) RefineBulletPoint(ctx context.Context, text string, opts RefineOptions) string {
	tone := opts.Tone
	if tone == "" {
		tone = "Professional"
	}
	length := opts.Length
	if length == "" {
		length = "Concise"
	}

	prompt := prompts.Format(prompts.MustGet(promptFile, "refine-bullet"),
		map[string]string{"Text": text, "Tone": tone, "Length": length})

	refined, err := g.client.GenerateText(ctx, llm.Request{
		Prompt: prompt,
		System: BannedWordsInstruction(),
		Tier:   llm.TierFast,
	})
	if err != nil {
		log.Printf("[GEN] bullet refinement failed, keeping original: %v", err)
		return text
	}

	refined = strings.TrimSpace(refined)
	if refined == "" {
		return text
	}
	return refined
}
