package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/careerflow/internal/llm"
	"github.com/jonathan/careerflow/internal/prompts"
	"github.com/jonathan/careerflow/internal/schemas"
	"github.com/jonathan/careerflow/internal/types"
)

// CalculateFit scores the candidate's experiences against one job
// description. All five result fields come from a single call; a partial
// result is never produced. Errors propagate to the caller.
func (g *Gateway) CalculateFit(ctx context.Context, experiences []types.Experience, jobDescription string) (*types.FitAnalysisResult, error) {
	const op = "calculate fit"

	prompt := prompts.Format(prompts.MustGet(promptFile, "calculate-fit"), map[string]string{
		"JobDescription":   jobDescription,
		"CandidateSummary": summarizeForFit(experiences),
	})

	raw, err := g.client.GenerateJSON(ctx, llm.Request{
		Prompt: prompt,
		System: BannedWordsInstruction(),
		Schema: fitAnalysisSchema(),
		Tier:   llm.TierAdvanced,
	})
	if err != nil {
		return nil, &GenerationError{Op: op, Message: "provider call failed", Cause: err}
	}

	if err := schemas.ValidateBytes(schemas.FitAnalysis, []byte(raw)); err != nil {
		return nil, &ShapeError{Op: op, Message: "response does not match fit analysis shape", Cause: err}
	}

	var result types.FitAnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &ShapeError{Op: op, Message: "response is not valid JSON", Cause: err}
	}
	return &result, nil
}

// GenerateResume drafts a tailored, ATS-friendly Markdown resume. Errors
// propagate to the caller.
func (g *Gateway) GenerateResume(ctx context.Context, experiences []types.Experience, jobDescription string) (string, error) {
	prompt := prompts.Format(prompts.MustGet(promptFile, "generate-resume"), map[string]string{
		"JobDescription":   jobDescription,
		"CandidateSummary": summarizeForDraft(experiences),
	})
	return g.draft(ctx, "generate resume", prompt)
}

// GenerateCoverLetter drafts a cover letter matched to the job
// description's tone. Errors propagate to the caller.
func (g *Gateway) GenerateCoverLetter(ctx context.Context, experiences []types.Experience, jobDescription string) (string, error) {
	highlights := make([]string, 0, len(experiences))
	for _, exp := range experiences {
		highlights = append(highlights, fmt.Sprintf("%s at %s (%s)", exp.Title, exp.Company, exp.Industry))
	}

	prompt := prompts.Format(prompts.MustGet(promptFile, "generate-cover-letter"), map[string]string{
		"JobDescription":   jobDescription,
		"CandidateSummary": strings.Join(highlights, ", "),
	})
	return g.draft(ctx, "generate cover letter", prompt)
}

func (g *Gateway) draft(ctx context.Context, op, prompt string) (string, error) {
	text, err := g.client.GenerateText(ctx, llm.Request{
		Prompt: prompt,
		System: BannedWordsInstruction(),
		Tier:   llm.TierAdvanced,
	})
	if err != nil {
		return "", &GenerationError{Op: op, Message: "provider call failed", Cause: err}
	}
	if hits := CheckBannedWords(text); len(hits) > 0 {
		log.Printf("[GEN] %s used banned words despite instruction: %s", op, strings.Join(hits, ", "))
	}
	return text, nil
}

// ValidateResumeATS analyzes a generated resume for applicant-tracking
// compatibility. On any failure it degrades to the failed report rather
// than propagating.
func (g *Gateway) ValidateResumeATS(ctx context.Context, resumeText string) types.ATSReport {
	prompt := prompts.Format(prompts.MustGet(promptFile, "validate-ats"),
		map[string]string{"Text": resumeText})

	raw, err := g.client.GenerateJSON(ctx, llm.Request{
		Prompt: prompt,
		System: BannedWordsInstruction(),
		Schema: atsReportSchema(),
		Tier:   llm.TierFast,
	})
	if err != nil {
		log.Printf("[GEN] ATS validation failed: %v", err)
		return types.FailedATSReport()
	}

	var report types.ATSReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		log.Printf("[GEN] ATS response not parseable: %v", err)
		return types.FailedATSReport()
	}
	return report
}

// summarizeForFit flattens experiences into the candidate profile text used
// by fit scoring. STAR bullets are preferred; legacy bullets and the raw
// description are fallbacks for documents written by earlier versions.
func summarizeForFit(experiences []types.Experience) string {
	sections := make([]string, 0, len(experiences))
	for _, exp := range experiences {
		var skills []string
		skills = append(skills, exp.HardSkills...)
		skills = append(skills, exp.SoftSkills...)
		if exp.StructuredData != nil {
			skills = append(skills, exp.StructuredData.Skills...)
		}

		sections = append(sections, fmt.Sprintf(
			"Role: %s at %s.\nIndustry: %s. Sector: %s.\nProducts: %s.\nDescription: %s.\nSkills: %s.",
			exp.Title, exp.Company,
			orNA(exp.Industry), orNA(exp.Sector),
			orNA(strings.Join(exp.Products, ", ")),
			descriptionOf(exp),
			strings.Join(skills, ", ")))
	}
	return strings.Join(sections, "\n\n")
}

// summarizeForDraft is the richer flattening used by resume drafting,
// including dates.
func summarizeForDraft(experiences []types.Experience) string {
	sections := make([]string, 0, len(experiences))
	for _, exp := range experiences {
		var skills []string
		skills = append(skills, exp.HardSkills...)
		skills = append(skills, exp.SoftSkills...)

		dates := fmt.Sprintf("%s - %s", exp.StartDate, exp.EndDate)
		if exp.Ongoing() {
			dates = fmt.Sprintf("%s - Present (current role)", exp.StartDate)
		}

		sections = append(sections, fmt.Sprintf(
			"Role: %s at %s. Dates: %s.\nIndustry: %s. Products: %s.\nDetails: %s\nSkills: %s",
			exp.Title, exp.Company, dates,
			orNA(exp.Industry),
			orNA(strings.Join(exp.Products, ", ")),
			descriptionOf(exp),
			strings.Join(skills, ", ")))
	}
	return strings.Join(sections, "\n\n")
}

func descriptionOf(exp types.Experience) string {
	if len(exp.StarBullets) > 0 {
		return strings.Join(exp.StarBullets, "\n")
	}
	if len(exp.ProfessionalBullets) > 0 {
		return strings.Join(exp.ProfessionalBullets, "\n")
	}
	return exp.RawDescription
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
