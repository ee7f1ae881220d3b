// Package generation wraps the generative-language provider behind the
// fixed task contracts the application needs: career-history parsing,
// experience enrichment, bullet refinement, job-description analysis, fit
// scoring, resume and cover-letter drafting, ATS checking, and chat.
//
// Failure handling is deliberately asymmetric. Parsing, enrichment,
// refinement, and ATS checks swallow errors and return a safe default;
// analysis, fit scoring, and drafting propagate errors so the caller can
// show an explicit failure state. That asymmetry is part of the contract.
package generation

import (
	"github.com/jonathan/careerflow/internal/llm"
)

// promptFile is the embedded template file holding every gateway prompt.
const promptFile = "generation.json"

// Gateway is the stateless front to the generative-language provider. It
// owns no collection data; callers fold its results into collections.
type Gateway struct {
	client llm.Client
}

// New builds a gateway over the given provider client.
func New(client llm.Client) *Gateway {
	return &Gateway{client: client}
}
