// Package llm provides the generative-language client used by the
// generation gateway, with model-tier configuration and response cleanup
// helpers.
package llm

// ModelTier represents the capability level requested for a call.
type ModelTier string

const (
	// TierFast is for extraction and enrichment tasks.
	TierFast ModelTier = "fast"
	// TierAdvanced is for reasoning-heavy tasks: fit scoring, drafting,
	// search-grounded analysis.
	TierAdvanced ModelTier = "advanced"
	// TierChat is for conversational turns.
	TierChat ModelTier = "chat"
)

// Config holds the model selection for the application.
type Config struct {
	Models map[ModelTier]string
}

// DefaultConfig returns the default Gemini model mapping.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierFast:     "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
			TierChat:     "gemini-2.5-pro",
		},
	}
}

// GetModel returns the model name for a tier, falling back to the fast
// tier when the requested one is not configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	return c.Models[TierFast]
}
