package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get("generation.json", "analyze-job")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Text}}")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("generation.json", "does-not-exist")
	assert.Error(t, err)
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("missing.json", "analyze-job")
	assert.Error(t, err)
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("generation.json", "does-not-exist")
	})
}

func TestFormat(t *testing.T) {
	result := Format("Analyze {{.Text}} from {{.URL}}", map[string]string{
		"Text": "the posting",
		"URL":  "https://example.com",
	})
	assert.Equal(t, "Analyze the posting from https://example.com", result)
}

func TestFormat_MissingPlaceholderLeftIntact(t *testing.T) {
	result := Format("Tone: {{.Tone}}", map[string]string{"Other": "x"})
	assert.Equal(t, "Tone: {{.Tone}}", result)
}

// Every key the gateway asks for must exist in the prompt file.
func TestGenerationPromptKeys(t *testing.T) {
	keys := []string{
		"parse-history",
		"enrich-experience",
		"refine-bullet",
		"analyze-job",
		"analyze-job-search",
		"calculate-fit",
		"generate-resume",
		"generate-cover-letter",
		"validate-ats",
		"chat-system",
	}
	for _, key := range keys {
		_, err := Get("generation.json", key)
		assert.NoError(t, err, "key %s", key)
	}
}
