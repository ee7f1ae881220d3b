package llm

import (
	"testing"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n{\"key\": \"value\"}\n  ",
			expected: `{"key": "value"}`,
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "prose before and after",
			input:    "Based on my search, here is the analysis:\n{\"skills\": [\"Go\"]}\nLet me know if you need more.",
			expected: `{"skills": ["Go"]}`,
		},
		{
			name:     "nested objects",
			input:    `prefix {"outer": {"inner": 1}} suffix`,
			expected: `{"outer": {"inner": 1}}`,
		},
		{
			name:     "braces inside strings",
			input:    `{"note": "use {curly} braces", "n": 1}`,
			expected: `{"note": "use {curly} braces", "n": 1}`,
		},
		{
			name:     "escaped quote inside string",
			input:    `{"quote": "she said \"hi}\"", "n": 2}`,
			expected: `{"quote": "she said \"hi}\"", "n": 2}`,
		},
		{
			name:     "no object",
			input:    "there is no JSON here",
			expected: "",
		},
		{
			name:     "unbalanced object",
			input:    `{"open": true`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractJSONObject(tt.input)
			if result != tt.expected {
				t.Errorf("ExtractJSONObject() = %q, want %q", result, tt.expected)
			}
		})
	}
}
