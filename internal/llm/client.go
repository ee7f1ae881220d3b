package llm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Turn is one prior exchange in a chat history.
type Turn struct {
	Role    string // "user" or "model"
	Content string
}

// Request describes a single generation call.
type Request struct {
	Prompt string
	System string        // optional system instruction
	Schema *genai.Schema // optional structured-output schema (GenerateJSON only)
	Tier   ModelTier
}

// Client is the abstraction over the generative-language provider.
type Client interface {
	// GenerateText produces free-form text.
	GenerateText(ctx context.Context, req Request) (string, error)
	// GenerateJSON produces JSON, constrained by req.Schema when set.
	// Markdown code fences are stripped from the result.
	GenerateJSON(ctx context.Context, req Request) (string, error)
	// GenerateWithSearch produces free-form text with the web-search tool
	// enabled. Structured output cannot be combined with search, so the
	// caller must extract JSON from the response itself.
	GenerateWithSearch(ctx context.Context, req Request) (string, error)
	// StreamChat opens a streaming conversational turn over the given
	// history. The returned stream is finite and non-restartable.
	StreamChat(ctx context.Context, system string, history []Turn, message string) (Stream, error)
	// Close releases provider resources.
	Close() error
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewClient creates a Gemini-backed client.
func NewClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, config: config}, nil
}

func (c *GeminiClient) model(req Request) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.config.GetModel(req.Tier))
	model.SetTemperature(0.1) // Low temperature for consistent output
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	return model
}

// GenerateText produces free-form text.
func (c *GeminiClient) GenerateText(ctx context.Context, req Request) (string, error) {
	resp, err := c.model(req).GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return extractTextFromResponse(resp)
}

// GenerateJSON produces JSON output, schema-constrained when a schema is
// provided.
func (c *GeminiClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	model := c.model(req)
	model.ResponseMIMEType = "application/json"
	if req.Schema != nil {
		model.ResponseSchema = req.Schema
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GenerateWithSearch produces free-form text grounded with web search.
// The provider rejects response schemas when tools are enabled, so the
// result is raw text.
func (c *GeminiClient) GenerateWithSearch(ctx context.Context, req Request) (string, error) {
	model := c.model(req)
	model.Tools = []*genai.Tool{{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}}}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate grounded content: %w", err)
	}
	return extractTextFromResponse(resp)
}

// StreamChat opens a streaming chat turn.
func (c *GeminiClient) StreamChat(ctx context.Context, system string, history []Turn, message string) (Stream, error) {
	model := c.model(Request{System: system, Tier: TierChat})

	session := model.StartChat()
	session.History = make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		session.History = append(session.History, &genai.Content{
			Role:  turn.Role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	iter := session.SendMessageStream(ctx, genai.Text(message))
	return &geminiStream{iter: iter}, nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Stream is a finite, non-restartable sequence of text fragments from one
// chat turn. Concatenation state belongs to the consumer; a mid-stream
// failure leaves previously delivered fragments intact.
type Stream interface {
	// Next returns the next text fragment, io.EOF at the end of the
	// stream, or the provider error that broke the stream.
	Next() (string, error)
}

type geminiStream struct {
	iter *genai.GenerateContentResponseIterator
}

func (s *geminiStream) Next() (string, error) {
	resp, err := s.iter.Next()
	if err == iterator.Done {
		return "", io.EOF
	}
	if err != nil {
		return "", fmt.Errorf("chat stream failed: %w", err)
	}
	text, err := extractTextFromResponse(resp)
	if err != nil {
		// Chunks without text parts (e.g. pure metadata) are skipped.
		return s.Next()
	}
	return text, nil
}

// extractTextFromResponse extracts the text parts of a Gemini response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
