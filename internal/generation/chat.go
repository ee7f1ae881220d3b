package generation

import (
	"context"
	"fmt"

	"github.com/jonathan/careerflow/internal/llm"
	"github.com/jonathan/careerflow/internal/prompts"
	"github.com/jonathan/careerflow/internal/types"
)

// StreamChat opens a conversational turn with the career counselor persona.
// The returned stream delivers incremental text fragments; the caller owns
// concatenation and must keep the partial text visible if the stream fails
// mid-sequence. Failure to open the stream propagates.
func (g *Gateway) StreamChat(ctx context.Context, history []types.Message, newMessage string) (llm.Stream, error) {
	system := fmt.Sprintf("%s\n%s",
		prompts.MustGet(promptFile, "chat-system"),
		BannedWordsInstruction())

	turns := make([]llm.Turn, 0, len(history))
	for _, msg := range history {
		turns = append(turns, llm.Turn{Role: string(msg.Role), Content: msg.Content})
	}

	stream, err := g.client.StreamChat(ctx, system, turns, newMessage)
	if err != nil {
		return nil, &GenerationError{Op: "chat", Message: "failed to open stream", Cause: err}
	}
	return stream, nil
}
