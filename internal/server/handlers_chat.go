package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/careerflow/internal/collection"
	"github.com/jonathan/careerflow/internal/types"
)

func (s *Server) messageCollection() *collection.Collection[types.Message] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.messages
}

// handleListMessages returns the chat history in insertion order.
func (s *Server) handleListMessages(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.messageCollection().Items())
}

// handleClearMessages wipes the chat history.
func (s *Server) handleClearMessages(w http.ResponseWriter, _ *http.Request) {
	s.messageCollection().Replace([]types.Message{})
	w.WriteHeader(http.StatusNoContent)
}

// handleChat streams a counselor reply over SSE. The user turn and the
// model turn are appended to the history once the stream finishes; if the
// stream fails mid-sequence, the partial reply is what gets recorded and
// an error event follows the chunks already delivered.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.handlerError(w, &ErrValidation{Field: "message", Message: "message is required"})
		return
	}

	history := s.messageCollection().Items()

	stream, err := s.gateway.StreamChat(r.Context(), history, req.Message)
	if err != nil {
		s.handlerError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	var reply strings.Builder
	var streamErr error
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
		reply.WriteString(chunk)
		if err := sse.WriteChunk(chunk); err != nil {
			// Client went away; keep what we have for the history.
			streamErr = err
			break
		}
	}

	s.appendChatTurns(req.Message, reply.String())

	if streamErr != nil {
		sse.WriteError("the counselor is unavailable right now")
		return
	}
	sse.WriteDone(reply.String())
}

// appendChatTurns records the completed exchange. An empty model reply
// still records the user turn so the history matches what the user saw.
func (s *Server) appendChatTurns(userText, modelText string) {
	now := time.Now().UnixMilli()
	turns := []types.Message{{
		ID:        types.NewID(),
		Role:      types.RoleUser,
		Content:   userText,
		Timestamp: now,
	}}
	if modelText != "" {
		turns = append(turns, types.Message{
			ID:        types.NewID(),
			Role:      types.RoleModel,
			Content:   modelText,
			Timestamp: now,
		})
	}
	s.messageCollection().Update(func(prev []types.Message) []types.Message {
		return append(prev, turns...)
	})
}
