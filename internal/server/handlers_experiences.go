package server

import (
	"net/http"

	"github.com/jonathan/careerflow/internal/collection"
	"github.com/jonathan/careerflow/internal/types"
)

func (s *Server) experienceCollection() *collection.Collection[types.Experience] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.experiences
}

// handleListExperiences returns every experience in the vault.
func (s *Server) handleListExperiences(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.experienceCollection().Items())
}

// handleCreateExperience appends a new experience. The id is assigned here
// and is immutable afterwards; a client-supplied id is ignored.
func (s *Server) handleCreateExperience(w http.ResponseWriter, r *http.Request) {
	var exp types.Experience
	if !s.decodeBody(w, r, &exp) {
		return
	}
	if exp.Title == "" && exp.Company == "" && exp.RawDescription == "" {
		s.errorResponse(w, http.StatusBadRequest, "experience is empty")
		return
	}

	exp.ID = types.NewID()
	s.experienceCollection().Update(func(prev []types.Experience) []types.Experience {
		return append(prev, exp)
	})
	s.jsonResponse(w, http.StatusCreated, exp)
}

// handleUpdateExperience replaces the experience with the path id. The body
// id, if any, is overridden by the path.
func (s *Server) handleUpdateExperience(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var exp types.Experience
	if !s.decodeBody(w, r, &exp) {
		return
	}
	exp.ID = id

	found := false
	s.experienceCollection().Update(func(prev []types.Experience) []types.Experience {
		next := make([]types.Experience, len(prev))
		for i, e := range prev {
			if e.ID == id {
				next[i] = exp
				found = true
			} else {
				next[i] = e
			}
		}
		return next
	})
	if !found {
		s.handlerError(w, &ErrNotFound{Kind: "experience", ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, exp)
}

// handleEnrichStoredExperience runs enrichment over the stored experience's
// raw description and folds the draft into the record. Enrichment degrades
// to an empty draft on provider failure, so a failed call leaves the record
// unchanged and still answers 200.
func (s *Server) handleEnrichStoredExperience(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	target, ok := s.findExperience(id)
	if !ok {
		s.handlerError(w, &ErrNotFound{Kind: "experience", ID: id})
		return
	}

	draft := s.gateway.EnrichExperience(r.Context(), target.RawDescription)

	found := false
	var updated types.Experience
	s.experienceCollection().Update(func(prev []types.Experience) []types.Experience {
		next := make([]types.Experience, len(prev))
		for i, e := range prev {
			if e.ID == id {
				draft.Apply(&e)
				next[i] = e
				updated = e
				found = true
			} else {
				next[i] = e
			}
		}
		return next
	})
	if !found {
		s.handlerError(w, &ErrNotFound{Kind: "experience", ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

func (s *Server) findExperience(id string) (types.Experience, bool) {
	for _, e := range s.experienceCollection().Items() {
		if e.ID == id {
			return e, true
		}
	}
	return types.Experience{}, false
}

// handleDeleteExperience removes the experience with the path id.
func (s *Server) handleDeleteExperience(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	found := false
	s.experienceCollection().Update(func(prev []types.Experience) []types.Experience {
		next := make([]types.Experience, 0, len(prev))
		for _, e := range prev {
			if e.ID == id {
				found = true
				continue
			}
			next = append(next, e)
		}
		return next
	})
	if !found {
		s.handlerError(w, &ErrNotFound{Kind: "experience", ID: id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
