package server

import (
	"net/http"

	"github.com/jonathan/careerflow/internal/generation"
)

// handleParseHistory splits a career-history dump into experience drafts.
// The gateway degrades to an empty list on failure, so this always answers
// 200.
func (s *Server) handleParseHistory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		s.handlerError(w, &ErrValidation{Field: "text", Message: "text is required"})
		return
	}

	drafts := s.gateway.ParseCareerHistory(r.Context(), req.Text)
	s.jsonResponse(w, http.StatusOK, map[string]any{"experiences": drafts})
}

// handleEnrichExperience derives STAR bullets and skills from a raw role
// description. Degrades to an empty draft on failure, so this always
// answers 200.
func (s *Server) handleEnrichExperience(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		s.handlerError(w, &ErrValidation{Field: "text", Message: "text is required"})
		return
	}

	draft := s.gateway.EnrichExperience(r.Context(), req.Text)
	s.jsonResponse(w, http.StatusOK, draft)
}

// handleRefineBullet rewrites one bullet point. Degrades to the original
// text on failure, so this always answers 200.
func (s *Server) handleRefineBullet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text   string `json:"text"`
		Tone   string `json:"tone"`
		Length string `json:"length"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		s.handlerError(w, &ErrValidation{Field: "text", Message: "text is required"})
		return
	}

	refined := s.gateway.RefineBulletPoint(r.Context(), req.Text, generation.RefineOptions{
		Tone:   req.Tone,
		Length: req.Length,
	})
	s.jsonResponse(w, http.StatusOK, map[string]string{"text": refined})
}

// handleAnalyzeText runs structured extraction over free text without a
// tracked job. Failures propagate.
func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
		URL  string `json:"url"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" && req.URL == "" {
		s.handlerError(w, &ErrValidation{Field: "text", Message: "text or url is required"})
		return
	}

	data, err := s.gateway.AnalyzeJobDescription(r.Context(), req.Text, req.URL)
	if err != nil {
		s.handlerError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, data)
}

// handleValidateATS checks a resume for applicant-tracking compatibility.
// Degrades to the failed report on error, so this always answers 200.
func (s *Server) handleValidateATS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		s.handlerError(w, &ErrValidation{Field: "text", Message: "text is required"})
		return
	}

	report := s.gateway.ValidateResumeATS(r.Context(), req.Text)
	s.jsonResponse(w, http.StatusOK, report)
}
