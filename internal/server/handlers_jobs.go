package server

import (
	"net/http"
	"time"

	"github.com/jonathan/careerflow/internal/collection"
	"github.com/jonathan/careerflow/internal/fetch"
	"github.com/jonathan/careerflow/internal/types"
)

func (s *Server) jobCollection() *collection.Collection[types.Job] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs
}

func (s *Server) findJob(id string) (types.Job, bool) {
	for _, j := range s.jobCollection().Items() {
		if j.ID == id {
			return j, true
		}
	}
	return types.Job{}, false
}

// storeJob writes fn's result back over the job with the given id.
func (s *Server) storeJob(id string, fn func(types.Job) types.Job) {
	s.jobCollection().Update(func(prev []types.Job) []types.Job {
		next := make([]types.Job, len(prev))
		for i, j := range prev {
			if j.ID == id {
				next[i] = fn(j)
			} else {
				next[i] = j
			}
		}
		return next
	})
}

// handleListJobs returns every tracked application.
func (s *Server) handleListJobs(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.jobCollection().Items())
}

// handleCreateJob adds a job to the tracker. The id and creation time are
// assigned here; an empty status defaults to Bookmarked.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var job types.Job
	if !s.decodeBody(w, r, &job) {
		return
	}
	if job.Description == "" && job.URL == "" {
		s.errorResponse(w, http.StatusBadRequest, "job needs a description or URL")
		return
	}
	if job.Status == "" {
		job.Status = types.StatusBookmarked
	}
	if !job.Status.Valid() {
		s.handlerError(w, &ErrValidation{Field: "status", Message: "unknown application status"})
		return
	}

	job.ID = types.NewID()
	job.CreatedAt = time.Now().UnixMilli()
	s.jobCollection().Update(func(prev []types.Job) []types.Job {
		return append(prev, job)
	})
	s.jsonResponse(w, http.StatusCreated, job)
}

// handleUpdateJob replaces the job with the path id, preserving its id and
// creation time. The lookup and the replace happen in one collection
// operation so a concurrent delete cannot slip between them.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var job types.Job
	if !s.decodeBody(w, r, &job) {
		return
	}
	if job.Status != "" && !job.Status.Valid() {
		s.handlerError(w, &ErrValidation{Field: "status", Message: "unknown application status"})
		return
	}

	found := false
	var updated types.Job
	s.jobCollection().Update(func(prev []types.Job) []types.Job {
		next := make([]types.Job, len(prev))
		for i, j := range prev {
			if j.ID == id {
				job.ID = id
				job.CreatedAt = j.CreatedAt
				if job.Status == "" {
					job.Status = j.Status
				}
				next[i] = job
				updated = job
				found = true
			} else {
				next[i] = j
			}
		}
		return next
	})
	if !found {
		s.handlerError(w, &ErrNotFound{Kind: "job", ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

// handleDeleteJob removes the job with the path id.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	found := false
	s.jobCollection().Update(func(prev []types.Job) []types.Job {
		next := make([]types.Job, 0, len(prev))
		for _, j := range prev {
			if j.ID == id {
				found = true
				continue
			}
			next = append(next, j)
		}
		return next
	})
	if !found {
		s.handlerError(w, &ErrNotFound{Kind: "job", ID: id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImportJobPosting fetches a job posting URL, extracts its description
// text and creates a tracked job from it.
func (s *Server) handleImportJobPosting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		s.handlerError(w, &ErrValidation{Field: "url", Message: "url is required"})
		return
	}

	opts := fetch.DefaultOptions()
	opts.UseBrowser = s.cfg.UseBrowser
	text, err := fetch.JobPosting(r.Context(), req.URL, opts)
	if err != nil {
		s.handlerError(w, err)
		return
	}

	job := types.Job{
		ID:          types.NewID(),
		URL:         req.URL,
		Description: text,
		Status:      types.StatusBookmarked,
		CreatedAt:   time.Now().UnixMilli(),
	}
	s.jobCollection().Update(func(prev []types.Job) []types.Job {
		return append(prev, job)
	})
	s.jsonResponse(w, http.StatusCreated, job)
}

// handleAnalyzeJob runs structured extraction over the job's description
// (or its URL via search grounding when the description is too thin) and
// persists the result on the job. Failures propagate.
func (s *Server) handleAnalyzeJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, ok := s.findJob(id)
	if !ok {
		s.handlerError(w, &ErrNotFound{Kind: "job", ID: id})
		return
	}

	data, err := s.gateway.AnalyzeJobDescription(r.Context(), job.Description, job.URL)
	if err != nil {
		s.handlerError(w, err)
		return
	}

	s.storeJob(id, func(j types.Job) types.Job {
		j.StructuredData = data
		j.Industry = data.Industry
		j.JobType = data.JobType
		return j
	})
	updated, _ := s.findJob(id)
	s.jsonResponse(w, http.StatusOK, updated)
}

// handleCalculateFit scores the vault's experiences against the job and
// persists the analysis on the job. Failures propagate.
func (s *Server) handleCalculateFit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, ok := s.findJob(id)
	if !ok {
		s.handlerError(w, &ErrNotFound{Kind: "job", ID: id})
		return
	}

	result, err := s.gateway.CalculateFit(r.Context(), s.experienceCollection().Items(), job.Description)
	if err != nil {
		s.handlerError(w, err)
		return
	}

	s.storeJob(id, func(j types.Job) types.Job {
		j.FitAnalysis = result
		return j
	})
	s.jsonResponse(w, http.StatusOK, result)
}

// handleGenerateResume drafts a tailored resume for the job and persists it.
// Failures propagate.
func (s *Server) handleGenerateResume(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, ok := s.findJob(id)
	if !ok {
		s.handlerError(w, &ErrNotFound{Kind: "job", ID: id})
		return
	}

	text, err := s.gateway.GenerateResume(r.Context(), s.experienceCollection().Items(), job.Description)
	if err != nil {
		s.handlerError(w, err)
		return
	}

	s.storeJob(id, func(j types.Job) types.Job {
		j.TailoredResume = text
		return j
	})
	s.jsonResponse(w, http.StatusOK, map[string]string{"text": text})
}

// handleGenerateCoverLetter drafts a tailored cover letter for the job and
// persists it. Failures propagate.
func (s *Server) handleGenerateCoverLetter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, ok := s.findJob(id)
	if !ok {
		s.handlerError(w, &ErrNotFound{Kind: "job", ID: id})
		return
	}

	text, err := s.gateway.GenerateCoverLetter(r.Context(), s.experienceCollection().Items(), job.Description)
	if err != nil {
		s.handlerError(w, err)
		return
	}

	s.storeJob(id, func(j types.Job) types.Job {
		j.TailoredCover = text
		return j
	})
	s.jsonResponse(w, http.StatusOK, map[string]string{"text": text})
}
