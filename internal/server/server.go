// Package server provides the HTTP REST API for the career vault and
// generation gateway.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonathan/careerflow/internal/collection"
	"github.com/jonathan/careerflow/internal/config"
	"github.com/jonathan/careerflow/internal/generation"
	"github.com/jonathan/careerflow/internal/llm"
	"github.com/jonathan/careerflow/internal/store"
	"github.com/jonathan/careerflow/internal/types"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	local      *store.Local
	llmClient  llm.Client
	gateway    *generation.Gateway

	// mu guards the remote connection and the collections built on it.
	// Both are replaced together when the settings surface changes the
	// remote database URL.
	mu          sync.RWMutex
	remote      *store.Remote
	experiences *collection.Collection[types.Experience]
	jobs        *collection.Collection[types.Job]
	messages    *collection.Collection[types.Message]
}

// New creates a new server instance. The remote store is optional: when no
// database URL is configured the server runs on local files alone, and a
// failed connection degrades to the same local-only mode.
func New(cfg *config.Config) (*Server, error) {
	local, err := store.NewLocal(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	log.Printf("[SERVER] local store at %s", local.Dir())

	client, err := llm.NewClient(context.Background(), llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		local:     local,
		llmClient: client,
		gateway:   generation.New(client),
	}

	if err := s.openCollections(context.Background(), cfg.ResolveDatabaseURL(local)); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Experience vault endpoints
	mux.HandleFunc("GET /experiences", s.handleListExperiences)
	mux.HandleFunc("POST /experiences", s.handleCreateExperience)
	mux.HandleFunc("PUT /experiences/{id}", s.handleUpdateExperience)
	mux.HandleFunc("DELETE /experiences/{id}", s.handleDeleteExperience)
	mux.HandleFunc("POST /experiences/{id}/enrich", s.handleEnrichStoredExperience)

	// Job tracker endpoints
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("POST /jobs", s.handleCreateJob)
	mux.HandleFunc("PUT /jobs/{id}", s.handleUpdateJob)
	mux.HandleFunc("DELETE /jobs/{id}", s.handleDeleteJob)
	mux.HandleFunc("POST /jobs/import", s.handleImportJobPosting)
	mux.HandleFunc("POST /jobs/{id}/analyze", s.handleAnalyzeJob)
	mux.HandleFunc("POST /jobs/{id}/fit", s.handleCalculateFit)
	mux.HandleFunc("POST /jobs/{id}/resume", s.handleGenerateResume)
	mux.HandleFunc("POST /jobs/{id}/cover-letter", s.handleGenerateCoverLetter)

	// Generation endpoints operating on free text
	mux.HandleFunc("POST /ai/parse-history", s.handleParseHistory)
	mux.HandleFunc("POST /ai/enrich", s.handleEnrichExperience)
	mux.HandleFunc("POST /ai/refine", s.handleRefineBullet)
	mux.HandleFunc("POST /ai/analyze-job", s.handleAnalyzeText)
	mux.HandleFunc("POST /ai/ats", s.handleValidateATS)

	// Chat endpoints
	mux.HandleFunc("GET /messages", s.handleListMessages)
	mux.HandleFunc("DELETE /messages", s.handleClearMessages)
	mux.HandleFunc("POST /chat", s.handleChat)

	// Remote store settings
	mux.HandleFunc("GET /settings/remote", s.handleGetRemoteSettings)
	mux.HandleFunc("PUT /settings/remote", s.handleSetRemoteSettings)
	mux.HandleFunc("DELETE /settings/remote", s.handleClearRemoteSettings)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // long timeout for streaming chat
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// openCollections connects to the remote store (when a URL is given) and
// builds the three collections on top of it. A failed remote connection is
// logged and the collections fall back to local files.
func (s *Server) openCollections(ctx context.Context, databaseURL string) error {
	var remote *store.Remote
	if databaseURL != "" {
		r, err := store.OpenRemote(ctx, databaseURL)
		if err != nil {
			log.Printf("[SERVER] remote store unavailable, running local-only: %v", err)
		} else if err := r.EnsureSchema(ctx); err != nil {
			log.Printf("[SERVER] remote schema setup failed, running local-only: %v", err)
			r.Close()
		} else {
			remote = r
		}
	}

	// A typed nil *store.Remote must not become a non-nil interface.
	var rs collection.RemoteStore
	if remote != nil {
		rs = remote
	}

	experiences, err := collection.New(store.KeyExperiences, s.local, rs, []types.Experience{})
	if err != nil {
		return err
	}
	jobs, err := collection.New(store.KeyJobs, s.local, rs, []types.Job{})
	if err != nil {
		return err
	}
	messages, err := collection.New(store.KeyChatHistory, s.local, rs, []types.Message{})
	if err != nil {
		return err
	}

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	experiences.Load(loadCtx)
	jobs.Load(loadCtx)
	messages.Load(loadCtx)
	log.Printf("[SERVER] collections loaded: %s=%d %s=%d %s=%d",
		experiences.Key(), len(experiences.Items()),
		jobs.Key(), len(jobs.Items()),
		messages.Key(), len(messages.Items()))

	s.mu.Lock()
	s.remote = remote
	s.experiences = experiences
	s.jobs = jobs
	s.messages = messages
	s.mu.Unlock()
	return nil
}

// closeCollections flushes pending reconciliations and releases the remote
// connection.
func (s *Server) closeCollections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range []interface{ Close() }{s.experiences, s.jobs, s.messages} {
		if c != nil {
			c.Close()
		}
	}
	if s.remote != nil {
		s.remote.Close()
		s.remote = nil
	}
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.closeCollections()
	if err := s.llmClient.Close(); err != nil {
		log.Printf("[SERVER] closing LLM client: %v", err)
	}
	log.Println("Server stopped")
	return nil
}

// Handler exposes the configured handler chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	remoteConfigured := s.remote != nil
	s.mu.RUnlock()

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status": "ok",
		"remote": remoteConfigured,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// decodeBody decodes a JSON request body into dst, rejecting unparseable
// payloads with a 400.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
