package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/careerflow/internal/config"
)

// remoteSettingsResponse describes the current remote store configuration.
// The URL is masked: it may carry database credentials.
type remoteSettingsResponse struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Source     string `json:"source,omitempty"` // "env" or "settings"
	URL        string `json:"url,omitempty"`
}

// handleGetRemoteSettings reports whether a remote store is configured and
// where the URL came from.
func (s *Server) handleGetRemoteSettings(w http.ResponseWriter, _ *http.Request) {
	resp := remoteSettingsResponse{}
	if s.cfg.FromEnv() {
		resp.Configured = true
		resp.Source = "env"
		resp.URL = maskURL(s.cfg.DatabaseURL)
	} else if url := s.local.GetSetting(config.SettingDatabaseURL); url != "" {
		resp.Configured = true
		resp.Source = "settings"
		resp.URL = maskURL(url)
	}

	s.mu.RLock()
	resp.Connected = s.remote != nil
	s.mu.RUnlock()

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleSetRemoteSettings stores a new remote database URL and rebuilds the
// collections on it. Refused when the URL is pinned by the environment.
func (s *Server) handleSetRemoteSettings(w http.ResponseWriter, r *http.Request) {
	if s.cfg.FromEnv() {
		s.errorResponse(w, http.StatusConflict, "remote store URL is set by the environment")
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.handlerError(w, &ErrValidation{Field: "url", Message: "url is required"})
		return
	}

	s.local.SetSetting(config.SettingDatabaseURL, req.URL)
	s.closeCollections()
	if err := s.openCollections(r.Context(), req.URL); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.handleGetRemoteSettings(w, r)
}

// handleClearRemoteSettings removes the stored URL and drops back to
// local-only mode. Refused when the URL is pinned by the environment.
func (s *Server) handleClearRemoteSettings(w http.ResponseWriter, r *http.Request) {
	if s.cfg.FromEnv() {
		s.errorResponse(w, http.StatusConflict, "remote store URL is set by the environment")
		return
	}

	s.local.SetSetting(config.SettingDatabaseURL, "")
	s.closeCollections()
	if err := s.openCollections(r.Context(), ""); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// maskURL hides the credential portion of a connection string.
func maskURL(url string) string {
	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at == -1 || scheme == -1 || at < scheme {
		return url
	}
	return url[:scheme+3] + "***" + url[at:]
}
