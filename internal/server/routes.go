package server

import (
	"net/http"
	"time"
)

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleBanner)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /api/identities", s.handleCreateIdentity)
	s.mux.HandleFunc("GET /api/identities/{did}", s.handleGetIdentity)
	s.mux.HandleFunc("PUT /api/identities/{did}", s.handleUpdateIdentity)
	s.mux.HandleFunc("DELETE /api/identities/{did}", s.handleRevokeIdentity)

	s.mux.HandleFunc("GET /api/identities/{did}/credentials", s.handleListCredentials)
	s.mux.HandleFunc("GET /api/identities/{did}/credentials/{key}", s.handleGetCredential)
	s.mux.HandleFunc("PUT /api/identities/{did}/credentials/{key}", s.handleIssueCredential)
	s.mux.HandleFunc("DELETE /api/identities/{did}/credentials/{key}", s.handleRevokeCredential)

	s.mux.HandleFunc("POST /api/documents", s.handleVaultDocument)
	s.mux.HandleFunc("POST /api/documents/decrypt", s.handleDecrypt)
}

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "DID Vault API",
		"status":  "running",
		"version": Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"timestamp":  s.now().UTC().Format(time.RFC3339),
		"identities": s.w.Vault.Len(),
	})
}
