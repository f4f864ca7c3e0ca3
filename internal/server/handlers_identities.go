package server

import (
	"net/http"

	"didvault/internal/domain"
)

type identityRequest struct {
	DID      string `json:"did,omitempty"`
	Owner    string `json:"owner"`
	Metadata string `json:"metadata"`
}

type identityResponse struct {
	Success  bool                  `json:"success"`
	Identity domain.IdentityRecord `json:"identity"`
}

type credentialRequest struct {
	Owner string `json:"owner"`
	Value string `json:"value"`
}

type credentialResponse struct {
	Success    bool                    `json:"success"`
	DID        domain.DID              `json:"did"`
	Credential domain.CredentialRecord `json:"credential"`
}

type credentialsResponse struct {
	Success     bool                      `json:"success"`
	DID         domain.DID                `json:"did"`
	Credentials []domain.CredentialRecord `json:"credentials"`
}

type okResponse struct {
	Success bool `json:"success"`
}

func pathDID(r *http.Request) domain.DID { return domain.DID(r.PathValue("did")) }

// handleCreateIdentity mints a DID when none is given, otherwise registers
// the supplied one.
func (s *Server) handleCreateIdentity(w http.ResponseWriter, r *http.Request) {
	var req identityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	owner, err := ownerOf(r, req.Owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var rec domain.IdentityRecord
	if req.DID == "" {
		rec, err = s.w.Identities.Mint(owner, req.Metadata)
	} else {
		rec, err = s.w.Vault.CreateIdentity(domain.DID(req.DID), owner, req.Metadata)
		s.w.Metrics.ObserveVaultOp("create_identity", err)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, identityResponse{Success: true, Identity: rec})
}

func (s *Server) handleGetIdentity(w http.ResponseWriter, r *http.Request) {
	id := pathDID(r)
	rec, ok := s.w.Vault.GetIdentity(id)
	if !ok {
		s.writeError(w, r, notFound("identity", id.String()))
		return
	}
	writeJSON(w, http.StatusOK, identityResponse{Success: true, Identity: rec})
}

func (s *Server) handleUpdateIdentity(w http.ResponseWriter, r *http.Request) {
	var req identityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	owner, err := ownerOf(r, req.Owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.w.Vault.UpdateIdentity(pathDID(r), owner, req.Metadata)
	s.w.Metrics.ObserveVaultOp("update_identity", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, identityResponse{Success: true, Identity: rec})
}

func (s *Server) handleRevokeIdentity(w http.ResponseWriter, r *http.Request) {
	var req identityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	owner, err := ownerOf(r, req.Owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	err = s.w.Vault.RevokeIdentity(pathDID(r), owner)
	s.w.Metrics.ObserveVaultOp("revoke_identity", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Success: true})
}

func (s *Server) handleListCredentials(w http.ResponseWriter, r *http.Request) {
	id := pathDID(r)
	if _, ok := s.w.Vault.GetIdentity(id); !ok {
		s.writeError(w, r, notFound("identity", id.String()))
		return
	}
	creds := s.w.Vault.ListCredentials(id)
	if creds == nil {
		creds = []domain.CredentialRecord{}
	}
	writeJSON(w, http.StatusOK, credentialsResponse{Success: true, DID: id, Credentials: creds})
}

func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	id := pathDID(r)
	key := r.PathValue("key")
	cred, ok := s.w.Vault.GetCredential(id, key)
	if !ok {
		s.writeError(w, r, notFound("credential", key))
		return
	}
	writeJSON(w, http.StatusOK, credentialResponse{Success: true, DID: id, Credential: cred})
}

func (s *Server) handleIssueCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	owner, err := ownerOf(r, req.Owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := pathDID(r)
	cred, err := s.w.Vault.IssueCredential(id, owner, r.PathValue("key"), req.Value)
	s.w.Metrics.ObserveVaultOp("issue_credential", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, credentialResponse{Success: true, DID: id, Credential: cred})
}

func (s *Server) handleRevokeCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	owner, err := ownerOf(r, req.Owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	err = s.w.Vault.RevokeCredential(pathDID(r), owner, r.PathValue("key"))
	s.w.Metrics.ObserveVaultOp("revoke_credential", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Success: true})
}
