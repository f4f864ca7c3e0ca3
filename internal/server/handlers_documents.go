package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"didvault/internal/domain"
)

// multipartOverhead is allowed on top of the document size for the other
// form fields and part headers.
const multipartOverhead = 1 << 20

type vaultResponse struct {
	Success bool `json:"success"`
	domain.VaultReceipt
	Filename string `json:"filename"`
}

type decryptRequest struct {
	Passphrase string      `json:"passphrase"`
	Blob       domain.Blob `json:"blob"`
}

type decryptResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data"` // base64
}

// handleVaultDocument accepts a multipart upload with a "document" file and
// the passphrase, owner, did, metadata, credential and target fields.
func (s *Server) handleVaultDocument(w http.ResponseWriter, r *http.Request) {
	limit := s.w.Config.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.writeError(w, r, err)
			return
		}
		s.writeError(w, r, badInput("invalid multipart form: %v", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("document")
	if err != nil {
		s.writeError(w, r, badInput("no file provided"))
		return
	}
	defer file.Close()
	if header.Size > limit {
		s.writeError(w, r, &http.MaxBytesError{Limit: limit})
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	passphrase := r.FormValue("passphrase")
	if passphrase == "" {
		s.writeError(w, r, badInput("passphrase is required"))
		return
	}
	owner, err := ownerOf(r, r.FormValue("owner"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	original := filepath.Base(header.Filename)
	receipt, err := s.w.Documents.Vault(r.Context(), domain.VaultRequest{
		Passphrase:    passphrase,
		Document:      data,
		Filename:      uuid.NewString() + "_" + original,
		Owner:         owner,
		DID:           domain.DID(r.FormValue("did")),
		Metadata:      r.FormValue("metadata"),
		CredentialKey: r.FormValue("credential"),
		RelayTarget:   r.FormValue("target"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, vaultResponse{Success: true, VaultReceipt: receipt, Filename: original})
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	var req decryptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Blob == "" {
		s.writeError(w, r, badInput("blob is required"))
		return
	}
	plain, err := s.w.Documents.Open(req.Passphrase, req.Blob)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decryptResponse{Success: true, Data: base64.StdEncoding.EncodeToString(plain)})
}
