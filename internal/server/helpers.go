package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"didvault/internal/domain"
	documentsvc "didvault/internal/services/document"
	identitysvc "didvault/internal/services/identity"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// inputError is a malformed request detected by a handler.
type inputError struct{ msg string }

func (e inputError) Error() string { return e.msg }

func badInput(format string, args ...any) error {
	return inputError{msg: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeError maps err to a status code. Server-side failures are logged and
// reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = http.StatusText(code)
	}
	writeJSON(w, code, errorBody{Success: false, Error: msg})
}

func statusFor(err error) int {
	var in inputError
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrMalformedBlob):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrTransportFailure):
		return http.StatusBadGateway
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &in),
		errors.Is(err, identitysvc.ErrInvalidOwner),
		errors.Is(err, documentsvc.ErrEmptyDocument),
		errors.Is(err, documentsvc.ErrMissingOwner),
		errors.Is(err, documentsvc.ErrWeakPassphrase):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.As(err, &tooBig):
			return err
		default:
			return badInput("invalid JSON body: %v", err)
		}
	}
	return nil
}

// ownerOf returns the owner named in the body, falling back to the owner
// query parameter. The value is passed on unmodified; owners compare byte
// for byte.
func ownerOf(r *http.Request, fromBody string) (domain.Owner, error) {
	owner := fromBody
	if owner == "" {
		owner = r.URL.Query().Get("owner")
	}
	if strings.TrimSpace(owner) == "" {
		return "", badInput("owner is required")
	}
	return domain.Owner(owner), nil
}

// clientIP returns the peer address, or the first X-Forwarded-For hop when
// trustForwarded is set.
func clientIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func notFound(kind, name string) error {
	return fmt.Errorf("%s %q: %w", kind, name, domain.ErrNotFound)
}
