package server_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"didvault/internal/app"
	"didvault/internal/did"
	"didvault/internal/server"
)

type harness struct {
	t *testing.T
	w *app.Wire
	h http.Handler
}

func newHarness(t *testing.T, mutate func(*app.Config)) *harness {
	t.Helper()
	cfg := app.Default()
	cfg.Pinning.Dir = t.TempDir()
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())
	w, err := app.NewWire(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return &harness{t: t, w: w, h: server.New(w).Handler()}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	return rec
}

// doFrom sends a GET carrying the given X-Forwarded-For header.
func (h *harness) doFrom(forwardedFor, path string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	return rec
}

func (h *harness) upload(fields map[string]string, filename string, doc []byte) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(h.t, mw.WriteField(k, v))
	}
	if doc != nil {
		fw, err := mw.CreateFormFile("document", filename)
		require.NoError(h.t, err)
		_, err = fw.Write(doc)
		require.NoError(h.t, err)
	}
	require.NoError(h.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestBannerAndHealth(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "running", decode(t, rec)["status"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = h.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = h.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIdentityLifecycle(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(http.MethodPost, "/api/identities", map[string]string{"owner": "alice", "metadata": "m"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	minted := decode(t, rec)["identity"].(map[string]any)
	assert.True(t, did.Valid(minted["id"].(string)))

	rec = h.do(http.MethodPost, "/api/identities", map[string]string{"did": "did:dv:1", "owner": "alice"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = h.do(http.MethodPost, "/api/identities", map[string]string{"did": "did:dv:1", "owner": "bob"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])

	rec = h.do(http.MethodGet, "/api/identities/did:dv:1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode(t, rec)["identity"].(map[string]any)["owner"])

	rec = h.do(http.MethodPut, "/api/identities/did:dv:1", map[string]string{"owner": "bob", "metadata": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(http.MethodPut, "/api/identities/did:dv:1", map[string]string{"owner": "alice", "metadata": "v2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v2", decode(t, rec)["identity"].(map[string]any)["metadata"])

	rec = h.do(http.MethodDelete, "/api/identities/did:dv:1?owner=bob", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(http.MethodDelete, "/api/identities/did:dv:1", map[string]string{"owner": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/api/identities/did:dv:1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCredentialScenario(t *testing.T) {
	h := newHarness(t, nil)
	base := "/api/identities/did:dv:alice"

	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/identities", map[string]string{"did": "did:dv:alice", "owner": "alice"}).Code)

	rec := h.do(http.MethodPut, base+"/credentials/degree", map[string]string{"owner": "alice", "value": "BSc"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPut, base+"/credentials/degree", map[string]string{"owner": "mallory", "value": "PhD"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodGet, base+"/credentials/degree", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BSc", decode(t, rec)["credential"].(map[string]any)["value"])

	rec = h.do(http.MethodGet, base+"/credentials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["credentials"], 1)

	rec = h.do(http.MethodDelete, base+"/credentials/degree", map[string]string{"owner": "mallory"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(http.MethodDelete, base+"/credentials/degree", map[string]string{"owner": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(http.MethodDelete, base+"/credentials/degree", map[string]string{"owner": "alice"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodGet, base+"/credentials/degree", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = h.do(http.MethodGet, base+"/credentials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["credentials"])

	rec = h.do(http.MethodGet, "/api/identities/did:dv:ghost/credentials", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBadInput(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(http.MethodPost, "/api/identities", map[string]string{"metadata": "no owner"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPost, "/api/identities", map[string]string{"owner": "a", "colour": "blue"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/identities", strings.NewReader("{not json"))
	out := httptest.NewRecorder()
	h.h.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestDocumentUploadAndDecrypt(t *testing.T) {
	h := newHarness(t, nil)
	doc := []byte("%PDF-1.7 diploma")

	rec := h.upload(map[string]string{"passphrase": "correct horse", "owner": "alice", "credential": "diploma"}, "diploma.pdf", doc)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "diploma.pdf", out["filename"])
	assert.Equal(t, "diploma", out["credential_key"])
	assert.Equal(t, float64(len(doc)), out["size"])

	id := out["did"].(string)
	addr := out["content_address"].(string)
	blob := out["blob"].(string)

	rec = h.do(http.MethodGet, "/api/identities/"+id+"/credentials/diploma", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, addr, decode(t, rec)["credential"].(map[string]any)["value"])

	rec = h.do(http.MethodPost, "/api/documents/decrypt", map[string]string{"passphrase": "correct horse", "blob": blob})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	plain, err := base64.StdEncoding.DecodeString(decode(t, rec)["data"].(string))
	require.NoError(t, err)
	assert.Equal(t, doc, plain)

	rec = h.do(http.MethodPost, "/api/documents/decrypt", map[string]string{"passphrase": "wrong", "blob": blob})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = h.do(http.MethodPost, "/api/documents/decrypt", map[string]string{"passphrase": "x", "blob": "%%%"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Reusing the DID requires owning it.
	rec = h.upload(map[string]string{"passphrase": "p", "owner": "mallory", "did": id}, "x.txt", []byte("x"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.upload(map[string]string{"passphrase": "p", "owner": "alice", "did": id}, "x.txt", []byte("x"))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, id, decode(t, rec)["did"])
}

func TestDocumentUploadErrors(t *testing.T) {
	h := newHarness(t, func(c *app.Config) { c.MaxUploadBytes = 16 })

	rec := h.upload(map[string]string{"passphrase": "p", "owner": "alice"}, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.upload(map[string]string{"owner": "alice"}, "a.txt", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.upload(map[string]string{"passphrase": "p"}, "a.txt", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.upload(map[string]string{"passphrase": "p", "owner": "alice"}, "big.bin", bytes.Repeat([]byte("a"), 64))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	assert.Equal(t, 0, h.w.Vault.Len())
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, func(c *app.Config) { c.RateLimit.Requests = 2 })

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health", nil).Code)
	rec := h.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.w.Metrics.RateLimited))

	rec = h.doFrom("203.0.113.9, 10.0.0.1", "/health")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "forwarded header is not trusted by default")
}

func TestRateLimit_TrustedForwardedFor(t *testing.T) {
	h := newHarness(t, func(c *app.Config) {
		c.RateLimit.Requests = 1
		c.TrustForwardedFor = true
	})

	assert.Equal(t, http.StatusOK, h.doFrom("203.0.113.9", "/health").Code)
	assert.Equal(t, http.StatusTooManyRequests, h.doFrom("203.0.113.9, 10.0.0.1", "/health").Code)
	assert.Equal(t, http.StatusOK, h.doFrom("203.0.113.10", "/health").Code, "other clients are unaffected")
}

func TestOwnerMatchIsExact(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/identities", map[string]string{"did": "did:dv:p", "owner": "alice"}).Code)

	for _, owner := range []string{" alice\t", "alice ", "Alice"} {
		rec := h.do(http.MethodPut, "/api/identities/did:dv:p", map[string]string{"owner": owner, "metadata": "hijack"})
		assert.Equal(t, http.StatusForbidden, rec.Code, "owner %q", owner)

		rec = h.do(http.MethodPut, "/api/identities/did:dv:p/credentials/k", map[string]string{"owner": owner, "value": "v"})
		assert.Equal(t, http.StatusForbidden, rec.Code, "owner %q", owner)

		rec = h.upload(map[string]string{"passphrase": "p", "owner": owner, "did": "did:dv:p"}, "x.txt", []byte("x"))
		assert.Equal(t, http.StatusForbidden, rec.Code, "owner %q", owner)
	}

	rec := h.do(http.MethodGet, "/api/identities/did:dv:p", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decode(t, rec)["identity"].(map[string]any)["metadata"])
	_, ok := h.w.Vault.GetCredential("did:dv:p", "k")
	assert.False(t, ok)
}

func TestRequestIDAndMetrics(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(http.MethodGet, "/health", nil)
	_, err := uuid.Parse(rec.Header().Get(server.RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(server.RequestIDHeader, id)
	out := httptest.NewRecorder()
	h.h.ServeHTTP(out, req)
	assert.Equal(t, id, out.Header().Get(server.RequestIDHeader))

	assert.Equal(t, 2.0, testutil.ToFloat64(h.w.Metrics.HTTPRequests.WithLabelValues("GET /health", "GET", "200")))
	h.do(http.MethodGet, "/api/identities/did:dv:none", nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.w.Metrics.HTTPRequests.WithLabelValues("GET /api/identities/{did}", "GET", "404")))
}
