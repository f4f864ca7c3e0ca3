package pinning_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"didvault/internal/domain"
	"didvault/internal/pinning"
	"didvault/internal/platform/retry"
)

func policy(retries int) retry.Policy {
	return retry.Policy{
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		AttemptTimeout:  time.Second,
	}
}

func TestHTTPGateway_Pin(t *testing.T) {
	payload := []byte{0, 1, 2, 3, 0xff}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		f, hdr, err := r.FormFile(pinning.FormField)
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		assert.Equal(t, "doc", hdr.Filename)
		got, _ := io.ReadAll(f)
		assert.Equal(t, payload, got)
		_ = json.NewEncoder(w).Encode(map[string]string{"Name": "doc", "Hash": "QmTest", "Size": "5"})
	}))
	defer srv.Close()

	g := pinning.NewHTTPGateway(srv.URL, srv.Client(), policy(0), zaptest.NewLogger(t))
	addr, err := g.Pin(context.Background(), "", payload)
	require.NoError(t, err)
	assert.Equal(t, domain.ContentAddress("QmTest"), addr)
}

func TestHTTPGateway_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"Hash":"QmAfterRetry"}`)
	}))
	defer srv.Close()

	g := pinning.NewHTTPGateway(srv.URL, srv.Client(), policy(5), zaptest.NewLogger(t))
	addr, err := g.Pin(context.Background(), "blob", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, domain.ContentAddress("QmAfterRetry"), addr)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPGateway_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	g := pinning.NewHTTPGateway(srv.URL, srv.Client(), policy(5), nil)
	_, err := g.Pin(context.Background(), "blob", []byte("x"))
	require.ErrorIs(t, err, domain.ErrTransportFailure)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPGateway_BadResponse(t *testing.T) {
	for name, body := range map[string]string{
		"not json": "<html>",
		"no hash":  `{"Name":"doc"}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			g := pinning.NewHTTPGateway(srv.URL, srv.Client(), policy(2), nil)
			_, err := g.Pin(context.Background(), "blob", []byte("x"))
			assert.ErrorIs(t, err, domain.ErrTransportFailure)
		})
	}
}

func TestHTTPGateway_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := pinning.NewHTTPGateway(url, nil, policy(1), nil)
	_, err := g.Pin(context.Background(), "blob", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrTransportFailure)
}
