package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"didvault/internal/domain"
)

// HTTPSink posts sync requests to a relay service.
type HTTPSink struct {
	Base string
	HTTP *http.Client
}

// NewHTTP returns a sink for the relay at base. A nil client falls back to
// http.DefaultClient.
func NewHTTP(base string, client *http.Client) *HTTPSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSink{Base: strings.TrimRight(base, "/"), HTTP: client}
}

// SyncRequest is the JSON body of POST /sync.
type SyncRequest struct {
	DID    domain.DID `json:"did"`
	Target string     `json:"target"`
}

// SyncIdentity asks the relay to propagate id to target.
func (c *HTTPSink) SyncIdentity(ctx context.Context, id domain.DID, target string) error {
	if err := c.post(ctx, "/sync", SyncRequest{DID: id, Target: target}); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransportFailure, err)
	}
	return nil
}

func (c *HTTPSink) post(ctx context.Context, path string, in any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay post %s: %s", path, resp.Status)
	}
	return nil
}

var _ domain.RelaySink = (*HTTPSink)(nil)
