package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"didvault/internal/domain"
	"didvault/internal/platform/retry"
)

const (
	// FormField is the multipart field carrying the pinned bytes.
	FormField = "file"
	// DefaultFilename is used when the caller supplies no name.
	DefaultFilename = "doc"

	maxResponseBytes = 1 << 20
)

// HTTPGateway pins bytes through an IPFS-compatible add endpoint
// (for example http://127.0.0.1:5001/api/v0/add).
type HTTPGateway struct {
	Endpoint string
	HTTP     *http.Client
	Retry    retry.Policy

	log *zap.Logger
}

// NewHTTPGateway returns a gateway posting to endpoint. A nil client falls
// back to http.DefaultClient.
func NewHTTPGateway(endpoint string, client *http.Client, policy retry.Policy, log *zap.Logger) *HTTPGateway {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPGateway{
		Endpoint: endpoint,
		HTTP:     client,
		Retry:    policy,
		log:      log.With(zap.String("component", "pinning")),
	}
}

type addResponse struct {
	Hash string `json:"Hash"`
	Name string `json:"Name,omitempty"`
	Size string `json:"Size,omitempty"`
}

// Pin uploads data as a multipart file named name and returns the content
// address reported by the service. Failures are wrapped in
// domain.ErrTransportFailure.
func (g *HTTPGateway) Pin(ctx context.Context, name string, data []byte) (domain.ContentAddress, error) {
	if name == "" {
		name = DefaultFilename
	}
	var addr domain.ContentAddress
	err := g.Retry.Do(ctx, func(ctx context.Context) error {
		a, err := g.add(ctx, name, data)
		if err != nil {
			return err
		}
		addr = a
		return nil
	}, func(err error, wait time.Duration) {
		g.log.Warn("pin attempt failed, retrying",
			zap.String("endpoint", g.Endpoint),
			zap.Duration("backoff", wait),
			zap.Error(err))
	})
	if err != nil {
		return "", fmt.Errorf("%w: pin %s: %w", domain.ErrTransportFailure, g.Endpoint, err)
	}
	return addr, nil
}

func (g *HTTPGateway) add(ctx context.Context, name string, data []byte) (domain.ContentAddress, error) {
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile(FormField, name)
	if err != nil {
		return "", retry.Permanent(err)
	}
	if _, err := part.Write(data); err != nil {
		return "", retry.Permanent(err)
	}
	if err := mw.Close(); err != nil {
		return "", retry.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, body)
	if err != nil {
		return "", retry.Permanent(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := g.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		err := fmt.Errorf("pinning post %s: %s", g.Endpoint, resp.Status)
		if resp.StatusCode/100 == 4 && resp.StatusCode != http.StatusTooManyRequests {
			return "", retry.Permanent(err)
		}
		return "", err
	}

	var out addResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return "", retry.Permanent(fmt.Errorf("decode pinning response: %w", err))
	}
	if out.Hash == "" {
		return "", retry.Permanent(errors.New("pinning response carries no Hash"))
	}
	g.log.Debug("pinned",
		zap.String("hash", out.Hash),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)))
	return domain.ContentAddress(out.Hash), nil
}

// Compile-time assertion that HTTPGateway implements domain.PinningGateway.
var _ domain.PinningGateway = (*HTTPGateway)(nil)
