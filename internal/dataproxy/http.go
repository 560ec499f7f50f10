package dataproxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
)

// HTTPProxy is a DataProxy backed by a remote SeqRepo-like REST service.
// It mirrors the teacher's CanonicalOverrides downloader in using a
// bounded-timeout http.Client rather than the package-level default
// client, so a stalled upstream cannot hang a request indefinitely.
type HTTPProxy struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProxy creates a proxy against baseURL (e.g. "https://seqrepo.example.org").
// timeout bounds each individual HTTP call; callers additionally pass a
// context per request for cancellation.
func NewHTTPProxy(baseURL string, timeout time.Duration) *HTTPProxy {
	return &HTTPProxy{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type aliasResponse struct {
	RefgetAccession string `json:"refget_accession"`
}

func (p *HTTPProxy) TranslateSequenceIdentifier(ctx context.Context, alias string) (string, error) {
	u := fmt.Sprintf("%s/sequence/alias/%s", p.baseURL, url.PathEscape(alias))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("dataproxy: build alias request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", anyvarerr.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var ar aliasResponse
		if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
			return "", fmt.Errorf("dataproxy: decode alias response: %w", err)
		}
		return ar.RefgetAccession, nil
	case http.StatusNotFound:
		return "", anyvarerr.ErrUnresolvedAccession
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusBadGateway:
		return "", anyvarerr.ErrUnavailable
	default:
		return "", fmt.Errorf("dataproxy: alias lookup: unexpected status %s", resp.Status)
	}
}

func (p *HTTPProxy) GetSequence(ctx context.Context, accession string, start, end int64) ([]byte, error) {
	u := fmt.Sprintf("%s/sequence/%s?start=%d&end=%d", p.baseURL, url.PathEscape(accession), start, end)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dataproxy: build sequence request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", anyvarerr.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(resp.Body)
	case http.StatusNotFound:
		return nil, anyvarerr.ErrUnknownAccession
	case http.StatusRequestedRangeNotSatisfiable:
		return nil, anyvarerr.ErrRangeOutOfBounds
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusBadGateway:
		return nil, anyvarerr.ErrUnavailable
	default:
		return nil, fmt.Errorf("dataproxy: get sequence: unexpected status %s", resp.Status)
	}
}
