package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"solfolio/internal/app/port"
	"solfolio/internal/pkg/metrics"
)

// Errors returned by the resolver.
var (
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")
	ErrAllGatewaysFailed = errors.New("all gateway mirrors failed")
	ErrEmptyURI          = errors.New("uri is empty")
)

// DefaultIPFSGateways is the mirror list tried in order for IPFS content.
var DefaultIPFSGateways = []string{
	"https://nftstorage.link/ipfs/",
	"https://gateway.pinata.cloud/ipfs/",
	"https://ipfs.io/ipfs/",
	"https://cloudflare-ipfs.com/ipfs/",
}

const arweaveGateway = "https://arweave.net/"

// FallbackResolver fetches content-addressed documents, rewriting IPFS URIs
// onto an ordered list of public gateway mirrors and falling back to the
// next mirror on any failure. Arweave and plain HTTP URIs resolve to a
// single candidate.
type fallbackResolver struct {
	client         *fasthttp.Client
	gateways       []string
	attemptTimeout time.Duration
	logger         *zap.Logger
}

var _ port.GatewayClient = (*fallbackResolver)(nil)

// NewFallbackResolver creates a GatewayClient with the given mirror list.
// A nil or empty gateways slice selects DefaultIPFSGateways.
func NewFallbackResolver(gateways []string, attemptTimeout time.Duration, logger *zap.Logger) port.GatewayClient {
	if len(gateways) == 0 {
		gateways = DefaultIPFSGateways
	}
	if attemptTimeout <= 0 {
		attemptTimeout = 5 * time.Second
	}
	return &fallbackResolver{
		client:         &fasthttp.Client{},
		gateways:       gateways,
		attemptTimeout: attemptTimeout,
		logger:         logger.Named("GatewayResolver"),
	}
}

// CandidateURLs maps a URI to the ordered list of HTTP URLs to try.
func (r *fallbackResolver) CandidateURLs(uri string) ([]string, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, ErrEmptyURI
	}

	switch {
	case strings.HasPrefix(uri, "ipfs://"):
		path := strings.TrimPrefix(uri, "ipfs://")
		path = strings.TrimPrefix(path, "ipfs/")
		return r.mirrorURLs(path), nil

	case strings.HasPrefix(uri, "ar://"):
		return []string{arweaveGateway + strings.TrimPrefix(uri, "ar://")}, nil

	case strings.HasPrefix(uri, "https://"), strings.HasPrefix(uri, "http://"):
		// An HTTP URL pinned to a known IPFS gateway path still benefits
		// from mirror fallback when that gateway is down.
		if idx := strings.Index(uri, "/ipfs/"); idx != -1 {
			return r.mirrorURLs(uri[idx+len("/ipfs/"):]), nil
		}
		return []string{uri}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, uri)
	}
}

func (r *fallbackResolver) mirrorURLs(path string) []string {
	urls := make([]string, 0, len(r.gateways))
	for _, gw := range r.gateways {
		urls = append(urls, gw+path)
	}
	return urls
}

// Fetch resolves uri to its candidate URLs and returns the body of the first
// successful fetch. Candidates are tried strictly in order and the remaining
// mirrors are not contacted after a success.
func (r *fallbackResolver) Fetch(ctx context.Context, uri string) ([]byte, error) {
	candidates, err := r.CandidateURLs(uri)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			metrics.GatewayFallbacks.Inc()
		}

		body, err := r.fetchOne(ctx, candidate)
		if err == nil {
			return body, nil
		}
		lastErr = err
		r.logger.Debug("gateway fetch failed, trying next mirror",
			zap.String("url", candidate),
			zap.Int("attempt", i+1),
			zap.Int("candidates", len(candidates)),
			zap.Error(err))
	}
	return nil, fmt.Errorf("%w for %q: %v", ErrAllGatewaysFailed, uri, lastErr)
}

func (r *fallbackResolver) fetchOne(ctx context.Context, url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	timeout := r.attemptTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := r.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("gateway %s returned status %d", url, resp.StatusCode())
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}
