// Package ndl is a client for the NDL Search OpenSearch endpoint. It issues
// keyword and ISBN queries, applies timeout/retry policy, and extracts typed
// candidate records from the loosely structured XML responses.
package ndl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"mangashelf/internal/textnorm"
)

// Client talks to one NDL Search base URL. It is stateless beyond its
// immutable configuration and safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	policy     RequestPolicy
	limiter    *rate.Limiter
	metrics    *Metrics
}

// Option configures optional client collaborators.
type Option func(*Client)

// WithMetrics attaches Prometheus collectors to the client.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRateLimit throttles outbound requests to rps requests per second.
func WithRateLimit(rps int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1)
	}
}

// WithHTTPClient substitutes the underlying HTTP client, mainly for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient builds a catalog client for the given base URL and policy.
func NewClient(baseURL string, policy RequestPolicy, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		policy:     policy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchVolumeMetadata looks up the registration metadata for one ISBN. The
// ISBN is expected in canonical 13-digit form.
func (c *Client) FetchVolumeMetadata(ctx context.Context, isbn string) (VolumeMetadata, error) {
	params := url.Values{}
	params.Set("isbn", isbn)
	params.Set("cnt", "1")

	body, err := c.execute(ctx, params)
	if err != nil {
		return VolumeMetadata{}, err
	}
	return parseVolumeMetadata(body, isbn)
}

// SearchByKeyword runs a paged keyword search and returns candidates in
// upstream order, deduplicated by ISBN with the richer record kept. Owned
// status on the results is always OwnedUnknown; the caller cross-references
// storage afterwards.
func (c *Client) SearchByKeyword(ctx context.Context, query string, limit, page int) ([]SearchCandidate, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, ErrBlankQuery
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	if page < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPage, page)
	}

	startIndex := (page-1)*limit + 1
	params := url.Values{}
	params.Set("any", trimmed)
	params.Set("cnt", strconv.Itoa(limit))
	params.Set("idx", strconv.Itoa(startIndex))

	body, err := c.execute(ctx, params)
	if err != nil {
		return nil, err
	}
	candidates, err := parseSearchCandidates(body)
	if err != nil {
		return nil, err
	}
	return dedupeByISBN(candidates), nil
}

// dedupeByISBN collapses candidates sharing an ISBN onto the richer record,
// preserving first-seen order. Candidates without an ISBN cannot be compared
// and pass through untouched.
func dedupeByISBN(candidates []SearchCandidate) []SearchCandidate {
	byISBN := make(map[string]int, len(candidates))
	result := make([]SearchCandidate, 0, len(candidates))

	for _, candidate := range candidates {
		if candidate.ISBN == "" {
			result = append(result, candidate)
			continue
		}
		if i, seen := byISBN[candidate.ISBN]; seen {
			result[i] = RicherCandidate(result[i], candidate)
			continue
		}
		byISBN[candidate.ISBN] = len(result)
		result = append(result, candidate)
	}
	return result
}

// LookupByIdentifier resolves one best candidate for an ISBN-like input.
// The input is canonicalized first; textnorm.ErrInvalidISBN is returned for
// anything that does not normalize to 13 digits. A nil candidate with nil
// error means the catalog has no match.
func (c *Client) LookupByIdentifier(ctx context.Context, rawISBN string) (*SearchCandidate, error) {
	isbn, err := textnorm.ISBN(rawISBN)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("isbn", isbn)
	params.Set("cnt", "10")

	body, err := c.execute(ctx, params)
	if err != nil {
		return nil, err
	}
	candidates, err := parseSearchCandidates(body)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	for i := range candidates {
		if candidates[i].ISBN == isbn {
			return &candidates[i], nil
		}
	}
	return &candidates[0], nil
}
